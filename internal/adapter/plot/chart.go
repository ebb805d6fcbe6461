// Package plot renders per-device-day diagnostic charts: the raw series
// classified by sample kind, both cloud-rejection curves, and the final
// fitted envelope.
package plot

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/solarops/inverter-insight/internal/domain"
)

var (
	colorNormal     = color.RGBA{B: 255, A: 255}
	colorCloudy     = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	colorLow        = color.RGBA{R: 255, G: 165, A: 255}
	colorClipped    = color.RGBA{R: 255, A: 255}
	colorFit        = color.RGBA{G: 200, A: 255}
	colorCloudLine1 = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	colorCloudLine2 = color.RGBA{R: 192, G: 192, B: 192, A: 255}
)

// ChartSink writes one PNG per selected device-day into a directory.
type ChartSink struct {
	filter         Filter
	floorWattHours float64
	lowCutoffWatts int64
	ceilingWatts   int64
	cloudThreshold float64
	dir            string
	log            *zap.Logger
}

// NewChartSink creates a ChartSink. The output directory is created on
// first render.
func NewChartSink(filter Filter, floorWattHours float64, lowCutoffWatts, ceilingWatts int64, cloudThresholdWatts float64, dir string, log *zap.Logger) *ChartSink {
	return &ChartSink{
		filter:         filter,
		floorWattHours: floorWattHours,
		lowCutoffWatts: lowCutoffWatts,
		ceilingWatts:   ceilingWatts,
		cloudThreshold: cloudThresholdWatts,
		dir:            dir,
		log:            log,
	}
}

// Render draws the chart for one device-day if it passes the filter.
func (s *ChartSink) Render(_ context.Context, diag *domain.DayDiagnostics) error {
	if !s.filter.accepts(diag, s.floorWattHours) {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	p := gplot.New()
	p.Title.Text = fmt.Sprintf("%s SN%d: %.2fWhr",
		diag.Day.Date.Format("2006-01-02"), diag.Day.SerialNumber,
		float64(diag.Result.Generated)/3600)
	p.X.Label.Text = "seconds past midnight"
	p.Y.Label.Text = "watts"

	if err := s.addClassScatters(p, diag); err != nil {
		return err
	}
	if err := s.addCurves(p, diag); err != nil {
		return err
	}
	s.addRules(p, diag)

	name := fmt.Sprintf("%s_SN%d.png", diag.Day.Date.Format("2006-01-02"), diag.Day.SerialNumber)
	path := filepath.Join(s.dir, name)
	if err := p.Save(10*vg.Inch, 7.5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	s.log.Info("Rendered diagnostic chart", zap.String("path", path))
	return nil
}

func (s *ChartSink) addClassScatters(p *gplot.Plot, diag *domain.DayDiagnostics) error {
	byClass := map[domain.SampleClass]plotter.XYs{}
	for i, sample := range diag.Day.Samples {
		c := diag.Classes[i]
		byClass[c] = append(byClass[c], plotter.XY{
			X: float64(sample.OffsetSecs),
			Y: float64(sample.Watts),
		})
	}

	order := []struct {
		class domain.SampleClass
		label string
		color color.Color
	}{
		{domain.ClassNormal, "Normal Data Points", colorNormal},
		{domain.ClassCloudy, "Cloudy Data Points", colorCloudy},
		{domain.ClassLow, "Low Power Data Points", colorLow},
		{domain.ClassClipped, "Exceedance Data Points", colorClipped},
	}
	for _, entry := range order {
		xys := byClass[entry.class]
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		scatter.GlyphStyle.Color = entry.color
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (%d)", entry.label, len(xys)), scatter)
	}
	return nil
}

// addCurves draws both cloud-limit curves (each pass's fit minus the cloud
// threshold) and the final envelope, sampled across the fittable offset
// range.
func (s *ChartSink) addCurves(p *gplot.Plot, diag *domain.DayDiagnostics) error {
	var xmin, xmax float64
	found := false
	for _, sample := range diag.Day.Samples {
		if sample.Watts <= s.lowCutoffWatts {
			continue
		}
		x := float64(sample.OffsetSecs)
		if !found {
			xmin, xmax = x, x
			found = true
			continue
		}
		if x < xmin {
			xmin = x
		}
		if x > xmax {
			xmax = x
		}
	}
	if !found || xmax <= xmin {
		return nil
	}

	curves := []struct {
		curve domain.FitCurve
		drop  float64
		label string
		color color.Color
	}{
		{diag.CloudPass1, s.cloudThreshold, "Cloud Limit", colorCloudLine1},
		{diag.CloudPass2, s.cloudThreshold, "Cloud Limit 2", colorCloudLine2},
		{diag.Fit, 0, "Best Fit", colorFit},
	}
	const points = 256
	step := (xmax - xmin) / (points - 1)
	for _, entry := range curves {
		xys := make(plotter.XYs, points)
		for i := range xys {
			x := xmin + step*float64(i)
			xys[i] = plotter.XY{X: x, Y: entry.curve.Eval(x) - entry.drop}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build curve line: %w", err)
		}
		line.LineStyle.Width = vg.Points(0.75)
		line.LineStyle.Color = entry.color
		p.Add(line)
		p.Legend.Add(entry.label, line)
	}
	return nil
}

// addRules draws the horizontal cutoff and ceiling references across the
// day's offset span, plus the estimated-peak and exceedance-window markers
// on days where any sample reached the ceiling.
func (s *ChartSink) addRules(p *gplot.Plot, diag *domain.DayDiagnostics) {
	samples := diag.Day.Samples
	if len(samples) == 0 {
		return
	}
	x0 := float64(samples[0].OffsetSecs)
	x1 := float64(samples[len(samples)-1].OffsetSecs)

	hline := func(y float64, c color.Color) *plotter.Line {
		line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
		if err != nil {
			return nil
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = c
		p.Add(line)
		return line
	}
	vline := func(x, y0, y1 float64, c color.Color) *plotter.Line {
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: y0}, {X: x, Y: y1}})
		if err != nil {
			return nil
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = c
		p.Add(line)
		return line
	}

	hline(float64(s.lowCutoffWatts), colorLow)
	if diag.Result.Exceedance == nil {
		return
	}
	ceiling := float64(s.ceilingWatts)
	hline(ceiling, colorClipped)

	// Where the unclipped envelope would have topped out. Only a
	// downward-opening fit has a peak.
	if diag.Fit.Coeffs[2] < 0 {
		peakX := diag.Fit.PeakOffset()
		peakY := diag.Fit.Eval(peakX)
		if line := vline(peakX, 0, peakY, colorFit); line != nil {
			p.Legend.Add("Est Peak Time", line)
		}
		if line := hline(peakY, colorFit); line != nil {
			p.Legend.Add("Est Peak Power", line)
		}
	}

	// Bracket the window of clipped samples.
	if first, last, ok := exceedanceSpan(samples, s.ceilingWatts); ok {
		vline(first, 0, ceiling, colorClipped)
		vline(last, 0, ceiling, colorClipped)
	}
}

// exceedanceSpan returns the offsets of the first and last samples at or
// above the ceiling.
func exceedanceSpan(samples []domain.Sample, ceilingWatts int64) (first, last float64, found bool) {
	for _, s := range samples {
		if s.Watts < ceilingWatts {
			continue
		}
		x := float64(s.OffsetSecs)
		if !found {
			first = x
			found = true
		}
		last = x
	}
	return first, last, found
}
