// Package fit estimates a device's unclipped production envelope for one
// day. A single quadratic fit is biased low by cloud-shadowed dips and
// biased flat by ceiling-clipped samples, so the fitter runs three fixed
// passes: fit, reject cloudy points against the curve, refit, reject again,
// and fit once more on the surviving points.
package fit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
)

// Config holds the fitting parameters.
type Config struct {
	// LowCutoffWatts excludes dawn/dusk samples from fitting; output below
	// this level does not follow the parabolic envelope.
	LowCutoffWatts int64
	// CloudThresholdWatts is how far below the fitted curve a sample must
	// sit to be flagged as cloud-shadowed. The subtraction (rather than a
	// plain below-curve test) tolerates fit noise near the curve.
	CloudThresholdWatts float64
	// MinFitPoints is the minimum surviving-point count after both
	// rejection rounds; below it the day is reported too cloudy.
	MinFitPoints int
}

// DefaultConfig returns the stock parameters: 75 W cutoff, 5 W cloud
// threshold, 50 points.
func DefaultConfig() Config {
	return Config{LowCutoffWatts: 75, CloudThresholdWatts: 5, MinFitPoints: 50}
}

// Passes holds every artifact of one fitting run. The intermediate curves
// exist for diagnostics; only Final feeds the energy accounting.
type Passes struct {
	CloudPass1 domain.FitCurve
	CloudPass2 domain.FitCurve
	Final      domain.FitCurve
	// Classes labels every raw sample using the second rejection round.
	Classes []domain.SampleClass
	// FinalPoints is how many samples survived into the final fit.
	FinalPoints int
	// TooCloudy is set when FinalPoints fell below MinFitPoints. Under
	// forced mode the final fit is still produced.
	TooCloudy bool
}

// Fitter produces unclipped production envelopes. Fitting is ordinary
// least squares, degree 2, unweighted, and fully deterministic.
type Fitter struct {
	cfg Config
	log *zap.Logger
}

// NewFitter creates a Fitter.
func NewFitter(cfg Config, log *zap.Logger) *Fitter {
	return &Fitter{cfg: cfg, log: log}
}

// Fit runs the three fitting passes for one device-day.
//
// Errors: a *domain.QualityFailure (too cloudy) under gated mode, or a
// wrapped domain.ErrFitUndefined when any required fit has fewer than 3
// points. Both are per-day failures; the caller contains them at the
// device-day boundary.
func (f *Fitter) Fit(day *domain.DeviceDay, ceilingWatts int64, mode domain.StrictnessMode) (*Passes, error) {
	fittable := func(s domain.Sample) bool {
		return s.Watts > f.cfg.LowCutoffWatts && s.Watts < ceilingWatts
	}

	pass1, err := f.leastSquares(day.Samples, fittable)
	if err != nil {
		return nil, fmt.Errorf("cloud rejection pass 1: %w", err)
	}
	cloudy1 := f.flagCloudy(day.Samples, pass1)

	pass2, err := f.leastSquares(day.Samples, func(s domain.Sample) bool {
		return fittable(s) && !cloudy1[s.OffsetSecs]
	})
	if err != nil {
		return nil, fmt.Errorf("cloud rejection pass 2: %w", err)
	}
	cloudy2 := f.flagCloudy(day.Samples, pass2)

	finalPoints := 0
	for _, s := range day.Samples {
		if fittable(s) && !cloudy2[s.OffsetSecs] {
			finalPoints++
		}
	}

	tooCloudy := finalPoints < f.cfg.MinFitPoints
	if tooCloudy {
		f.log.Warn("too cloudy to fit reliably",
			zap.Time("date", day.Date),
			zap.Int64("serial_number", day.SerialNumber),
			zap.Int("normal_points", finalPoints),
			zap.Int("min_fit_points", f.cfg.MinFitPoints),
		)
		if mode == domain.ModeGated {
			return nil, &domain.QualityFailure{
				Reason: domain.ReasonTooCloudy,
				Detail: fmt.Sprintf("only %d normal data points", finalPoints),
			}
		}
	}

	final, err := f.leastSquares(day.Samples, func(s domain.Sample) bool {
		return fittable(s) && !cloudy2[s.OffsetSecs]
	})
	if err != nil {
		return nil, fmt.Errorf("final envelope fit: %w", err)
	}

	classes := make([]domain.SampleClass, len(day.Samples))
	for i, s := range day.Samples {
		switch {
		case s.Watts <= f.cfg.LowCutoffWatts:
			classes[i] = domain.ClassLow
		case s.Watts >= ceilingWatts:
			classes[i] = domain.ClassClipped
		case cloudy2[s.OffsetSecs]:
			classes[i] = domain.ClassCloudy
		default:
			classes[i] = domain.ClassNormal
		}
	}

	return &Passes{
		CloudPass1:  pass1,
		CloudPass2:  pass2,
		Final:       final,
		Classes:     classes,
		FinalPoints: finalPoints,
		TooCloudy:   tooCloudy,
	}, nil
}

// flagCloudy marks samples sitting more than the cloud threshold below the
// curve, evaluated over the entire day's series, not just the fit subset.
// Samples at or below the low cutoff are never flagged.
func (f *Fitter) flagCloudy(samples []domain.Sample, curve domain.FitCurve) map[int64]bool {
	cloudy := make(map[int64]bool)
	for _, s := range samples {
		w := float64(s.Watts)
		if float64(f.cfg.LowCutoffWatts) < w && w < curve.Eval(float64(s.OffsetSecs))-f.cfg.CloudThresholdWatts {
			cloudy[s.OffsetSecs] = true
		}
	}
	return cloudy
}
