// Package quality validates a reconstructed device-day before the expensive
// curve fitting runs. A day that missed its sunrise or sunset readings, or
// that has too few points, cannot support a trustworthy envelope fit.
package quality

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
)

// Thresholds are the sanity limits for a device-day series.
type Thresholds struct {
	// MaxStartupWatts is the highest acceptable power on the day's first
	// sample. Higher means the start of the day was not captured.
	MaxStartupWatts int64
	// MaxShutdownWatts is the highest acceptable power on the day's last
	// sample.
	MaxShutdownWatts int64
	// MinSamples is the minimum series length worth analyzing.
	MinSamples int
}

// DefaultThresholds returns the stock limits: 20 W startup, 0 W shutdown,
// 50 samples.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxStartupWatts: 20, MaxShutdownWatts: 0, MinSamples: 50}
}

// Gate decides whether a device-day proceeds to curve fitting.
type Gate struct {
	thr  Thresholds
	mode domain.StrictnessMode
	log  *zap.Logger
}

// NewGate creates a quality gate for the given strictness mode.
func NewGate(thr Thresholds, mode domain.StrictnessMode, log *zap.Logger) *Gate {
	return &Gate{thr: thr, mode: mode, log: log}
}

// Enforced reports whether failures returned by Check should abort the
// day's analysis. Forced mode computes and logs every check but never
// aborts on them.
func (g *Gate) Enforced() bool {
	return g.mode == domain.ModeGated
}

// Check runs every quality check, logging each violation and every gap
// inconsistency warning, and returns the first failure found (nil when the
// day is clean). Whether a failure aborts analysis is the caller's call
// via Enforced.
func (g *Gate) Check(day *domain.DeviceDay) *domain.QualityFailure {
	g.warnGapSpread(day)

	var failures []*domain.QualityFailure
	if w := day.Samples[0].Watts; w > g.thr.MaxStartupWatts {
		failures = append(failures, &domain.QualityFailure{
			Reason: domain.ReasonStartupPower,
			Detail: fmt.Sprintf("startup power too high: %d W", w),
		})
	}
	if n := len(day.Samples); n < g.thr.MinSamples {
		failures = append(failures, &domain.QualityFailure{
			Reason: domain.ReasonInsufficientData,
			Detail: fmt.Sprintf("insufficient data for analysis: %d records", n),
		})
	}
	if w := day.Samples[len(day.Samples)-1].Watts; w > g.thr.MaxShutdownWatts {
		failures = append(failures, &domain.QualityFailure{
			Reason: domain.ReasonShutdownPower,
			Detail: fmt.Sprintf("shutdown power too high: %d W", w),
		})
	}

	for _, f := range failures {
		g.log.Warn("quality check failed",
			zap.Time("date", day.Date),
			zap.Int64("serial_number", day.SerialNumber),
			zap.String("reason", string(f.Reason)),
			zap.String("detail", f.Detail),
		)
	}
	if len(failures) == 0 {
		return nil
	}
	return failures[0]
}

// warnGapSpread reports inter-sample gaps that stray from the day's
// average: max gap above 150% or min gap below 50% of average. These are
// diagnostics only and never abort analysis.
func (g *Gate) warnGapSpread(day *domain.DeviceDay) {
	samples := day.Samples
	if len(samples) < 2 {
		return
	}
	minGap, maxGap := int64(86400), int64(0)
	for i := 1; i < len(samples); i++ {
		gap := samples[i].OffsetSecs - samples[i-1].OffsetSecs
		if gap > maxGap {
			maxGap = gap
		}
		if gap < minGap {
			minGap = gap
		}
	}
	span := samples[len(samples)-1].OffsetSecs - samples[0].OffsetSecs
	avgGap := int64(math.Round(float64(span) / float64(len(samples)-1)))

	if maxGap*2 > avgGap*3 {
		g.log.Warn("max sample gap too high",
			zap.Time("date", day.Date),
			zap.Int64("serial_number", day.SerialNumber),
			zap.Int64("max_gap_secs", maxGap),
			zap.Int64("avg_gap_secs", avgGap),
		)
	}
	if minGap*2 < avgGap {
		g.log.Warn("min sample gap too low",
			zap.Time("date", day.Date),
			zap.Int64("serial_number", day.SerialNumber),
			zap.Int64("min_gap_secs", minGap),
			zap.Int64("avg_gap_secs", avgGap),
		)
	}
}
