// Package account integrates a device-day's power series into energy
// figures. All integrals are trapezoidal; accumulators carry doubled areas
// so the raw-series integral stays in exact integer arithmetic until the
// final halving.
package account

import (
	"math"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
)

// Accountant computes the per-day energy triple.
type Accountant struct {
	log *zap.Logger
}

// NewAccountant creates an Accountant.
func NewAccountant(log *zap.Logger) *Accountant {
	return &Accountant{log: log}
}

// Generated integrates the raw series over its full offset domain and
// returns watt-seconds, rounded to nearest. Inputs are integers, so the
// doubled accumulator is exact; only the final halving can produce a
// half watt-second.
func (a *Accountant) Generated(samples []domain.Sample) int64 {
	var doubled int64
	for i := 1; i < len(samples); i++ {
		dt := samples[i].OffsetSecs - samples[i-1].OffsetSecs
		doubled += dt * (samples[i-1].Watts + samples[i].Watts)
	}
	return (doubled + 1) / 2
}

// ClippedCount reports how many samples sit at or above the ceiling.
func ClippedCount(samples []domain.Sample, ceilingWatts int64) int {
	n := 0
	for _, s := range samples {
		if s.Watts >= ceilingWatts {
			n++
		}
	}
	return n
}

// Account computes the full AnalysisResult for a device-day given its
// fitted envelope.
//
// Exceedance integrates max(raw - ceiling, 0); it is present iff any raw
// sample reached the ceiling. The estimated exceedance runs the same
// integral over a series where every clipped sample is replaced by the
// envelope's value. Shaved is their difference, present only when strictly
// positive.
func (a *Accountant) Account(day *domain.DeviceDay, ceilingWatts int64, curve domain.FitCurve) domain.AnalysisResult {
	res := domain.AnalysisResult{Generated: a.Generated(day.Samples)}

	ceiling := float64(ceilingWatts)
	raw := make([]float64, len(day.Samples))
	estimated := make([]float64, len(day.Samples))
	for i, s := range day.Samples {
		raw[i] = float64(s.Watts)
		if s.Watts >= ceilingWatts {
			estimated[i] = curve.Eval(float64(s.OffsetSecs))
		} else {
			estimated[i] = raw[i]
		}
	}

	actualDoubled := overCeilingDoubled(day.Samples, raw, ceiling)
	estimatedDoubled := overCeilingDoubled(day.Samples, estimated, ceiling)

	if ClippedCount(day.Samples, ceilingWatts) > 0 {
		exceedance := int64(math.Round(actualDoubled / 2))
		res.Exceedance = &exceedance
	}
	if estimatedDoubled > actualDoubled {
		shaved := int64(math.Round((estimatedDoubled - actualDoubled) / 2))
		res.Shaved = &shaved
	}
	return res
}

// overCeilingDoubled integrates max(watts - ceiling, 0) over the series and
// returns double the area in watt-seconds.
//
// Intervals fully below the ceiling contribute nothing. An interval that
// crosses it is split at the exact linear-interpolated crossing time and
// only the at/above side is counted, which makes that partial contribution
// a triangle. Intervals fully at/above contribute the usual trapezoid of
// the excess.
func overCeilingDoubled(samples []domain.Sample, watts []float64, ceiling float64) float64 {
	var doubled float64
	for i := 1; i < len(samples); i++ {
		t0 := float64(samples[i-1].OffsetSecs)
		t1 := float64(samples[i].OffsetSecs)
		w0, w1 := watts[i-1], watts[i]
		if w0 < ceiling && w1 < ceiling {
			continue
		}
		dt := t1 - t0
		switch {
		case w0 < ceiling: // rising across the ceiling
			tc := t0 + (ceiling-w0)*dt/(w1-w0)
			doubled += (t1 - tc) * (w1 - ceiling)
		case w1 < ceiling: // falling across the ceiling
			tc := t0 + (ceiling-w0)*dt/(w1-w0)
			doubled += (tc - t0) * (w0 - ceiling)
		default: // both endpoints at/above
			doubled += dt * (w0 - ceiling + w1 - ceiling)
		}
	}
	return doubled
}
