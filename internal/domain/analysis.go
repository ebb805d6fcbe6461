package domain

import (
	"fmt"
	"strings"
	"time"
)

// StrictnessMode controls whether quality-gate failures abort a day's
// analysis or only get logged.
type StrictnessMode int

const (
	// ModeGated aborts analysis on quality failures, returning a partial
	// result with generated energy only.
	ModeGated StrictnessMode = iota
	// ModeForced runs the full analysis regardless of quality failures.
	// A quadratic fit with fewer than 3 points still fails explicitly.
	ModeForced
)

func (m StrictnessMode) String() string {
	if m == ModeForced {
		return "forced"
	}
	return "gated"
}

// ParseStrictnessMode converts a config string to a StrictnessMode.
func ParseStrictnessMode(s string) (StrictnessMode, error) {
	switch strings.ToLower(s) {
	case "gated", "":
		return ModeGated, nil
	case "forced":
		return ModeForced, nil
	}
	return ModeGated, fmt.Errorf("unknown strictness mode %q", s)
}

// FitCurve is a quadratic production envelope fit to one device-day.
// Coefficients apply to the scaled variable u = (t - Offset) / Scale, which
// keeps the least-squares system well conditioned over an 86400-second
// domain. Immutable once produced.
type FitCurve struct {
	Coeffs [3]float64 `json:"coeffs"`
	Offset float64    `json:"offset"`
	Scale  float64    `json:"scale"`
}

// Eval evaluates the curve at an offset in seconds past midnight.
func (c FitCurve) Eval(offsetSecs float64) float64 {
	u := (offsetSecs - c.Offset) / c.Scale
	return c.Coeffs[0] + u*(c.Coeffs[1]+u*c.Coeffs[2])
}

// PeakOffset returns the offset of the curve's vertex in seconds past
// midnight. Only meaningful when Coeffs[2] < 0 (a production envelope
// opens downward).
func (c FitCurve) PeakOffset() float64 {
	return c.Offset + c.Scale*(c.Coeffs[1]/(-2*c.Coeffs[2]))
}

// AnalysisResult is the per-device-day energy triple, in watt-seconds.
// Exceedance is nil when no raw sample reached the ceiling, or when the
// day failed quality gating. Shaved is nil unless the estimated unclipped
// exceedance strictly exceeds the measured one.
type AnalysisResult struct {
	Generated  int64  `json:"generated_ws"`
	Exceedance *int64 `json:"exceedance_ws,omitempty"`
	Shaved     *int64 `json:"shaved_ws,omitempty"`
}

// DayReport pairs an AnalysisResult with its day and device identifiers
// for the report sinks.
type DayReport struct {
	Date         time.Time      `json:"date"`
	SerialNumber int64          `json:"serial_number"`
	Result       AnalysisResult `json:"result"`
}

// SampleClass labels a sample for diagnostics. Classification never feeds
// back into the energy figures.
type SampleClass uint8

const (
	ClassNormal SampleClass = iota
	ClassLow                // at or below the low-power fit cutoff
	ClassCloudy             // rejected as cloud-shadowed by the second pass
	ClassClipped            // at or above the ceiling
)

// DayDiagnostics carries everything a visualization sink needs for one
// device-day: the raw series, both cloud-rejection pass curves, the final
// fit, and per-sample classification.
type DayDiagnostics struct {
	Day        DeviceDay
	CloudPass1 FitCurve
	CloudPass2 FitCurve
	Fit        FitCurve
	Classes    []SampleClass
	GatePassed bool
	TooCloudy  bool
	Result     AnalysisResult
}
