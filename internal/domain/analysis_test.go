package domain

import (
	"math"
	"testing"
)

func TestFitCurve_PeakOffset(t *testing.T) {
	// The vertex of c0 + c1*u + c2*u^2 sits at u = c1 / (-2*c2); the
	// domain mapping places it at Offset + Scale*u.
	curve := FitCurve{Coeffs: [3]float64{300, 10, -5}, Offset: 43200, Scale: 2000}

	peak := curve.PeakOffset()
	if want := 43200.0 + 2000.0; math.Abs(peak-want) > 1e-9 {
		t.Errorf("expected peak at %.0f, got %.6f", want, peak)
	}
	for _, dx := range []float64{-500, 500} {
		if curve.Eval(peak+dx) >= curve.Eval(peak) {
			t.Errorf("expected a maximum at the peak; Eval(%.0f) is not below it", peak+dx)
		}
	}
}

func TestParseStrictnessMode(t *testing.T) {
	cases := []struct {
		in   string
		want StrictnessMode
	}{
		{"gated", ModeGated},
		{"", ModeGated},
		{"FORCED", ModeForced},
	}
	for _, tc := range cases {
		got, err := ParseStrictnessMode(tc.in)
		if err != nil {
			t.Errorf("ParseStrictnessMode(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStrictnessMode(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}

	if _, err := ParseStrictnessMode("strict"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
