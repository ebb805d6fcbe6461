package analyzer

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/mocks"
	"github.com/solarops/inverter-insight/internal/service/account"
	"github.com/solarops/inverter-insight/internal/service/fit"
	"github.com/solarops/inverter-insight/internal/service/quality"
	"github.com/solarops/inverter-insight/internal/service/reconstruct"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(ceiling int64, mode domain.StrictnessMode, report *mocks.MockReportSink, diag *mocks.MockDiagnosticSink) *Service {
	log := newTestLogger()
	gate := quality.NewGate(quality.DefaultThresholds(), mode, log)
	fitter := fit.NewFitter(fit.DefaultConfig(), log)
	acct := account.NewAccountant(log)
	if diag == nil {
		return NewService(ceiling, gate, fitter, acct, report, nil, log)
	}
	return NewService(ceiling, gate, fitter, acct, report, diag, log)
}

func TestAnalyzeDay_GatedShortDayYieldsPartialResult(t *testing.T) {
	// Arrange: 10 samples under gated mode fail the minimum-count check;
	// the result must carry generated energy and nothing else.
	report := &mocks.MockReportSink{}
	service := newTestService(349, domain.ModeGated, report, nil)

	samples := make([]domain.Sample, 10)
	for i := range samples {
		watts := int64(200)
		if i == 0 || i == 9 {
			watts = 0
		}
		samples[i] = domain.Sample{OffsetSecs: int64(30000 + i*331), Watts: watts}
	}
	day := &domain.DeviceDay{
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
		SerialNumber: 11,
		Samples:      samples,
	}

	// Act
	rec, err := service.AnalyzeDay(context.Background(), day)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Result.Generated <= 0 {
		t.Errorf("expected generated energy computed, got %d", rec.Result.Generated)
	}
	if rec.Result.Exceedance != nil {
		t.Error("expected exceedance absent on a gated day")
	}
	if rec.Result.Shaved != nil {
		t.Error("expected shaved absent on a gated day")
	}
}

func TestAnalyzeDay_NoExceedanceShortCircuit(t *testing.T) {
	// A clean day that never reaches the ceiling returns generated energy
	// only, without running the fitter.
	report := &mocks.MockReportSink{}
	service := newTestService(349, domain.ModeGated, report, nil)

	// The envelope tops out at 300 W, clipped by hardware at 300, well
	// under the configured 349 W ceiling.
	day := syntheticDay(1, 300, 31)

	rec, err := service.AnalyzeDay(context.Background(), day)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Result.Exceedance != nil || rec.Result.Shaved != nil {
		t.Error("expected only generated energy for a day below the ceiling")
	}
}

// syntheticDay samples the envelope w(t) = 300 - 0.0005*(t-43200)^2 every
// stepSecs across the day, clamping negatives to zero and clipping at the
// ceiling like limited inverter hardware would.
func syntheticDay(serial, ceiling, stepSecs int64) *domain.DeviceDay {
	var samples []domain.Sample
	for t := int64(0); t < 86400; t += stepSecs {
		d := float64(t - 43200)
		w := int64(math.Round(300 - 0.0005*d*d))
		if w < 0 {
			w = 0
		}
		if w > ceiling {
			w = ceiling
		}
		samples = append(samples, domain.Sample{OffsetSecs: t, Watts: w})
	}
	return &domain.DeviceDay{
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
		SerialNumber: serial,
		Samples:      samples,
	}
}

func TestAnalyzeDay_ClippedParabolaEndToEnd(t *testing.T) {
	// The envelope exceeds the 250 W ceiling for |t-43200| < sqrt(1e5);
	// analytically the clipped area is 100a - 0.001*a^3/3 for
	// a = sqrt(1e5), about 21082 Ws. Raw samples sit exactly at the
	// ceiling inside that window, so measured exceedance is 0 and the
	// whole area is shaved. Tolerance comes from the 13 s sampling
	// resolution, not the fit: on noise-free data the quadratic recovery
	// is essentially exact.
	report := &mocks.MockReportSink{}
	service := newTestService(250, domain.ModeGated, report, nil)

	day := syntheticDay(1, 250, 13)
	rec, err := service.AnalyzeDay(context.Background(), day)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Result.Exceedance == nil {
		t.Fatal("expected exceedance present (samples sit at the ceiling)")
	}
	if *rec.Result.Exceedance != 0 {
		t.Errorf("expected 0 Ws measured exceedance for hard-clipped samples, got %d", *rec.Result.Exceedance)
	}

	a := math.Sqrt(1e5)
	wantShaved := 100*a - 0.001*a*a*a/3
	if rec.Result.Shaved == nil {
		t.Fatal("expected shaved energy present")
	}
	if got := float64(*rec.Result.Shaved); math.Abs(got-wantShaved) > 600 {
		t.Errorf("expected shaved within 600 Ws of %.0f, got %.0f", wantShaved, got)
	}

	b := math.Sqrt(6e5)
	wantGenerated := (600*b - 0.001*b*b*b/3) - wantShaved
	if got := float64(rec.Result.Generated); math.Abs(got-wantGenerated) > 2000 {
		t.Errorf("expected generated within 2000 Ws of %.0f, got %.0f", wantGenerated, got)
	}
}

func TestRun_StreamsDaysInOrder(t *testing.T) {
	// Two devices over two days; records must come out ordered by date
	// then serial, and per-day quality failures must not stop the run.
	readings := []domain.Reading{
		{ReportedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local), SerialNumber: 2, Watts: 0},
		{ReportedAt: time.Date(2025, 6, 1, 9, 5, 31, 0, time.Local), SerialNumber: 2, Watts: 0},
		{ReportedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local), SerialNumber: 1, Watts: 0},
		{ReportedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local), SerialNumber: 1, Watts: 0},
	}
	report := &mocks.MockReportSink{}
	service := newTestService(349, domain.ModeGated, report, nil)
	recon := reconstruct.New(331, mocks.NewSliceCursor(readings), newTestLogger())

	summary, err := service.Run(context.Background(), recon)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.Days != 2 {
		t.Errorf("expected 2 days, got %d", summary.Days)
	}
	if summary.DeviceDays != 3 {
		t.Errorf("expected 3 device-days, got %d", summary.DeviceDays)
	}
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}
	wantSerials := []int64{1, 2, 1}
	for i, rec := range report.Records {
		if rec.SerialNumber != wantSerials[i] {
			t.Errorf("record %d: expected serial %d, got %d", i, wantSerials[i], rec.SerialNumber)
		}
	}
}

func TestAnalyzeDay_DiagnosticsRendered(t *testing.T) {
	report := &mocks.MockReportSink{}
	diag := &mocks.MockDiagnosticSink{}
	service := newTestService(250, domain.ModeGated, report, diag)

	_, err := service.AnalyzeDay(context.Background(), syntheticDay(5, 250, 13))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(diag.Rendered) != 1 {
		t.Fatalf("expected 1 rendered diagnostic, got %d", len(diag.Rendered))
	}
	d := diag.Rendered[0]
	if !d.GatePassed {
		t.Error("expected gate passed")
	}
	if len(d.Classes) != len(d.Day.Samples) {
		t.Errorf("expected a class per sample, got %d for %d samples", len(d.Classes), len(d.Day.Samples))
	}
}
