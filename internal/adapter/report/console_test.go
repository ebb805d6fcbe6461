package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func i64(v int64) *int64 { return &v }

func TestReport_DetailLine(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{detail: true, w: &buf, log: newTestLogger()}

	rec := &domain.DayReport{
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
		SerialNumber: 123456789012,
		Result: domain.AnalysisResult{
			Generated:  3600 * 1500,
			Exceedance: i64(3600 * 12),
			Shaved:     i64(1800), // 0.5 Whr
		},
	}
	if err := sink.Report(context.Background(), rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "2025-06-01 SN123456789012 1500.00Whr generated, 12.00Whr exceedance, 0.50Whr shaved\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReport_PartialResultOmitsAbsentFigures(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{detail: true, w: &buf, log: newTestLogger()}

	rec := &domain.DayReport{
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
		SerialNumber: 7,
		Result:       domain.AnalysisResult{Generated: 7200},
	}
	if err := sink.Report(context.Background(), rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := buf.String()
	if strings.Contains(got, "exceedance") || strings.Contains(got, "shaved") {
		t.Errorf("expected absent figures to be omitted, got %q", got)
	}
}

func TestReport_SilentWithoutDetail(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{detail: false, w: &buf, log: newTestLogger()}

	rec := &domain.DayReport{Date: time.Now(), SerialNumber: 1}
	if err := sink.Report(context.Background(), rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFanout_StopsAtFirstError(t *testing.T) {
	var buf bytes.Buffer
	okSink := &ConsoleSink{detail: true, w: &buf, log: newTestLogger()}
	calls := 0
	failing := reportFunc(func(context.Context, *domain.DayReport) error {
		calls++
		return context.Canceled
	})

	fan := Fanout{failing, okSink}
	err := fan.Report(context.Background(), &domain.DayReport{Date: time.Now()})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call to the failing sink, got %d", calls)
	}
	if buf.Len() != 0 {
		t.Errorf("expected later sinks to be skipped, got %q", buf.String())
	}
}

type reportFunc func(ctx context.Context, rec *domain.DayReport) error

func (f reportFunc) Report(ctx context.Context, rec *domain.DayReport) error {
	return f(ctx, rec)
}
