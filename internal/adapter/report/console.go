// Package report holds the ReportSink adapters.
package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/ports"
)

// ConsoleSink prints one human-readable line per device-day when detail
// reporting is enabled. Energies print in watt-hours.
type ConsoleSink struct {
	detail bool
	w      io.Writer
	log    *zap.Logger
}

// NewConsoleSink creates a ConsoleSink writing to stdout.
func NewConsoleSink(detail bool, log *zap.Logger) *ConsoleSink {
	return &ConsoleSink{detail: detail, w: os.Stdout, log: log}
}

func (s *ConsoleSink) Report(_ context.Context, rec *domain.DayReport) error {
	if !s.detail {
		return nil
	}
	line := fmt.Sprintf("%s SN%d %.2fWhr generated",
		rec.Date.Format("2006-01-02"), rec.SerialNumber, float64(rec.Result.Generated)/3600)
	if rec.Result.Exceedance != nil {
		line += fmt.Sprintf(", %.2fWhr exceedance", float64(*rec.Result.Exceedance)/3600)
	}
	if rec.Result.Shaved != nil {
		line += fmt.Sprintf(", %.2fWhr shaved", float64(*rec.Result.Shaved)/3600)
	}
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// Fanout delivers every record to each sink in order, stopping at the
// first error.
type Fanout []ports.ReportSink

func (f Fanout) Report(ctx context.Context, rec *domain.DayReport) error {
	for _, sink := range f {
		if err := sink.Report(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
