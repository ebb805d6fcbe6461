// Package analyzer drives the per-device-day pipeline: quality gate, robust
// envelope fit, energy accounting, and emission to the report and
// diagnostic sinks. Failures are contained at the device-day boundary; the
// run continues across devices and days.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/observability/telemetry"
	"github.com/solarops/inverter-insight/internal/ports"
	"github.com/solarops/inverter-insight/internal/service/account"
	"github.com/solarops/inverter-insight/internal/service/fit"
	"github.com/solarops/inverter-insight/internal/service/quality"
)

// DaySource produces reconstructed day batches until exhausted, then
// returns (nil, nil).
type DaySource interface {
	NextDay() (*domain.DayBatch, error)
}

// Service analyzes device-days end to end.
type Service struct {
	ceiling int64
	gate    *quality.Gate
	fitter  *fit.Fitter
	acct    *account.Accountant
	report  ports.ReportSink
	diag    ports.DiagnosticSink // nil disables diagnostics
	log     *zap.Logger
}

// NewService wires the analysis pipeline. diag may be nil, which also
// enables the no-exceedance short-circuit: days where no sample reached
// the ceiling skip the fit entirely, since exceedance and shaved are
// absent by the presence laws anyway.
func NewService(ceilingWatts int64, gate *quality.Gate, fitter *fit.Fitter, acct *account.Accountant, report ports.ReportSink, diag ports.DiagnosticSink, log *zap.Logger) *Service {
	return &Service{
		ceiling: ceilingWatts,
		gate:    gate,
		fitter:  fitter,
		acct:    acct,
		report:  report,
		diag:    diag,
		log:     log,
	}
}

// AnalyzeDay runs one device-day through gate, fit, and accounting. It
// always returns a usable report: on any per-day failure the report
// carries generated energy only. The returned error is the per-day
// failure cause when the full analysis could not run (undefined fit,
// diagnostic sink I/O); quality failures are not errors.
func (s *Service) AnalyzeDay(ctx context.Context, day *domain.DeviceDay) (*domain.DayReport, error) {
	rec := &domain.DayReport{Date: day.Date, SerialNumber: day.SerialNumber}
	rec.Result.Generated = s.acct.Generated(day.Samples)
	if len(day.Samples) == 0 {
		return rec, errors.New("empty sample series")
	}

	gateFailure := s.gate.Check(day)
	if gateFailure != nil {
		telemetry.QualityFailures.WithLabelValues(string(gateFailure.Reason)).Inc()
		if s.gate.Enforced() {
			return rec, nil
		}
	}

	if account.ClippedCount(day.Samples, s.ceiling) == 0 && s.diag == nil {
		// Nothing reached the ceiling: exceedance and shaved are absent by
		// the presence laws, and no chart wants the fit.
		return rec, nil
	}

	passes, err := s.fitter.Fit(day, s.ceiling, s.mode())
	if err != nil {
		if qf, ok := domain.AsQualityFailure(err); ok {
			telemetry.QualityFailures.WithLabelValues(string(qf.Reason)).Inc()
			return rec, nil
		}
		if errors.Is(err, domain.ErrFitUndefined) {
			telemetry.FitErrors.Inc()
		}
		return rec, err
	}

	rec.Result = s.acct.Account(day, s.ceiling, passes.Final)

	if s.diag != nil {
		diag := &domain.DayDiagnostics{
			Day:        *day,
			CloudPass1: passes.CloudPass1,
			CloudPass2: passes.CloudPass2,
			Fit:        passes.Final,
			Classes:    passes.Classes,
			GatePassed: gateFailure == nil,
			TooCloudy:  passes.TooCloudy,
			Result:     rec.Result,
		}
		if err := s.diag.Render(ctx, diag); err != nil {
			return rec, fmt.Errorf("diagnostic sink: %w", err)
		}
	}
	return rec, nil
}

func (s *Service) mode() domain.StrictnessMode {
	if s.gate.Enforced() {
		return domain.ModeGated
	}
	return domain.ModeForced
}

// Run pulls day batches from the source until exhaustion, analyzing each
// device within a day in serial-number order so the report stream is
// deterministic. Per-day failures are logged and counted; only source or
// report sink I/O errors abort the run.
func (s *Service) Run(ctx context.Context, source DaySource) (*Summary, error) {
	summary := NewSummary()
	for {
		batch, err := source.NextDay()
		if err != nil {
			return summary, fmt.Errorf("telemetry stream: %w", err)
		}
		if batch == nil {
			return summary, nil
		}
		telemetry.DaysProcessed.Inc()
		summary.Days++

		serials := make([]int64, 0, len(batch.Series))
		for sn := range batch.Series {
			serials = append(serials, sn)
		}
		sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })

		for _, sn := range serials {
			day := &domain.DeviceDay{Date: batch.Date, SerialNumber: sn, Samples: batch.Series[sn]}
			rec, err := s.AnalyzeDay(ctx, day)
			if err != nil {
				summary.ErroredDays++
				s.log.Error("device-day analysis failed",
					zap.Time("date", day.Date),
					zap.Int64("serial_number", sn),
					zap.Error(err),
				)
			}

			telemetry.DeviceDaysProcessed.Inc()
			telemetry.GeneratedWattHours.Add(float64(rec.Result.Generated) / 3600)
			if rec.Result.Exceedance != nil {
				telemetry.ExceedanceWattHours.Add(float64(*rec.Result.Exceedance) / 3600)
			}
			if rec.Result.Shaved != nil {
				telemetry.ShavedWattHours.Add(float64(*rec.Result.Shaved) / 3600)
			}

			summary.Add(rec)
			if err := s.report.Report(ctx, rec); err != nil {
				return summary, fmt.Errorf("report sink: %w", err)
			}
		}
	}
}
