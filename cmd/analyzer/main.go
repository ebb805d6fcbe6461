package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/solarops/inverter-insight/internal/adapter/plot"
	"github.com/solarops/inverter-insight/internal/adapter/queue"
	"github.com/solarops/inverter-insight/internal/adapter/report"
	"github.com/solarops/inverter-insight/internal/adapter/storage/sqldb"
	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/observability/telemetry"
	"github.com/solarops/inverter-insight/internal/ports"
	"github.com/solarops/inverter-insight/internal/service/account"
	"github.com/solarops/inverter-insight/internal/service/analyzer"
	"github.com/solarops/inverter-insight/internal/service/fit"
	"github.com/solarops/inverter-insight/internal/service/quality"
	"github.com/solarops/inverter-insight/internal/service/reconstruct"
	"github.com/solarops/inverter-insight/pkg/config"
)

const (
	serviceName    = "inverter-insight"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Flags and Configuration
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Logger
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatal("Invalid log level:", err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Starting inverter analysis",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	mode, err := domain.ParseStrictnessMode(cfg.Analysis.Mode)
	if err != nil {
		logger.Fatal("Invalid analysis mode", zap.Error(err))
	}
	filter, err := plot.ParseFilter(cfg.Plot.Filter)
	if err != nil {
		logger.Fatal("Invalid plot filter", zap.Error(err))
	}
	start, end, err := parseWindow(cfg.Window)
	if err != nil {
		logger.Fatal("Invalid date window", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Telemetry Database
	db, err := sqldb.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("Failed to connect to telemetry database", zap.Error(err))
	}
	defer db.Close()

	telemetryRepo := sqldb.NewTelemetryRepository(db, cfg.Database.Driver, logger)
	cursor, err := telemetryRepo.StreamProduction(ctx, start, end)
	if err != nil {
		logger.Fatal("Failed to stream inverter production", zap.Error(err))
	}
	defer cursor.Close()

	// 4. Report Sinks
	sinks := report.Fanout{report.NewConsoleSink(cfg.Report.Detail, logger)}
	if cfg.NATS.URL != "" {
		natsSink, err := queue.NewNATSSink(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
	}

	var diagSink ports.DiagnosticSink
	if filter != plot.FilterNone {
		diagSink = plot.NewChartSink(filter, cfg.Plot.FloorWattHours,
			cfg.Analysis.LowCutoffWatts, cfg.Analysis.CeilingWatts,
			cfg.Analysis.CloudThresholdWatts, cfg.Plot.Dir, logger)
	}

	// 5. Analysis Pipeline
	recon := reconstruct.New(cfg.Analysis.CadenceSecs, cursor, logger)
	gate := quality.NewGate(quality.Thresholds{
		MaxStartupWatts:  cfg.Analysis.MaxStartupWatts,
		MaxShutdownWatts: cfg.Analysis.MaxShutdownWatts,
		MinSamples:       cfg.Analysis.MinSamples,
	}, mode, logger)
	fitter := fit.NewFitter(fit.Config{
		LowCutoffWatts:      cfg.Analysis.LowCutoffWatts,
		CloudThresholdWatts: cfg.Analysis.CloudThresholdWatts,
		MinFitPoints:        cfg.Analysis.MinFitPoints,
	}, logger)
	acct := account.NewAccountant(logger)
	service := analyzer.NewService(cfg.Analysis.CeilingWatts, gate, fitter, acct, sinks, diagSink, logger)

	// 6. Run
	summary, err := service.Run(ctx, recon)
	if err != nil {
		logger.Error("Analysis run failed", zap.Error(err))
	}
	summary.Print(os.Stdout)

	// 7. Push metrics (batch job: no scrape endpoint)
	if cfg.Metrics.PushgatewayURL != "" {
		if pushErr := telemetry.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); pushErr != nil {
			logger.Error("Failed to push metrics", zap.Error(pushErr))
		}
	}

	if err != nil {
		os.Exit(1)
	}
	logger.Info("Analysis complete",
		zap.Int("days", summary.Days),
		zap.Int("device_days", summary.DeviceDays),
		zap.Int("errored_days", summary.ErroredDays),
	)
}

// parseWindow converts the configured date strings to an inclusive
// timestamp window covering whole days.
func parseWindow(w config.WindowConfig) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", w.StartDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", w.StartDate, err)
	}
	end, err := time.ParseInLocation("2006-01-02", w.EndDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", w.EndDate, err)
	}
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %q before start date %q", w.EndDate, w.StartDate)
	}
	return start, end, nil
}
