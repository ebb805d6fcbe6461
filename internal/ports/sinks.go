package ports

import (
	"context"

	"github.com/solarops/inverter-insight/internal/domain"
)

// ReportSink consumes one energy record per analyzed device-day, in stream
// order (by date, then serial number).
type ReportSink interface {
	Report(ctx context.Context, rec *domain.DayReport) error
}

// DiagnosticSink consumes fit artifacts for visual inspection. Rendering
// never affects the returned energy figures; sinks apply their own
// selection policy and may silently skip a day.
type DiagnosticSink interface {
	Render(ctx context.Context, diag *domain.DayDiagnostics) error
}
