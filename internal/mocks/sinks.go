package mocks

import (
	"context"

	"github.com/solarops/inverter-insight/internal/domain"
)

// MockReportSink is a mock implementation of ReportSink. Records are
// collected in order unless ReportFunc overrides the behavior.
type MockReportSink struct {
	ReportFunc func(ctx context.Context, rec *domain.DayReport) error
	Records    []*domain.DayReport
}

func (m *MockReportSink) Report(ctx context.Context, rec *domain.DayReport) error {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, rec)
	}
	m.Records = append(m.Records, rec)
	return nil
}

// MockDiagnosticSink is a mock implementation of DiagnosticSink.
type MockDiagnosticSink struct {
	RenderFunc func(ctx context.Context, diag *domain.DayDiagnostics) error
	Rendered   []*domain.DayDiagnostics
}

func (m *MockDiagnosticSink) Render(ctx context.Context, diag *domain.DayDiagnostics) error {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, diag)
	}
	m.Rendered = append(m.Rendered, diag)
	return nil
}
