package mocks

import (
	"context"
	"time"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/ports"
)

// MockReadingCursor is a mock implementation of ReadingCursor.
type MockReadingCursor struct {
	NextFunc  func() (*domain.Reading, error)
	CloseFunc func() error
}

func (m *MockReadingCursor) Next() (*domain.Reading, error) {
	if m.NextFunc != nil {
		return m.NextFunc()
	}
	return nil, nil
}

func (m *MockReadingCursor) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// NewSliceCursor returns a cursor that replays the given readings in order
// and then reports exhaustion.
func NewSliceCursor(readings []domain.Reading) *MockReadingCursor {
	i := 0
	return &MockReadingCursor{
		NextFunc: func() (*domain.Reading, error) {
			if i >= len(readings) {
				return nil, nil
			}
			r := readings[i]
			i++
			return &r, nil
		},
	}
}

// MockTelemetryRepository is a mock implementation of TelemetryRepository.
type MockTelemetryRepository struct {
	StreamProductionFunc func(ctx context.Context, start, end time.Time) (ports.ReadingCursor, error)
}

func (m *MockTelemetryRepository) StreamProduction(ctx context.Context, start, end time.Time) (ports.ReadingCursor, error) {
	if m.StreamProductionFunc != nil {
		return m.StreamProductionFunc(ctx, start, end)
	}
	return &MockReadingCursor{}, nil
}
