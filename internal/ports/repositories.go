package ports

import (
	"context"
	"time"

	"github.com/solarops/inverter-insight/internal/domain"
)

// ReadingCursor streams telemetry rows ordered by report time, then by
// serial number within one timestamp. Next returns (nil, nil) once the
// stream is exhausted. Each Next may block on upstream I/O.
type ReadingCursor interface {
	Next() (*domain.Reading, error)
	Close() error
}

// TelemetryRepository supplies the deduplicated production stream for a
// date window.
type TelemetryRepository interface {
	StreamProduction(ctx context.Context, start, end time.Time) (ReadingCursor, error)
}
