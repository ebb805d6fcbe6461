package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
	"github.com/solarops/inverter-insight/internal/ports"
)

// Table and column names match the capture tool's schema. Rows exist only
// when an inverter's reported watts changed.
const productionQuery = `SELECT LastReportDate, SerialNumber, Watts ` +
	`FROM APIV1ProductionInverters ` +
	`WHERE LastReportDate BETWEEN ? AND ? ` +
	`ORDER BY LastReportDate, SerialNumber`

type TelemetryRepository struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
}

// NewTelemetryRepository creates the production-stream repository. driver
// is the same value passed to Open; it selects the placeholder style.
func NewTelemetryRepository(db *sql.DB, driver string, log *zap.Logger) ports.TelemetryRepository {
	return &TelemetryRepository{db: db, driver: strings.ToLower(driver), log: log}
}

// StreamProduction opens a forward-only cursor over the date window,
// ordered by report time then serial number. The caller owns Close.
func (r *TelemetryRepository) StreamProduction(ctx context.Context, start, end time.Time) (ports.ReadingCursor, error) {
	query := productionQuery
	if r.driver == "postgres" {
		query = strings.Replace(query, "?", "$1", 1)
		query = strings.Replace(query, "?", "$2", 1)
	}

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query inverter production: %w", err)
	}
	r.log.Info("Streaming inverter production",
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return &rowCursor{rows: rows}, nil
}

type rowCursor struct {
	rows *sql.Rows
}

func (c *rowCursor) Next() (*domain.Reading, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read production row: %w", err)
		}
		return nil, nil
	}
	var reading domain.Reading
	if err := c.rows.Scan(&reading.ReportedAt, &reading.SerialNumber, &reading.Watts); err != nil {
		return nil, fmt.Errorf("failed to scan production row: %w", err)
	}
	return &reading, nil
}

func (c *rowCursor) Close() error {
	return c.rows.Close()
}
