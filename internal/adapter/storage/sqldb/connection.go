// Package sqldb is the TelemetryStore adapter: it streams the deduplicated
// inverter production table from PostgreSQL, MySQL/MariaDB, or SQLite.
package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	// Database drivers registered by side effect.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// driverNames maps config driver values to registered sql drivers.
var driverNames = map[string]string{
	"postgres": "postgres",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// Open connects to the telemetry database and verifies the connection.
// For MySQL the DSN must carry parseTime=true so timestamps scan into
// time.Time.
func Open(driver, dsn string, log *zap.Logger) (*sql.DB, error) {
	name, ok := driverNames[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q (want postgres, mysql, or sqlite)", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The analyzer holds a single streaming cursor; a pool buys nothing.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	log.Info("Successfully connected to telemetry database", zap.String("driver", name))
	return db, nil
}
