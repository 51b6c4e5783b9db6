// Package sqlstore persists calibrations and measurements with sqlx on
// PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically on both engines.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS calibrations (
	id                  TEXT NOT NULL,
	cultivar_id         TEXT NOT NULL,
	region_id           TEXT NOT NULL,
	season_year         INTEGER NOT NULL,
	sample_count        INTEGER NOT NULL DEFAULT 0,
	mean_offset         DOUBLE PRECISION NOT NULL DEFAULT 0,
	m2                  DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_offset          DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_offset          DOUBLE PRECISION NOT NULL DEFAULT 0,
	mae_before          DOUBLE PRECISION NOT NULL DEFAULT 0,
	mae_after           DOUBLE PRECISION NOT NULL DEFAULT 0,
	improvement_pct     DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence_boost    DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_samples_applied INTEGER NOT NULL DEFAULT 0,
	active              BOOLEAN NOT NULL DEFAULT TRUE,
	last_measurement_at TEXT NOT NULL DEFAULT '',
	last_computed_at    TEXT NOT NULL DEFAULT '',
	version             BIGINT NOT NULL DEFAULT 1,
	PRIMARY KEY (cultivar_id, region_id, season_year)
);

CREATE TABLE IF NOT EXISTS measurements (
	id          TEXT PRIMARY KEY,
	cultivar_id TEXT NOT NULL,
	region_id   TEXT NOT NULL,
	season_year INTEGER NOT NULL,
	predicted   DOUBLE PRECISION NOT NULL,
	actual      DOUBLE PRECISION NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	measured_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_measurements_key
	ON measurements (cultivar_id, region_id, season_year, measured_at);
`

// Open connects to the database. SQLite is limited to one connection and
// runs in WAL mode.
func Open(driver, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
		maxOpenConns = 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

// Migrate creates the tables if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
