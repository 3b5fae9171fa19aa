// Package kpi archives the daily energy mix of each dispatch variant in
// SQLite so eco KPIs survive restarts.
package kpi

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS energy_mix (
	variant   TEXT NOT NULL,
	day       TEXT NOT NULL,
	renewable REAL NOT NULL DEFAULT 0,
	battery   REAL NOT NULL DEFAULT 0,
	fuel_cell REAL NOT NULL DEFAULT 0,
	grid      REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (variant, day)
)`

	upsertSQL = `INSERT INTO energy_mix (variant, day, renewable, battery, fuel_cell, grid)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (variant, day) DO UPDATE SET
	renewable = renewable + excluded.renewable,
	battery   = battery + excluded.battery,
	fuel_cell = fuel_cell + excluded.fuel_cell,
	grid      = grid + excluded.grid`

	rangeSQL = `SELECT day, renewable, battery, fuel_cell, grid FROM energy_mix
WHERE variant = ? AND day BETWEEN ? AND ? ORDER BY day`
)

// SQLiteStore is an eco.Store backed by a SQLite file. Days are stored as
// ISO dates so range scans sort lexically.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open kpi db: %w", err)
	}
	// modernc serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kpi schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(r eco.Record) error {
	_, err := s.db.Exec(upsertSQL, r.Variant, eco.Day(r.Date).Format(time.DateOnly),
		r.RenewableKWh, r.BatteryKWh, r.FuelCellKWh, r.GridKWh)
	if err != nil {
		return fmt.Errorf("kpi add %s: %w", r.Variant, err)
	}
	return nil
}

func (s *SQLiteStore) Query(variant string, start, end time.Time) ([]eco.Record, error) {
	start, end, err := eco.DayRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(rangeSQL, variant, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("kpi query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []eco.Record
	for rows.Next() {
		r := eco.Record{Variant: variant}
		var day string
		if err := rows.Scan(&day, &r.RenewableKWh, &r.BatteryKWh, &r.FuelCellKWh, &r.GridKWh); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(time.DateOnly, day); err != nil {
			return nil, fmt.Errorf("kpi day %q: %w", day, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
