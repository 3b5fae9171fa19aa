// Package trace persists completed dispatch runs as an audit log. Stored runs
// are exported for inspection only; simulations never read them back.
package trace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
)

// RunRecord captures one dispatch run and its headline figures.
type RunRecord struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Variant   string                 `json:"variant"`
	Steps     int                    `json:"steps"`
	FinalSoC  float64                `json:"final_soc_kwh"`
	FuelLeft  float64                `json:"fuel_cell_energy_kwh"`
	Load      stats.Load             `json:"load"`
	Energy    stats.Energy           `json:"energy"`
	Market    *stats.Market          `json:"market,omitempty"`
	Records   []model.DispatchRecord `json:"records,omitempty"`
}

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Query defines filters for retrieving runs.
type Query struct {
	Start   time.Time
	End     time.Time
	Variant string
	ID      string
}

// Match reports whether r passes every filter set in q.
func (q Query) Match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Variant != "" && r.Variant != q.Variant {
		return false
	}
	if q.ID != "" && r.ID != q.ID {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                      { return nil }
