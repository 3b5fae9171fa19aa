package metrics

import (
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/stats"
)

// StepEvent is one dispatched step of a run.
type StepEvent struct {
	RunID   string
	Variant string
	Record  model.DispatchRecord
	Time    time.Time
}

// RunSummary holds the headline figures of a finished run.
type RunSummary struct {
	RunID       string
	Variant     string
	Steps       int
	FinalSoCKWh float64
	FuelLeftKWh float64
	Load        stats.Load
	Energy      stats.Energy
	Market      *stats.Market
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records simulation results for observability purposes.
type MetricsSink interface {
	RecordStep(ev StepEvent) error
	RecordRun(sum RunSummary) error
}

// Flusher is implemented by sinks that buffer writes.
type Flusher interface {
	Flush() error
}

// Closer is implemented by sinks holding a connection or file. The owner of
// the sink calls Close once it stops recording.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepEvent) error { return nil }
func (NopSink) RecordRun(RunSummary) error { return nil }
