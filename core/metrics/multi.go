package metrics

import (
	"errors"
	"fmt"
)

// MultiSink fans events out to several sinks. Every sink sees every event even
// when an earlier one fails; the failures are joined, each prefixed with the
// sink's position.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) each(fn func(MetricsSink) error) error {
	var errs []error
	for i, s := range m.Sinks {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("sink %d (%T): %w", i, s, err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordStep(ev StepEvent) error {
	return m.each(func(s MetricsSink) error { return s.RecordStep(ev) })
}

func (m *MultiSink) RecordRun(sum RunSummary) error {
	return m.each(func(s MetricsSink) error { return s.RecordRun(sum) })
}

// Flush flushes the sinks that buffer writes.
func (m *MultiSink) Flush() error {
	return m.each(func(s MetricsSink) error {
		if f, ok := s.(Flusher); ok {
			return f.Flush()
		}
		return nil
	})
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() error {
	return m.each(func(s MetricsSink) error {
		if c, ok := s.(Closer); ok {
			return c.Close()
		}
		return nil
	})
}

// RecordFailure counts a failed run on the sinks that track failures.
func (m *MultiSink) RecordFailure(variant string) error {
	return m.each(func(s MetricsSink) error {
		if f, ok := s.(interface{ RecordFailure(string) error }); ok {
			return f.RecordFailure(variant)
		}
		return nil
	})
}
