package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count   int
	flushed bool
	err     error
}

func (r *recordSink) RecordStep(StepEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordRun(RunSummary) error {
	r.count++
	return nil
}

func (r *recordSink) Flush() error {
	r.flushed = true
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	if err := m.RecordStep(StepEvent{}); err != nil {
		t.Fatalf("record step: %v", err)
	}
	if err := m.RecordRun(RunSummary{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !s1.flushed || !s2.flushed {
		t.Fatalf("flush not forwarded")
	}
}

type failureSink struct {
	recordSink
	failures []string
}

func (f *failureSink) RecordFailure(variant string) error {
	f.failures = append(f.failures, variant)
	return nil
}

func TestMultiSinkRecordFailure(t *testing.T) {
	f := &failureSink{}
	m := NewMultiSink(&recordSink{}, f)
	if err := m.RecordFailure("market"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if len(f.failures) != 1 || f.failures[0] != "market" {
		t.Fatalf("expected one market failure, got %v", f.failures)
	}
}

func TestMultiSinkContinuesAfterError(t *testing.T) {
	down := errors.New("influx down")
	bad := &recordSink{err: down}
	good := &recordSink{}
	m := NewMultiSink(bad, good)

	err := m.RecordStep(StepEvent{})
	if !errors.Is(err, down) {
		t.Fatalf("expected joined sink error, got %v", err)
	}
	if good.count != 1 {
		t.Fatalf("healthy sink skipped after failure")
	}
	if err := m.RecordRun(RunSummary{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
}

type closingSink struct {
	recordSink
	closed int
}

func (c *closingSink) Close() error {
	c.closed++
	return nil
}

func TestMultiSinkClose(t *testing.T) {
	a, b := &closingSink{}, &closingSink{}
	m := NewMultiSink(a, &recordSink{}, b)
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if a.closed != 1 || b.closed != 1 {
		t.Fatalf("close not forwarded: %d %d", a.closed, b.closed)
	}
}
