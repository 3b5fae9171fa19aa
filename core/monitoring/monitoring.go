// Package monitoring forwards unexpected failures to an error tracker. The
// default implementation discards everything.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Monitor reports errors to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor drops every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the process-wide monitor. Nil is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	get().CaptureException(err, tags)
}

// Flush waits up to d for buffered reports to be sent.
func Flush(d time.Duration) {
	get().Flush(d)
}

// Track runs fn and reports its error tagged with the operation name. A panic
// in fn becomes an error. Interrupted operations (context.Canceled) are
// returned but not reported.
func Track(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			CaptureException(err, map[string]string{"operation": op})
		}
	}()
	return fn()
}
