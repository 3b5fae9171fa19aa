package logger

import (
	"sync"

	corelogger "github.com/cavusmuhammed68/ICC-IEEE/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

var (
	mu       sync.RWMutex
	defaults Options
)

// SetDefaultOptions changes the options used by New.
func SetDefaultOptions(opts Options) {
	mu.Lock()
	defaults = opts
	mu.Unlock()
}

// New returns a Logger for the given component. The output format is chosen
// from the APP_ENV variable and the level from the default options, then
// LOG_LEVEL (default info).
func New(component string) Logger {
	mu.RLock()
	opts := defaults
	mu.RUnlock()
	return NewZerologLogger(component, opts)
}
