package monitoring

import (
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/cavusmuhammed68/ICC-IEEE/config"
	coremon "github.com/cavusmuhammed68/ICC-IEEE/core/monitoring"
)

// NewSentryMonitor returns a Monitor reporting to the project behind
// cfg.DSN. An empty DSN disables reporting.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	return newSentryMonitor(cfg, nil)
}

func newSentryMonitor(cfg config.SentryConfig, beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	release := cfg.Release
	if release == "" {
		release = buildVersion()
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: cfg.TracesSampleRate,
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return nil, err
	}
	scope := sentry.NewScope()
	scope.SetTag("service", cfg.ServiceName)
	return &sentryMonitor{hub: sentry.NewHub(client, scope)}, nil
}

// buildVersion reports the main module version stamped by the go tool, or
// "devel" for local builds.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "devel"
}

// sentryMonitor reports through its own hub instead of the global one.
type sentryMonitor struct {
	hub *sentry.Hub
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		// Group failures per operation rather than per stack alone.
		if op, ok := tags["operation"]; ok {
			scope.SetFingerprint([]string{"{{ default }}", op})
		}
		s.hub.CaptureException(err)
	})
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
