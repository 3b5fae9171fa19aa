package events

import (
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
)

// Kind identifies a run lifecycle stage.
type Kind string

const (
	RunStarted   Kind = "started"
	RunCompleted Kind = "completed"
	RunFailed    Kind = "failed"
)

// RunEvent is published for every stage of a dispatch run.
type RunEvent struct {
	Kind    Kind                `json:"kind"`
	RunID   string              `json:"run_id"`
	Variant string              `json:"variant"`
	Summary *metrics.RunSummary `json:"summary,omitempty"`
	Err     string              `json:"error,omitempty"`
	Time    time.Time           `json:"time"`
}
