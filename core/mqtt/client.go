package mqtt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "microgrid"

// ErrNotConnected is returned when publishing on a closed connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher represents an MQTT client capable of broadcasting finished
// dispatch runs.
type Publisher interface {
	// PublishRun sends the run summary followed by one message per step.
	PublishRun(run trace.RunRecord) error
}

// SummaryTopic returns the topic carrying the summary of a variant's runs.
func SummaryTopic(prefix, variant string) string {
	return fmt.Sprintf("%s/%s/summary", trimPrefix(prefix), variant)
}

// StepTopic returns the topic of a single dispatch step.
func StepTopic(prefix, variant string, index int) string {
	return fmt.Sprintf("%s/%s/steps/%d", trimPrefix(prefix), variant, index)
}

func trimPrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return DefaultTopicPrefix
	}
	return prefix
}
