package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	coremqtt "github.com/cavusmuhammed68/ICC-IEEE/core/mqtt"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// Message is a payload captured by MockPublisher.
type Message struct {
	Topic   string
	Payload []byte
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Prefix   string
	Messages []Message
	FailRuns map[string]bool
	FailAll  bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailRuns: make(map[string]bool)}
}

// PublishRun records the messages or returns an error if configured to fail.
func (m *MockPublisher) PublishRun(run trace.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll || m.FailRuns[run.ID] {
		return fmt.Errorf("publish failed")
	}
	summary := run
	summary.Records = nil
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, Message{Topic: coremqtt.SummaryTopic(m.Prefix, run.Variant), Payload: payload})
	for _, rec := range run.Records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		m.Messages = append(m.Messages, Message{Topic: coremqtt.StepTopic(m.Prefix, run.Variant, rec.Index), Payload: payload})
	}
	return nil
}

// Topics returns the topics published so far.
func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Topic
	}
	return out
}
