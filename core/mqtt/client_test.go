package mqtt

import "testing"

func TestTopics(t *testing.T) {
	if got := SummaryTopic("site/a/", "market"); got != "site/a/market/summary" {
		t.Fatalf("summary topic: %s", got)
	}
	if got := StepTopic("", "recovery", 7); got != "microgrid/recovery/steps/7" {
		t.Fatalf("step topic: %s", got)
	}
}
