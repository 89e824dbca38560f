package event_test

import (
	"testing"

	"skillexchange-service/internal/event"
	"skillexchange-service/internal/services"
)

// The consumer talks to the skill service through StatsKeeper, keeping the
// event package free of a services import.
var _ event.StatsKeeper = (*services.SkillService)(nil)

func TestDisabledConsumer(t *testing.T) {
	consumer, err := event.NewEventConsumer("", "", nil)
	if err != nil {
		t.Fatalf("NewEventConsumer with empty URI returned error: %v", err)
	}

	if err := consumer.Start(); err != nil {
		t.Errorf("Start on disabled consumer returned %v, want nil", err)
	}

	if err := consumer.Close(); err != nil {
		t.Errorf("first Close returned %v, want nil", err)
	}
	if err := consumer.Close(); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}
}
