package event

import (
	"testing"

	"skillexchange-service/internal/models"
)

func TestNilPublisherIsDisabled(t *testing.T) {
	// A failed RabbitMQ setup leaves a nil *EventPublisher wired into the
	// services. Publishing through it must be a no-op, never a panic.
	var underlying *EventPublisher
	var pub Publisher = underlying

	if err := pub.PublishProfileEvent(&models.ProfileEvent{EventType: models.EventTypeProfileCreated}); err != nil {
		t.Errorf("PublishProfileEvent on nil publisher returned %v, want nil", err)
	}
	if err := pub.PublishSearchEvent(&models.SearchEvent{EventType: models.EventTypeSearchPerformed}); err != nil {
		t.Errorf("PublishSearchEvent on nil publisher returned %v, want nil", err)
	}
	if err := pub.PublishStatsRecompute(&models.StatsRecomputeEvent{EventType: models.EventTypeStatsRecomputeAsked}); err != nil {
		t.Errorf("PublishStatsRecompute on nil publisher returned %v, want nil", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Close on nil publisher returned %v, want nil", err)
	}
}

func TestDisabledPublisher(t *testing.T) {
	pub, err := NewEventPublisher("")
	if err != nil {
		t.Fatalf("NewEventPublisher(\"\") returned error: %v", err)
	}

	event := &models.ProfileEvent{
		EventType: models.EventTypeProfileUpdated,
		UserID:    "user-1",
	}
	if err := pub.PublishProfileEvent(event); err != nil {
		t.Errorf("publish on disabled publisher returned %v, want nil", err)
	}

	if err := pub.Close(); err != nil {
		t.Errorf("first Close returned %v, want nil", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}
}
