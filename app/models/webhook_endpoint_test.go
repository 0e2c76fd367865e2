package models

import "testing"

func TestEventTypeValid(t *testing.T) {
	for _, e := range []EventType{EventCreditsChanged, EventStreamStarted, EventStreamStopped} {
		if !e.Valid() {
			t.Fatalf("expected %q to be a valid event type", e)
		}
	}
	for _, e := range []EventType{"", "credits_changed", "stream.created", "account.deleted"} {
		if e.Valid() {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestParseEventTypes(t *testing.T) {
	events, ok := ParseEventTypes([]string{"credits.changed", "stream.started", "credits.changed"})
	if !ok {
		t.Fatal("expected valid event list to parse")
	}
	if len(events) != 2 {
		t.Fatalf("expected duplicates collapsed, got %d events", len(events))
	}

	if _, ok := ParseEventTypes([]string{"credits.changed", "bogus"}); ok {
		t.Fatal("expected unknown event to be rejected")
	}
}

func TestSubscribedTo(t *testing.T) {
	w := WebhookEndpoint{Events: []EventType{EventStreamStarted}}
	if !w.SubscribedTo(EventStreamStarted) {
		t.Fatal("expected subscription match")
	}
	if w.SubscribedTo(EventCreditsChanged) {
		t.Fatal("expected no match for unsubscribed event")
	}
}
