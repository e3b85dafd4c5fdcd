package eventbus

import (
	"testing"
	"time"
)

func TestMinimalValidate(t *testing.T) {
	evt := AssistantEvent{
		EventID:   NewEventID("evt_", time.Now()),
		Source:    "assistant",
		Type:      TypeCommandReceived,
		Timestamp: time.Now(),
	}
	if !evt.MinimalValidate() {
		t.Error("complete event should validate")
	}

	evt.Source = ""
	if evt.MinimalValidate() {
		t.Error("event without source should not validate")
	}
}

func TestNewEventIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewEventID("evt_", now)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
