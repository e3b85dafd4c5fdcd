package eventbus

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Event types published on the assistant bus.
const (
	TypeCommandReceived = "command_received"
	TypeIntentResolved  = "intent_resolved"
	TypeTaskStarted     = "task_started"
	TypeTaskFinished    = "task_finished"
	TypeResponseSpoken  = "response_spoken"
	TypeReminder        = "reminder"
)

// AssistantEvent is the uniform event envelope used across the assistant.
type AssistantEvent struct {
	EventID   string       `json:"event_id"`
	Source    string       `json:"source"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Context   EventContext `json:"context"`
	Payload   EventPayload `json:"payload"`
}

type EventContext struct {
	Channel   string `json:"channel,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type EventPayload struct {
	Text     string                 `json:"text,omitempty"`
	Intent   string                 `json:"intent,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEventID generates a compact unique event id with a date prefix.
func NewEventID(prefix string, t time.Time) string {
	// 8 random bytes -> 16 hex chars
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return prefix + t.UTC().Format("20060102") + "_" + hex.EncodeToString(b)
}

// MinimalValidate checks required fields.
func (e *AssistantEvent) MinimalValidate() bool {
	return e.EventID != "" && e.Source != "" && e.Type != "" && !e.Timestamp.IsZero()
}
