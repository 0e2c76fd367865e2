package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// EventType names a webhook event. The set is closed so that subscription
// matching stays exhaustive; unknown strings are rejected at registration.
type EventType string

const (
	EventCreditsChanged EventType = "credits.changed"
	EventStreamStarted  EventType = "stream.started"
	EventStreamStopped  EventType = "stream.stopped"
)

// Valid reports whether e is a recognized event type.
func (e EventType) Valid() bool {
	switch e {
	case EventCreditsChanged, EventStreamStarted, EventStreamStopped:
		return true
	}
	return false
}

// ParseEventTypes validates a list of raw event names into typed values.
// Duplicates are collapsed.
func ParseEventTypes(raw []string) ([]EventType, bool) {
	seen := make(map[EventType]struct{}, len(raw))
	out := make([]EventType, 0, len(raw))
	for _, r := range raw {
		e := EventType(r)
		if !e.Valid() {
			return nil, false
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out, true
}

// WebhookEndpoint is a subscriber-owned callback URL. Secret is generated once
// at registration, returned once, and never exposed again (json:"-").
type WebhookEndpoint struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	URL             string      `gorm:"type:varchar(500);not null" json:"url" validate:"required,url,max=500"`
	Secret          string      `gorm:"type:varchar(64);not null" json:"-"`
	Events          []EventType `gorm:"serializer:json;type:text" json:"events"`
	Active          bool        `gorm:"not null;default:true;index" json:"active"`
	LastTriggeredAt *time.Time  `gorm:"type:timestamp;default:null" json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (w *WebhookEndpoint) Validate() error {
	v := validator.New()

	return v.Struct(w)
}

// SubscribedTo reports whether the endpoint wants deliveries for the event.
func (w *WebhookEndpoint) SubscribedTo(event EventType) bool {
	for _, e := range w.Events {
		if e == event {
			return true
		}
	}
	return false
}
