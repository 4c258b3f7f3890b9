// Package events publishes user activity of the portal to a message topic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "thesis-review-portal"
	EventVersion = "1.0"
)

// Event types
const (
	EventTypeUserLoggedIn    = "user.logged_in"
	EventTypeUserRegistered  = "user.registered"
	EventTypeUserLoggedOut   = "user.logged_out"
	EventTypeThesisSubmitted = "thesis.submitted"
	EventTypeReviewSubmitted = "review.submitted"
	EventTypeThesisAssigned  = "thesis.assigned"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func NewEvent(eventType string, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher delivers events. Publish failures are the caller's to log; they
// never undo the user action that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
