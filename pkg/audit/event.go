// Package audit provides a rotating delivery log for outbound webhook
// notifications, so a later "did my webhook fire for X" question can be
// answered without re-deriving it from the poll cycle that produced it.
package audit

import (
	"fmt"
	"time"
)

// Event represents one attempted delivery of a notification envelope to
// the configured webhook endpoint.
type Event struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	EventType  string        `json:"event_type"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Filter defines criteria for querying delivery events
type Filter struct {
	EventType   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new delivery event for the given notification type and
// destination URL.
func NewEvent(eventType, url string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		EventType: eventType,
		URL:       url,
	}
}

// WithStatusCode records the HTTP status code returned by the webhook endpoint.
func (e *Event) WithStatusCode(code int) *Event {
	e.StatusCode = code
	return e
}

// WithSuccess marks the delivery as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the delivery as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets how long the delivery attempt took.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
