// Package notify posts detected events to a configured webhook URL.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/audit"
	"github.com/fleetwatch/fleetwatch/pkg/util"
)

const sendTimeout = 10 * time.Second

// Envelope is the fixed wire shape every webhook POST carries, regardless
// of event type.
type Envelope struct {
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sink posts event envelopes to a single webhook URL over plain HTTP. A
// failed or non-2xx delivery is logged and recorded to the delivery log;
// it is never retried, since the next poll cycle will re-derive the event
// if the condition persists.
type Sink struct {
	url    string
	client *http.Client
	log    audit.Logger
}

// NewSink returns a Sink posting to url. log may be nil to skip delivery
// logging.
func NewSink(url string, log audit.Logger) *Sink {
	return &Sink{
		url:    url,
		client: &http.Client{Timeout: sendTimeout},
		log:    log,
	}
}

// Send POSTs one event envelope. The call does not return an error to its
// caller beyond what's already been logged: a dropped notification should
// never stall or abort the poll cycle that produced it.
func (s *Sink) Send(ctx context.Context, eventType string, data interface{}) {
	if s == nil || s.url == "" {
		return
	}

	start := time.Now()
	body, err := json.Marshal(Envelope{EventType: eventType, Timestamp: start, Data: data})
	if err != nil {
		util.WithField("event_type", eventType).Errorf("marshal webhook payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		util.WithField("event_type", eventType).Errorf("build webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	event := audit.NewEvent(eventType, s.url)
	resp, err := s.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		util.WithField("event_type", eventType).Warnf("webhook delivery failed: %v", err)
		s.record(event.WithError(err).WithDuration(duration))
		return
	}
	defer resp.Body.Close()

	event = event.WithStatusCode(resp.StatusCode).WithDuration(duration)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("non-2xx response: %d", resp.StatusCode)
		util.WithField("event_type", eventType).Warnf("webhook delivery failed: %v", err)
		s.record(event.WithError(err))
		return
	}

	s.record(event.WithSuccess())
}

func (s *Sink) record(event *audit.Event) {
	if s.log == nil {
		return
	}
	if err := s.log.Log(event); err != nil {
		util.WithField("event_type", event.EventType).Warnf("record delivery log entry: %v", err)
	}
}
