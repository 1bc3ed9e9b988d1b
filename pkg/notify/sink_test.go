package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/audit"
)

func TestSend_PostsEnvelope(t *testing.T) {
	var received Envelope
	var gotMethod, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewSink(server.URL, nil)
	sink.Send(context.Background(), "device_offline", map[string]string{"name": "srv1"})

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected application/json content type, got %q", gotContentType)
	}
	if received.EventType != "device_offline" {
		t.Errorf("expected event_type device_offline, got %q", received.EventType)
	}
	if received.Timestamp.IsZero() {
		t.Error("expected a non-zero timestamp")
	}
}

func TestSend_NonOKResponseDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewSink(server.URL, nil)
	sink.Send(context.Background(), "device_online", nil)
}

func TestSend_EmptyURLIsNoop(t *testing.T) {
	sink := NewSink("", nil)
	sink.Send(context.Background(), "device_online", nil)
}

func TestSend_UnreachableURLDoesNotBlockPastTimeout(t *testing.T) {
	sink := NewSink("http://127.0.0.1:1", nil)
	start := time.Now()
	sink.Send(context.Background(), "device_online", nil)
	if time.Since(start) > sendTimeout {
		t.Error("expected the connection failure to surface quickly, well under the send timeout")
	}
}

func TestSend_RecordsSuccessfulDeliveryToAuditLog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logPath := filepath.Join(t.TempDir(), "deliveries.jsonl")
	logger, err := audit.NewFileLogger(logPath, audit.RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	sink := NewSink(server.URL, logger)
	sink.Send(context.Background(), "device_offline", nil)

	events, err := logger.Query(audit.Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 delivery log entry, got %d", len(events))
	}
	if !events[0].Success || events[0].StatusCode != http.StatusOK {
		t.Errorf("expected successful delivery record, got %+v", events[0])
	}
}
