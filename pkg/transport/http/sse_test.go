package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

func TestWriteEventSSEFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := newSSEEventWriter(rec)

	event := api.PipelineEvent{
		Type:  api.EventTextDelta,
		Seq:   1,
		Delta: "Hello",
	}

	if err := ew.WriteEvent(context.Background(), event); err != nil {
		t.Fatalf("WriteEvent error: %v", err)
	}

	body := rec.Body.String()

	// Check SSE format: event: {type}\ndata: {json}\n\n
	if !strings.Contains(body, "event: text-delta\n") {
		t.Errorf("missing event type line in:\n%s", body)
	}
	if !strings.Contains(body, "data: ") {
		t.Errorf("missing data line in:\n%s", body)
	}

	// Extract and parse the JSON data.
	lines := strings.Split(body, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "data: ") {
			jsonStr := strings.TrimPrefix(line, "data: ")
			var got api.PipelineEvent
			if err := json.Unmarshal([]byte(jsonStr), &got); err != nil {
				t.Fatalf("failed to parse event JSON: %v", err)
			}
			if got.Type != api.EventTextDelta {
				t.Errorf("event type = %q, want %q", got.Type, api.EventTextDelta)
			}
			if got.Delta != "Hello" {
				t.Errorf("delta = %q, want %q", got.Delta, "Hello")
			}
		}
	}
}

func TestWriteEventSSEHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := newSSEEventWriter(rec)

	ew.WriteEvent(context.Background(), api.PipelineEvent{Type: api.EventStatusNote, Seq: 1})

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/event-stream")
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want %q", cc, "no-cache")
	}
	if conn := rec.Header().Get("Connection"); conn != "keep-alive" {
		t.Errorf("Connection = %q, want %q", conn, "keep-alive")
	}
}

func TestWriteEventTerminalSendsDone(t *testing.T) {
	tests := []struct {
		name      string
		eventType api.EventType
	}{
		{"done", api.EventDone},
		{"error", api.EventError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ew := newSSEEventWriter(rec)

			if err := ew.WriteEvent(context.Background(), api.PipelineEvent{Type: tt.eventType, Seq: 1}); err != nil {
				t.Fatalf("WriteEvent error: %v", err)
			}

			body := rec.Body.String()
			if !strings.Contains(body, "data: [DONE]\n") {
				t.Errorf("missing [DONE] sentinel in:\n%s", body)
			}
		})
	}
}

func TestWriteEventAfterTerminalReturnsError(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := newSSEEventWriter(rec)

	ew.WriteEvent(context.Background(), api.PipelineEvent{Type: api.EventDone, Seq: 1})

	err := ew.WriteEvent(context.Background(), api.PipelineEvent{
		Type:  api.EventTextDelta,
		Delta: "should fail",
	})
	if err == nil {
		t.Error("expected error after terminal event, got nil")
	}
}

func TestNonTerminalEventsKeepStreamOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	ew := newSSEEventWriter(rec)

	for i, e := range []api.PipelineEvent{
		{Type: api.EventStatusNote, Seq: 1, Note: "Searching for relevant information..."},
		{Type: api.EventToolCall, Seq: 2, ToolName: "get_weather", ToolCallID: "call-1"},
		{Type: api.EventToolResult, Seq: 3, ToolCallID: "call-1", Result: "{}"},
		{Type: api.EventTextDelta, Seq: 4, Delta: "sunny "},
	} {
		if err := ew.WriteEvent(context.Background(), e); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}

	if strings.Contains(rec.Body.String(), "[DONE]") {
		t.Error("[DONE] sent before a terminal event")
	}
	if !ew.hasStartedStreaming() {
		t.Error("hasStartedStreaming = false after events written")
	}
}
