package api

import (
	"errors"
	"testing"
)

func TestChatErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *ChatError
		code string
	}{
		{"bad request", NewBadRequestError("bad"), "bad_request:api"},
		{"unauthorized", NewUnauthorizedError(), "unauthorized:chat"},
		{"forbidden", NewForbiddenError(), "forbidden:chat"},
		{"rate limit", NewRateLimitError(), "rate_limit:chat"},
		{"chat not found", NewChatNotFoundError(), "not_found:chat"},
		{"stream not found", NewStreamNotFoundError(), "not_found:stream"},
		{"internal", NewInternalError(""), "internal:api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("expected a non-empty default message")
			}
		})
	}
}

func TestChatErrorAs(t *testing.T) {
	var err error = NewForbiddenError()

	var chatErr *ChatError
	if !errors.As(err, &chatErr) {
		t.Fatal("errors.As failed to unwrap ChatError")
	}
	if chatErr.Kind != KindForbidden {
		t.Errorf("Kind = %q, want %q", chatErr.Kind, KindForbidden)
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []EventType{EventDone, EventError}
	for _, et := range terminal {
		if !IsTerminal(et) {
			t.Errorf("IsTerminal(%q) = false, want true", et)
		}
	}

	nonTerminal := []EventType{EventTextDelta, EventToolCall, EventToolResult, EventStatusNote, EventAppendMessage}
	for _, et := range nonTerminal {
		if IsTerminal(et) {
			t.Errorf("IsTerminal(%q) = true, want false", et)
		}
	}
}
