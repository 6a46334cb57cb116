package api

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func validRequest() *CreateTurnRequest {
	return &CreateTurnRequest{
		ID: uuid.NewString(),
		Message: IncomingMessage{
			ID:    uuid.NewString(),
			Parts: []Part{TextPart("hello")},
		},
		SelectedModel: "chat-model",
		Visibility:    VisibilityPrivate,
	}
}

func TestValidateCreateTurn_Valid(t *testing.T) {
	if err := ValidateCreateTurn(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := validRequest()
	req.SearchCategory = "github"
	if err := ValidateCreateTurn(req); err != nil {
		t.Fatalf("unexpected error with search category: %v", err)
	}
}

func TestValidateCreateTurn_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTurnRequest)
	}{
		{"bad chat id", func(r *CreateTurnRequest) { r.ID = "c1" }},
		{"bad message id", func(r *CreateTurnRequest) { r.Message.ID = "m1" }},
		{"no parts", func(r *CreateTurnRequest) { r.Message.Parts = nil }},
		{"blank text", func(r *CreateTurnRequest) { r.Message.Parts = []Part{TextPart("   ")} }},
		{"oversize text", func(r *CreateTurnRequest) {
			r.Message.Parts = []Part{TextPart(strings.Repeat("a", maxMessageLength+1))}
		}},
		{"no model", func(r *CreateTurnRequest) { r.SelectedModel = "" }},
		{"bad visibility", func(r *CreateTurnRequest) { r.Visibility = "internal" }},
		{"unknown category", func(r *CreateTurnRequest) { r.SearchCategory = "blogs" }},
		{"attachment without url", func(r *CreateTurnRequest) {
			r.Message.Attachments = []Attachment{{Name: "a.png"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := ValidateCreateTurn(req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if err.Code() != "bad_request:api" {
				t.Errorf("Code() = %q, want bad_request:api", err.Code())
			}
		})
	}
}

func TestTurnText(t *testing.T) {
	turn := &Turn{Parts: []Part{
		TextPart("hello "),
		{Type: PartTypeToolCall, ToolName: "get_weather"},
		TextPart("world"),
	}}
	if got := turn.Text(); got != "hello world" {
		t.Errorf("Text() = %q, want %q", got, "hello world")
	}
}
