package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/transport"
)

// mockHandler implements transport.ChatHandler with pluggable behavior.
type mockHandler struct {
	createFn func(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error
	resumeFn func(ctx context.Context, chatID string, w transport.EventWriter) error
	deleteFn func(ctx context.Context, chatID string) (*api.Chat, error)
}

func (h *mockHandler) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
	if h.createFn == nil {
		return nil
	}
	return h.createFn(ctx, req, w)
}

func (h *mockHandler) ResumeStream(ctx context.Context, chatID string, w transport.EventWriter) error {
	if h.resumeFn == nil {
		return nil
	}
	return h.resumeFn(ctx, chatID, w)
}

func (h *mockHandler) DeleteChat(ctx context.Context, chatID string) (*api.Chat, error) {
	if h.deleteFn == nil {
		return &api.Chat{ID: chatID}, nil
	}
	return h.deleteFn(ctx, chatID)
}

func newTestAdapter(h transport.ChatHandler) http.Handler {
	return NewAdapter(h, DefaultConfig()).Handler()
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body
}

func TestCreateTurnStreamsEvents(t *testing.T) {
	var receivedModel string
	handler := newTestAdapter(&mockHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
			receivedModel = req.SelectedModel
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventTextDelta, Seq: 1, Delta: "Hello "})
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventTextDelta, Seq: 2, Delta: "world"})
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventDone, Seq: 3})
			return nil
		},
	})

	rec := postChat(t, handler, `{"id":"chat-1","selectedModel":"gpt-4o","message":{"id":"msg-1","parts":[{"type":"text","text":"hi"}]},"visibility":"private"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if receivedModel != "gpt-4o" {
		t.Errorf("selectedModel = %q, want gpt-4o", receivedModel)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: text-delta\n") {
		t.Errorf("missing text-delta event in:\n%s", body)
	}
	if !strings.Contains(body, "data: [DONE]\n") {
		t.Errorf("missing [DONE] sentinel in:\n%s", body)
	}
}

func TestCreateTurnInvalidJSON(t *testing.T) {
	handler := newTestAdapter(&mockHandler{})

	rec := postChat(t, handler, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "bad_request:api" {
		t.Errorf("code = %q, want bad_request:api", body.Code)
	}
}

func TestCreateTurnUnsupportedContentType(t *testing.T) {
	handler := newTestAdapter(&mockHandler{})

	req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestCreateTurnBodyTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodySize = 64
	handler := NewAdapter(&mockHandler{}, cfg).Handler()

	rec := postChat(t, handler, `{"filler":"`+strings.Repeat("x", 256)+`"}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestCreateTurnErrorBeforeStreaming(t *testing.T) {
	tests := []struct {
		name       string
		err        *api.ChatError
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", api.NewUnauthorizedError(), http.StatusUnauthorized, "unauthorized:chat"},
		{"quota exceeded", api.NewRateLimitError(), http.StatusTooManyRequests, "rate_limit:chat"},
		{"ownership", api.NewForbiddenError(), http.StatusForbidden, "forbidden:chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAdapter(&mockHandler{
				createFn: func(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
					return tt.err
				},
			})

			rec := postChat(t, handler, `{"id":"chat-1"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, rec); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestCreateTurnErrorAfterStreamingBecomesEvent(t *testing.T) {
	handler := newTestAdapter(&mockHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventTextDelta, Seq: 1, Delta: "partial"})
			return api.NewInternalError("backend exploded")
		},
	})

	rec := postChat(t, handler, `{"id":"chat-1"}`)

	// Streaming already started, so the failure arrives as an SSE error
	// event rather than a JSON error response.
	body := rec.Body.String()
	if !strings.Contains(body, "event: error\n") {
		t.Errorf("missing error event in:\n%s", body)
	}
	if !strings.Contains(body, "data: [DONE]\n") {
		t.Errorf("missing [DONE] after error event in:\n%s", body)
	}
}

func TestResumeStreamReplaysEvents(t *testing.T) {
	var receivedChatID string
	handler := newTestAdapter(&mockHandler{
		resumeFn: func(ctx context.Context, chatID string, w transport.EventWriter) error {
			receivedChatID = chatID
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventTextDelta, Seq: 1, Delta: "replayed"})
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventDone, Seq: 2})
			return nil
		},
	})

	req := httptest.NewRequest("GET", "/chat?chatId=chat-7", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if receivedChatID != "chat-7" {
		t.Errorf("chatID = %q, want chat-7", receivedChatID)
	}
	if !strings.Contains(rec.Body.String(), "replayed") {
		t.Errorf("replayed delta missing in:\n%s", rec.Body.String())
	}
}

func TestResumeStreamDisabledReturns204(t *testing.T) {
	handler := newTestAdapter(&mockHandler{
		resumeFn: func(ctx context.Context, chatID string, w transport.EventWriter) error {
			return transport.ErrResumeDisabled
		},
	})

	req := httptest.NewRequest("GET", "/chat?chatId=chat-7", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestResumeStreamNotFound(t *testing.T) {
	handler := newTestAdapter(&mockHandler{
		resumeFn: func(ctx context.Context, chatID string, w transport.EventWriter) error {
			return api.NewStreamNotFoundError()
		},
	})

	req := httptest.NewRequest("GET", "/chat?chatId=chat-7", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "not_found:stream" {
		t.Errorf("code = %q, want not_found:stream", body.Code)
	}
}

func TestDeleteChatReturnsDeletedChat(t *testing.T) {
	handler := newTestAdapter(&mockHandler{
		deleteFn: func(ctx context.Context, chatID string) (*api.Chat, error) {
			return &api.Chat{ID: chatID, UserID: "alice", Title: "weather talk"}, nil
		},
	})

	req := httptest.NewRequest("DELETE", "/chat?id=chat-9", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got api.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.ID != "chat-9" || got.Title != "weather talk" {
		t.Errorf("chat = %+v", got)
	}
}

func TestDeleteChatForbidden(t *testing.T) {
	handler := newTestAdapter(&mockHandler{
		deleteFn: func(ctx context.Context, chatID string) (*api.Chat, error) {
			return nil, api.NewForbiddenError()
		},
	})

	req := httptest.NewRequest("DELETE", "/chat?id=chat-9", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequestIDHeaderPropagated(t *testing.T) {
	handler := NewAdapter(&mockHandler{}, DefaultConfig(), transport.RequestID()).Handler()

	req := httptest.NewRequest("DELETE", "/chat?id=chat-1", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
	}
}
