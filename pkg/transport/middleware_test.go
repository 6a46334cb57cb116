package transport

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// recordingWriter is a minimal EventWriter for testing middleware.
type recordingWriter struct {
	events  []api.PipelineEvent
	flushed bool
}

func (w *recordingWriter) WriteEvent(_ context.Context, event api.PipelineEvent) error {
	w.events = append(w.events, event)
	return nil
}

func (w *recordingWriter) Flush() error {
	w.flushed = true
	return nil
}

// stubHandler implements ChatHandler with pluggable behavior.
type stubHandler struct {
	createFn func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error
	resumeFn func(ctx context.Context, chatID string, w EventWriter) error
	deleteFn func(ctx context.Context, chatID string) (*api.Chat, error)
}

func (h *stubHandler) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
	if h.createFn == nil {
		return nil
	}
	return h.createFn(ctx, req, w)
}

func (h *stubHandler) ResumeStream(ctx context.Context, chatID string, w EventWriter) error {
	if h.resumeFn == nil {
		return nil
	}
	return h.resumeFn(ctx, chatID, w)
}

func (h *stubHandler) DeleteChat(ctx context.Context, chatID string) (*api.Chat, error) {
	if h.deleteFn == nil {
		return &api.Chat{ID: chatID}, nil
	}
	return h.deleteFn(ctx, chatID)
}

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next ChatHandler) ChatHandler {
			return &stubHandler{
				createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
					order = append(order, name+":before")
					err := next.CreateTurn(ctx, req, w)
					order = append(order, name+":after")
					return err
				},
			}
		}
	}

	handler := &stubHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
			order = append(order, "handler")
			return nil
		},
	}

	chain := Chain(mw("first"), mw("second"), mw("third"))
	wrapped := chain(handler)

	wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{}, &recordingWriter{})

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := &stubHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
			panic("test panic")
		},
	}

	wrapped := Recovery()(handler)
	err := wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{}, &recordingWriter{})

	if err == nil {
		t.Fatal("expected error after panic, got nil")
	}

	chatErr, ok := err.(*api.ChatError)
	if !ok {
		t.Fatalf("expected *api.ChatError, got %T: %v", err, err)
	}
	if chatErr.Kind != api.KindInternal {
		t.Errorf("error kind = %q, want %q", chatErr.Kind, api.KindInternal)
	}
	if !strings.Contains(chatErr.Message, "test panic") {
		t.Errorf("error message = %q, should contain %q", chatErr.Message, "test panic")
	}
}

func TestRecoveryCatchesPanicInDelete(t *testing.T) {
	handler := &stubHandler{
		deleteFn: func(ctx context.Context, chatID string) (*api.Chat, error) {
			panic("delete panic")
		},
	}

	wrapped := Recovery()(handler)
	_, err := wrapped.DeleteChat(context.Background(), "chat-1")

	if err == nil {
		t.Fatal("expected error after panic, got nil")
	}
}

func TestRecoveryPassesThroughNormalExecution(t *testing.T) {
	wrapped := Recovery()(&stubHandler{})
	err := wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{}, &recordingWriter{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestIDGeneratesNewID(t *testing.T) {
	var capturedID string

	handler := &stubHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
			capturedID = RequestIDFromContext(ctx)
			return nil
		},
	}

	wrapped := RequestID()(handler)
	wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{}, &recordingWriter{})

	if capturedID == "" {
		t.Error("expected a generated request ID, got empty string")
	}
	if len(capturedID) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("request ID length = %d, want 32 (hex encoded)", len(capturedID))
	}
}

func TestRequestIDPropagatesExisting(t *testing.T) {
	var capturedID string

	handler := &stubHandler{
		resumeFn: func(ctx context.Context, chatID string, w EventWriter) error {
			capturedID = RequestIDFromContext(ctx)
			return nil
		},
	}

	ctx := ContextWithRequestID(context.Background(), "existing-id-123")
	wrapped := RequestID()(handler)
	wrapped.ResumeStream(ctx, "chat-1", &recordingWriter{})

	if capturedID != "existing-id-123" {
		t.Errorf("request ID = %q, want %q", capturedID, "existing-id-123")
	}
}

func TestRequestIDUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	handler := &stubHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
			ids[RequestIDFromContext(ctx)] = true
			return nil
		},
	}

	wrapped := RequestID()(handler)
	for i := 0; i < 100; i++ {
		wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{}, &recordingWriter{})
	}

	if len(ids) != 100 {
		t.Errorf("expected 100 unique IDs, got %d", len(ids))
	}
}

func TestLoggingEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := ContextWithRequestID(context.Background(), "req-log-test")
	wrapped := Logging(logger)(&stubHandler{})
	wrapped.CreateTurn(ctx, &api.CreateTurnRequest{ID: "chat-42", SelectedModel: "test-model"}, &recordingWriter{})

	output := buf.String()
	for _, expected := range []string{"request_id=req-log-test", "chat_id=chat-42", "model=test-model", "request completed"} {
		if !strings.Contains(output, expected) {
			t.Errorf("log output missing %q in:\n%s", expected, output)
		}
	}
}

func TestLoggingEmitsErrorOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := &stubHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
			return api.NewInternalError("test failure")
		},
	}

	wrapped := Logging(logger)(handler)
	wrapped.CreateTurn(context.Background(), &api.CreateTurnRequest{SelectedModel: "test"}, &recordingWriter{})

	output := buf.String()
	if !strings.Contains(output, "request failed") {
		t.Errorf("log output missing 'request failed' in:\n%s", output)
	}
	if !strings.Contains(output, "test failure") {
		t.Errorf("log output missing error message in:\n%s", output)
	}
}

func TestLoggingSkipsResumeDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := &stubHandler{
		resumeFn: func(ctx context.Context, chatID string, w EventWriter) error {
			return ErrResumeDisabled
		},
	}

	wrapped := Logging(logger)(handler)
	err := wrapped.ResumeStream(context.Background(), "chat-1", &recordingWriter{})

	if err != ErrResumeDisabled {
		t.Fatalf("err = %v, want ErrResumeDisabled", err)
	}
	if strings.Contains(buf.String(), "request failed") {
		t.Errorf("disabled resumption logged as failure:\n%s", buf.String())
	}
}
