package http

import (
	"context"
	"encoding/json"
	"io"
	"net"
	gohttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/transport"
)

func startServer(t *testing.T, srv *Server) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	go srv.ServeOn(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	time.Sleep(50 * time.Millisecond)

	return addr
}

func TestServerStartsAndAcceptsRequests(t *testing.T) {
	handler := &mockHandler{
		createFn: func(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventTextDelta, Seq: 1, Delta: "served"})
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventDone, Seq: 2})
			return nil
		},
	}

	addr := startServer(t, NewServer(handler, WithAddr("127.0.0.1:0")))

	resp, err := gohttp.Post("http://"+addr+"/chat", "application/json",
		strings.NewReader(`{"id":"chat-1","selectedModel":"gpt-4o","message":{"id":"msg-1","parts":[{"type":"text","text":"hi"}]},"visibility":"private"}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "served") {
		t.Errorf("response body missing streamed delta:\n%s", body)
	}
}

func TestServerAppliesRecoveryMiddleware(t *testing.T) {
	handler := &mockHandler{
		deleteFn: func(ctx context.Context, chatID string) (*api.Chat, error) {
			panic("boom")
		},
	}

	addr := startServer(t, NewServer(handler, WithAddr("127.0.0.1:0")))

	req, _ := gohttp.NewRequest("DELETE", "http://"+addr+"/chat?id=chat-1", nil)
	resp, err := gohttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	var body api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Code != "internal:api" {
		t.Errorf("code = %q, want internal:api", body.Code)
	}
}

func TestServerMountsExtraRoutes(t *testing.T) {
	healthz := gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusOK)
		w.Write([]byte("ok\n"))
	})

	addr := startServer(t, NewServer(&mockHandler{},
		WithAddr("127.0.0.1:0"),
		WithRoute("GET /healthz", healthz),
	))

	resp, err := gohttp.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok\n" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestServerAppliesHTTPMiddleware(t *testing.T) {
	stamp := func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			w.Header().Set("X-Stamped", "yes")
			next.ServeHTTP(w, r)
		})
	}

	addr := startServer(t, NewServer(&mockHandler{},
		WithAddr("127.0.0.1:0"),
		WithHTTPMiddleware(stamp),
	))

	req, _ := gohttp.NewRequest("DELETE", "http://"+addr+"/chat?id=chat-1", nil)
	resp, err := gohttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE error: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Stamped"); got != "yes" {
		t.Errorf("X-Stamped = %q, want yes", got)
	}
}
