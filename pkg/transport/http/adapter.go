package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/transport"
)

// Adapter serves the chat API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
type Adapter struct {
	handler transport.ChatHandler
	mux     *http.ServeMux
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout int // seconds
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     1 << 20, // 1 MB
		ShutdownTimeout: 30,
	}
}

// NewAdapter creates an HTTP adapter with the given ChatHandler.
// Middleware is applied to the handler in the given order.
func NewAdapter(handler transport.ChatHandler, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		handler = transport.Chain(middlewares...)(handler)
	}

	a := &Adapter{
		handler: handler,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	a.mux.HandleFunc("POST /chat", a.handleCreateTurn)
	a.mux.HandleFunc("GET /chat", a.handleResumeStream)
	a.mux.HandleFunc("DELETE /chat", a.handleDeleteChat)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded to
// the response. After the handler runs, it checks the context for a
// request ID (set by the transport-level RequestID middleware) and adds
// it to the response headers if not already set.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If client sent X-Request-ID, propagate it into context.
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		// Use a response writer wrapper to capture and set the request ID
		// header before the first write.
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}

// handleCreateTurn handles POST /chat.
func (a *Adapter) handleCreateTurn(w http.ResponseWriter, r *http.Request) {
	// Validate Content-Type.
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewBadRequestError("Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	// Decode request. Any malformed payload maps to bad_request:api so
	// parse failures keep precedence over auth failures.
	var req api.CreateTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewBadRequestError(fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteChatError(w, api.NewBadRequestError("invalid JSON: "+err.Error()))
		return
	}

	ew := newSSEEventWriter(w)
	if err := a.handler.CreateTurn(r.Context(), &req, ew); err != nil {
		a.writeHandlerError(w, ew, err)
	}
}

// handleResumeStream handles GET /chat?chatId={id}.
func (a *Adapter) handleResumeStream(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")

	ew := newSSEEventWriter(w)
	err := a.handler.ResumeStream(r.Context(), chatID, ew)
	if err == nil {
		return
	}
	if errors.Is(err, transport.ErrResumeDisabled) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.writeHandlerError(w, ew, err)
}

// handleDeleteChat handles DELETE /chat?id={id}. The deleted chat is
// returned so clients can update their local state without a refetch.
func (a *Adapter) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("id")

	chat, err := a.handler.DeleteChat(r.Context(), chatID)
	if err != nil {
		a.writeHandlerError(w, nil, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat)
}

// writeHandlerError writes an error response from the handler. If
// streaming has already started, the error is delivered as a terminal
// error event on the stream. Otherwise a standard JSON error response
// is written.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, ew *sseEventWriter, err error) {
	var chatErr *api.ChatError
	if !errors.As(err, &chatErr) {
		chatErr = api.NewInternalError(err.Error())
	}

	if ew != nil && ew.hasStartedStreaming() {
		ew.WriteEvent(context.Background(), api.PipelineEvent{
			Type:    api.EventError,
			Message: chatErr.Message,
		})
		return
	}

	transport.WriteChatError(w, chatErr)
}
