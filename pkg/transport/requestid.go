package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// request. If the incoming request context already carries a request ID
// (set by the HTTP adapter from the X-Request-ID header), that value is
// used. Otherwise, a new unique ID is generated.
//
// The request ID is stored in the context and can be retrieved with
// RequestIDFromContext.
func RequestID() Middleware {
	return func(next ChatHandler) ChatHandler {
		return &requestIDHandler{next: next}
	}
}

type requestIDHandler struct {
	next ChatHandler
}

func (h *requestIDHandler) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
	return h.next.CreateTurn(ensureRequestID(ctx), req, w)
}

func (h *requestIDHandler) ResumeStream(ctx context.Context, chatID string, w EventWriter) error {
	return h.next.ResumeStream(ensureRequestID(ctx), chatID, w)
}

func (h *requestIDHandler) DeleteChat(ctx context.Context, chatID string) (*api.Chat, error) {
	return h.next.DeleteChat(ensureRequestID(ctx), chatID)
}

func ensureRequestID(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithRequestID(ctx, generateRequestID())
}

// generateRequestID creates a new unique request ID as a hex string.
func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
