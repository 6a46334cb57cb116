package transport

import (
	"context"
	"fmt"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to internal error responses. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next ChatHandler) ChatHandler {
		return &recoveryHandler{next: next}
	}
}

type recoveryHandler struct {
	next ChatHandler
}

func (h *recoveryHandler) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) (retErr error) {
	defer recoverToError(&retErr)
	return h.next.CreateTurn(ctx, req, w)
}

func (h *recoveryHandler) ResumeStream(ctx context.Context, chatID string, w EventWriter) (retErr error) {
	defer recoverToError(&retErr)
	return h.next.ResumeStream(ctx, chatID, w)
}

func (h *recoveryHandler) DeleteChat(ctx context.Context, chatID string) (chat *api.Chat, retErr error) {
	defer recoverToError(&retErr)
	return h.next.DeleteChat(ctx, chatID)
}

func recoverToError(retErr *error) {
	if r := recover(); r != nil {
		*retErr = api.NewInternalError(fmt.Sprintf("internal server error: %v", r))
	}
}
