package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// handler operation. The log entry includes the operation, chat ID,
// duration, request ID (from context), and whether the operation
// succeeded or failed.
//
// Note: HTTP method and path are not available at the ChatHandler
// level. For full HTTP-level logging (including status codes), use
// HTTP-level middleware in the adapter.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return &loggingHandler{next: next, logger: logger}
	}
}

type loggingHandler struct {
	next   ChatHandler
	logger *slog.Logger
}

func (h *loggingHandler) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error {
	start := time.Now()
	err := h.next.CreateTurn(ctx, req, w)
	h.log(ctx, "create turn", err, time.Since(start),
		slog.String("chat_id", req.ID),
		slog.String("model", req.SelectedModel),
	)
	return err
}

func (h *loggingHandler) ResumeStream(ctx context.Context, chatID string, w EventWriter) error {
	start := time.Now()
	err := h.next.ResumeStream(ctx, chatID, w)
	if err == ErrResumeDisabled {
		// Not a failure; resumption is simply switched off.
		return err
	}
	h.log(ctx, "resume stream", err, time.Since(start), slog.String("chat_id", chatID))
	return err
}

func (h *loggingHandler) DeleteChat(ctx context.Context, chatID string) (*api.Chat, error) {
	start := time.Now()
	chat, err := h.next.DeleteChat(ctx, chatID)
	h.log(ctx, "delete chat", err, time.Since(start), slog.String("chat_id", chatID))
	return chat, err
}

func (h *loggingHandler) log(ctx context.Context, op string, err error, d time.Duration, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.Duration("duration", d),
	}
	attrs = append(attrs, extra...)

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		h.logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
	} else {
		h.logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
	}
}
