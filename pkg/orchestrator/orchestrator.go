package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/auth"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/observability"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/pipeline"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/stream"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/transport"
)

// Config holds orchestrator behavior settings.
type Config struct {
	// TitleModel is the model used for title generation. Defaults to
	// the request's selected model.
	TitleModel string

	// QuotaWindow is the trailing window for the daily message quota
	// (default: 24h).
	QuotaWindow time.Duration

	// GenerationTimeout bounds one detached pipeline run (default: 60s).
	GenerationTimeout time.Duration

	// ResumeWindow is how recent a persisted assistant turn must be to
	// be synthesized into a resume response after its live stream is
	// gone (default: 15s).
	ResumeWindow time.Duration
}

func (c *Config) quotaWindow() time.Duration {
	if c.QuotaWindow <= 0 {
		return 24 * time.Hour
	}
	return c.QuotaWindow
}

func (c *Config) generationTimeout() time.Duration {
	if c.GenerationTimeout <= 0 {
		return 60 * time.Second
	}
	return c.GenerationTimeout
}

func (c *Config) resumeWindow() time.Duration {
	if c.ResumeWindow <= 0 {
		return 15 * time.Second
	}
	return c.ResumeWindow
}

// Orchestrator implements transport.ChatHandler over the ledger, the
// generation pipeline, and the resumable stream registry.
type Orchestrator struct {
	accessor     ledger.Accessor
	pipeline     *pipeline.Pipeline
	backend      provider.Backend
	streams      *stream.Service
	entitlements auth.Entitlements
	inflight     *transport.InFlightRegistry
	cfg          Config
}

var _ transport.ChatHandler = (*Orchestrator)(nil)

// New creates an orchestrator. The stream service may be disabled
// (empty driver); streams then run without resumability.
func New(accessor ledger.Accessor, p *pipeline.Pipeline, backend provider.Backend, streams *stream.Service, entitlements auth.Entitlements, cfg Config) *Orchestrator {
	if entitlements == nil {
		entitlements = auth.DefaultEntitlements()
	}
	return &Orchestrator{
		accessor:     accessor,
		pipeline:     p,
		backend:      backend,
		streams:      streams,
		entitlements: entitlements,
		inflight:     transport.NewInFlightRegistry(),
		cfg:          cfg,
	}
}

// CreateTurn validates and authorizes the request, persists the user
// turn, then runs the pipeline on a context detached from the transport
// so a dropped client does not abort generation. Events are forwarded
// to both the caller and, when available, the stream registry.
func (o *Orchestrator) CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w transport.EventWriter) error {
	// Parse errors take precedence over everything else.
	if chatErr := api.ValidateCreateTurn(req); chatErr != nil {
		return chatErr
	}

	identity := auth.IdentityFromContext(ctx)
	if identity == nil {
		return api.NewUnauthorizedError()
	}

	// Quota: a user who has reached the allowance is rejected, so the
	// boundary request (count == limit) already fails.
	count, err := o.accessor.CountTurnsByUser(ctx, identity.Subject, o.cfg.quotaWindow())
	if err != nil {
		slog.Error("quota check failed", "user", identity.Subject, "error", err)
		return api.NewInternalError("")
	}
	if limit := o.entitlements.MaxMessagesPerDay(identity.Tier); count >= limit {
		observability.QuotaRejectedTotal.WithLabelValues(identity.Tier).Inc()
		return api.NewRateLimitError()
	}

	chat, chatErr := o.loadOrCreateChat(ctx, req, identity)
	if chatErr != nil {
		return chatErr
	}
	if chat.UserID != identity.Subject {
		return api.NewForbiddenError()
	}

	history, err := o.accessor.GetTurns(ctx, chat.ID)
	if err != nil {
		slog.Error("loading history failed", "chat_id", chat.ID, "error", err)
		return api.NewInternalError("")
	}

	userTurn := api.Turn{
		ID:          req.Message.ID,
		ChatID:      chat.ID,
		Role:        api.RoleUser,
		Parts:       req.Message.Parts,
		Attachments: req.Message.Attachments,
		CreatedAt:   time.Now(),
	}
	if err := o.accessor.AppendTurns(ctx, []api.Turn{userTurn}); err != nil {
		slog.Error("persisting user turn failed", "chat_id", chat.ID, "error", err)
		return api.NewInternalError("")
	}

	// A handle is recorded before generation starts so a resume request
	// racing the stream can still find it. Failures degrade to a
	// non-resumable stream rather than failing the turn.
	streamID := api.NewStreamID()
	handle := api.StreamHandle{StreamID: streamID, ChatID: chat.ID, CreatedAt: time.Now()}
	if err := o.accessor.CreateStreamHandle(ctx, handle); err != nil {
		slog.Warn("stream handle creation failed, stream will not be resumable",
			"chat_id", chat.ID, "stream_id", streamID, "error", err)
	}

	sink := o.registerStream(ctx, streamID)

	// Generation survives the transport connection: the context is
	// detached and bounded only by the generation timeout.
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.generationTimeout())
	token := o.inflight.Register(chat.ID, cancel)
	defer func() {
		o.inflight.Remove(chat.ID, token)
		cancel()
	}()

	events := o.pipeline.Run(genCtx, &pipeline.Input{
		ChatID:         chat.ID,
		Model:          req.SelectedModel,
		History:        history,
		UserTurn:       userTurn,
		SearchCategory: req.SearchCategory,
	})

	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	var writeErr error
	for event := range events {
		if sink != nil {
			if err := sink.Append(genCtx, event); err != nil {
				slog.Warn("stream buffer append failed", "stream_id", streamID, "error", err)
				sink = nil
			}
		}
		if writeErr == nil {
			// A dead client stops delivery but not generation; the
			// remaining events still land in the stream buffer.
			writeErr = w.WriteEvent(ctx, event)
		}
	}
	if sink != nil {
		if err := sink.Close(genCtx); err != nil {
			slog.Warn("stream buffer close failed", "stream_id", streamID, "error", err)
		}
	}

	return nil
}

// loadOrCreateChat fetches the chat or creates it on first contact with
// a generated title. A creation race falls back to the winner's record.
func (o *Orchestrator) loadOrCreateChat(ctx context.Context, req *api.CreateTurnRequest, identity *auth.Identity) (*api.Chat, *api.ChatError) {
	chat, err := o.accessor.GetChat(ctx, req.ID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		slog.Error("loading chat failed", "chat_id", req.ID, "error", err)
		return nil, api.NewInternalError("")
	}

	chat = &api.Chat{
		ID:         req.ID,
		UserID:     identity.Subject,
		Title:      o.generateTitle(ctx, req),
		Visibility: req.Visibility,
		CreatedAt:  time.Now(),
	}
	if err := o.accessor.CreateChat(ctx, chat); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			chat, err = o.accessor.GetChat(ctx, req.ID)
			if err == nil {
				return chat, nil
			}
		}
		slog.Error("creating chat failed", "chat_id", req.ID, "error", err)
		return nil, api.NewInternalError("")
	}
	return chat, nil
}

// registerStream returns a sink for the new stream, or nil when the
// registry is unavailable.
func (o *Orchestrator) registerStream(ctx context.Context, streamID string) stream.Sink {
	registry, err := o.streams.Registry(ctx)
	if err != nil {
		return nil
	}
	sink, err := registry.Register(ctx, streamID)
	if err != nil {
		slog.Warn("stream registration failed, stream will not be resumable",
			"stream_id", streamID, "error", err)
		return nil
	}
	return sink
}

// ResumeStream reattaches to the chat's most recent stream. When the
// live buffer is gone but an assistant turn was persisted within the
// resume window, that turn is synthesized into an append-message event
// so the client still receives the output it missed.
func (o *Orchestrator) ResumeStream(ctx context.Context, chatID string, w transport.EventWriter) error {
	registry, err := o.streams.Registry(ctx)
	if err != nil {
		if errors.Is(err, stream.ErrUnavailable) {
			return transport.ErrResumeDisabled
		}
		slog.Error("stream registry failed", "error", err)
		return api.NewInternalError("")
	}

	if chatID == "" {
		return api.NewBadRequestError("chatId is required")
	}

	identity := auth.IdentityFromContext(ctx)
	if identity == nil {
		return api.NewUnauthorizedError()
	}

	chat, err := o.accessor.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return api.NewChatNotFoundError()
		}
		slog.Error("loading chat failed", "chat_id", chatID, "error", err)
		return api.NewInternalError("")
	}
	if chat.Visibility == api.VisibilityPrivate && chat.UserID != identity.Subject {
		return api.NewForbiddenError()
	}

	handles, err := o.accessor.GetStreamHandles(ctx, chatID)
	if err != nil {
		slog.Error("loading stream handles failed", "chat_id", chatID, "error", err)
		return api.NewInternalError("")
	}
	if len(handles) == 0 {
		return api.NewStreamNotFoundError()
	}

	// Only the most recent handle is eligible for resumption.
	latest := handles[len(handles)-1]

	events, err := registry.Attach(ctx, latest.StreamID)
	switch {
	case err == nil:
		observability.StreamResumesTotal.WithLabelValues("replayed").Inc()
		observability.StreamingConnections.Inc()
		defer observability.StreamingConnections.Dec()
		for event := range events {
			if werr := w.WriteEvent(ctx, event); werr != nil {
				return nil
			}
		}
		return nil
	case errors.Is(err, stream.ErrNoSuchStream):
		return o.synthesizeResume(ctx, chatID, w)
	default:
		slog.Error("stream attach failed", "stream_id", latest.StreamID, "error", err)
		return api.NewInternalError("")
	}
}

// synthesizeResume handles the expired-buffer case: if the chat's last
// turn is an assistant turn persisted within the resume window, it is
// delivered as an append-message event; otherwise the response is an
// empty completed stream.
func (o *Orchestrator) synthesizeResume(ctx context.Context, chatID string, w transport.EventWriter) error {
	turns, err := o.accessor.GetTurns(ctx, chatID)
	if err != nil {
		slog.Error("loading turns failed", "chat_id", chatID, "error", err)
		return api.NewInternalError("")
	}

	if len(turns) > 0 {
		last := turns[len(turns)-1]
		if last.Role == api.RoleAssistant && time.Since(last.CreatedAt) <= o.cfg.resumeWindow() {
			observability.StreamResumesTotal.WithLabelValues("synthesized").Inc()
			if err := w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventAppendMessage, Seq: 1, Turn: &last}); err != nil {
				return nil
			}
			w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventDone, Seq: 2})
			return nil
		}
	}

	observability.StreamResumesTotal.WithLabelValues("empty").Inc()
	w.WriteEvent(ctx, api.PipelineEvent{Type: api.EventDone, Seq: 1})
	return nil
}

// DeleteChat removes a chat after an ownership check, cancelling any
// generation still running for it. The deleted record is returned.
func (o *Orchestrator) DeleteChat(ctx context.Context, chatID string) (*api.Chat, error) {
	if chatID == "" {
		return nil, api.NewBadRequestError("id is required")
	}

	identity := auth.IdentityFromContext(ctx)
	if identity == nil {
		return nil, api.NewUnauthorizedError()
	}

	chat, err := o.accessor.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, api.NewChatNotFoundError()
		}
		slog.Error("loading chat failed", "chat_id", chatID, "error", err)
		return nil, api.NewInternalError("")
	}
	if chat.UserID != identity.Subject {
		return nil, api.NewForbiddenError()
	}

	if o.inflight.Cancel(chatID) {
		slog.Info("cancelled in-flight generation for deleted chat", "chat_id", chatID)
	}

	deleted, err := o.accessor.DeleteChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, api.NewChatNotFoundError()
		}
		slog.Error("deleting chat failed", "chat_id", chatID, "error", err)
		return nil, api.NewInternalError("")
	}
	return deleted, nil
}
