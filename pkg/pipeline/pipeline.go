package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/observability"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/search"
)

// streamErrorMessage is the generic message sent for mid-stream failures.
// Internal detail never leaks into the stream.
const streamErrorMessage = "Oops, an error occurred!"

// searchStatusNote is emitted before the search sub-workflow starts.
const searchStatusNote = "Searching for relevant information..."

// Config holds pipeline behavior settings.
type Config struct {
	// SystemPrompt is the base system prompt for generation.
	SystemPrompt string

	// MaxSteps bounds the tool-call loop within one run (default: 5).
	MaxSteps int

	// ReasoningModels lists model names whose runs carry no tools.
	ReasoningModels []string
}

func (c *Config) maxSteps() int {
	if c.MaxSteps <= 0 {
		return 5
	}
	return c.MaxSteps
}

func (c *Config) isReasoningModel(model string) bool {
	for _, m := range c.ReasoningModels {
		if m == model {
			return true
		}
	}
	return false
}

// Input describes one accepted user turn to run through the pipeline.
type Input struct {
	ChatID string
	Model  string

	// History holds the prior persisted turns of the chat, oldest first.
	History []api.Turn

	// UserTurn is the current user turn, already persisted.
	UserTurn api.Turn

	// SearchCategory selects the search branch when non-empty.
	SearchCategory string
}

// Pipeline drives one turn from accepted input to a persisted assistant
// turn, emitting events along the way.
type Pipeline struct {
	backend  provider.Backend
	searcher search.Provider
	tools    *ToolSet
	accessor ledger.Accessor
	cfg      Config
}

// New creates a pipeline over the given backend, search provider,
// tool set, and ledger.
func New(backend provider.Backend, searcher search.Provider, tools *ToolSet, accessor ledger.Accessor, cfg Config) *Pipeline {
	return &Pipeline{
		backend:  backend,
		searcher: searcher,
		tools:    tools,
		accessor: accessor,
		cfg:      cfg,
	}
}

// Run executes the pipeline for the given input. The returned channel
// carries the run's events in production order, ending with a terminal
// event, and is closed when the run finishes. The caller is expected to
// pass a context detached from the transport so a dead client does not
// cancel generation.
func (p *Pipeline) Run(ctx context.Context, in *Input) <-chan api.PipelineEvent {
	out := make(chan api.PipelineEvent, 64)
	go func() {
		defer close(out)
		p.run(ctx, in, &emitter{ch: out})
	}()
	return out
}

// emitter assigns monotonic sequence numbers and delivers events.
type emitter struct {
	ch  chan<- api.PipelineEvent
	seq int
}

func (e *emitter) emit(event api.PipelineEvent) {
	e.seq++
	event.Seq = e.seq
	e.ch <- event
}

// run walks the pipeline states. The search branch replaces the
// generation input with the formatted results document; the direct
// branch generates over the full history with tools.
func (p *Pipeline) run(ctx context.Context, in *Input, em *emitter) {
	var msgs []provider.Message
	var tools []provider.Tool

	if in.SearchCategory != "" {
		em.emit(api.PipelineEvent{Type: api.EventStatusNote, Note: searchStatusNote})

		query := p.rewriteQuery(ctx, in)

		results, err := p.searcher.Search(ctx, query, in.SearchCategory)
		if err != nil {
			slog.Warn("search failed, continuing with empty results",
				"chat_id", in.ChatID, "query", query, "error", err)
			results = nil
		}

		// The formatted document is injected as a synthetic assistant
		// turn so the generation treats it as already-known context.
		doc := FormatSearchResults(query, results)
		msgs = []provider.Message{
			{Role: provider.RoleAssistant, Content: doc},
			{Role: provider.RoleUser, Content: "Show search results"},
		}
	} else {
		msgs = historyMessages(in.History, in.UserTurn)
		if !p.cfg.isReasoningModel(in.Model) {
			tools = p.tools.Definitions()
		}
	}

	collected, parts, err := p.generate(ctx, in, msgs, tools, em)
	if err != nil {
		slog.Error("pipeline generation failed", "chat_id", in.ChatID, "error", err)
		em.emit(api.PipelineEvent{Type: api.EventError, Message: streamErrorMessage})
		return
	}

	p.finish(ctx, in.ChatID, collected, parts)
	em.emit(api.PipelineEvent{Type: api.EventDone})
}

// generate runs the streaming generation loop, dispatching tool calls and
// feeding results back until the model produces a final answer or the
// step bound is hit. It returns the backend messages produced across all
// steps and the assistant turn parts in event order.
func (p *Pipeline) generate(ctx context.Context, in *Input, msgs []provider.Message, tools []provider.Tool, em *emitter) ([]provider.Message, []api.Part, error) {
	var collected []provider.Message
	var parts []api.Part
	var text string

	for step := 0; step < p.cfg.maxSteps(); step++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		req := &provider.Request{
			Model:    in.Model,
			System:   p.cfg.SystemPrompt,
			Messages: msgs,
			Tools:    tools,
		}

		stepStart := time.Now()
		events, err := p.backend.Stream(ctx, req)
		if err != nil {
			observability.BackendRequestsTotal.WithLabelValues(p.backend.Name(), in.Model, "error").Inc()
			return nil, nil, err
		}

		var stepCalls []provider.ToolCall
		var stepResult *provider.Result
		var smoother wordSmoother

		for ev := range events {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}

			switch ev.Type {
			case provider.EventTextDelta:
				text += ev.Delta
				for _, chunk := range smoother.Write(ev.Delta) {
					em.emit(api.PipelineEvent{Type: api.EventTextDelta, Delta: chunk})
				}
			case provider.EventToolCall:
				stepCalls = append(stepCalls, *ev.Call)
			case provider.EventDone:
				stepResult = ev.Result
			case provider.EventError:
				observability.BackendRequestsTotal.WithLabelValues(p.backend.Name(), in.Model, "error").Inc()
				observability.BackendLatency.WithLabelValues(p.backend.Name(), in.Model).Observe(time.Since(stepStart).Seconds())
				return nil, nil, ev.Err
			}
		}
		if rest := smoother.Flush(); rest != "" {
			em.emit(api.PipelineEvent{Type: api.EventTextDelta, Delta: rest})
		}

		observability.BackendRequestsTotal.WithLabelValues(p.backend.Name(), in.Model, "success").Inc()
		observability.BackendLatency.WithLabelValues(p.backend.Name(), in.Model).Observe(time.Since(stepStart).Seconds())

		if stepResult != nil {
			collected = append(collected, stepResult.Messages...)
		}

		// No tool calls: final answer.
		if len(stepCalls) == 0 {
			break
		}

		// The assistant message with tool_calls must precede the tool
		// role result messages per Chat Completions convention.
		msgs = append(msgs, provider.Message{Role: provider.RoleAssistant, ToolCalls: stepCalls})

		for _, call := range stepCalls {
			em.emit(api.PipelineEvent{
				Type: api.EventToolCall, ToolName: call.Name,
				ToolCallID: call.ID, Args: call.Arguments,
			})
			parts = append(parts, api.Part{
				Type: api.PartTypeToolCall, ToolName: call.Name,
				ToolCallID: call.ID, Args: call.Arguments,
			})

			output, err := p.tools.Execute(ctx, call)
			if err != nil {
				slog.Warn("tool execution error",
					"tool", call.Name, "call_id", call.ID, "error", err)
				observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
				output = err.Error()
			} else {
				observability.ToolExecutionsTotal.WithLabelValues(call.Name, "success").Inc()
			}

			em.emit(api.PipelineEvent{
				Type: api.EventToolResult, ToolName: call.Name,
				ToolCallID: call.ID, Result: output,
			})
			parts = append(parts, api.Part{
				Type: api.PartTypeToolResult, ToolName: call.Name,
				ToolCallID: call.ID, Result: output,
			})

			msgs = append(msgs, provider.Message{
				Role: provider.RoleTool, Content: output, ToolCallID: call.ID,
			})
		}
	}

	if text != "" {
		parts = append(parts, api.Part{Type: api.PartTypeText, Text: text})
	}
	return collected, parts, nil
}

// finish persists exactly one assistant turn identified by the trailing
// assistant message id. Failures here are logged and never surfaced to
// the stream, which has already delivered its content.
func (p *Pipeline) finish(ctx context.Context, chatID string, collected []provider.Message, parts []api.Part) {
	assistantID := provider.TrailingAssistantID(collected)
	if assistantID == "" {
		slog.Error("finishing failed: no trailing assistant message", "chat_id", chatID)
		return
	}

	turn := api.Turn{
		ID:        assistantID,
		ChatID:    chatID,
		Role:      api.RoleAssistant,
		Parts:     parts,
		CreatedAt: time.Now(),
	}
	if err := p.accessor.AppendTurns(ctx, []api.Turn{turn}); err != nil {
		slog.Error("failed to save assistant turn", "chat_id", chatID, "error", err)
	}
}

// historyMessages translates persisted turns plus the current user turn
// into the backend conversation.
func historyMessages(history []api.Turn, userTurn api.Turn) []provider.Message {
	msgs := make([]provider.Message, 0, len(history)+1)
	for _, turn := range history {
		if turn.ID == userTurn.ID {
			continue
		}
		msgs = append(msgs, turnMessage(turn))
	}
	return append(msgs, turnMessage(userTurn))
}

func turnMessage(turn api.Turn) provider.Message {
	return provider.Message{
		ID:      turn.ID,
		Role:    string(turn.Role),
		Content: turn.Text(),
	}
}
