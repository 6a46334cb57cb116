// Package openai adapts an OpenAI-compatible Chat Completions backend
// to the provider.Backend interface using the go-openai client. Any
// endpoint speaking the Chat Completions protocol works by pointing
// BaseURL at it.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	gopenai "github.com/sashabaranov/go-openai"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
)

// Config holds the adapter configuration.
type Config struct {
	// BaseURL is the backend endpoint. Empty uses the OpenAI default.
	BaseURL string

	// APIKey authenticates against the backend. May be empty for
	// local backends that don't check credentials.
	APIKey string

	// Timeout bounds a single backend call. Default: 120s.
	Timeout time.Duration
}

// Client is a provider.Backend speaking the Chat Completions protocol.
type Client struct {
	api *gopenai.Client
}

var _ provider.Backend = (*Client)(nil)

// New creates a Chat Completions backend adapter.
func New(cfg Config) (*Client, error) {
	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	clientCfg.HTTPClient.Timeout = cfg.Timeout

	return &Client{api: gopenai.NewClientWithConfig(clientCfg)}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "openai" }

// Capabilities returns what this backend supports.
func (c *Client) Capabilities() provider.Capabilities {
	return provider.Capabilities{Streaming: true, ToolCalling: true}
}

// Complete performs a non-streaming generation call.
func (c *Client) Complete(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	resp, err := c.api.CreateChatCompletion(ctx, translateRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("backend returned no choices")
	}

	choice := resp.Choices[0]
	msg := provider.Message{
		ID:      uuid.NewString(),
		Role:    provider.RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &provider.Result{
		Messages:     []provider.Message{msg},
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Stream performs one streaming generation step. Text deltas are
// forwarded as they arrive; tool calls are accumulated from argument
// fragments and emitted complete, followed by a final EventDone
// carrying the step result.
func (c *Client) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Event, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, translateRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("starting chat completion stream: %w", err)
	}

	ch := make(chan provider.Event)
	go func() {
		defer close(ch)
		defer stream.Close()

		var text string
		var finishReason string
		// Tool calls arrive as indexed argument fragments.
		calls := make(map[int]*provider.ToolCall)
		var order []int

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				ch <- provider.Event{Type: provider.EventError, Err: err}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]
			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}
			if choice.Delta.Content != "" {
				text += choice.Delta.Content
				ch <- provider.Event{Type: provider.EventTextDelta, Delta: choice.Delta.Content}
			}
			for _, tc := range choice.Delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				call, ok := calls[idx]
				if !ok {
					call = &provider.ToolCall{}
					calls[idx] = call
					order = append(order, idx)
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Function.Name != "" {
					call.Name = tc.Function.Name
				}
				call.Arguments += tc.Function.Arguments
			}
		}

		msg := provider.Message{
			ID:      uuid.NewString(),
			Role:    provider.RoleAssistant,
			Content: text,
		}
		for _, idx := range order {
			call := calls[idx]
			ch <- provider.Event{Type: provider.EventToolCall, Call: call}
			msg.ToolCalls = append(msg.ToolCalls, *call)
		}

		ch <- provider.Event{Type: provider.EventDone, Result: &provider.Result{
			Messages:     []provider.Message{msg},
			FinishReason: finishReason,
		}}
	}()

	return ch, nil
}

// Close releases backend resources. The underlying HTTP client needs
// no explicit teardown.
func (c *Client) Close() error { return nil }

// translateRequest converts a provider request to the go-openai format.
func translateRequest(req *provider.Request, stream bool) gopenai.ChatCompletionRequest {
	out := gopenai.ChatCompletionRequest{
		Model:  req.Model,
		Stream: stream,
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}

	if req.System != "" {
		out.Messages = append(out.Messages, gopenai.ChatCompletionMessage{
			Role:    gopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		msg := gopenai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, gopenai.ToolCall{
				ID:   tc.ID,
				Type: gopenai.ToolTypeFunction,
				Function: gopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out.Messages = append(out.Messages, msg)
	}

	for _, t := range req.Tools {
		params := t.Parameters
		if params == nil {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out.Tools = append(out.Tools, gopenai.Tool{
			Type: gopenai.ToolTypeFunction,
			Function: &gopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	return out
}
