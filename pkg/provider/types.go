package provider

import "encoding/json"

// Message is one entry in the backend-facing conversation. It carries
// only what the backend needs, stripped of transport and storage
// concerns. Assistant messages produced by the backend carry a
// generated ID so the caller can identify the trailing assistant
// message of a generation.
type Message struct {
	ID         string     `json:"id,omitempty"`
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a callable tool definition offered to the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Request is the backend-facing generation request.
type Request struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Result summarizes one completed generation step. Messages holds the
// assistant-authored messages produced by the step, in production order.
type Result struct {
	Messages     []Message `json:"messages"`
	FinishReason string    `json:"finish_reason,omitempty"`
}

// Text returns the concatenated assistant text of the result.
func (r *Result) Text() string {
	var out string
	for _, m := range r.Messages {
		if m.Role == RoleAssistant {
			out += m.Content
		}
	}
	return out
}

// TrailingAssistantID returns the id of the last assistant-authored
// message in msgs, or empty string if there is none.
func TrailingAssistantID(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant && msgs[i].ID != "" {
			return msgs[i].ID
		}
	}
	return ""
}

// EventType classifies a streaming event from the backend.
type EventType int

const (
	// EventTextDelta carries incremental text content.
	EventTextDelta EventType = iota

	// EventToolCall carries one complete tool call requested by the model.
	EventToolCall

	// EventDone marks the end of the step; Result is populated.
	EventDone

	// EventError reports a stream failure; Err is populated.
	EventError
)

// Event is a single streaming event from the backend.
type Event struct {
	Type   EventType
	Delta  string
	Call   *ToolCall
	Result *Result
	Err    error
}
