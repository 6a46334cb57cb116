package api

// EventType identifies the variant of a PipelineEvent.
type EventType string

const (
	// EventTextDelta carries an incremental chunk of assistant text.
	EventTextDelta EventType = "text-delta"

	// EventToolCall announces a tool invocation requested by the model.
	EventToolCall EventType = "tool-call"

	// EventToolResult carries the output of a completed tool call.
	EventToolResult EventType = "tool-result"

	// EventStatusNote is a transient progress note (for example while
	// the search sub-workflow runs). It is not part of the response text.
	EventStatusNote EventType = "status-note"

	// EventAppendMessage carries a complete persisted turn. Emitted on
	// the resume path when the live stream is gone but the assistant
	// turn was persisted moments ago.
	EventAppendMessage EventType = "append-message"

	// EventError reports a stream-level failure. Terminal.
	EventError EventType = "error"

	// EventDone marks the successful end of a pipeline run. Terminal.
	EventDone EventType = "done"
)

// PipelineEvent is the unit flowing through a pipeline run's output
// stream. Exactly one field group is populated depending on Type.
// Seq is monotonically increasing within a single run and is what
// lets a resumed reader deduplicate replayed events.
type PipelineEvent struct {
	Type EventType `json:"type"`
	Seq  int       `json:"seq"`

	// text-delta
	Delta string `json:"delta,omitempty"`

	// status-note
	Note string `json:"note,omitempty"`

	// tool-call / tool-result
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Args       string `json:"args,omitempty"`
	Result     string `json:"result,omitempty"`

	// append-message
	Turn *Turn `json:"turn,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// IsTerminal reports whether the event type ends a stream.
func IsTerminal(t EventType) bool {
	return t == EventDone || t == EventError
}

// IsTerminal reports whether this event ends its stream.
func (e PipelineEvent) IsTerminal() bool {
	return IsTerminal(e.Type)
}
