package transport

import (
	"context"
	"errors"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// ErrResumeDisabled is returned by ResumeStream when stream resumption
// is not available in this deployment (no stream registry configured).
// The HTTP adapter translates it to an empty 204 response so clients
// fall back to non-resumable behavior.
var ErrResumeDisabled = errors.New("stream resumption is not available")

// ChatHandler is the transport-facing contract of the chat orchestrator.
// The transport layer decodes requests, creates an EventWriter per
// connection, and dispatches to these operations. All domain decisions
// (auth, quota, ownership, persistence) live behind this interface.
type ChatHandler interface {
	// CreateTurn appends a user turn to a chat (creating the chat on
	// first contact) and streams the generated assistant output to w.
	// Errors returned before the first event are encoded as JSON error
	// responses; failures after streaming starts surface as error
	// events on the stream itself.
	CreateTurn(ctx context.Context, req *api.CreateTurnRequest, w EventWriter) error

	// ResumeStream reattaches to the most recent output stream of the
	// given chat and replays or synthesizes its events to w. Returns
	// ErrResumeDisabled when no stream registry is configured.
	ResumeStream(ctx context.Context, chatID string, w EventWriter) error

	// DeleteChat removes a chat with its turns and stream handles,
	// returning the deleted record.
	DeleteChat(ctx context.Context, chatID string) (*api.Chat, error)
}

// EventWriter abstracts the streaming output channel for a single
// request. The transport layer creates one per connection; handlers
// call WriteEvent for each pipeline event.
//
// Calling WriteEvent after a terminal event (done or error) returns
// an error.
type EventWriter interface {
	// WriteEvent sends a single streaming event. Returns an error if
	// called after a terminal event or if the client disconnected.
	WriteEvent(ctx context.Context, event api.PipelineEvent) error

	// Flush ensures buffered data is sent to the client. Returns an
	// error if the client has disconnected.
	Flush() error
}
