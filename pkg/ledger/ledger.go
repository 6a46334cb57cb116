// Package ledger defines the message ledger accessor: append-only
// read/write of chats, turns, and stream handles. Implementations
// (memory, postgres) provide the durable conversation state the
// orchestrator builds on.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// Sentinel errors for ledger operations.
var (
	// ErrNotFound is returned when a chat does not exist.
	ErrNotFound = errors.New("chat not found")

	// ErrConflict is returned when a chat with the given id already exists.
	ErrConflict = errors.New("chat already exists")
)

// Accessor is the message ledger interface. Turns are immutable once
// appended; stream handles are append-only and ordered by creation time.
//
// Implementations must be safe for concurrent use.
type Accessor interface {
	// GetChat retrieves a chat by id. Returns ErrNotFound if absent.
	GetChat(ctx context.Context, id string) (*api.Chat, error)

	// CreateChat persists a new chat. Returns ErrConflict if the id exists.
	CreateChat(ctx context.Context, chat *api.Chat) error

	// DeleteChat hard-deletes a chat together with its turns and stream
	// handles, returning the deleted chat. No soft-delete semantics.
	DeleteChat(ctx context.Context, id string) (*api.Chat, error)

	// GetTurns returns the chat's turns ordered by creation time.
	GetTurns(ctx context.Context, chatID string) ([]api.Turn, error)

	// AppendTurns appends turns to their chats' histories.
	AppendTurns(ctx context.Context, turns []api.Turn) error

	// CountTurnsByUser counts user-authored turns across all of the
	// user's chats created within the trailing window. Drives the
	// rolling daily quota.
	CountTurnsByUser(ctx context.Context, userID string, window time.Duration) (int, error)

	// CreateStreamHandle appends a stream handle to the chat's
	// ordered-by-creation list.
	CreateStreamHandle(ctx context.Context, handle api.StreamHandle) error

	// GetStreamHandles returns the chat's stream handles ordered by
	// creation time, oldest first.
	GetStreamHandles(ctx context.Context, chatID string) ([]api.StreamHandle, error)

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}
