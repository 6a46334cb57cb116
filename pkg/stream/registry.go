// Package stream provides the resumable stream registry: pipeline events
// are appended to a per-stream buffer as they are produced, and later
// consumers can attach to replay the buffer and follow live output.
package stream

import (
	"context"
	"errors"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// Sentinel errors for registry operations.
var (
	// ErrNoSuchStream is returned by Attach when the stream buffer has
	// expired or never existed.
	ErrNoSuchStream = errors.New("no such stream")

	// ErrUnavailable is returned when no registry backend is configured.
	ErrUnavailable = errors.New("stream registry unavailable")
)

// Sink receives the events of a single in-flight stream.
type Sink interface {
	// Append records one event and forwards it to live subscribers.
	Append(ctx context.Context, event api.PipelineEvent) error

	// Close releases the sink. The terminal event must already have been
	// appended; Close does not emit one.
	Close(ctx context.Context) error
}

// Registry registers in-flight streams and lets consumers attach to them.
type Registry interface {
	// Register creates the buffer for a new stream and returns its sink.
	Register(ctx context.Context, streamID string) (Sink, error)

	// Attach replays the stream's buffered events and then follows live
	// output until a terminal event arrives, at which point the channel
	// is closed. Returns ErrNoSuchStream if the buffer has expired.
	Attach(ctx context.Context, streamID string) (<-chan api.PipelineEvent, error)

	// Close releases the registry's resources.
	Close() error
}
