package provider

import "context"

// Backend abstracts an LLM inference backend. The interface is
// protocol-agnostic: each adapter handles its own backend protocol
// internally.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Backend interface {
	// Name returns the backend identifier (e.g., "openai").
	Name() string

	// Capabilities returns what this backend supports.
	Capabilities() Capabilities

	// Complete performs a non-streaming generation call. Used for the
	// short constrained completions (query rewriting, title generation).
	Complete(ctx context.Context, req *Request) (*Result, error)

	// Stream performs one streaming generation step. The returned
	// channel receives Event values and is closed by the backend when
	// the step completes or errors. The final EventDone carries the
	// Result for the step, from which the trailing assistant message
	// id can be derived.
	Stream(ctx context.Context, req *Request) (<-chan Event, error)

	// Close releases backend resources.
	Close() error
}

// Capabilities declares what features the backend supports. Used by
// the pipeline for early request validation.
type Capabilities struct {
	Streaming   bool
	ToolCalling bool
}
