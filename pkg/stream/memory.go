package stream

import (
	"context"
	"sync"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// memoryStreamTTL bounds how long a finished stream stays attachable,
// matching the recency window the redis driver enforces via key TTL.
const memoryStreamTTL = 24 * time.Hour

// MemoryRegistry is an in-process Registry for single-instance deployments
// and tests. Resumes only work against the same process that produced the
// stream.
type MemoryRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	streams map[string]*memoryStream
}

var _ Registry = (*MemoryRegistry)(nil)

type memoryStream struct {
	mu         sync.Mutex
	cond       *sync.Cond
	events     []api.PipelineEvent
	done       bool
	finishedAt time.Time
}

// NewMemory creates an empty in-process registry.
func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{
		ttl:     memoryStreamTTL,
		now:     time.Now,
		streams: make(map[string]*memoryStream),
	}
}

// Register creates the buffer for a new stream.
func (r *MemoryRegistry) Register(_ context.Context, streamID string) (Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	ms := &memoryStream{}
	ms.cond = sync.NewCond(&ms.mu)
	r.streams[streamID] = ms
	return &memorySink{registry: r, stream: ms}, nil
}

// Attach replays buffered events and follows live output. A slow
// reader never loses events; the follower catches up from the buffer.
func (r *MemoryRegistry) Attach(ctx context.Context, streamID string) (<-chan api.PipelineEvent, error) {
	r.mu.Lock()
	r.sweepLocked()
	ms, ok := r.streams[streamID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNoSuchStream
	}

	out := make(chan api.PipelineEvent, 16)
	go ms.follow(ctx, out)
	return out, nil
}

// Close is a no-op for the in-process registry.
func (r *MemoryRegistry) Close() error { return nil }

// sweepLocked drops finished streams older than the TTL. Caller holds r.mu.
func (r *MemoryRegistry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, ms := range r.streams {
		ms.mu.Lock()
		expired := ms.done && ms.finishedAt.Before(cutoff)
		ms.mu.Unlock()
		if expired {
			delete(r.streams, id)
		}
	}
}

// follow delivers every buffered event in order, then waits for more
// until the stream finishes. A reader cancelled mid-wait stays parked
// until the next broadcast; streams finish within the generation
// timeout, so the wait is bounded.
func (ms *memoryStream) follow(ctx context.Context, out chan<- api.PipelineEvent) {
	defer close(out)

	next := 0
	for {
		ms.mu.Lock()
		for next >= len(ms.events) && !ms.done {
			ms.cond.Wait()
		}
		batch := ms.events[next:]
		next = len(ms.events)
		finished := ms.done
		ms.mu.Unlock()

		for _, event := range batch {
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
		if finished {
			return
		}
	}
}

type memorySink struct {
	registry *MemoryRegistry
	stream   *memoryStream
}

func (s *memorySink) Append(_ context.Context, event api.PipelineEvent) error {
	s.stream.mu.Lock()
	defer s.stream.mu.Unlock()

	s.stream.events = append(s.stream.events, event)
	if event.IsTerminal() {
		s.finishLocked()
	}
	s.stream.cond.Broadcast()
	return nil
}

func (s *memorySink) Close(_ context.Context) error {
	s.stream.mu.Lock()
	defer s.stream.mu.Unlock()
	s.finishLocked()
	s.stream.cond.Broadcast()
	return nil
}

func (s *memorySink) finishLocked() {
	if s.stream.done {
		return
	}
	s.stream.done = true
	s.stream.finishedAt = s.registry.now()
}
