package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks in-flight generation runs for explicit
// cancellation. It maps chat IDs to the cancel functions of their
// active pipeline runs, allowing a DELETE request to stop generation
// that is still in progress for the chat being deleted.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu        sync.Mutex
	lastToken uint64
	entries   map[string]inflightEntry
}

type inflightEntry struct {
	token  uint64
	cancel context.CancelFunc
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[string]inflightEntry),
	}
}

// Register adds an in-flight run to the registry and returns a token
// identifying it. A second run for the same chat replaces the first;
// the older cancel function is invoked so a chat never has two
// concurrent generations.
func (r *InFlightRegistry) Register(chatID string, cancel context.CancelFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.entries[chatID]; ok {
		prev.cancel()
	}
	r.lastToken++
	r.entries[chatID] = inflightEntry{token: r.lastToken, cancel: cancel}
	return r.lastToken
}

// Cancel stops an in-flight run by calling its cancel function.
// Returns true if a run was found and cancelled, false if the chat
// has no active run.
func (r *InFlightRegistry) Cancel(chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[chatID]
	if !ok {
		return false
	}
	entry.cancel()
	delete(r.entries, chatID)
	return true
}

// Remove removes a run from the registry without cancelling it.
// Called when generation completes normally. The token guards against
// a finished run unregistering a newer run that replaced it.
func (r *InFlightRegistry) Remove(chatID string, token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[chatID]; ok && entry.token == token {
		delete(r.entries, chatID)
	}
}
