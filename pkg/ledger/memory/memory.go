// Package memory provides an in-memory ledger.Accessor for testing and
// lightweight deployments. State is lost when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger"
)

// Store is an in-memory ledger.Accessor.
type Store struct {
	mu      sync.RWMutex
	chats   map[string]*api.Chat
	turns   map[string][]api.Turn         // chat id -> turns in append order
	handles map[string][]api.StreamHandle // chat id -> handles in append order
}

var _ ledger.Accessor = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		chats:   make(map[string]*api.Chat),
		turns:   make(map[string][]api.Turn),
		handles: make(map[string][]api.StreamHandle),
	}
}

// GetChat retrieves a chat by id.
func (s *Store) GetChat(_ context.Context, id string) (*api.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *chat
	return &cp, nil
}

// CreateChat persists a new chat.
func (s *Store) CreateChat(_ context.Context, chat *api.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[chat.ID]; exists {
		return ledger.ErrConflict
	}
	cp := *chat
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.chats[chat.ID] = &cp
	return nil
}

// DeleteChat removes a chat with its turns and stream handles.
func (s *Store) DeleteChat(_ context.Context, id string) (*api.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	delete(s.chats, id)
	delete(s.turns, id)
	delete(s.handles, id)
	cp := *chat
	return &cp, nil
}

// GetTurns returns the chat's turns ordered by creation time.
func (s *Store) GetTurns(_ context.Context, chatID string) ([]api.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]api.Turn, len(s.turns[chatID]))
	copy(turns, s.turns[chatID])
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
	return turns, nil
}

// AppendTurns appends turns to their chats' histories.
func (s *Store) AppendTurns(_ context.Context, turns []api.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		s.turns[t.ChatID] = append(s.turns[t.ChatID], t)
	}
	return nil
}

// CountTurnsByUser counts user-authored turns in the trailing window.
func (s *Store) CountTurnsByUser(_ context.Context, userID string, window time.Duration) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	count := 0
	for chatID, chat := range s.chats {
		if chat.UserID != userID {
			continue
		}
		for _, t := range s.turns[chatID] {
			if t.Role == api.RoleUser && !t.CreatedAt.Before(cutoff) {
				count++
			}
		}
	}
	return count, nil
}

// CreateStreamHandle appends a stream handle to the chat's list.
func (s *Store) CreateStreamHandle(_ context.Context, handle api.StreamHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle.CreatedAt.IsZero() {
		handle.CreatedAt = time.Now()
	}
	s.handles[handle.ChatID] = append(s.handles[handle.ChatID], handle)
	return nil
}

// GetStreamHandles returns the chat's stream handles, oldest first.
func (s *Store) GetStreamHandles(_ context.Context, chatID string) ([]api.StreamHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]api.StreamHandle, len(s.handles[chatID]))
	copy(handles, s.handles[chatID])
	return handles, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
