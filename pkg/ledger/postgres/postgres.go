// Package postgres provides a PostgreSQL implementation of ledger.Accessor.
// It uses pgx/v5 for connection pooling and JSONB for message part storage.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger"
)

// Store is a PostgreSQL-backed ledger.Accessor.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements ledger.Accessor at compile time.
var _ ledger.Accessor = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// GetChat retrieves a chat by id.
func (s *Store) GetChat(ctx context.Context, id string) (*api.Chat, error) {
	var chat api.Chat
	var visibility string

	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, visibility, created_at
		FROM chats
		WHERE id = $1
	`, id).Scan(&chat.ID, &chat.UserID, &chat.Title, &visibility, &chat.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying chat: %w", err)
	}

	chat.Visibility = api.Visibility(visibility)
	return &chat, nil
}

// CreateChat persists a new chat.
func (s *Store) CreateChat(ctx context.Context, chat *api.Chat) error {
	createdAt := chat.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO chats (id, user_id, title, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, chat.ID, chat.UserID, chat.Title, string(chat.Visibility), createdAt)

	if err != nil {
		if isDuplicateKey(err) {
			return ledger.ErrConflict
		}
		return fmt.Errorf("inserting chat: %w", err)
	}

	return nil
}

// DeleteChat hard-deletes a chat and returns it. Turns and stream handles
// are removed by the ON DELETE CASCADE constraints.
func (s *Store) DeleteChat(ctx context.Context, id string) (*api.Chat, error) {
	var chat api.Chat
	var visibility string

	err := s.pool.QueryRow(ctx, `
		DELETE FROM chats
		WHERE id = $1
		RETURNING id, user_id, title, visibility, created_at
	`, id).Scan(&chat.ID, &chat.UserID, &chat.Title, &visibility, &chat.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting chat: %w", err)
	}

	chat.Visibility = api.Visibility(visibility)
	return &chat, nil
}

// GetTurns returns the chat's turns ordered by creation time.
func (s *Store) GetTurns(ctx context.Context, chatID string) ([]api.Turn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, role, parts, attachments, created_at
		FROM turns
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []api.Turn
	for rows.Next() {
		var turn api.Turn
		var role string
		var partsJSON []byte
		var attachmentsJSON *[]byte

		if err := rows.Scan(&turn.ID, &turn.ChatID, &role, &partsJSON, &attachmentsJSON, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}

		turn.Role = api.Role(role)
		if err := json.Unmarshal(partsJSON, &turn.Parts); err != nil {
			return nil, fmt.Errorf("unmarshaling parts: %w", err)
		}
		if attachmentsJSON != nil {
			if err := json.Unmarshal(*attachmentsJSON, &turn.Attachments); err != nil {
				return nil, fmt.Errorf("unmarshaling attachments: %w", err)
			}
		}

		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// AppendTurns appends turns to their chats' histories.
func (s *Store) AppendTurns(ctx context.Context, turns []api.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, turn := range turns {
		partsJSON, err := json.Marshal(turn.Parts)
		if err != nil {
			return fmt.Errorf("marshaling parts: %w", err)
		}

		var attachmentsJSON []byte
		if turn.Attachments != nil {
			attachmentsJSON, err = json.Marshal(turn.Attachments)
			if err != nil {
				return fmt.Errorf("marshaling attachments: %w", err)
			}
		}

		createdAt := turn.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		batch.Queue(`
			INSERT INTO turns (id, chat_id, role, parts, attachments, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, turn.ID, turn.ChatID, string(turn.Role), partsJSON, nullJSON(attachmentsJSON), createdAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range turns {
		if _, err := results.Exec(); err != nil {
			if isDuplicateKey(err) {
				return ledger.ErrConflict
			}
			return fmt.Errorf("inserting turn: %w", err)
		}
	}

	return nil
}

// CountTurnsByUser counts user-authored turns across all of the user's
// chats created within the trailing window.
func (s *Store) CountTurnsByUser(ctx context.Context, userID string, window time.Duration) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM turns t
		JOIN chats c ON c.id = t.chat_id
		WHERE c.user_id = $1
		  AND t.role = 'user'
		  AND t.created_at >= $2
	`, userID, time.Now().Add(-window)).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return count, nil
}

// CreateStreamHandle appends a stream handle to the chat's list.
func (s *Store) CreateStreamHandle(ctx context.Context, handle api.StreamHandle) error {
	createdAt := handle.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO stream_handles (stream_id, chat_id, created_at)
		VALUES ($1, $2, $3)
	`, handle.StreamID, handle.ChatID, createdAt)

	if err != nil {
		if isDuplicateKey(err) {
			return ledger.ErrConflict
		}
		return fmt.Errorf("inserting stream handle: %w", err)
	}

	return nil
}

// GetStreamHandles returns the chat's stream handles, oldest first.
func (s *Store) GetStreamHandles(ctx context.Context, chatID string) ([]api.StreamHandle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT stream_id, chat_id, created_at
		FROM stream_handles
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying stream handles: %w", err)
	}
	defer rows.Close()

	var handles []api.StreamHandle
	for rows.Next() {
		var h api.StreamHandle
		if err := rows.Scan(&h.StreamID, &h.ChatID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning stream handle: %w", err)
		}
		handles = append(handles, h)
	}

	return handles, rows.Err()
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// nullJSON converts nil/empty byte slices to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
