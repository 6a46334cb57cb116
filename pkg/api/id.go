package api

import "github.com/google/uuid"

// NewTurnID generates a random identifier for a turn.
func NewTurnID() string {
	return uuid.NewString()
}

// NewStreamID generates a random identifier for a stream handle.
func NewStreamID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed UUID. Chat and message
// identifiers are client-generated, so the server checks their shape
// before touching storage.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
