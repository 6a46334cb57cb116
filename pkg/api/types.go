package api

import (
	"strings"
	"time"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Visibility controls who may read a chat.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Part is a single content block inside a turn. Text is the only
// block type produced by this server; tool call and tool result
// blocks are recorded so that replayed history keeps its shape.
type Part struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Args       string `json:"args,omitempty"`
	Result     string `json:"result,omitempty"`
}

// Part types.
const (
	PartTypeText       = "text"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
)

// TextPart builds a text content block.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// Attachment references a file attached to a turn. Attachments are
// stored verbatim; the server never dereferences the URL.
type Attachment struct {
	Name        string `json:"name,omitempty"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// Turn is one message in a chat's ordered history. A turn is
// immutable once persisted.
type Turn struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chat_id"`
	Role        Role         `json:"role"`
	Parts       []Part       `json:"parts"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Text returns the concatenated text content of the turn.
func (t *Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Chat groups an ordered sequence of turns. Ownership is fixed at
// creation: UserID never changes for the lifetime of the chat.
type Chat struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StreamHandle is the durable record that lets an in-progress or
// recently finished output stream be reattached. Handles are
// append-only per chat; only the most recently created one is
// eligible for resumption.
type StreamHandle struct {
	StreamID  string    `json:"stream_id"`
	ChatID    string    `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IncomingMessage is the user turn carried by a create request.
type IncomingMessage struct {
	ID          string       `json:"id"`
	Parts       []Part       `json:"parts"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Text returns the concatenated text content of the message.
func (m *IncomingMessage) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// CreateTurnRequest is the body of POST /chat.
type CreateTurnRequest struct {
	ID             string          `json:"id"`
	Message        IncomingMessage `json:"message"`
	SelectedModel  string          `json:"selectedModel"`
	Visibility     Visibility      `json:"visibility"`
	SearchCategory string          `json:"searchCategory,omitempty"`
}

// SearchCategories lists the categories accepted by the search
// provider. An empty category on the request selects the direct
// generation path instead.
var SearchCategories = []string{
	"company",
	"research paper",
	"news",
	"pdf",
	"github",
	"tweet",
	"personal site",
	"linkedin profile",
	"financial report",
}

// ValidSearchCategory reports whether c names a known category.
func ValidSearchCategory(c string) bool {
	for _, v := range SearchCategories {
		if v == c {
			return true
		}
	}
	return false
}
