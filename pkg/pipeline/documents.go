package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DocumentStore holds the documents created through the document tools.
// Process-local: documents live for the lifetime of the server.
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]document
}

type document struct {
	ID    string
	Title string
	Kind  string
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]document)}
}

func (s *DocumentStore) create(title, kind string) document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document{ID: uuid.NewString(), Title: title, Kind: kind}
	s.docs[doc.ID] = doc
	return doc
}

func (s *DocumentStore) get(id string) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	return doc, ok
}

// CreateDocumentExecutor creates a document visible to the user.
type CreateDocumentExecutor struct {
	store *DocumentStore
}

var _ Executor = (*CreateDocumentExecutor)(nil)

func NewCreateDocumentExecutor(store *DocumentStore) *CreateDocumentExecutor {
	return &CreateDocumentExecutor{store: store}
}

func (e *CreateDocumentExecutor) Name() string { return "create_document" }

func (e *CreateDocumentExecutor) Description() string {
	return "Create a document for writing or content creation activities"
}

func (e *CreateDocumentExecutor) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"kind": {"type": "string", "enum": ["text", "code", "image", "sheet"]}
		},
		"required": ["title", "kind"]
	}`)
}

func (e *CreateDocumentExecutor) Execute(_ context.Context, args string) (string, error) {
	var params struct {
		Title string `json:"title"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("parsing create_document arguments: %w", err)
	}

	doc := e.store.create(params.Title, params.Kind)
	return toolJSON(map[string]string{
		"id":      doc.ID,
		"title":   doc.Title,
		"kind":    doc.Kind,
		"content": "A document was created and is now visible to the user.",
	})
}

// UpdateDocumentExecutor updates an existing document.
type UpdateDocumentExecutor struct {
	store *DocumentStore
}

var _ Executor = (*UpdateDocumentExecutor)(nil)

func NewUpdateDocumentExecutor(store *DocumentStore) *UpdateDocumentExecutor {
	return &UpdateDocumentExecutor{store: store}
}

func (e *UpdateDocumentExecutor) Name() string { return "update_document" }

func (e *UpdateDocumentExecutor) Description() string {
	return "Update a document with the given description"
}

func (e *UpdateDocumentExecutor) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string"},
			"description": {"type": "string"}
		},
		"required": ["id", "description"]
	}`)
}

func (e *UpdateDocumentExecutor) Execute(_ context.Context, args string) (string, error) {
	var params struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("parsing update_document arguments: %w", err)
	}

	doc, ok := e.store.get(params.ID)
	if !ok {
		return "", fmt.Errorf("document not found")
	}

	return toolJSON(map[string]string{
		"id":      doc.ID,
		"title":   doc.Title,
		"kind":    doc.Kind,
		"content": "The document has been updated successfully.",
	})
}

// RequestSuggestionsExecutor asks for suggestions on a document.
type RequestSuggestionsExecutor struct {
	store *DocumentStore
}

var _ Executor = (*RequestSuggestionsExecutor)(nil)

func NewRequestSuggestionsExecutor(store *DocumentStore) *RequestSuggestionsExecutor {
	return &RequestSuggestionsExecutor{store: store}
}

func (e *RequestSuggestionsExecutor) Name() string { return "request_suggestions" }

func (e *RequestSuggestionsExecutor) Description() string {
	return "Request suggestions for a document"
}

func (e *RequestSuggestionsExecutor) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"documentId": {"type": "string"}
		},
		"required": ["documentId"]
	}`)
}

func (e *RequestSuggestionsExecutor) Execute(_ context.Context, args string) (string, error) {
	var params struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("parsing request_suggestions arguments: %w", err)
	}

	doc, ok := e.store.get(params.DocumentID)
	if !ok {
		return "", fmt.Errorf("document not found")
	}

	return toolJSON(map[string]string{
		"id":      doc.ID,
		"title":   doc.Title,
		"kind":    doc.Kind,
		"message": "Suggestions have been added to the document",
	})
}

// DefaultToolSet wires the fixed capability set: weather lookup plus the
// document tools sharing one store.
func DefaultToolSet() *ToolSet {
	store := NewDocumentStore()
	return NewToolSet(
		NewWeatherExecutor("", nil),
		NewCreateDocumentExecutor(store),
		NewUpdateDocumentExecutor(store),
		NewRequestSuggestionsExecutor(store),
	)
}

func toolJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding tool output: %w", err)
	}
	return string(out), nil
}
