package api

import "strings"

// maxMessageLength bounds the text content of one incoming message.
const maxMessageLength = 16000

// ValidateCreateTurn checks the shape of a POST /chat payload.
// Returns a bad_request:api error describing the first problem found,
// or nil if the request is well formed.
func ValidateCreateTurn(req *CreateTurnRequest) *ChatError {
	if req == nil {
		return NewBadRequestError("missing request body")
	}
	if !ValidID(req.ID) {
		return NewBadRequestError("id must be a UUID")
	}
	if !ValidID(req.Message.ID) {
		return NewBadRequestError("message.id must be a UUID")
	}
	if len(req.Message.Parts) == 0 {
		return NewBadRequestError("message.parts must not be empty")
	}
	text := strings.TrimSpace(req.Message.Text())
	if text == "" {
		return NewBadRequestError("message must contain text")
	}
	if len(text) > maxMessageLength {
		return NewBadRequestError("message text exceeds maximum length")
	}
	if req.SelectedModel == "" {
		return NewBadRequestError("selectedModel is required")
	}
	switch req.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return NewBadRequestError("visibility must be public or private")
	}
	if req.SearchCategory != "" && !ValidSearchCategory(req.SearchCategory) {
		return NewBadRequestError("unknown search category " + req.SearchCategory)
	}
	for _, a := range req.Message.Attachments {
		if a.URL == "" {
			return NewBadRequestError("attachment url must not be empty")
		}
	}
	return nil
}
