package transport

import (
	"encoding/json"
	"net/http"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// HTTPStatusFromError maps a ChatError kind to the corresponding HTTP
// status code. Transport-level errors (body too large, unsupported
// content type) are handled separately by the HTTP adapter.
func HTTPStatusFromError(err *api.ChatError) int {
	switch err.Kind {
	case api.KindBadRequest:
		return http.StatusBadRequest
	case api.KindUnauthorized:
		return http.StatusUnauthorized
	case api.KindForbidden:
		return http.StatusForbidden
	case api.KindRateLimit:
		return http.StatusTooManyRequests
	case api.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response in the taxonomy
// format: {"code": "kind:subject", "message": "..."}. It sets the
// Content-Type header and writes the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, chatErr *api.ChatError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Code:    chatErr.Code(),
		Message: chatErr.Message,
	})
}

// WriteChatError writes a ChatError response, deriving the HTTP status
// code from the error kind.
func WriteChatError(w http.ResponseWriter, chatErr *api.ChatError) {
	WriteErrorResponse(w, chatErr, HTTPStatusFromError(chatErr))
}
