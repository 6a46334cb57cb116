package api

// ErrorKind is the failure category of a ChatError.
type ErrorKind string

const (
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindRateLimit    ErrorKind = "rate_limit"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// ChatError is a structured error with a stable machine-readable
// "kind:subject" code. All failures surfaced to clients before
// streaming begins are ChatErrors; anything else is collapsed into a
// generic stream-level error event.
type ChatError struct {
	Kind    ErrorKind `json:"kind"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
}

// Code returns the "kind:subject" taxonomy code.
func (e *ChatError) Code() string {
	return string(e.Kind) + ":" + e.Subject
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	return e.Code() + ": " + e.Message
}

// ErrorResponse wraps a ChatError for JSON serialization.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBadRequestError reports a malformed request payload.
func NewBadRequestError(message string) *ChatError {
	if message == "" {
		message = "the request could not be processed, check your input and try again"
	}
	return &ChatError{Kind: KindBadRequest, Subject: "api", Message: message}
}

// NewUnauthorizedError reports a missing or invalid session.
func NewUnauthorizedError() *ChatError {
	return &ChatError{Kind: KindUnauthorized, Subject: "chat", Message: "you need to sign in to continue"}
}

// NewForbiddenError reports an ownership violation.
func NewForbiddenError() *ChatError {
	return &ChatError{Kind: KindForbidden, Subject: "chat", Message: "this chat belongs to another user"}
}

// NewRateLimitError reports an exhausted daily message quota.
func NewRateLimitError() *ChatError {
	return &ChatError{Kind: KindRateLimit, Subject: "chat", Message: "you have exceeded your maximum number of messages for the day"}
}

// NewChatNotFoundError reports a missing chat.
func NewChatNotFoundError() *ChatError {
	return &ChatError{Kind: KindNotFound, Subject: "chat", Message: "the requested chat was not found"}
}

// NewStreamNotFoundError reports a missing resumable stream.
func NewStreamNotFoundError() *ChatError {
	return &ChatError{Kind: KindNotFound, Subject: "stream", Message: "the requested stream was not found"}
}

// NewInternalError reports an unexpected server failure.
func NewInternalError(message string) *ChatError {
	if message == "" {
		message = "something went wrong, please try again later"
	}
	return &ChatError{Kind: KindInternal, Subject: "api", Message: message}
}
