package core

import "errors"

// Error codes for protocol errors.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeInternal       = "internal"
)

// ErrHubStopped is returned by hub queries after Run has exited.
var ErrHubStopped = errors.New("hub stopped")

// ErrSlowConsumer closes a client that could not keep up with its events.
var ErrSlowConsumer = errors.New("client too slow")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
