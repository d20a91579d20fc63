package api

import (
	"fmt"
	"net/http"
)

// Error is the single failure value of the access layer. Error() is the
// human-readable message only; Status is zero when the request never completed.
type Error struct {
	Status     int
	StatusText string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetwork reports a transport failure (no HTTP response was received)
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

func networkError(err error) *Error {
	return &Error{Message: fmt.Sprintf("Network error: %v", err), Err: err}
}

func statusError(status int, statusText, message string) *Error {
	if message == "" {
		message = statusLine(status, statusText)
	}
	return &Error{Status: status, StatusText: statusText, Message: message}
}

func statusLine(status int, statusText string) string {
	return fmt.Sprintf("API Error: %d %s", status, statusText)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
