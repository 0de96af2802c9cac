package studioapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches (via errors.Is) any APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the job store.
type APIError struct {
	StatusCode int
	Message    string
}

func newAPIError(status int, body string) *APIError {
	msg := body
	if msg == "" {
		msg = fmt.Sprintf("request failed: %d", status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError is a request rejected locally, before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
