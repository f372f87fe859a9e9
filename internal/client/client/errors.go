package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork      = errors.New("network failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a completed backend response with a non-2xx status.
// Message is the backend's "error" field and is empty when the body
// could not be parsed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// RejectionMessage returns the backend's message for a rejection, or
// fallback when err is a rejection without a parsable message. For any other
// error it returns err's own text.
func RejectionMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return err.Error()
}
