package api

import (
	"fmt"
	"net/http"
	"strings"

	"netmonlabs/netmon/internal/domain"
)

// RequestError is returned when the backend answers with a non-2xx status.
// Body holds the raw response text, which the backend uses as its message.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// UserMessage is the text to show the user.
func (e *RequestError) UserMessage() string {
	return e.Error()
}

// Is maps authentication failures onto domain.ErrUnauthorized.
func (e *RequestError) Is(target error) bool {
	if target == domain.ErrUnauthorized {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// TransportError is returned when the request never produced a response
// (connection refused, DNS failure, timeout, cancellation).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: backend unreachable: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
