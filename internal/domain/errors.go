package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for classifying failures without importing the HTTP layer.
// The api package wraps these so commands can branch on categories:
//
//	if errors.Is(err, domain.ErrUnauthorized) { ... }
var (
	// ErrUnauthorized indicates the backend rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates a local precondition failed before any
	// request was sent.
	ErrValidation = errors.New("validation failed")

	// ErrMissingToken indicates a login response carried no token.
	ErrMissingToken = errors.New("login response did not include a token")
)

// ValidationError reports a local form problem. Field is empty when the
// problem is not tied to a single input (e.g. mismatched passwords).
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

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserMessage returns the text shown to the user for err. Errors that carry a
// server-supplied body surface that body verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var msg interface{ UserMessage() string }
	if errors.As(err, &msg) {
		if s := strings.TrimSpace(msg.UserMessage()); s != "" {
			return s
		}
	}
	return err.Error()
}
