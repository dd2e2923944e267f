// Package service holds the marketplace business rules: the subscription
// gate, listing validation and visibility, moderation, chats, offers and
// the subscription expiry sweep.  Services depend on the small store
// interfaces below; the repository package provides the MySQL
// implementations.
package service

import (
    "errors"
    "fmt"
)

// Errors returned by services.  Handlers map them to HTTP status codes.
var (
    ErrUnauthorized = errors.New("unauthorized")
    ErrForbidden    = errors.New("forbidden")
    ErrNotFound     = errors.New("not found")
)

// ValidationError reports malformed or rule-breaking input.  Field names the
// first offending input field, using its JSON name.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
    return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
    var ve *ValidationError
    if errors.As(err, &ve) {
        return ve, true
    }
    return nil, false
}
