package models

import "errors"

// ErrNotFound reports that an id did not resolve to an existing record.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected request payload.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError with the given message.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }
