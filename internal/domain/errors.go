package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNetwork        = errors.New("network error")
	ErrSubmitInFlight = errors.New("booking submission already in flight")
)

// ValidationError is shown inline and never sent to the server.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// APIError is a 4xx answer the backend explained with {"error": "..."}.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string { return fmt.Sprintf("api %d: %s", e.Status, e.Msg) }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
