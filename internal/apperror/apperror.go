// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer maps them to status codes
// (handler/response.go). Keeping the taxonomy here means the service layer
// never imports net/http and every entry point maps failures identically:
//
//	ErrValidation   → 400  malformed or policy-violating input
//	ErrUnauthorized → 401  bad credentials, missing/expired/invalid token
//	ErrForbidden    → 403  authenticated but not allowed
//	ErrNotFound     → 404  missing — or deliberately hidden — resource
//	ErrConflict     → 409  unique-constraint violation
//	anything else   → 500  generic, details never leak to the client
//
// ErrNotFound doubles as the "existence must not leak" error: a snippet the
// caller may not see 404s rather than 403s, so probing IDs reveals nothing.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel from the set above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, detail string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, detail),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for failed authentication. The message
// is intentionally generic for credential failures — callers must not be
// able to distinguish "unknown email" from "wrong password".
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
