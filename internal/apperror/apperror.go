// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes in handler/response.go. Sentinel errors sit at the root of every
// error chain so callers can classify with errors.Is regardless of how many
// times the error was wrapped with %w on the way up.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // human-readable error message
	Field   string // optional: field causing the error
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

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// IsNotFound reports whether err classifies as not-found anywhere in its
// chain.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err classifies as a client input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUpstream reports whether err classifies as an external-dependency
// failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// Unauthorized returns an AppError for requests lacking a valid session.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream returns an AppError for failures of an external dependency
// (GitHub's API, an arbitrary URL being scraped). Single attempt, no retry —
// upstream failures are terminal for the request that triggered them.
func Upstream(source, message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("%s: %s", source, message),
	}
}
