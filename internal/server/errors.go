// Package server is a reference implementation of the resume backend: positional
// /resume/{kind} lists plus description suggestions. It backs local development and tests.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-editor/internal/types"
)

// ErrPositionOutOfRange indicates a position that does not address a stored record
type ErrPositionOutOfRange struct {
	Kind     types.Kind
	Position int
	Length   int
}

func (e *ErrPositionOutOfRange) Error() string {
	return fmt.Sprintf("%s index %d out of range (length %d)", e.Kind, e.Position, e.Length)
}

// ErrUnknownKind indicates a collection the backend does not serve
type ErrUnknownKind struct {
	Kind string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown collection: %s", e.Kind)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSuggestionUnavailable indicates the suggestion generator failed
type ErrSuggestionUnavailable struct {
	Cause error
}

func (e *ErrSuggestionUnavailable) Error() string {
	return fmt.Sprintf("suggestion service error: %v", e.Cause)
}

func (e *ErrSuggestionUnavailable) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		outOfRange  *ErrPositionOutOfRange
		unknownKind *ErrUnknownKind
		validation  *ErrValidation
		recordErr   *types.ValidationError
		suggestion  *ErrSuggestionUnavailable
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &outOfRange), errors.As(err, &unknownKind):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &recordErr):
		return http.StatusBadRequest
	case errors.As(err, &suggestion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
