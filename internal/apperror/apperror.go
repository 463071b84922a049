// Package apperror defines the error kinds the service layer returns.
//
// Every kind is a sentinel (ErrNotFound, ErrForbidden, ...) wrapped in an
// *AppError that carries the human-readable message. Callers test the kind
// with errors.Is and read the message with errors.As; HTTP handlers map the
// kind to a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AppError is a kind plus the text shown to the client.
type AppError struct {
	Err     error
	Message string
	Field   string // request field at fault, validation only
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

// NotFound names the missing resource, e.g. "punch p-1 not found".
func NotFound(resource, id string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

// Conflict reports a uniqueness violation, e.g. a slug already in use.
func Conflict(resource, message string) *AppError {
	return &AppError{Err: ErrConflict, Message: resource + ": " + message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Unauthenticated means no verified identity accompanied the request.
func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

// FieldOf returns the offending field of a validation error anywhere in
// err's chain, or "".
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
