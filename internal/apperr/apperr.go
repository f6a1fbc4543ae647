// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these errors (possibly wrapped); handlers translate them
// into HTTP responses with Status and Message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthenticationRequired means the operation needs a signed-in user.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrPermissionDenied means the user is known but may not do this.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means the referenced entity does not exist (or is hidden).
	ErrNotFound = errors.New("not found")
	// ErrConflict means the write would break a uniqueness or reference rule.
	ErrConflict = errors.New("conflict")
	// ErrStorage means the database or an external store failed.
	ErrStorage = errors.New("storage failure")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns e when it holds messages, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Map returns the messages keyed by field; the first message per field wins.
func (e *ValidationError) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

// Invalid builds a ValidationError with a single field message.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NotFound wraps ErrNotFound with the name of the missing thing.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Conflict wraps ErrConflict with a user-facing explanation.
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// Denied wraps ErrPermissionDenied with a user-facing explanation.
func Denied(msg string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
}

// StorageError records which storage operation failed. Its message is never
// shown to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError. A nil err stays nil, and errors that
// already belong to the taxonomy are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Classified reports whether err already maps to a taxonomy kind.
func Classified(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrAuthenticationRequired) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStorage)
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns text that is safe to show to a client. Storage and
// unclassified errors collapse to a generic message.
func Message(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Please correct the highlighted fields."
	case errors.Is(err, ErrStorage), !Classified(err):
		return "Something went wrong. Please try again later."
	default:
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
}
