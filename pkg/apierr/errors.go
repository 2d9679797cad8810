package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is the machine readable error code carried in error bodies.
type Code string

const (
	CodeValidation    Code = "validation_error"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeTransient     Code = "transient_error"
	CodeAuthorization Code = "authorization_error"
	CodeInternal      Code = "internal_error"
)

// ValidationError reports missing or malformed request fields.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	}
	return "invalid request"
}

// NotFoundError reports a nonexistent grant or credential.
type NotFoundError struct {
	Kind string
	ID   string
	// Message, when set, replaces the generated text. Clients use it to
	// surface the server's own wording.
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a request that contradicts existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// TransientError wraps a failure that may succeed when retried.
type TransientError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransientError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.StatusCode)
	}
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// AuthorizationError reports a missing or rejected credential.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// Validation returns a ValidationError naming the missing fields.
func Validation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Validationf returns a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFoundError.
func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// Conflictf returns a ConflictError with a formatted message.
func Conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps an error onto the HTTP status the server answers with.
func StatusCode(err error) int {
	var (
		validation    *ValidationError
		notFound      *NotFoundError
		conflict      *ConflictError
		transient     *TransientError
		authorization *AuthorizationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &authorization):
		return http.StatusUnauthorized
	case errors.As(err, &transient):
		if transient.StatusCode != 0 {
			return transient.StatusCode
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the error code for err.
func CodeOf(err error) Code {
	switch StatusCode(err) {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnauthorized:
		return CodeAuthorization
	case http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeTransient
	}
}

// FromStatus builds the error a client should surface for a non-2xx response.
func FromStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized:
		return &AuthorizationError{Message: message}
	case status == http.StatusNotFound:
		return &NotFoundError{Message: message}
	case status == http.StatusConflict:
		return &ConflictError{Message: message}
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{StatusCode: status, Message: message}
	default:
		return &ValidationError{Message: message}
	}
}

// IsRetryable reports whether err is a TransientError.
func IsRetryable(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
