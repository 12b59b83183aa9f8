package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure a request can end in.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindUpstream       ErrorKind = "upstream"
)

// AppError carries a client-safe message plus the wrapped cause, which is
// only ever logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func Invalid(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// InvalidWithDetails is a validation error whose details are shown to the client.
func InvalidWithDetails(message, details string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Upstream wraps a database or identity provider failure. The cause is kept
// for logs and never serialized.
func Upstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// AsAppError unwraps err into an AppError. Anything unclassified becomes an
// upstream error carrying fallback as its message.
func AsAppError(err error, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Upstream(fallback, err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusFor maps an error onto its HTTP status code.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
