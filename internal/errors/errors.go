package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrNotFound = errors.New("resource not found")

// NetworkError - запрос не дошел до API (transport failure)
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError means the bearer credential is missing or expired. The caller
// should drop the session and send the user back to login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ValidationError is raised before any network call for client-side field constraints.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation is a shorthand constructor.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// APIRejection - non-2xx ответ от API с сообщением для пользователя
type APIRejection struct {
	Status  int
	Message string
}

func (e *APIRejection) Error() string {
	return e.Message
}

// Is makes a 404 rejection match ErrNotFound
func (e *APIRejection) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// IsAPIKeyFailure reports whether a 401 was caused by the API key rather than
// the user's credential.
func (e *APIRejection) IsAPIKeyFailure() bool {
	return strings.Contains(e.Message, "API key")
}

// Message extracts the text that should be shown to the user for err.
func Message(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var r *APIRejection
	if errors.As(err, &r) {
		return r.Message
	}
	var a *AuthError
	if errors.As(err, &a) {
		return a.Error()
	}
	var n *NetworkError
	if errors.As(err, &n) {
		return "Could not reach the booking service, try again later"
	}
	if errors.Is(err, ErrForbidden) {
		return "You are not allowed to do that"
	}
	if errors.Is(err, ErrNotFound) {
		return "Not found"
	}
	return "Something went wrong, try again later"
}
