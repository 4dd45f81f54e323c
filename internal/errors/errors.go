package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAuth:
		return "auth_error"
	case KindNotFound:
		return "not_found_error"
	case KindConflict:
		return "conflict_error"
	default:
		return "internal_error"
	}
}

var (
	// ErrInvalidCredentials is returned for any failed login, whether the email or the password is wrong.
	ErrInvalidCredentials = Auth("invalid credentials")
	// ErrInvalidResetToken is returned when a reset token does not match or has expired.
	ErrInvalidResetToken = Auth("invalid or expired reset token")
	// ErrWrongPassword is returned when the current password supplied to a change request is wrong.
	ErrWrongPassword = Auth("current password is incorrect")
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = Conflict("user with this email already exists")
	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = NotFound("user not found")
	// ErrTransactionNotFound covers both missing transactions and ones owned by someone else.
	ErrTransactionNotFound = NotFound("transaction not found")
)

// Error is an application error carrying its kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Auth builds an authentication error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound builds a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected failure. Its message is never shown to callers.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Kind       Kind
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, kind Kind) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Kind:       kind,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", KindInternal)
	}
	switch appErr.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, appErr.Message, appErr.Kind)
	case KindAuth:
		return NewHTTPError(http.StatusUnauthorized, appErr.Message, appErr.Kind)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, appErr.Message, appErr.Kind)
	case KindConflict:
		return NewHTTPError(http.StatusConflict, appErr.Message, appErr.Kind)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", KindInternal)
	}
}
