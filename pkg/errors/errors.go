package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an application error
type ErrorType string

const (
	ErrorTypeInvalidInput   ErrorType = "invalid_input"
	ErrorTypeInvalidPoll    ErrorType = "invalid_poll"
	ErrorTypePollClosed     ErrorType = "poll_closed"
	ErrorTypeInvalidOption  ErrorType = "invalid_option"
	ErrorTypeAlreadyVoted   ErrorType = "already_voted"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeStorage        ErrorType = "storage_failure"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
)

// Sentinels for errors.Is. Matching is by Type only, so an AppError with a
// custom message still satisfies errors.Is(err, ErrAlreadyVoted).
var (
	ErrInvalidInput  = &AppError{Type: ErrorTypeInvalidInput}
	ErrInvalidPoll   = &AppError{Type: ErrorTypeInvalidPoll}
	ErrPollClosed    = &AppError{Type: ErrorTypePollClosed}
	ErrInvalidOption = &AppError{Type: ErrorTypeInvalidOption}
	ErrAlreadyVoted  = &AppError{Type: ErrorTypeAlreadyVoted}
	ErrNotFound      = &AppError{Type: ErrorTypeNotFound}
	ErrStorage       = &AppError{Type: ErrorTypeStorage}
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an AppError of the same type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewInvalidInputError creates a new validation error
func NewInvalidInputError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewInvalidPollError reports a poll id that does not resolve
func NewInvalidPollError() *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidPoll,
		Message:    "Invalid poll ID.",
		StatusCode: http.StatusBadRequest,
	}
}

// NewPollClosedError reports a vote against an inactive poll
func NewPollClosedError() *AppError {
	return &AppError{
		Type:       ErrorTypePollClosed,
		Message:    "This poll is no longer active.",
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidOptionError reports an option that is not part of the poll
func NewInvalidOptionError() *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidOption,
		Message:    "Invalid option ID for this poll.",
		StatusCode: http.StatusBadRequest,
	}
}

// NewAlreadyVotedError reports a second vote for the same (poll, voter) pair.
// internal carries the storage conflict when the duplicate was inferred from it.
func NewAlreadyVotedError(internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeAlreadyVoted,
		Message:    "This device has already voted in this poll.",
		StatusCode: http.StatusConflict,
		Internal:   internal,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewStorageError wraps a persistence failure
func NewStorageError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// As extracts the AppError from an error chain. Anything that is not an
// AppError is reported as a storage failure so it never leaks as a 200.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewStorageError("An unexpected error occurred.", err)
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the payload of ErrorResponse
type ErrorBody struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
	Timestamp string                 `json:"timestamp"`
}
