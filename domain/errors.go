package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalid         ErrorCode = "INVALID"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal        ErrorCode = "INTERNAL"
	ErrCodeNotReady        ErrorCode = "NOT_READY"
	ErrCodeInvalidTraining ErrorCode = "INVALID_TRAINING"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes sentinel errors match wrapped copies carrying the same code and
// message, so errors.Is works across layers.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound        = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound     = NewError(ErrCodeNotFound, "session not found")
	ErrUserExists          = NewError(ErrCodeConflict, "username or email already registered")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrTaskForbidden       = NewError(ErrCodeForbidden, "task belongs to another user")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrActualTimeSet       = NewError(ErrCodeConflict, "actual time already recorded")
	ErrAlreadyCompleted    = NewError(ErrCodeConflict, "task already completed")
	ErrModelNotReady       = NewError(ErrCodeNotReady, "estimation model has not been trained")
	ErrInvalidTrainingData = NewError(ErrCodeInvalidTraining, "training corpus is missing required columns")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
