package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeInvalid    ErrorCode = "INVALID"
	ErrCodeConstraint ErrorCode = "CONSTRAINT"
	ErrCodeInternal   ErrorCode = "INTERNAL"
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
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrConstraintViolation = NewError(ErrCodeConstraint, "constraint violation")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
)

// NotFoundError builds the not-found error reported for a specific task id.
func NotFoundError(id string) *Error {
	return WrapError(ErrCodeNotFound, fmt.Sprintf("Task with ID %s does not exist", id), ErrTaskNotFound)
}

// ConstraintError classifies a store-level rejection.
func ConstraintError(err error) *Error {
	return WrapError(ErrCodeConstraint, ErrConstraintViolation.Message, err)
}

// ValidationError lists every input rule a request broke.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// Code lets ValidationError take part in code-based classification.
func (e *ValidationError) Code() ErrorCode {
	return ErrCodeInvalid
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return code == ErrCodeInvalid
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
