// Package liberrors defines the error taxonomy shared by all record
// keeper components. Every error is recoverable by the caller: an
// operation that fails with one of these performs no mutation at all.
package liberrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Kind string // "book", "member", "loan"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConflictError reports an operation that would violate a
// state-machine invariant (already borrowed, already reserved).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// LimitExceededError reports a member hitting the borrowing cap.
type LimitExceededError struct {
	MemberID int64
	Limit    int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("member %d has reached the borrowing limit of %d books", e.MemberID, e.Limit)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsLimitExceeded reports whether err is a LimitExceededError.
func IsLimitExceeded(err error) bool {
	var target *LimitExceededError
	return errors.As(err, &target)
}
