package types

import "fmt"

// ValidationError means the input was malformed or missing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError means the actor lacks authority for the requested action.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError means a state precondition was not met, a concurrent
// mutation won the race, or an optimistic-concurrency check failed.
// CurrentStatus/RequestedStatus are set for status-transition conflicts so
// callers always see which transition was rejected; StaleEdit marks the
// optimistic-lock variant.
type ConflictError struct {
	Message         string
	CurrentStatus   string
	RequestedStatus string
	StaleEdit       bool
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewStatusConflictError(current, requested string) *ConflictError {
	return &ConflictError{
		Message:         fmt.Sprintf("cannot transition from '%s' to '%s'", current, requested),
		CurrentStatus:   current,
		RequestedStatus: requested,
	}
}

func NewStaleEditError() *ConflictError {
	return &ConflictError{
		Message:   "the request was modified by someone else, reload and try again",
		StaleEdit: true,
	}
}

// NotFoundError means the referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// TransientError means an external collaborator was unreachable or timed
// out. Safe to retry; local state did not change.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
