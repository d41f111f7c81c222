package task

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors at the store and service boundary.
type ErrorKind string

const (
	KindNotFound       ErrorKind = "not_found"
	KindInvalidInput   ErrorKind = "invalid_input"
	KindServiceFailure ErrorKind = "service_failure"
)

var (
	// ErrNotFound is returned when a task id is unknown
	ErrNotFound = errors.New("task not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input parameters")
	// ErrService is returned when the Task Service call fails
	ErrService = errors.New("task service failure")
)

// Error represents a task-related error
type Error struct {
	Kind ErrorKind
	// StatusCode is the HTTP status for service failures, 0 otherwise.
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrService:
		return e.Kind == KindServiceFailure
	}
	return false
}

// NotFound builds a KindNotFound error for id.
func NotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("task %q not found", id)}
}
