package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInstanceNotFound    = errors.New("instance not found")
	ErrProjectionMismatch  = errors.New("projection mismatch")
	ErrEmptyCollectingID   = errors.New("empty collecting id")
	ErrEmptyCorrelationID  = errors.New("empty correlation id")
	ErrEmptyCommandName    = errors.New("empty command name")
	ErrNilValidationResult = errors.New("nil validation result")
)

// InstanceNotFoundError is raised by projections when the entity an event refers to is missing.
type InstanceNotFoundError struct {
	Kind string
	ID   string
}

func (e InstanceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, ErrInstanceNotFound)
}

func (e InstanceNotFoundError) Unwrap() error {
	return ErrInstanceNotFound
}

// ProjectionMismatchError is raised when the read model is not in the state the event expects.
type ProjectionMismatchError struct {
	Kind     string
	ID       string
	Expected int64
	Actual   int64
}

func (e ProjectionMismatchError) Error() string {
	return fmt.Sprintf("%s %s: expected version %d, got %d: %v", e.Kind, e.ID, e.Expected, e.Actual, ErrProjectionMismatch)
}

func (e ProjectionMismatchError) Unwrap() error {
	return ErrProjectionMismatch
}
