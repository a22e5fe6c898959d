package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every *InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyResult matches every *EmptyResultError via errors.Is.
	ErrEmptyResult = errors.New("empty result set")
)

// InvalidInputError reports an out-of-range or malformed simulation/aggregation
// parameter. It is always fatal: callers must not continue with partial results.
type InvalidInputError struct {
	Field      string
	Value      any
	Constraint string
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid input: %s %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("invalid input: %s=%v %s", e.Field, e.Value, e.Constraint)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid builds an *InvalidInputError.
func Invalid(field string, value any, constraint string) error {
	return &InvalidInputError{Field: field, Value: value, Constraint: constraint}
}

// EmptyResultError is returned when a filter yields zero matching buildings.
// It is not fatal; callers surface it as an explicit empty state.
type EmptyResultError struct {
	Filter     string
	Suggestion string
}

func (e *EmptyResultError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("no buildings match %s", e.Filter)
	}
	return fmt.Sprintf("no buildings match %s (%s)", e.Filter, e.Suggestion)
}

func (e *EmptyResultError) Is(target error) bool { return target == ErrEmptyResult }
