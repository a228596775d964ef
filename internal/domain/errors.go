package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references an activity that does
// not exist.
var ErrNotFound = errors.New("activity not found")

// ErrValidation wraps all input and rule violations: malformed recurrence or
// status values, reversed date ranges, marking a date the resolver would
// never produce.
var ErrValidation = errors.New("validation failed")

// Invalidf builds a validation error with detail. errors.Is(err, ErrValidation)
// holds for the result.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
