package alert

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("alert not found")
	ErrNotOwner = errors.New("alert belongs to another user")
)

// MissingFieldError reports a required scalar field that is absent from the
// payload. Numeric zero is a legitimate value and is never treated as missing.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidFieldError reports a field that is present but malformed
// (bad enum value, malformed wallet address).
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// EmptyCollectionError reports a required collection with zero elements.
type EmptyCollectionError struct {
	Field string
}

func (e *EmptyCollectionError) Error() string {
	return fmt.Sprintf("field %q must contain at least one entry", e.Field)
}

// InvalidConditionError names the offending condition by index.
type InvalidConditionError struct {
	Index  int
	Reason string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid condition at index %d: %s", e.Index, e.Reason)
}

// InvalidChannelError names the offending delivery channel by index.
type InvalidChannelError struct {
	Index  int
	Reason string
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("invalid delivery channel at index %d: %s", e.Index, e.Reason)
}
