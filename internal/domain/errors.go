package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlatform   = errors.New("unknown app platform")
	ErrUnknownPart       = errors.New("unknown integration part")
	ErrMalformedDocument = errors.New("malformed document")
)

// UnknownValueError reports an unrecognized enum value in a request.
type UnknownValueError struct {
	Kind  string
	Value string
	Err   error
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

func (e *UnknownValueError) Unwrap() error { return e.Err }

// MalformedError wraps a parse failure of a persisted project file.
type MalformedError struct {
	Format string
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Format, e.Err)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedDocument }

// Cause returns the underlying parser error.
func (e *MalformedError) Cause() error { return e.Err }
