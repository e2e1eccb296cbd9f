package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	ErrInvalidPath = errors.New("invalid path")
	ErrFormat      = errors.New("invalid recipe format")
	ErrOutOfRange  = errors.New("index out of range")
	ErrIO          = errors.New("i/o failure")
)

// InvalidPathError is returned when the backing file path cannot be resolved
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid path %q", e.Path)
	}
	return fmt.Sprintf("invalid path %q: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrInvalidPath and the underlying cause
func (e *InvalidPathError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidPath}
	}
	return []error{ErrInvalidPath, e.Err}
}

// FormatError describes a structural problem in recipe text.
// Line is 1-based; zero means the error is not tied to a line.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return e.Reason
}

// Unwrap returns ErrFormat
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// OutOfRangeError is returned for an index outside [0, Len)
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// Unwrap returns ErrOutOfRange
func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// IOError wraps a read or write failure on the backing file
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrIO and the underlying cause
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
