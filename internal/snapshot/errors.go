package snapshot

import (
	"errors"
	"fmt"
)

// Sentinels for import failures. Every error returned by Parse is an
// *ImportError wrapping one of these.
var (
	ErrSyntax       = errors.New("invalid JSON")
	ErrShape        = errors.New("JSON must be an array")
	ErrItemType     = errors.New("is invalid")
	ErrMissingField = errors.New("missing fields")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrSchema       = errors.New("does not match the stack schema")
)

// ImportError locates an import failure. Index is 1-based and zero for
// failures of the document as a whole.
type ImportError struct {
	Index int
	Field string
	Err   error
	// Detail carries the underlying parser or schema message, if any.
	Detail string
}

func (e *ImportError) Error() string {
	msg := e.Err.Error()
	if e.Index > 0 {
		msg = fmt.Sprintf("Item %d %s", e.Index, msg)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }

// ValidationError is one schema violation found by Validate.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
