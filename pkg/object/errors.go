package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no object exists for a digest.
	ErrNotFound = errors.New("object not found")
	// ErrCorruptData covers bad frames, bad compressed streams and
	// malformed payloads.
	ErrCorruptData = errors.New("corrupt object data")
	// ErrUnknownType means a type tag is not blob, tree, commit or tag.
	ErrUnknownType = errors.New("unknown object type")
	// ErrTypeMismatch is returned by the typed read helpers when the stored
	// object is a different variant.
	ErrTypeMismatch = errors.New("object type mismatch")
)

// Error describes a failed store operation on a single object. Kind is one
// of the sentinel errors above; errors.Is matches both Kind and Err.
type Error struct {
	Op   string
	Hash Hash
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Hash, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s %s: %v", e.Op, e.Hash, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Hash, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func objectError(op string, h Hash, kind, err error) error {
	return &Error{Op: op, Hash: h, Kind: kind, Err: err}
}

// corruptf returns an error wrapping ErrCorruptData.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptData, fmt.Sprintf(format, args...))
}
