package pipeline

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	// ErrOutOfMemory is returned when the allocator cannot supply a
	// pipeline's backing memory. Nothing was constructed.
	ErrOutOfMemory = errors.New("pipeline: out of memory")

	// ErrConstructionFailed matches every *ConstructionError.
	ErrConstructionFailed = errors.New("pipeline: construction failed")
)

// ConstructionError reports a device failure while building one kind. The
// backing memory was released before it was returned.
type ConstructionError struct {
	Kind Kind
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("pipeline: construct %s: %v", e.Kind, e.Err)
}

// Unwrap returns the device error.
func (e *ConstructionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConstructionFailed.
func (e *ConstructionError) Is(target error) bool { return target == ErrConstructionFailed }
