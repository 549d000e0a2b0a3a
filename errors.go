package gfxhal

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxhal/chip"
	"github.com/gogpu/gfxhal/pipeline"
	"github.com/gogpu/gfxhal/settings"
)

// Errors returned across the module boundary. They alias the sub-package
// sentinels so either can be matched with errors.Is.
var (
	ErrUnsupportedRevision = chip.ErrUnsupportedRevision
	ErrOutOfMemory         = pipeline.ErrOutOfMemory
	ErrConstructionFailed  = pipeline.ErrConstructionFailed
	ErrNotReady            = settings.ErrNotReady
)

// ErrClosed is returned by methods of a closed Device.
var ErrClosed = errors.New("gfxhal: device closed")

// Code classifies an error for callers that report status codes instead of
// Go errors.
type Code uint8

// Boundary codes.
const (
	Success Code = iota
	UnsupportedRevision
	OutOfMemory
	ConstructionFailed
	NotReady

	// Other covers errors outside the boundary codes, such as a settings
	// file that cannot be read.
	Other
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case UnsupportedRevision:
		return "UnsupportedRevision"
	case OutOfMemory:
		return "OutOfMemory"
	case ConstructionFailed:
		return "ConstructionFailed"
	case NotReady:
		return "NotReady"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
}

// CodeOf returns the boundary code for err. Codes are matched in declaration
// order, so a joined error from a parallel batch reports the lowest code any
// member carries.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrUnsupportedRevision):
		return UnsupportedRevision
	case errors.Is(err, ErrOutOfMemory):
		return OutOfMemory
	case errors.Is(err, ErrConstructionFailed):
		return ConstructionFailed
	case errors.Is(err, ErrNotReady):
		return NotReady
	default:
		return Other
	}
}
