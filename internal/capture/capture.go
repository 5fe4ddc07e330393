package capture

import (
	"errors"
	"image"
)

var (
	// ErrOccluded means the window is hidden or minimized right now
	ErrOccluded = errors.New("capture: window occluded")
	// ErrUnavailable means no more frames can be produced
	ErrUnavailable = errors.New("capture: source unavailable")
)

// Capturer produces a frame for a client rectangle in screen coordinates.
// The returned image has the size of rect with its origin at (0, 0).
type Capturer interface {
	Capture(rect image.Rectangle) (image.Image, error)
}
