//go:build !windows

package target

import "fmt"

// NewWindowTracker is only implemented for Windows; use a replay source elsewhere
func NewWindowTracker(handle uintptr) (Tracker, error) {
	return nil, fmt.Errorf("native window tracking (handle %#x) is only available on Windows", handle)
}
