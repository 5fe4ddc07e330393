package target

import (
	"image"
	"sync"
)

// Window is the tracked window state at one instant.
// Rect is the client area in screen coordinates and is only meaningful
// while Alive is true.
type Window struct {
	Handle    uintptr
	Rect      image.Rectangle
	Alive     bool
	Minimized bool
}

// Tracker re-queries the window state
type Tracker interface {
	Refresh() Window
}

// StaticTracker reports a window whose geometry is set by the caller.
// It backs replay runs and tests.
type StaticTracker struct {
	mu  sync.Mutex
	win Window
}

// NewStaticTracker creates a live window at rect
func NewStaticTracker(handle uintptr, rect image.Rectangle) *StaticTracker {
	return &StaticTracker{
		win: Window{Handle: handle, Rect: rect, Alive: true},
	}
}

// Refresh returns the current window state
func (s *StaticTracker) Refresh() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.win
}

// SetRect moves or resizes the window
func (s *StaticTracker) SetRect(rect image.Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.win.Rect = rect
}

// SetMinimized changes the minimized flag
func (s *StaticTracker) SetMinimized(minimized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.win.Minimized = minimized
}

// Close marks the window as gone
func (s *StaticTracker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.win.Alive = false
}
