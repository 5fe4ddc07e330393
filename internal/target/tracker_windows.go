//go:build windows

package target

import (
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procIsWindow       = user32.NewProc("IsWindow")
	procIsIconic       = user32.NewProc("IsIconic")
	procGetClientRect  = user32.NewProc("GetClientRect")
	procClientToScreen = user32.NewProc("ClientToScreen")
)

type point struct {
	X, Y int32
}

// Win32Tracker queries a top-level window by HWND
type Win32Tracker struct {
	hwnd windows.HWND
}

// NewWindowTracker creates a tracker for the native window handle
func NewWindowTracker(handle uintptr) (Tracker, error) {
	return &Win32Tracker{hwnd: windows.HWND(handle)}, nil
}

// Refresh reads the client rectangle in screen coordinates
func (t *Win32Tracker) Refresh() Window {
	win := Window{Handle: uintptr(t.hwnd)}

	if r, _, _ := procIsWindow.Call(uintptr(t.hwnd)); r == 0 {
		return win
	}

	var rc windows.Rect
	if r, _, _ := procGetClientRect.Call(uintptr(t.hwnd), uintptr(unsafe.Pointer(&rc))); r == 0 {
		return win
	}

	var origin point
	if r, _, _ := procClientToScreen.Call(uintptr(t.hwnd), uintptr(unsafe.Pointer(&origin))); r == 0 {
		return win
	}

	iconic, _, _ := procIsIconic.Call(uintptr(t.hwnd))

	win.Alive = true
	win.Minimized = iconic != 0
	win.Rect = image.Rect(
		int(origin.X),
		int(origin.Y),
		int(origin.X+rc.Right-rc.Left),
		int(origin.Y+rc.Bottom-rc.Top),
	)
	return win
}
