//go:build !windows

package capture

import "errors"

// NewScreenCapturer is only implemented for Windows; use a replay source elsewhere
func NewScreenCapturer() (Capturer, error) {
	return nil, errors.New("screen capture is only available on Windows")
}
