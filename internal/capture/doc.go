// Package capture grabs the pixels of the target window's client area
// and prepares them for OCR.
//
// A Capturer returns ErrOccluded when the frame cannot be read this cycle
// (the caller skips it) and ErrUnavailable when capturing has stopped
// working for good (the caller stops the pipeline).
package capture
