//go:build !cgo

package ocr

import (
	"errors"
	"image"
)

var errNoTesseract = errors.New("tesseract OCR requires a cgo build")

// TesseractEngine is unavailable without cgo
type TesseractEngine struct{}

// NewTesseractEngine always fails in builds without cgo
func NewTesseractEngine(language string) (*TesseractEngine, error) {
	return nil, errNoTesseract
}

func (e *TesseractEngine) Lines(img image.Image) ([]Line, error) {
	return nil, errNoTesseract
}

func (e *TesseractEngine) Close() error { return nil }
