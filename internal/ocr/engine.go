package ocr

import "image"

// Line is one recognized text line in image coordinates
type Line struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Engine recognizes text lines in an image, in reading order
type Engine interface {
	Lines(img image.Image) ([]Line, error)
	Close() error
}
