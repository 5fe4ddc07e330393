package capture

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// Preprocess converts a frame to grayscale, boosts its contrast and scales
// it by factor. Small UI text recognizes much better after upscaling.
// Callers divide recognized boxes by the same factor to get back to frame
// coordinates.
func Preprocess(img image.Image, factor float64) image.Image {
	gray := imaging.Grayscale(img)
	contrasted := adjust.Contrast(gray, 0.2)

	if factor <= 0 || factor == 1 {
		return contrasted
	}

	bounds := contrasted.Bounds()
	width := int(float64(bounds.Dx()) * factor)
	if width < 1 {
		width = 1
	}
	return imaging.Resize(contrasted, width, 0, imaging.Lanczos)
}
