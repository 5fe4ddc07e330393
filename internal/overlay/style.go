package overlay

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Style holds overlay colors and geometry settings
type Style struct {
	Text       color.NRGBA
	Background color.NRGBA

	// WidthFactor widens boxes because translations are often longer than the source
	WidthFactor float64
	// DPIScale converts pixel heights into font points
	DPIScale float64
	// FontPath is an optional TrueType/OpenType font; empty uses a built-in bitmap font
	FontPath string
}

// DefaultStyle is yellow text on a mostly opaque black background
func DefaultStyle() Style {
	return Style{
		Text:        color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff},
		Background:  color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xd9},
		WidthFactor: 1.3,
		DPIScale:    1.0,
	}
}

// ParseColor parses "#rrggbb" with an alpha in 0..1
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	if alpha < 0 || alpha > 1 {
		return color.NRGBA{}, fmt.Errorf("alpha must be between 0 and 1, got %v", alpha)
	}

	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, nil
}
