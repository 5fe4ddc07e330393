package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const minFontSize = 8

// CanvasSurface draws boxes into an in-memory transparent image covering
// the screen area bounds. With a snapshot path every change is also
// written there as an image file.
type CanvasSurface struct {
	mu       sync.Mutex
	bounds   image.Rectangle
	canvas   *image.NRGBA
	font     *opentype.Font
	faces    map[int]font.Face
	snapshot string
}

// NewCanvasSurface creates a canvas. fontPath may be empty for the built-in font.
func NewCanvasSurface(bounds image.Rectangle, fontPath, snapshot string) (*CanvasSurface, error) {
	s := &CanvasSurface{
		bounds:   bounds,
		canvas:   image.NewNRGBA(bounds),
		faces:    make(map[int]font.Face),
		snapshot: snapshot,
	}

	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", fontPath, err)
		}
		s.font = f
	}

	return s, nil
}

// Draw replaces the canvas content with boxes
func (s *CanvasSurface) Draw(boxes []Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas := image.NewNRGBA(s.bounds)
	for _, box := range boxes {
		rect := box.Rect.Intersect(s.bounds)
		if rect.Empty() {
			continue
		}

		draw.Draw(canvas, rect, image.NewUniform(box.Background), image.Point{}, draw.Over)

		face, err := s.face(box.FontSize)
		if err != nil {
			return err
		}
		drawText(canvas.SubImage(rect).(*image.NRGBA), box, face)
	}

	s.canvas = canvas
	return s.save()
}

// Clear makes the whole canvas transparent
func (s *CanvasSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas = image.NewNRGBA(s.bounds)
	return s.save()
}

// Image returns a copy of the current canvas in screen coordinates
func (s *CanvasSurface) Image() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := image.NewNRGBA(s.bounds)
	copy(out.Pix, s.canvas.Pix)
	return out
}

func (s *CanvasSurface) save() error {
	if s.snapshot == "" {
		return nil
	}
	if err := imaging.Save(s.canvas, s.snapshot); err != nil {
		return fmt.Errorf("failed to write overlay snapshot: %w", err)
	}
	return nil
}

func (s *CanvasSurface) face(size float64) (font.Face, error) {
	if s.font == nil {
		return basicfont.Face7x13, nil
	}

	points := int(size)
	if points < minFontSize {
		points = minFontSize
	}
	if face, ok := s.faces[points]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(points),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	s.faces[points] = face
	return face, nil
}

func drawText(dst *image.NRGBA, box Box, face font.Face) {
	const padding = 2

	bounds := dst.Bounds()
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = 1
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(box.Foreground),
		Face: face,
	}

	maxWidth := fixed.I(bounds.Dx() - 2*padding)
	y := bounds.Min.Y + padding + metrics.Ascent.Ceil()
	for _, line := range wrap(d, box.Text, maxWidth) {
		if y-metrics.Ascent.Ceil() >= bounds.Max.Y {
			break
		}
		d.Dot = fixed.P(bounds.Min.X+padding, y)
		d.DrawString(line)
		y += lineHeight
	}
}

// wrap breaks text into lines no wider than maxWidth. It prefers spaces
// and falls back to breaking between runes for text without them.
func wrap(d *font.Drawer, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	var line strings.Builder

	for _, r := range text {
		candidate := line.String() + string(r)
		if line.Len() > 0 && d.MeasureString(candidate) > maxWidth {
			current := line.String()
			if i := strings.LastIndexByte(current, ' '); i > 0 {
				lines = append(lines, current[:i])
				line.Reset()
				line.WriteString(current[i+1:])
			} else {
				lines = append(lines, current)
				line.Reset()
			}
			if r == ' ' && line.Len() == 0 {
				continue
			}
		}
		line.WriteRune(r)
	}

	if line.Len() > 0 || utf8.RuneCountInString(text) == 0 {
		lines = append(lines, line.String())
	}
	return lines
}
