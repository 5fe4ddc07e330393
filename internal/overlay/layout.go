package overlay

import (
	"image"
	"image/color"
)

// Item is one recognized block and what the cache knows about it
type Item struct {
	// Offset is the block's box relative to the window client area
	Offset      image.Rectangle
	Source      string
	Translation string
	Ready       bool
}

// Box is one overlay rectangle in screen coordinates
type Box struct {
	Rect       image.Rectangle
	Text       string
	FontSize   float64
	Foreground color.NRGBA
	Background color.NRGBA
	// Placeholder is set when Text is the untranslated source
	Placeholder bool
}

// Layout positions every item relative to window. Items without a ready
// translation show their source text so no box is ever blank.
func Layout(items []Item, window image.Rectangle, style Style) []Box {
	widthFactor := style.WidthFactor
	if widthFactor <= 0 {
		widthFactor = 1
	}
	dpi := style.DPIScale
	if dpi <= 0 {
		dpi = 1
	}

	boxes := make([]Box, 0, len(items))
	for _, item := range items {
		text := item.Translation
		placeholder := !item.Ready || text == ""
		if placeholder {
			text = item.Source
		}
		if text == "" {
			continue
		}

		rect := item.Offset.Add(window.Min)
		rect.Max.X = rect.Min.X + int(float64(item.Offset.Dx())*widthFactor)

		boxes = append(boxes, Box{
			Rect:        rect,
			Text:        text,
			FontSize:    float64(item.Offset.Dy()) / dpi,
			Foreground:  style.Text,
			Background:  style.Background,
			Placeholder: placeholder,
		})
	}
	return boxes
}
