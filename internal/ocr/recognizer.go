package ocr

import (
	"image"

	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal"
	"codeberg.org/snonux/screenlate/internal/capture"
)

// Block is recognized text with its box relative to the window client area
type Block struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Options controls recognition
type Options struct {
	// MinConfidence drops lines the engine is less sure about (0..1)
	MinConfidence float64
	// Scale is the upscale factor applied before OCR
	Scale float64
	// Paragraphs merges vertically adjacent lines into one block
	Paragraphs bool
}

// DefaultOptions returns default recognition options
func DefaultOptions() Options {
	return Options{
		MinConfidence: 0.5,
		Scale:         2.0,
		Paragraphs:    true,
	}
}

// Recognizer turns frames into blocks
type Recognizer struct {
	engine Engine
	opts   Options
	logger *zap.SugaredLogger
}

// NewRecognizer creates a recognizer around engine
func NewRecognizer(engine Engine, opts Options, logger *zap.SugaredLogger) *Recognizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Recognizer{engine: engine, opts: opts, logger: logger}
}

// Recognize returns the text blocks of frame. Engine failures are logged
// and yield no blocks.
func (r *Recognizer) Recognize(frame image.Image) []Block {
	prepared := capture.Preprocess(frame, r.opts.Scale)

	lines, err := r.engine.Lines(prepared)
	if err != nil {
		r.logger.Warnw("OCR failed, treating frame as empty", "error", err)
		return nil
	}

	kept := make([]Line, 0, len(lines))
	for _, line := range lines {
		line.Text = internal.NormalizeText(line.Text)
		if line.Text == "" || line.Confidence < r.opts.MinConfidence {
			continue
		}
		line.Box = unscale(line.Box, r.opts.Scale).Intersect(frame.Bounds())
		if line.Box.Empty() {
			continue
		}
		kept = append(kept, line)
	}

	if r.opts.Paragraphs {
		return GroupParagraphs(kept)
	}

	blocks := make([]Block, len(kept))
	for i, line := range kept {
		blocks[i] = Block{Text: line.Text, Box: line.Box, Confidence: line.Confidence}
	}
	return blocks
}

// Close closes the engine
func (r *Recognizer) Close() error {
	return r.engine.Close()
}

// GroupParagraphs merges each line into the previous block when it starts
// less than 0.8 line heights below it and is horizontally aligned with it
// (left edges closer than two line heights). Lines are expected in
// reading order.
func GroupParagraphs(lines []Line) []Block {
	var blocks []Block
	var prev *Line

	for i := range lines {
		line := lines[i]

		if prev != nil && len(blocks) > 0 && continues(*prev, line) {
			last := &blocks[len(blocks)-1]
			last.Text += " " + line.Text
			last.Box = last.Box.Union(line.Box)
			if line.Confidence < last.Confidence {
				last.Confidence = line.Confidence
			}
		} else {
			blocks = append(blocks, Block{Text: line.Text, Box: line.Box, Confidence: line.Confidence})
		}
		prev = &lines[i]
	}

	return blocks
}

func continues(prev, next Line) bool {
	height := float64(prev.Box.Dy())
	if height <= 0 {
		return false
	}

	gap := float64(next.Box.Min.Y - prev.Box.Max.Y)
	if gap < 0 || gap >= 0.8*height {
		return false
	}

	dx := float64(next.Box.Min.X - prev.Box.Min.X)
	if dx < 0 {
		dx = -dx
	}
	return dx < 2*height
}

func unscale(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1 {
		return r
	}
	return image.Rect(
		int(float64(r.Min.X)/scale),
		int(float64(r.Min.Y)/scale),
		int(float64(r.Max.X)/scale+0.5),
		int(float64(r.Max.Y)/scale+0.5),
	)
}
