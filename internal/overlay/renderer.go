package overlay

import (
	"image"
	"sync"

	"go.uber.org/zap"
)

// Surface draws overlay boxes
type Surface interface {
	// Draw replaces everything on the surface with boxes
	Draw(boxes []Box) error
	// Clear removes all overlay content
	Clear() error
}

// Renderer lays out items and draws them on a surface
type Renderer struct {
	mu      sync.Mutex
	surface Surface
	style   Style
	last    []Box
	logger  *zap.SugaredLogger
}

// NewRenderer creates a renderer
func NewRenderer(surface Surface, style Style, logger *zap.SugaredLogger) *Renderer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Renderer{surface: surface, style: style, logger: logger}
}

// Render draws items at their position inside window
func (r *Renderer) Render(items []Item, window image.Rectangle) error {
	boxes := Layout(items, window, r.style)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.surface.Draw(boxes); err != nil {
		return err
	}
	r.last = boxes
	return nil
}

// Clear removes all boxes from the surface
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last = nil
	return r.surface.Clear()
}

// Last returns the boxes of the latest render
func (r *Renderer) Last() []Box {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Box, len(r.last))
	copy(out, r.last)
	return out
}
