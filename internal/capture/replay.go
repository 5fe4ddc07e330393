package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// ReplayCapturer plays back image files from a directory in name order.
// It stands in for a live window on machines without a native capture API.
type ReplayCapturer struct {
	mu     sync.Mutex
	frames []string
	next   int
	loop   bool
}

// NewReplayCapturer lists the frames in dir. With loop set the frames repeat
// forever, otherwise Capture reports ErrUnavailable after the last frame.
func NewReplayCapturer(dir string, loop bool) (*ReplayCapturer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay directory: %w", err)
	}

	var frames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			frames = append(frames, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(frames)

	if len(frames) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}

	return &ReplayCapturer{frames: frames, loop: loop}, nil
}

// Frames returns the number of frames in the replay
func (r *ReplayCapturer) Frames() int {
	return len(r.frames)
}

// FrameSize decodes the first frame and returns its dimensions
func (r *ReplayCapturer) FrameSize() (image.Point, error) {
	img, err := imaging.Open(r.frames[0])
	if err != nil {
		return image.Point{}, fmt.Errorf("failed to open %s: %w", r.frames[0], err)
	}
	return img.Bounds().Size(), nil
}

// Capture returns the next frame, fitted to the size of rect
func (r *ReplayCapturer) Capture(rect image.Rectangle) (image.Image, error) {
	if rect.Empty() {
		return nil, ErrOccluded
	}

	r.mu.Lock()
	if r.next >= len(r.frames) {
		if !r.loop {
			r.mu.Unlock()
			return nil, ErrUnavailable
		}
		r.next = 0
	}
	path := r.frames[r.next]
	r.next++
	r.mu.Unlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	size := rect.Size()
	if img.Bounds().Size() != size {
		// A resized window in a replay is simulated by cropping or padding
		// from the top-left corner, just like a real client area would.
		canvas := imaging.New(size.X, size.Y, image.Black)
		return imaging.Paste(canvas, img, image.Point{}), nil
	}
	return img, nil
}
