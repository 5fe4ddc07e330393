package testutil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"codeberg.org/snonux/screenlate/internal/ocr"
	"codeberg.org/snonux/screenlate/internal/overlay"
)

// MockTranslator mocks a translation backend and records every call
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// Delay is applied to every call unless the context ends first
	Delay time.Duration
	// Gate, when set, holds every call until it is closed or the context ends
	Gate chan struct{}
	// Batch is the reported MaxBatch; zero means 1
	Batch int

	mu     sync.Mutex
	calls  []string
	counts map[string]int
}

// NewMockTranslator creates a translator answering from translations
func NewMockTranslator(translations map[string]string) *MockTranslator {
	return &MockTranslator{
		Translations: translations,
		Errors:       make(map[string]error),
	}
}

func (m *MockTranslator) Name() string { return "mock" }

func (m *MockTranslator) IsAvailable() error { return nil }

// MaxBatch returns Batch, at least 1
func (m *MockTranslator) MaxBatch() int {
	if m.Batch < 1 {
		return 1
	}
	return m.Batch
}

// Translate mocks translating one text
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	out, err := m.TranslateBatch(ctx, []string{text}, fromLang, toLang)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// TranslateBatch mocks translating several texts in one request
func (m *MockTranslator) TranslateBatch(ctx context.Context, texts []string, fromLang, toLang string) ([]string, error) {
	m.mu.Lock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.calls = append(m.calls, fmt.Sprintf("Translate: %s (%s->%s)", strings.Join(texts, " | "), fromLang, toLang))
	for _, text := range texts {
		m.counts[text]++
	}
	gate, delay := m.Gate, m.Delay
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(texts))
	for i, text := range texts {
		if err, ok := m.Errors[text]; ok {
			return nil, err
		}
		if translation, ok := m.Translations[text]; ok {
			out[i] = translation
			continue
		}
		out[i] = fmt.Sprintf("mock translation of %s", text)
	}
	return out, nil
}

// SetError makes every call containing text fail with err; nil removes it
func (m *MockTranslator) SetError(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errors, text)
		return
	}
	m.Errors[text] = err
}

// Calls returns the call log
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many requests included text
func (m *MockTranslator) CallCount(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[text]
}

// MockCapturer returns blank frames of the requested size.
// Errors are returned in order, one per call, before frames resume.
type MockCapturer struct {
	mu       sync.Mutex
	errors   []error
	captures []image.Rectangle
}

// FailNext queues errors for the next calls
func (m *MockCapturer) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, errs...)
}

// Capture mocks capturing rect
func (m *MockCapturer) Capture(rect image.Rectangle) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.captures = append(m.captures, rect)
	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		if err != nil {
			return nil, err
		}
	}
	return imaging.New(rect.Dx(), rect.Dy(), color.White), nil
}

// Captures returns the rectangles captured so far
func (m *MockCapturer) Captures() []image.Rectangle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Rectangle(nil), m.captures...)
}

// MockRecognizer returns scripted frames of blocks. The last frame repeats.
type MockRecognizer struct {
	mu     sync.Mutex
	frames [][]ocr.Block
	calls  int
}

// NewMockRecognizer creates a recognizer returning frames in order
func NewMockRecognizer(frames ...[]ocr.Block) *MockRecognizer {
	return &MockRecognizer{frames: frames}
}

// SetFrames replaces the remaining script
func (m *MockRecognizer) SetFrames(frames ...[]ocr.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
}

// Recognize mocks OCR on frame
func (m *MockRecognizer) Recognize(frame image.Image) []ocr.Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if len(m.frames) == 0 {
		return nil
	}
	blocks := m.frames[0]
	if len(m.frames) > 1 {
		m.frames = m.frames[1:]
	}
	return blocks
}

// Calls returns how many frames were recognized
func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSurface records what an overlay renderer draws
type MockSurface struct {
	mu     sync.Mutex
	draws  [][]overlay.Box
	clears int
}

func (m *MockSurface) Draw(boxes []overlay.Box) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, append([]overlay.Box(nil), boxes...))
	return nil
}

func (m *MockSurface) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	return nil
}

// Draws returns how many times boxes were drawn
func (m *MockSurface) Draws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.draws)
}

// LastDraw returns the boxes of the latest draw
func (m *MockSurface) LastDraw() []overlay.Box {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.draws) == 0 {
		return nil
	}
	return m.draws[len(m.draws)-1]
}

// Clears returns how many times the surface was cleared
func (m *MockSurface) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}
