package internal

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Version is the application version reported by --version
const Version = "0.3.1"

// NewRunID creates a unique ID for a single pipeline run.
// Format: first 8 hex chars of a random UUID
func NewRunID() string {
	id := uuid.New().String()
	return id[:8]
}

// NormalizeText trims the text and collapses every run of whitespace
// (including newlines from OCR line joins) into a single space.
// Case is preserved.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}

// TruncateText shortens s to at most max runes for log output
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
