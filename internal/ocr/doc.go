// Package ocr turns a captured frame into positioned English text blocks.
//
// An Engine returns raw text lines. The Recognizer normalizes them, drops
// low-confidence lines and merges adjacent lines into paragraph blocks so
// that a sentence wrapped over several lines is translated as one unit.
package ocr
