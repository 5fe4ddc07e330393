// Package pipeline drives the capture, recognize, translate and render
// cycle for one target window.
//
// A Pipeline is a small state machine (Idle, Running, Stopping, Stopped,
// Error). While Running a single goroutine captures and recognizes a frame
// every interval, looks every block up in the translation cache and renders
// the result; cache misses are handed to a dispatcher that translates them
// concurrently, so a slow backend never delays capture or rendering.
package pipeline
