// Package overlay places translated text over the target window.
//
// Layout is a pure function of the recognized blocks, their cache state
// and the latest window rectangle; the Renderer hands the resulting boxes
// to a Surface that actually draws them.
package overlay
