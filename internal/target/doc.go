// Package target tracks the window whose text is translated: whether it
// still exists, where its client area is on screen and whether it is
// minimized.
package target
