// Package cache provides the in-memory translation cache shared between
// the capture cycle and completing translation tasks. It guarantees that
// at most one outbound translation is in flight per key.
package cache
