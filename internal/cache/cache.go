package cache

import (
	"context"
	"errors"
	"sync"

	"codeberg.org/snonux/screenlate/internal"
)

// ErrCancelled is stored on entries whose translation task was abandoned
var ErrCancelled = errors.New("translation cancelled")

// State is the lifecycle state of a cache entry
type State int

const (
	StateAbsent State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "Absent"
	case StatePending:
		return "Pending"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Key identifies a translation: normalized source text plus language pair
type Key struct {
	Text   string
	Source string
	Target string
}

// NewKey builds a key from raw OCR text. Whitespace is collapsed, case is kept.
func NewKey(text, source, target string) Key {
	return Key{
		Text:   internal.NormalizeText(text),
		Source: source,
		Target: target,
	}
}

// Entry is a point-in-time view of a cache entry
type Entry struct {
	State State
	Text  string
	Err   error
}

// Handle is shared by every caller that observes the same pending key.
// It is closed exactly once, when the key is resolved.
type Handle struct {
	done chan struct{}
	text string
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Done is closed when the pending translation resolves
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the translation resolves or ctx ends
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case <-h.done:
		return h.text, h.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Lookup is the result of GetOrBegin.
//
// Began is true only for the caller that inserted the pending entry; that
// caller owns the outbound request and must call Resolve for the key.
type Lookup struct {
	State  State
	Text   string
	Handle *Handle
	Began  bool
}

// Stats summarises cache contents and traffic
type Stats struct {
	Ready   int
	Pending int
	Failed  int
	Hits    int64
	Joins   int64
	Begins  int64
}

type record struct {
	state  State
	text   string
	err    error
	handle *Handle
}

// Cache maps keys to translations. Entries never expire; failed entries are
// replaced by a fresh pending entry on the next request for the same key.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*record

	hits   int64
	joins  int64
	begins int64
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[Key]*record),
	}
}

// GetOrBegin atomically looks up k and, if absent or failed, inserts a
// pending entry owned by the caller.
func (c *Cache) GetOrBegin(k Key) Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.entries[k]; ok {
		switch rec.state {
		case StateReady:
			c.hits++
			return Lookup{State: StateReady, Text: rec.text}
		case StatePending:
			c.joins++
			return Lookup{State: StatePending, Handle: rec.handle}
		}
	}

	rec := &record{state: StatePending, handle: newHandle()}
	c.entries[k] = rec
	c.begins++

	return Lookup{State: StatePending, Handle: rec.handle, Began: true}
}

// Resolve completes a pending key. A nil err stores text as Ready, otherwise
// the entry becomes Failed. Resolving a key that is not pending is a no-op
// and returns false; Ready entries are never overwritten.
func (c *Cache) Resolve(k Key, text string, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries[k]
	if !ok || rec.state != StatePending {
		return false
	}

	if err != nil {
		rec.state = StateFailed
		rec.err = err
	} else {
		rec.state = StateReady
		rec.text = text
	}

	h := rec.handle
	rec.handle = nil
	h.text, h.err = text, err
	close(h.done)

	return true
}

// Seed stores a known translation as Ready unless the key is already
// Ready or Pending. It is used to preload glossary entries.
func (c *Cache) Seed(k Key, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.entries[k]; ok && rec.state != StateFailed {
		return false
	}
	c.entries[k] = &record{state: StateReady, text: text}
	return true
}

// Peek returns the current entry for k without changing it
func (c *Cache) Peek(k Key) Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.entryLocked(k)
}

// Snapshot returns the entries for keys under a single lock, so a render
// never mixes states from before and after a concurrent Resolve.
func (c *Cache) Snapshot(keys []Key) map[Key]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[Key]Entry, len(keys))
	for _, k := range keys {
		out[k] = c.entryLocked(k)
	}
	return out
}

func (c *Cache) entryLocked(k Key) Entry {
	rec, ok := c.entries[k]
	if !ok {
		return Entry{State: StateAbsent}
	}
	return Entry{State: rec.state, Text: rec.text, Err: rec.err}
}

// Len returns the number of entries in any state
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns counts per state and traffic counters
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Hits: c.hits, Joins: c.joins, Begins: c.begins}
	for _, rec := range c.entries {
		switch rec.state {
		case StateReady:
			s.Ready++
		case StatePending:
			s.Pending++
		case StateFailed:
			s.Failed++
		}
	}
	return s
}

// GetAll returns a copy of every Ready translation keyed by source text
func (c *Cache) GetAll() map[Key]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[Key]string)
	for k, rec := range c.entries {
		if rec.state == StateReady {
			result[k] = rec.text
		}
	}
	return result
}
