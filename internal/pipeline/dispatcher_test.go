package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal/cache"
	"codeberg.org/snonux/screenlate/internal/testutil"
	"codeberg.org/snonux/screenlate/internal/translation"
)

func begin(t *testing.T, c *cache.Cache, text string) cache.Key {
	t.Helper()
	key := cache.NewKey(text, "EN", "JA")
	if lookup := c.GetOrBegin(key); !lookup.Began {
		t.Fatalf("Expected to own %q, got state %s", text, lookup.State)
	}
	return key
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.QueueSize = 16
	opts.DrainTimeout = time.Second
	return opts
}

func TestDispatcher_ResolvesEveryKey(t *testing.T) {
	c := cache.New()
	backend := testutil.NewMockTranslator(map[string]string{"Hello": "こんにちは"})
	backend.Batch = 8
	d := newDispatcher(c, backend, testOptions(), zap.NewNop().Sugar())

	var keys []cache.Key
	for _, text := range []string{"Hello", "World", "Quest Complete"} {
		key := begin(t, c, text)
		keys = append(keys, key)
		if !d.submit(key) {
			t.Fatalf("submit(%q) rejected", text)
		}
	}
	d.close(time.Second)

	for _, key := range keys {
		if entry := c.Peek(key); entry.State != cache.StateReady {
			t.Errorf("%q state = %s, want Ready", key.Text, entry.State)
		}
	}
	if got := c.Peek(keys[0]).Text; got != "こんにちは" {
		t.Errorf("Hello = %q", got)
	}

	stats, lastErr := d.snapshot()
	if stats.Translated != 3 || stats.Failed != 0 || lastErr != nil {
		t.Errorf("stats = %+v, lastErr = %v", stats, lastErr)
	}
}

func TestDispatcher_BatchesQueuedKeys(t *testing.T) {
	c := cache.New()
	backend := testutil.NewMockTranslator(nil)
	backend.Batch = 8
	backend.Gate = make(chan struct{})

	opts := testOptions()
	opts.MaxInflight = 1
	d := newDispatcher(c, backend, opts, zap.NewNop().Sugar())

	for i := 0; i < 6; i++ {
		d.submit(begin(t, c, fmt.Sprintf("line %d", i)))
	}
	close(backend.Gate)
	d.close(time.Second)

	if calls := len(backend.Calls()); calls >= 6 || calls == 0 {
		t.Errorf("Expected queued keys to share requests, got %d calls: %v", calls, backend.Calls())
	}
	if stats := c.Stats(); stats.Ready != 6 {
		t.Errorf("Ready = %d, want 6", stats.Ready)
	}
}

func TestDispatcher_CancelAfterDrainTimeout(t *testing.T) {
	c := cache.New()
	backend := testutil.NewMockTranslator(nil)
	backend.Gate = make(chan struct{})
	d := newDispatcher(c, backend, testOptions(), zap.NewNop().Sugar())

	key := begin(t, c, "never answered")
	d.submit(key)
	d.close(20 * time.Millisecond)

	entry := c.Peek(key)
	if entry.State != cache.StateFailed {
		t.Fatalf("state = %s, want Failed", entry.State)
	}
	if !errors.Is(entry.Err, cache.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", entry.Err)
	}

	// A cancelled key is requested again by the next owner
	if lookup := c.GetOrBegin(key); !lookup.Began {
		t.Error("Expected failed key to be retryable")
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	c := cache.New()
	backend := testutil.NewMockTranslator(nil)
	backend.Gate = make(chan struct{})

	opts := testOptions()
	opts.QueueSize = 1
	opts.MaxInflight = 1
	d := newDispatcher(c, backend, opts, zap.NewNop().Sugar())

	var keys []cache.Key
	rejected := 0
	for i := 0; i < 10; i++ {
		key := begin(t, c, fmt.Sprintf("text %d", i))
		keys = append(keys, key)
		if !d.submit(key) {
			rejected++
			if state := c.Peek(key).State; state != cache.StateFailed {
				t.Errorf("rejected key state = %s, want Failed", state)
			}
		}
	}
	if rejected == 0 {
		t.Error("Expected some keys to be rejected by a full queue")
	}

	close(backend.Gate)
	d.close(time.Second)

	for _, key := range keys {
		if state := c.Peek(key).State; state == cache.StatePending {
			t.Errorf("%q left pending", key.Text)
		}
	}
	if d.submit(cache.NewKey("late", "EN", "JA")) {
		t.Error("submit after close should be rejected")
	}
}

func TestDispatcher_Failures(t *testing.T) {
	c := cache.New()
	backend := testutil.NewMockTranslator(map[string]string{"blank": ""})
	rateLimited := &translation.Error{Kind: translation.KindRateLimited, Provider: "mock", StatusCode: 429}
	backend.SetError("limited", rateLimited)
	d := newDispatcher(c, backend, testOptions(), zap.NewNop().Sugar())

	blank := begin(t, c, "blank")
	limited := begin(t, c, "limited")
	d.submit(blank)
	d.submit(limited)
	d.close(time.Second)

	if entry := c.Peek(blank); entry.State != cache.StateFailed || !errors.Is(entry.Err, translation.ErrInvalidResponse) {
		t.Errorf("blank = %+v, want Failed with InvalidResponse", entry)
	}
	if entry := c.Peek(limited); entry.State != cache.StateFailed || translation.KindOf(entry.Err) != translation.KindRateLimited {
		t.Errorf("limited = %+v, want Failed with RateLimited", entry)
	}

	stats, lastErr := d.snapshot()
	if stats.Failed != 2 || lastErr == nil {
		t.Errorf("stats = %+v, lastErr = %v", stats, lastErr)
	}
}

func TestGroupByPair(t *testing.T) {
	keys := []cache.Key{
		{Text: "a", Source: "EN", Target: "JA"},
		{Text: "b", Source: "EN", Target: "DE"},
		{Text: "c", Source: "EN", Target: "JA"},
		{Text: "d", Source: "EN", Target: "JA"},
	}

	groups := groupByPair(keys, 2)
	if len(groups) != 3 {
		t.Fatalf("groupByPair() = %d groups, want 3", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0].Text != "a" || groups[0][1].Text != "c" {
		t.Errorf("first group = %v", groups[0])
	}
	if groups[1][0].Text != "d" || groups[2][0].Text != "b" {
		t.Errorf("groups = %v", groups)
	}
}
