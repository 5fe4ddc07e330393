package pipeline

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal/cache"
	"codeberg.org/snonux/screenlate/internal/capture"
	"codeberg.org/snonux/screenlate/internal/ocr"
	"codeberg.org/snonux/screenlate/internal/overlay"
	"codeberg.org/snonux/screenlate/internal/target"
)

// Idle backoff thresholds, counted in consecutive unchanged frames
const (
	slowAfter   = 5
	slowerAfter = 10
)

// run is the state of one Running period, owned by the loop goroutine
type run struct {
	p        *Pipeline
	tracker  target.Tracker
	dispatch *dispatcher
	logger   *zap.SugaredLogger

	blocks      []ocr.Block
	keys        []cache.Key
	rect        image.Rectangle
	fingerprint string
	unchanged   int
}

func (r *run) drive(ctx context.Context) error {
	opts := r.p.opts

	next := time.NewTimer(0)
	defer next.Stop()

	var follow <-chan time.Time
	if opts.FollowInterval > 0 {
		ticker := time.NewTicker(opts.FollowInterval)
		defer ticker.Stop()
		follow = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-next.C:
			if err := r.cycle(); err != nil {
				return err
			}
			next.Reset(r.interval())
		case <-follow:
			if err := r.follow(); err != nil {
				return err
			}
		}
	}
}

// cycle runs capture, recognition, dispatch of misses and rendering once
func (r *run) cycle() error {
	win := r.tracker.Refresh()
	if !win.Alive {
		return ErrTargetLost
	}
	if win.Minimized {
		r.logger.Debugw("window minimized, skipping cycle")
		return nil
	}

	frame, err := r.p.capturer.Capture(win.Rect)
	switch {
	case errors.Is(err, capture.ErrUnavailable):
		return lostError(err)
	case errors.Is(err, capture.ErrOccluded):
		r.logger.Debugw("window occluded, skipping cycle")
		return nil
	case err != nil:
		r.logger.Warnw("capture failed, skipping cycle", "error", err)
		return nil
	}

	r.p.cycles.Add(1)
	blocks := r.p.recognizer.Recognize(frame)
	r.trackChanges(blocks)

	if len(blocks) == 0 {
		if len(r.blocks) > 0 {
			if err := r.p.renderer.Clear(); err != nil {
				r.logger.Warnw("failed to clear overlay", "error", err)
			}
		}
		r.blocks, r.keys, r.rect = nil, nil, win.Rect
		return nil
	}

	keys := make([]cache.Key, len(blocks))
	seen := make(map[cache.Key]bool, len(blocks))
	misses := 0
	for i, block := range blocks {
		keys[i] = cache.NewKey(block.Text, r.p.opts.SourceLang, r.p.opts.TargetLang)
		if seen[keys[i]] {
			continue
		}
		seen[keys[i]] = true

		if lookup := r.p.cache.GetOrBegin(keys[i]); lookup.Began {
			r.dispatch.submit(keys[i])
			misses++
		}
	}

	r.blocks, r.keys, r.rect = blocks, keys, win.Rect
	r.render(win.Rect)

	r.logger.Debugw("cycle",
		"blocks", len(blocks),
		"distinct", len(seen),
		"misses", misses,
	)
	return nil
}

// follow re-renders the last frame when the window moved or resized
func (r *run) follow() error {
	win := r.tracker.Refresh()
	if !win.Alive {
		return ErrTargetLost
	}
	if win.Minimized || win.Rect == r.rect || len(r.blocks) == 0 {
		return nil
	}

	r.rect = win.Rect
	r.render(win.Rect)
	return nil
}

// render draws the current blocks using one consistent cache snapshot
func (r *run) render(window image.Rectangle) {
	snapshot := r.p.cache.Snapshot(r.keys)

	items := make([]overlay.Item, len(r.blocks))
	for i, block := range r.blocks {
		entry := snapshot[r.keys[i]]
		items[i] = overlay.Item{
			Offset:      block.Box,
			Source:      block.Text,
			Translation: entry.Text,
			Ready:       entry.State == cache.StateReady,
		}
	}

	if err := r.p.renderer.Render(items, window); err != nil {
		r.logger.Warnw("failed to render overlay", "error", err)
	}
}

func (r *run) trackChanges(blocks []ocr.Block) {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	fingerprint := strings.Join(texts, "\x00")

	if fingerprint == r.fingerprint {
		r.unchanged++
		return
	}
	r.fingerprint = fingerprint
	r.unchanged = 0
}

func (r *run) interval() time.Duration {
	base := r.p.opts.Interval
	if !r.p.opts.IdleBackoff {
		return base
	}
	switch {
	case r.unchanged > slowerAfter:
		return 4 * base
	case r.unchanged > slowAfter:
		return 2 * base
	default:
		return base
	}
}
