package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal/cache"
	"codeberg.org/snonux/screenlate/internal/translation"
)

var errQueueFull = errors.New("translation queue full")

// Translator is the part of a translation backend the dispatcher needs.
// translation.Guard implements it.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
	MaxBatch() int
	Name() string
}

// DispatchStats counts dispatcher activity
type DispatchStats struct {
	Submitted  int64
	Rejected   int64
	Calls      int64
	Translated int64
	Failed     int64
}

// dispatcher owns every key whose GetOrBegin returned Began. Keys are
// batched per language pair and translated on a bounded worker pool; each
// key is resolved exactly once whatever happens to its request.
type dispatcher struct {
	cache    *cache.Cache
	backend  Translator
	maxBatch int
	logger   *zap.SugaredLogger

	sendMu sync.RWMutex
	closed bool
	jobs   chan cache.Key

	workers *pool.Pool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu      sync.Mutex
	stats   DispatchStats
	lastErr error
}

func newDispatcher(c *cache.Cache, backend Translator, opts Options, logger *zap.SugaredLogger) *dispatcher {
	maxBatch := backend.MaxBatch()
	if opts.MaxBatch > 0 && opts.MaxBatch < maxBatch {
		maxBatch = opts.MaxBatch
	}
	if maxBatch < 1 {
		maxBatch = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &dispatcher{
		cache:    c,
		backend:  backend,
		maxBatch: maxBatch,
		logger:   logger,
		jobs:     make(chan cache.Key, opts.QueueSize),
		workers:  pool.New().WithMaxGoroutines(opts.MaxInflight),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go d.run()
	return d
}

// submit queues a key without blocking. A key that cannot be queued is
// resolved Failed so a later cycle asks for it again.
func (d *dispatcher) submit(key cache.Key) bool {
	d.sendMu.RLock()
	defer d.sendMu.RUnlock()

	if !d.closed {
		select {
		case d.jobs <- key:
			d.count(func(s *DispatchStats) { s.Submitted++ })
			return true
		default:
		}
	}

	d.cache.Resolve(key, "", errQueueFull)
	d.count(func(s *DispatchStats) { s.Rejected++ })
	return false
}

// close stops accepting keys and waits up to drain for outstanding requests.
// Requests still running after that are cancelled; their keys resolve Failed.
func (d *dispatcher) close(drain time.Duration) {
	d.sendMu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.sendMu.Unlock()

	timer := time.NewTimer(drain)
	defer timer.Stop()

	select {
	case <-d.done:
	case <-timer.C:
		d.logger.Warnw("drain timeout elapsed, cancelling translations", "timeout", drain)
		d.cancel()
		<-d.done
	}
	d.cancel()
}

func (d *dispatcher) run() {
	defer close(d.done)

	for key := range d.jobs {
		batch := []cache.Key{key}
		open := true

	fill:
		for len(batch) < d.maxBatch {
			select {
			case next, ok := <-d.jobs:
				if !ok {
					open = false
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}

		for _, group := range groupByPair(batch, d.maxBatch) {
			group := group
			d.workers.Go(func() {
				d.translate(group)
			})
		}

		if !open {
			break
		}
	}

	d.workers.Wait()
}

// groupByPair splits keys by language pair, keeping at most max keys per group
func groupByPair(keys []cache.Key, max int) [][]cache.Key {
	type pair struct{ source, target string }

	var order []pair
	groups := make(map[pair][]cache.Key)
	for _, k := range keys {
		p := pair{k.Source, k.Target}
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], k)
	}

	var out [][]cache.Key
	for _, p := range order {
		g := groups[p]
		for len(g) > max {
			out = append(out, g[:max])
			g = g[max:]
		}
		out = append(out, g)
	}
	return out
}

func (d *dispatcher) translate(keys []cache.Key) {
	var (
		results []string
		err     error
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("translation panicked: %v", r)
		}
		d.resolve(keys, results, err)
	}()

	if d.ctx.Err() != nil {
		err = cache.ErrCancelled
		return
	}

	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = k.Text
	}

	d.count(func(s *DispatchStats) { s.Calls++ })
	started := time.Now()
	results, err = d.backend.TranslateBatch(d.ctx, texts, keys[0].Source, keys[0].Target)

	switch {
	case err != nil && d.ctx.Err() != nil:
		err = fmt.Errorf("%w: %v", cache.ErrCancelled, err)
	case err == nil && len(results) != len(keys):
		err = fmt.Errorf("%w: got %d translations for %d texts", translation.ErrInvalidResponse, len(results), len(keys))
	}

	d.logger.Debugw("translation batch finished",
		"backend", d.backend.Name(),
		"texts", len(keys),
		"duration", time.Since(started),
		"error", err,
	)
}

func (d *dispatcher) resolve(keys []cache.Key, results []string, err error) {
	var translated, failed int64

	for i, k := range keys {
		switch {
		case err != nil:
			d.cache.Resolve(k, "", err)
			failed++
		case results[i] == "":
			d.cache.Resolve(k, "", fmt.Errorf("%w: no translation for %q", translation.ErrInvalidResponse, k.Text))
			failed++
		default:
			d.cache.Resolve(k, results[i], nil)
			translated++
		}
	}

	d.mu.Lock()
	d.stats.Translated += translated
	d.stats.Failed += failed
	switch {
	case err == nil && translated > 0:
		d.lastErr = nil
	case err != nil && !errors.Is(err, cache.ErrCancelled):
		d.lastErr = err
	}
	d.mu.Unlock()

	switch {
	case errors.Is(err, cache.ErrCancelled):
		d.logger.Debugw("translation cancelled", "texts", len(keys))
	case err != nil:
		d.logger.Warnw("translation failed",
			"backend", d.backend.Name(),
			"texts", len(keys),
			"kind", translation.KindOf(err).String(),
			"error", err,
		)
	}
}

func (d *dispatcher) count(update func(*DispatchStats)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	update(&d.stats)
}

func (d *dispatcher) snapshot() (DispatchStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats, d.lastErr
}
