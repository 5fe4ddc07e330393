package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/screenlate/internal"
	"codeberg.org/snonux/screenlate/internal/cache"
	"codeberg.org/snonux/screenlate/internal/capture"
	"codeberg.org/snonux/screenlate/internal/ocr"
	"codeberg.org/snonux/screenlate/internal/overlay"
	"codeberg.org/snonux/screenlate/internal/target"
	"codeberg.org/snonux/screenlate/internal/translation"
)

// Recognizer turns a frame into text blocks
type Recognizer interface {
	Recognize(frame image.Image) []ocr.Block
}

// Renderer draws overlay items over the window
type Renderer interface {
	Render(items []overlay.Item, window image.Rectangle) error
	Clear() error
}

// Options is the immutable run configuration
type Options struct {
	SourceLang string
	TargetLang string

	// Interval between capture cycles
	Interval time.Duration
	// FollowInterval between window position checks; 0 disables following
	FollowInterval time.Duration
	// IdleBackoff stretches Interval while the recognized text does not change
	IdleBackoff bool

	MaxInflight  int
	MaxBatch     int
	QueueSize    int
	DrainTimeout time.Duration
}

// DefaultOptions returns default pipeline options
func DefaultOptions() Options {
	return Options{
		SourceLang:     "EN",
		TargetLang:     "JA",
		Interval:       500 * time.Millisecond,
		FollowInterval: 100 * time.Millisecond,
		MaxInflight:    4,
		MaxBatch:       16,
		QueueSize:      64,
		DrainTimeout:   2 * time.Second,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	if o.FollowInterval < 0 {
		o.FollowInterval = 0
	}
	if o.MaxInflight < 1 {
		o.MaxInflight = d.MaxInflight
	}
	if o.QueueSize < 1 {
		o.QueueSize = d.QueueSize
	}
	if o.DrainTimeout < 0 {
		o.DrainTimeout = 0
	}
	return o
}

// Components are the collaborators a pipeline drives
type Components struct {
	Cache      *cache.Cache
	Backend    Translator
	Capturer   capture.Capturer
	Recognizer Recognizer
	Renderer   Renderer
}

// Status is a snapshot for a status indicator
type Status struct {
	State     State
	RunID     string
	LastError error

	// BackendError is the latest translation failure, cleared by the next success
	BackendError  error
	BackendStatus string
	CoolingDown   bool

	Cycles   int64
	Cache    cache.Stats
	Dispatch DispatchStats
}

// Pipeline runs translation cycles against one target at a time
type Pipeline struct {
	cache      *cache.Cache
	backend    Translator
	capturer   capture.Capturer
	recognizer Recognizer
	renderer   Renderer
	opts       Options
	logger     *zap.SugaredLogger

	mu            sync.Mutex
	state         State
	lastErr       error
	runID         string
	cancel        context.CancelFunc
	done          chan struct{}
	dispatch      *dispatcher
	onStateChange func(from, to State)

	cycles atomic.Int64
}

// New creates an idle pipeline. The cache outlives individual runs.
func New(components Components, opts Options, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if components.Cache == nil {
		components.Cache = cache.New()
	}

	done := make(chan struct{})
	close(done)

	return &Pipeline{
		cache:      components.Cache,
		backend:    components.Backend,
		capturer:   components.Capturer,
		recognizer: components.Recognizer,
		renderer:   components.Renderer,
		opts:       opts.normalized(),
		logger:     logger,
		done:       done,
	}
}

// OnStateChange registers a callback for every state transition.
// It runs outside the pipeline's lock and must not block for long.
func (p *Pipeline) OnStateChange(fn func(from, to State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStateChange = fn
}

// Start begins translating the window reported by tracker
func (p *Pipeline) Start(ctx context.Context, tracker target.Tracker) error {
	if tracker == nil {
		return ErrNoTarget
	}

	p.mu.Lock()
	switch p.state {
	case StateRunning, StateStopping, StateError:
		p.mu.Unlock()
		return ErrAlreadyRunning
	}

	if win := tracker.Refresh(); !win.Alive {
		p.mu.Unlock()
		return ErrTargetLost
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.runID = internal.NewRunID()
	p.lastErr = nil
	p.cancel = cancel
	p.done = make(chan struct{})
	p.dispatch = newDispatcher(p.cache, p.backend, p.opts, p.logger)
	p.cycles.Store(0)

	r := &run{
		p:        p,
		tracker:  tracker,
		dispatch: p.dispatch,
		logger:   p.logger.With("run", p.runID),
	}
	done := p.done
	from, cb := p.setStateLocked(StateRunning)
	p.mu.Unlock()

	notify(cb, from, StateRunning)
	go p.loop(runCtx, r, done)
	return nil
}

// Stop ends the current run and blocks until it reaches Stopped
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	done := p.done

	switch p.state {
	case StateRunning:
	case StateStopping, StateError:
		p.mu.Unlock()
		<-done
		return nil
	default:
		p.mu.Unlock()
		return ErrNotRunning
	}

	cancel := p.cancel
	from, cb := p.setStateLocked(StateStopping)
	p.mu.Unlock()

	notify(cb, from, StateStopping)
	cancel()
	<-done
	return nil
}

// Reset moves a stopped pipeline back to Idle and forgets its last error
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	switch p.state {
	case StateIdle:
		p.mu.Unlock()
		return nil
	case StateStopped:
	default:
		p.mu.Unlock()
		return ErrAlreadyRunning
	}

	p.lastErr = nil
	from, cb := p.setStateLocked(StateIdle)
	p.mu.Unlock()

	notify(cb, from, StateIdle)
	return nil
}

// Done is closed when the current run has fully stopped
func (p *Pipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// State returns the current state
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError returns the error that ended the latest run, if any
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Cache returns the translation cache shared by all runs
func (p *Pipeline) Cache() *cache.Cache {
	return p.cache
}

// Status returns a snapshot of the pipeline for display
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	status := Status{
		State:     p.state,
		RunID:     p.runID,
		LastError: p.lastErr,
	}
	d := p.dispatch
	p.mu.Unlock()

	if d != nil {
		status.Dispatch, status.BackendError = d.snapshot()
	}
	if status.BackendError != nil {
		status.BackendStatus = translation.KindOf(status.BackendError).StatusText()
	}
	if cd, ok := p.backend.(interface{ CoolingDown() bool }); ok {
		status.CoolingDown = cd.CoolingDown()
	}
	status.Cycles = p.cycles.Load()
	status.Cache = p.cache.Stats()
	return status
}

func (p *Pipeline) loop(ctx context.Context, r *run, done chan struct{}) {
	defer close(done)

	r.logger.Infow("pipeline started",
		"backend", p.backend.Name(),
		"source", p.opts.SourceLang,
		"target", p.opts.TargetLang,
		"interval", p.opts.Interval,
	)

	if err := r.drive(ctx); err != nil {
		r.logger.Errorw("pipeline failed", "error", err)
		p.fail(err)
	} else {
		p.transition(StateStopping, StateRunning)
	}

	if err := p.renderer.Clear(); err != nil {
		r.logger.Warnw("failed to clear overlay", "error", err)
	}
	r.dispatch.close(p.opts.DrainTimeout)

	p.transition(StateStopped, StateStopping, StateError)
	r.logger.Infow("pipeline stopped", "cycles", p.cycles.Load(), "cached", p.cache.Len())
}

// fail records err and enters Error, unless a Stop got there first
func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.lastErr = err
	from, cb := p.setStateLocked(StateError)
	p.mu.Unlock()

	notify(cb, from, StateError)
}

func (p *Pipeline) transition(to State, allowed ...State) bool {
	p.mu.Lock()
	ok := false
	for _, s := range allowed {
		if p.state == s {
			ok = true
			break
		}
	}
	if !ok {
		p.mu.Unlock()
		return false
	}
	from, cb := p.setStateLocked(to)
	p.mu.Unlock()

	notify(cb, from, to)
	return true
}

func (p *Pipeline) setStateLocked(to State) (State, func(from, to State)) {
	from := p.state
	p.state = to
	p.logger.Debugw("pipeline state changed", "from", from.String(), "to", to.String())
	return from, p.onStateChange
}

func notify(cb func(from, to State), from, to State) {
	if cb != nil && from != to {
		cb(from, to)
	}
}

// lostError wraps a capture failure that ends the run; both errors stay
// visible to errors.Is.
func lostError(err error) error {
	return fmt.Errorf("%w: %w", ErrTargetLost, err)
}
