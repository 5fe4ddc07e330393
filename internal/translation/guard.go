package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Guard wraps a backend with a per-call timeout and a rate-limit cooldown.
//
// The breaker opens on the first RateLimited result and rejects calls with
// RateLimited (without touching the network) until the cooldown elapses;
// then one probe call is let through. Other error kinds never open it.
type Guard struct {
	backend Backend
	batch   BatchBackend
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

// NewGuard creates a guard around backend
func NewGuard(backend Backend, timeout, cooldown time.Duration, logger *zap.SugaredLogger) *Guard {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	g := &Guard{
		backend: backend,
		timeout: timeout,
		logger:  logger,
	}
	if bb, ok := backend.(BatchBackend); ok && bb.MaxBatch() > 1 {
		g.batch = bb
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        backend.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		IsSuccessful: func(err error) bool {
			return KindOf(err) != KindRateLimited
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("rate limit breaker changed state", "backend", name, "from", from.String(), "to", to.String())
		},
	})

	return g
}

// Name returns the wrapped backend's name
func (g *Guard) Name() string {
	return g.backend.Name()
}

// IsAvailable delegates to the wrapped backend
func (g *Guard) IsAvailable() error {
	return g.backend.IsAvailable()
}

// MaxBatch is 1 when the wrapped backend cannot batch
func (g *Guard) MaxBatch() int {
	if g.batch == nil {
		return 1
	}
	return g.batch.MaxBatch()
}

// CoolingDown reports whether calls are currently rejected after a rate limit
func (g *Guard) CoolingDown() bool {
	return g.breaker.State() == gobreaker.StateOpen
}

// Translate translates one text
func (g *Guard) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := g.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.backend.Translate(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// TranslateBatch translates texts in one request when the backend batches,
// otherwise it requires a single text.
func (g *Guard) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if g.batch == nil {
		if len(texts) != 1 {
			return nil, fmt.Errorf("%s does not support batches of %d texts", g.Name(), len(texts))
		}
		text, err := g.Translate(ctx, texts[0], sourceLang, targetLang)
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	}

	out, err := g.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.batch.TranslateBatch(ctx, texts, sourceLang, targetLang)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

func (g *Guard) execute(ctx context.Context, call func(context.Context) (interface{}, error)) (interface{}, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		out, err := call(callCtx)
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, newError(g.Name(), KindNetwork, 0, fmt.Sprintf("timed out after %v", g.timeout), err)
		}
		return out, err
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, newError(g.Name(), KindRateLimited, 0, "cooling down after rate limit", err)
	}
	return out, err
}
