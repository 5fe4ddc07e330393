package translation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedBackend returns queued errors, then echoes a translation
type scriptedBackend struct {
	mu    sync.Mutex
	errs  []error
	calls int
	block bool
}

func (s *scriptedBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	s.mu.Lock()
	s.calls++
	var err error
	if len(s.errs) > 0 {
		err, s.errs = s.errs[0], s.errs[1:]
	}
	block := s.block
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return "[" + targetLang + "] " + text, nil
}

func (s *scriptedBackend) Name() string      { return "scripted" }
func (s *scriptedBackend) IsAvailable() error { return nil }

func (s *scriptedBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type scriptedBatchBackend struct {
	scriptedBackend
	batches [][]string
}

func (s *scriptedBatchBackend) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	s.batches = append(s.batches, texts)
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.ToUpper(t)
	}
	return out, nil
}

func (s *scriptedBatchBackend) MaxBatch() int { return 8 }

func TestGuard_RateLimitCooldown(t *testing.T) {
	backend := &scriptedBackend{
		errs: []error{newError("scripted", KindRateLimited, 429, "quota", nil)},
	}
	guard := NewGuard(backend, time.Second, 50*time.Millisecond, nil)
	ctx := context.Background()

	if _, err := guard.Translate(ctx, "Hello", "EN", "JA"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected first call to be rate limited, got %v", err)
	}
	if !guard.CoolingDown() {
		t.Fatal("Expected guard to be cooling down after a rate limit")
	}

	// Rejected without reaching the backend
	_, err := guard.Translate(ctx, "Hello", "EN", "JA")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected RateLimited during cooldown, got %v", err)
	}
	if backend.callCount() != 1 {
		t.Errorf("Expected 1 backend call during cooldown, got %d", backend.callCount())
	}

	time.Sleep(80 * time.Millisecond)

	got, err := guard.Translate(ctx, "Hello", "EN", "JA")
	if err != nil {
		t.Fatalf("Expected probe after cooldown to succeed, got %v", err)
	}
	if got != "[JA] Hello" {
		t.Errorf("Translate() = %q", got)
	}
	if guard.CoolingDown() {
		t.Error("Expected breaker to close after successful probe")
	}
}

func TestGuard_OtherErrorsDoNotTrip(t *testing.T) {
	backend := &scriptedBackend{
		errs: []error{
			newError("scripted", KindNetwork, 503, "", nil),
			newError("scripted", KindAuth, 401, "", nil),
			newError("scripted", KindInvalidResponse, 0, "", nil),
		},
	}
	guard := NewGuard(backend, time.Second, time.Minute, nil)

	for i := 0; i < 3; i++ {
		if _, err := guard.Translate(context.Background(), "Hello", "EN", "JA"); err == nil {
			t.Errorf("call %d: expected error", i)
		}
	}
	if guard.CoolingDown() {
		t.Fatal("Expected non rate-limit errors to leave the breaker closed")
	}
	if _, err := guard.Translate(context.Background(), "Hello", "EN", "JA"); err != nil {
		t.Errorf("Expected success, got %v", err)
	}
	if backend.callCount() != 4 {
		t.Errorf("Expected 4 backend calls, got %d", backend.callCount())
	}
}

func TestGuard_Timeout(t *testing.T) {
	backend := &scriptedBackend{block: true}
	guard := NewGuard(backend, 20*time.Millisecond, time.Minute, nil)

	start := time.Now()
	_, err := guard.Translate(context.Background(), "Quest Complete", "EN", "JA")
	if KindOf(err) != KindNetwork {
		t.Fatalf("Expected NetworkError on timeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected timeout message, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Timeout did not bound the call")
	}
}

func TestGuard_BatchSupport(t *testing.T) {
	batch := &scriptedBatchBackend{}
	guard := NewGuard(batch, time.Second, time.Minute, nil)

	if guard.MaxBatch() != 8 {
		t.Errorf("MaxBatch() = %d, want 8", guard.MaxBatch())
	}
	got, err := guard.TranslateBatch(context.Background(), []string{"a", "b"}, "EN", "JA")
	if err != nil || len(got) != 2 || got[1] != "B" {
		t.Errorf("TranslateBatch() = %v, %v", got, err)
	}
	if len(batch.batches) != 1 {
		t.Errorf("Expected one batch call, got %d", len(batch.batches))
	}

	single := NewGuard(&scriptedBackend{}, time.Second, time.Minute, nil)
	if single.MaxBatch() != 1 {
		t.Errorf("MaxBatch() = %d, want 1", single.MaxBatch())
	}
	if _, err := single.TranslateBatch(context.Background(), []string{"a", "b"}, "EN", "JA"); err == nil {
		t.Error("Expected error for multi-text batch on single backend")
	}
	got, err = single.TranslateBatch(context.Background(), []string{"a"}, "EN", "JA")
	if err != nil || got[0] != "[JA] a" {
		t.Errorf("TranslateBatch() single = %v, %v", got, err)
	}
}

func TestGuard_Delegates(t *testing.T) {
	guard := NewGuard(&scriptedBackend{}, 0, time.Minute, nil)
	if guard.Name() != "scripted" {
		t.Errorf("Name() = %q", guard.Name())
	}
	if err := guard.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() = %v", err)
	}
}
