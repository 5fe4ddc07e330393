package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimited},
		{456, KindRateLimited},
		{408, KindNetwork},
		{500, KindNetwork},
		{503, KindNetwork},
		{400, KindModel},
		{404, KindModel},
		{200, KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			if got := classifyStatus(tt.code); got != tt.want {
				t.Errorf("classifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"typed", newError("deepl", KindAuth, 403, "", nil), KindAuth},
		{"wrapped typed", fmt.Errorf("batch: %w", newError("groq", KindRateLimited, 429, "", nil)), KindRateLimited},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"plain", errors.New("connection reset"), KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError("deepl", KindRateLimited, 456, "Quota exceeded", nil))

	if !errors.Is(err, ErrRateLimited) {
		t.Error("Expected errors.Is(err, ErrRateLimited)")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("Expected rate limit error not to match ErrNetwork")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	err := newError("groq", KindModel, 404, "model not found", cause)

	msg := err.Error()
	for _, part := range []string{"groq", "ModelError", "HTTP 404", "model not found", "boom"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
}

func TestKindStatusText(t *testing.T) {
	if KindRateLimited.StatusText() != "quota exceeded" {
		t.Errorf("RateLimited status = %q", KindRateLimited.StatusText())
	}
	if KindNetwork.StatusText() != "disconnected" {
		t.Errorf("Network status = %q", KindNetwork.StatusText())
	}
	if KindRateLimited.StatusText() == KindNetwork.StatusText() {
		t.Error("Expected rate limits and network errors to read differently")
	}
}
