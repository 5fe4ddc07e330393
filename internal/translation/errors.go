package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies backend failures independently of the provider
type Kind int

const (
	KindNone Kind = iota
	KindAuth
	KindRateLimited
	KindNetwork
	KindInvalidResponse
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindAuth:
		return "AuthError"
	case KindRateLimited:
		return "RateLimited"
	case KindNetwork:
		return "NetworkError"
	case KindInvalidResponse:
		return "InvalidResponse"
	case KindModel:
		return "ModelError"
	default:
		return "Unknown"
	}
}

// StatusText is the short message shown in the status indicator
func (k Kind) StatusText() string {
	switch k {
	case KindNone:
		return "ok"
	case KindAuth:
		return "authentication failed"
	case KindRateLimited:
		return "quota exceeded"
	case KindNetwork:
		return "disconnected"
	case KindInvalidResponse:
		return "invalid response"
	case KindModel:
		return "model error"
	default:
		return "unknown error"
	}
}

// Error is returned by every backend
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, translation.ErrRateLimited).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Provider == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrAuth            = &Error{Kind: KindAuth}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrModel           = &Error{Kind: KindModel}
)

func newError(provider string, kind Kind, status int, message string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Cause:      cause,
	}
}

// KindOf classifies err. Timeouts and transport failures are NetworkError.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}

	// Anything else failed before a classified response arrived
	return KindNetwork
}

// classifyStatus maps an HTTP status code onto the taxonomy
func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests || code == 456: // DeepL quota exceeded
		return KindRateLimited
	case code == http.StatusRequestTimeout || code >= 500:
		return KindNetwork
	case code >= 400:
		return KindModel
	default:
		return KindInvalidResponse
	}
}

// transportError wraps a failure that happened before any HTTP status was seen
func transportError(provider string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(provider, KindNetwork, 0, "request timed out", err)
	}
	return newError(provider, KindNetwork, 0, "request failed", err)
}
