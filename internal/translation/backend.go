package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend translates text through a remote or local service
type Backend interface {
	// Translate translates a single text from sourceLang to targetLang
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the backend is properly configured
	IsAvailable() error
}

// BatchBackend is implemented by backends that can translate several texts
// in one request. The result has one element per input; an empty element
// means the provider returned nothing for that text.
type BatchBackend interface {
	Backend
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
	MaxBatch() int
}

// Engine selects the backend implementation
type Engine string

const (
	EngineDeepL  Engine = "deepl"
	EngineGroq   Engine = "groq"
	EngineLocal  Engine = "local"
	EngineGemini Engine = "gemini"
)

// ParseEngine accepts engine names case-insensitively
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deepl":
		return EngineDeepL, nil
	case "groq":
		return EngineGroq, nil
	case "local", "localllm", "local-llm":
		return EngineLocal, nil
	case "gemini":
		return EngineGemini, nil
	default:
		return "", fmt.Errorf("unknown translation engine: %s", s)
	}
}

// Config holds the settings for every backend; only the fields of the
// selected engine are used.
type Config struct {
	Engine Engine

	// DeepL
	DeepLKey      string
	DeepLEndpoint string // Empty selects the free or pro API from the key
	DeepLTimeout  time.Duration

	// Groq (OpenAI-compatible chat completions)
	GroqKey     string
	GroqModel   string
	GroqBaseURL string
	GroqTimeout time.Duration

	// Local LLM (OpenAI-compatible completions, no auth)
	LocalEndpoint string
	LocalModel    string
	LocalTimeout  time.Duration

	// Gemini
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// RateLimitCooldown is how long calls fail fast after a RateLimited error
	RateLimitCooldown time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:            EngineDeepL,
		DeepLTimeout:      10 * time.Second,
		GroqModel:         "llama-3.3-70b-versatile",
		GroqBaseURL:       GroqBaseURL,
		GroqTimeout:       15 * time.Second,
		LocalEndpoint:     "http://localhost:5000",
		LocalModel:        "default",
		LocalTimeout:      60 * time.Second,
		GeminiModel:       "gemini-2.0-flash",
		GeminiTimeout:     15 * time.Second,
		RateLimitCooldown: 30 * time.Second,
	}
}

// Timeout returns the per-call timeout of the selected engine
func (c *Config) Timeout() time.Duration {
	switch c.Engine {
	case EngineDeepL:
		return c.DeepLTimeout
	case EngineGroq:
		return c.GroqTimeout
	case EngineLocal:
		return c.LocalTimeout
	case EngineGemini:
		return c.GeminiTimeout
	default:
		return 0
	}
}

// NewBackend creates the backend selected by config
func NewBackend(ctx context.Context, config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Engine {
	case EngineDeepL:
		return NewDeepLBackend(config)
	case EngineGroq:
		return NewGroqBackend(config)
	case EngineLocal:
		return NewLocalBackend(config)
	case EngineGemini:
		return NewGeminiBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unknown translation engine: %s", config.Engine)
	}
}

// languageName turns a language code into the English name used in LLM prompts
func languageName(code string) string {
	names := map[string]string{
		"EN": "English",
		"JA": "Japanese",
		"DE": "German",
		"FR": "French",
		"ES": "Spanish",
		"ZH": "Chinese",
		"KO": "Korean",
	}
	upper := strings.ToUpper(code)
	if i := strings.IndexAny(upper, "-_"); i > 0 {
		upper = upper[:i]
	}
	if name, ok := names[upper]; ok {
		return name
	}
	return code
}
