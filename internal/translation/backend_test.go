package translation

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input   string
		want    Engine
		wantErr bool
	}{
		{"deepl", EngineDeepL, false},
		{"DeepL", EngineDeepL, false},
		{"groq", EngineGroq, false},
		{"LocalLLM", EngineLocal, false},
		{"local", EngineLocal, false},
		{" gemini ", EngineGemini, false},
		{"bing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEngine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEngine(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEngine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Engine != EngineDeepL {
		t.Errorf("Expected engine deepl, got %s", config.Engine)
	}
	if config.GroqModel != "llama-3.3-70b-versatile" {
		t.Errorf("Expected Groq model llama-3.3-70b-versatile, got %s", config.GroqModel)
	}
	if config.LocalEndpoint != "http://localhost:5000" {
		t.Errorf("Expected local endpoint http://localhost:5000, got %s", config.LocalEndpoint)
	}
	if config.LocalTimeout <= config.DeepLTimeout {
		t.Error("Expected local inference to get a longer timeout than DeepL")
	}
	if config.RateLimitCooldown != 30*time.Second {
		t.Errorf("Expected 30s cooldown, got %v", config.RateLimitCooldown)
	}
}

func TestConfigTimeout(t *testing.T) {
	config := DefaultConfig()

	config.Engine = EngineLocal
	if config.Timeout() != 60*time.Second {
		t.Errorf("local Timeout() = %v", config.Timeout())
	}
	config.Engine = EngineGroq
	if config.Timeout() != 15*time.Second {
		t.Errorf("groq Timeout() = %v", config.Timeout())
	}
	config.Engine = Engine("other")
	if config.Timeout() != 0 {
		t.Errorf("unknown Timeout() = %v", config.Timeout())
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantName string
		wantErr  string
	}{
		{
			name:    "nil config uses defaults",
			config:  nil,
			wantErr: "DeepL API key is required",
		},
		{
			name:     "deepl",
			config:   &Config{Engine: EngineDeepL, DeepLKey: "abc:fx"},
			wantName: "deepl",
		},
		{
			name:    "groq without key",
			config:  &Config{Engine: EngineGroq, GroqModel: "m"},
			wantErr: "Groq API key is required",
		},
		{
			name:     "groq",
			config:   &Config{Engine: EngineGroq, GroqKey: "k", GroqModel: "m"},
			wantName: "groq",
		},
		{
			name:     "local",
			config:   &Config{Engine: EngineLocal, LocalEndpoint: "http://localhost:5000/"},
			wantName: "local",
		},
		{
			name:    "local without endpoint",
			config:  &Config{Engine: EngineLocal},
			wantErr: "local LLM endpoint is required",
		},
		{
			name:    "gemini without key",
			config:  &Config{Engine: EngineGemini, GeminiModel: "gemini-2.0-flash"},
			wantErr: "Gemini API key is required",
		},
		{
			name:    "unknown",
			config:  &Config{Engine: "bing"},
			wantErr: "unknown translation engine: bing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(context.Background(), tt.config)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("NewBackend() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() unexpected error: %v", err)
			}
			if backend.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", backend.Name(), tt.wantName)
			}
			if err := backend.IsAvailable(); err != nil {
				t.Errorf("IsAvailable() unexpected error: %v", err)
			}
		})
	}
}

func TestTranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("DEEPL_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: DEEPL_API_KEY not set")
	}

	backend, err := NewDeepLBackend(&Config{DeepLKey: apiKey})
	if err != nil {
		t.Fatalf("NewDeepLBackend() error: %v", err)
	}

	translated, err := backend.Translate(context.Background(), "Hello", "EN", "JA")
	if err != nil {
		t.Fatalf("Translate() failed: %v", err)
	}
	if translated == "" {
		t.Error("Got empty translation")
	}

	t.Logf("Translation of 'Hello': %s", translated)
}
