package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiBackend translates through the Gemini API
type GeminiBackend struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiBackend creates a new Gemini backend
func NewGeminiBackend(ctx context.Context, config *Config) (*GeminiBackend, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.GeminiModel == "" {
		return nil, fmt.Errorf("Gemini model is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.GeminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.GeminiBaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		apiKey: config.GeminiKey,
		model:  config.GeminiModel,
		client: client,
	}, nil
}

// Name returns the provider name
func (g *GeminiBackend) Name() string {
	return "gemini"
}

// IsAvailable checks that a key is configured
func (g *GeminiBackend) IsAvailable() error {
	if g.apiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}

// Translate translates a single text
func (g *GeminiBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", newError(g.Name(), KindInvalidResponse, 0, "empty input", nil)
	}

	temperature := float32(0.1)
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(singlePrompt(text, sourceLang, targetLang)),
		&genai.GenerateContentConfig{Temperature: &temperature})
	if err != nil {
		return "", g.mapError(err)
	}

	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", newError(g.Name(), KindInvalidResponse, 0, "empty translation", nil)
	}
	return translated, nil
}

func (g *GeminiBackend) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return newError(g.Name(), classifyStatus(apiErr.Code), apiErr.Code, apiErr.Message, err)
	}
	return transportError(g.Name(), err)
}
