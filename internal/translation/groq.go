package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible API root
const GroqBaseURL = "https://api.groq.com/openai/v1"

const groqMaxBatch = 20

// GroqBackend translates through Groq chat completions
type GroqBackend struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewGroqBackend creates a new Groq backend
func NewGroqBackend(config *Config) (*GroqBackend, error) {
	if config.GroqKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if config.GroqModel == "" {
		return nil, fmt.Errorf("Groq model is required")
	}

	clientConfig := openai.DefaultConfig(config.GroqKey)
	clientConfig.BaseURL = GroqBaseURL
	if config.GroqBaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.GroqBaseURL, "/")
	}

	return &GroqBackend{
		apiKey: config.GroqKey,
		model:  config.GroqModel,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name
func (g *GroqBackend) Name() string {
	return "groq"
}

// IsAvailable checks that a key is configured
func (g *GroqBackend) IsAvailable() error {
	if g.apiKey == "" {
		return fmt.Errorf("Groq API key not configured")
	}
	return nil
}

// MaxBatch returns how many numbered lines are sent per request
func (g *GroqBackend) MaxBatch() int {
	return groqMaxBatch
}

// Translate translates a single text
func (g *GroqBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", newError(g.Name(), KindInvalidResponse, 0, "empty input", nil)
	}

	content, err := g.complete(ctx, singlePrompt(text, sourceLang, targetLang), 256)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", newError(g.Name(), KindInvalidResponse, 0, "empty translation", nil)
	}
	return content, nil
}

// TranslateBatch sends numbered lines in one chat request
func (g *GroqBackend) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	indices, nonEmpty := compact(texts)
	if len(nonEmpty) == 0 {
		return make([]string, len(texts)), nil
	}

	content, err := g.complete(ctx, batchPrompt(nonEmpty, sourceLang, targetLang), maxTokensFor(len(nonEmpty)))
	if err != nil {
		return nil, err
	}

	return expand(len(texts), indices, parseNumbered(content, len(nonEmpty))), nil
}

func (g *GroqBackend) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapOpenAIError(g.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(g.Name(), KindInvalidResponse, 0, "no choices returned", nil)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// maxTokensFor budgets 32 tokens per line, capped at 512
func maxTokensFor(n int) int {
	return min(32*n, 512)
}
