package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const localMaxBatch = 16

// LocalBackend translates through a user-run OpenAI-compatible completion
// endpoint (ExLlama, llama.cpp server and similar). No auth is sent.
type LocalBackend struct {
	endpoint string
	model    string
	client   *openai.Client
}

// NewLocalBackend creates a new local LLM backend
func NewLocalBackend(config *Config) (*LocalBackend, error) {
	if config.LocalEndpoint == "" {
		return nil, fmt.Errorf("local LLM endpoint is required")
	}

	endpoint := strings.TrimRight(config.LocalEndpoint, "/")
	clientConfig := openai.DefaultConfig("")
	clientConfig.BaseURL = endpoint + "/v1"

	model := config.LocalModel
	if model == "" {
		model = "default"
	}

	return &LocalBackend{
		endpoint: endpoint,
		model:    model,
		client:   openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name
func (l *LocalBackend) Name() string {
	return "local"
}

// IsAvailable checks that an endpoint is configured
func (l *LocalBackend) IsAvailable() error {
	if l.endpoint == "" {
		return fmt.Errorf("local LLM endpoint not configured")
	}
	return nil
}

// MaxBatch returns how many numbered lines are sent per request
func (l *LocalBackend) MaxBatch() int {
	return localMaxBatch
}

// Translate translates a single text
func (l *LocalBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	results, err := l.TranslateBatch(ctx, []string{text}, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if results[0] == "" {
		return "", newError(l.Name(), KindInvalidResponse, 0, "translation missing from response", nil)
	}
	return results[0], nil
}

// TranslateBatch batches every text into one completion request
func (l *LocalBackend) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	indices, nonEmpty := compact(texts)
	if len(nonEmpty) == 0 {
		return make([]string, len(texts)), nil
	}

	req := openai.CompletionRequest{
		Model:       l.model,
		Prompt:      gemmaPrompt(batchPrompt(nonEmpty, sourceLang, targetLang)),
		Temperature: 0.1,
		MaxTokens:   maxTokensFor(len(nonEmpty)),
	}

	resp, err := l.client.CreateCompletion(ctx, req)
	if err != nil {
		return nil, mapOpenAIError(l.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, newError(l.Name(), KindInvalidResponse, 0, "no choices returned", nil)
	}

	raw := strings.TrimSpace(resp.Choices[0].Text)
	return expand(len(texts), indices, parseNumbered(raw, len(nonEmpty))), nil
}

// gemmaPrompt wraps an instruction in Gemma chat turn markers, which the
// completion endpoint passes through verbatim.
func gemmaPrompt(instruction string) string {
	return "<start_of_turn>user\n" + instruction + "<end_of_turn>\n<start_of_turn>model\n"
}
