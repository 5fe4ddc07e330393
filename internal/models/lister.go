package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister lists models from an OpenAI-compatible endpoint
type Lister struct {
	name        string
	apiKey      string
	requiresKey bool
	client      *openai.Client
}

// NewLister creates a lister for baseURL (for example https://api.groq.com/openai/v1).
// Endpoints that need no authentication pass requiresKey=false.
func NewLister(name, apiKey, baseURL string, requiresKey bool) *Lister {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")

	return &Lister{
		name:        name,
		apiKey:      apiKey,
		requiresKey: requiresKey,
		client:      openai.NewClientWithConfig(config),
	}
}

// List returns the sorted model IDs
func (l *Lister) List(ctx context.Context) ([]string, error) {
	if l.requiresKey && l.apiKey == "" {
		return nil, fmt.Errorf("%s API key not found. Set the API key environment variable or configure it in .screenlate.yaml", l.name)
	}

	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		ids = append(ids, model.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListAvailableModels prints the models to w, marking the configured one
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, current string) error {
	ids, err := l.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Available %s models:\n", l.name)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  No models found")
		return nil
	}
	for _, id := range ids {
		marker := " "
		if id == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, id)
	}
	return nil
}
