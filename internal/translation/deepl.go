package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	deepLFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	deepLProEndpoint  = "https://api.deepl.com/v2/translate"

	// deepLMaxTexts is the API limit of text parameters per request
	deepLMaxTexts = 50
)

type deepLRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type deepLErrorBody struct {
	Message string `json:"message"`
}

// DeepLBackend implements BatchBackend for the DeepL REST API
type DeepLBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// DeepLEndpoint picks the API host for a key. Free keys end with ":fx".
func DeepLEndpoint(apiKey string) string {
	if strings.HasSuffix(apiKey, ":fx") {
		return deepLFreeEndpoint
	}
	return deepLProEndpoint
}

// NewDeepLBackend creates a new DeepL backend
func NewDeepLBackend(config *Config) (*DeepLBackend, error) {
	if config.DeepLKey == "" {
		return nil, fmt.Errorf("DeepL API key is required")
	}

	endpoint := config.DeepLEndpoint
	if endpoint == "" {
		endpoint = DeepLEndpoint(config.DeepLKey)
	}

	return &DeepLBackend{
		apiKey:   config.DeepLKey,
		endpoint: endpoint,
		client:   &http.Client{},
	}, nil
}

// Name returns the provider name
func (d *DeepLBackend) Name() string {
	return "deepl"
}

// IsAvailable checks that a key is configured
func (d *DeepLBackend) IsAvailable() error {
	if d.apiKey == "" {
		return fmt.Errorf("DeepL API key not configured")
	}
	return nil
}

// MaxBatch returns the number of texts DeepL accepts per request
func (d *DeepLBackend) MaxBatch() int {
	return deepLMaxTexts
}

// Translate translates a single text
func (d *DeepLBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	results, err := d.TranslateBatch(ctx, []string{text}, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	if results[0] == "" {
		return "", newError(d.Name(), KindInvalidResponse, 0, "empty translation", nil)
	}
	return results[0], nil
}

// TranslateBatch sends all non-blank texts in a single request
func (d *DeepLBackend) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	indices, nonEmpty := compact(texts)
	if len(nonEmpty) == 0 {
		return make([]string, len(texts)), nil
	}
	if len(nonEmpty) > deepLMaxTexts {
		return nil, newError(d.Name(), KindModel, 0,
			fmt.Sprintf("batch of %d exceeds limit of %d texts", len(nonEmpty), deepLMaxTexts), nil)
	}

	body, err := json.Marshal(deepLRequest{
		Text:       nonEmpty,
		TargetLang: strings.ToUpper(targetLang),
		SourceLang: strings.ToUpper(sourceLang),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode DeepL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepL request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, transportError(d.Name(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(d.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb deepLErrorBody
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return nil, newError(d.Name(), classifyStatus(resp.StatusCode), resp.StatusCode, msg, nil)
	}

	var parsed deepLResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, newError(d.Name(), KindInvalidResponse, resp.StatusCode, "failed to parse response", err)
	}
	if len(parsed.Translations) != len(nonEmpty) {
		return nil, newError(d.Name(), KindInvalidResponse, resp.StatusCode,
			fmt.Sprintf("expected %d translations, got %d", len(nonEmpty), len(parsed.Translations)), nil)
	}

	results := make([]string, len(parsed.Translations))
	for i, t := range parsed.Translations {
		results[i] = t.Text
	}

	return expand(len(texts), indices, results), nil
}
