package translation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func chatResponse(content string) string {
	resp := map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func completionResponse(text string) string {
	resp := map[string]interface{}{
		"id":      "cmpl-1",
		"object":  "text_completion",
		"created": 1,
		"model":   "default",
		"choices": []map[string]interface{}{
			{"index": 0, "text": text, "finish_reason": "stop"},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func newGroqTestBackend(t *testing.T, handler http.HandlerFunc) *GroqBackend {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := NewGroqBackend(&Config{GroqKey: "gsk-test", GroqModel: "llama-3.3-70b-versatile", GroqBaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGroqBackend() error: %v", err)
	}
	return backend
}

func TestGroqTranslate(t *testing.T) {
	backend := newGroqTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer gsk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatResponse("  こんにちは\n"))
	})

	got, err := backend.Translate(context.Background(), "Hello", "EN", "JA")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got != "こんにちは" {
		t.Errorf("Translate() = %q, want こんにちは", got)
	}
}

func TestGroqTranslateBatch(t *testing.T) {
	var prompt string
	backend := newGroqTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			prompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatResponse("1. ゲーム開始\n2. オプション"))
	})

	got, err := backend.TranslateBatch(context.Background(), []string{"Start Game", "", "Options", "Quit"}, "EN", "JA")
	if err != nil {
		t.Fatalf("TranslateBatch() error: %v", err)
	}

	want := []string{"ゲーム開始", "", "オプション", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TranslateBatch() = %q, want %q", got, want)
	}
	if !strings.Contains(prompt, "1. Start Game\n2. Options\n3. Quit") {
		t.Errorf("prompt did not number non-blank lines: %q", prompt)
	}
}

func TestGroqErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"rate limited", 429, `{"error":{"message":"Rate limit reached","type":"tokens","code":"rate_limit_exceeded"}}`, KindRateLimited},
		{"bad key", 401, `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`, KindAuth},
		{"unknown model", 404, `{"error":{"message":"The model does not exist","type":"invalid_request_error","code":"model_not_found"}}`, KindModel},
		{"gateway", 502, `<html>bad gateway</html>`, KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newGroqTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := backend.Translate(context.Background(), "Hello", "EN", "JA")
			if KindOf(err) != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", err, KindOf(err), tt.want)
			}
		})
	}
}

func TestGroqNoChoices(t *testing.T) {
	backend := newGroqTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	})

	_, err := backend.Translate(context.Background(), "Hello", "EN", "JA")
	if KindOf(err) != KindInvalidResponse {
		t.Errorf("Expected InvalidResponse, got %v", err)
	}
}

func TestLocalTranslateBatch(t *testing.T) {
	var gotPrompt string
	var gotMaxTokens int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %s, want /v1/completions", r.URL.Path)
		}
		var req struct {
			Prompt    string `json:"prompt"`
			MaxTokens int    `json:"max_tokens"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt, gotMaxTokens = req.Prompt, req.MaxTokens
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionResponse("1. ゲーム開始\n2. クエスト完了\n"))
	}))
	defer server.Close()

	backend, err := NewLocalBackend(&Config{LocalEndpoint: server.URL + "/", LocalModel: "gemma"})
	if err != nil {
		t.Fatalf("NewLocalBackend() error: %v", err)
	}

	got, err := backend.TranslateBatch(context.Background(), []string{"Start Game", "Quest Complete"}, "EN", "JA")
	if err != nil {
		t.Fatalf("TranslateBatch() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ゲーム開始", "クエスト完了"}) {
		t.Errorf("TranslateBatch() = %q", got)
	}
	if !strings.HasPrefix(gotPrompt, "<start_of_turn>user\n") || !strings.HasSuffix(gotPrompt, "<start_of_turn>model\n") {
		t.Errorf("prompt not wrapped in turn markers: %q", gotPrompt)
	}
	if gotMaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", gotMaxTokens)
	}
}

func TestLocalTranslate_MissingLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionResponse("I cannot translate that."))
	}))
	defer server.Close()

	backend, _ := NewLocalBackend(&Config{LocalEndpoint: server.URL})

	_, err := backend.Translate(context.Background(), "Hello", "EN", "JA")
	if KindOf(err) != KindInvalidResponse {
		t.Errorf("Expected InvalidResponse, got %v", err)
	}
}

func TestMaxTokensFor(t *testing.T) {
	if maxTokensFor(1) != 32 {
		t.Errorf("maxTokensFor(1) = %d", maxTokensFor(1))
	}
	if maxTokensFor(100) != 512 {
		t.Errorf("maxTokensFor(100) = %d", maxTokensFor(100))
	}
}
