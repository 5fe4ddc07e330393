package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
)

func newModelServer(t *testing.T, wantAuth string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		if wantAuth != "" && r.Header.Get("Authorization") != "Bearer "+wantAuth {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"llama-3.3-70b-versatile"},{"id":"gemma2-9b-it"}]}`))
	}))
}

func TestList(t *testing.T) {
	server := newModelServer(t, "test-key")
	defer server.Close()

	lister := NewLister("Groq", "test-key", server.URL+"/v1/", true)
	ids, err := lister.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"gemma2-9b-it", "llama-3.3-70b-versatile"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}

func TestList_Errors(t *testing.T) {
	server := newModelServer(t, "right-key")
	defer server.Close()

	if _, err := NewLister("Groq", "", server.URL+"/v1", true).List(context.Background()); err == nil {
		t.Error("Expected error for missing API key")
	} else if !strings.Contains(err.Error(), "Groq API key not found") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := NewLister("Groq", "wrong-key", server.URL+"/v1", true).List(context.Background()); err == nil {
		t.Error("Expected error for rejected API key")
	}
}

func TestListAvailableModels(t *testing.T) {
	server := newModelServer(t, "")
	defer server.Close()

	var out bytes.Buffer
	lister := NewLister("local", "", server.URL+"/v1", false)
	if err := lister.ListAvailableModels(context.Background(), &out, "gemma2-9b-it"); err != nil {
		t.Fatalf("ListAvailableModels() error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "Available local models:") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, " * gemma2-9b-it\n") || !strings.Contains(got, "   llama-3.3-70b-versatile\n") {
		t.Errorf("output = %q", got)
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GROQ_API_KEY not set")
	}

	var out bytes.Buffer
	lister := NewLister("Groq", apiKey, "https://api.groq.com/openai/v1", true)
	if err := lister.ListAvailableModels(context.Background(), &out, ""); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
