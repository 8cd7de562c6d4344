package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/domain"
)

func TestLLMService_ChatCompletion(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A joke.  "}}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(&config.LLMConfig{Provider: "groq", APIKey: "secret", BaseURL: server.URL, Temperature: 0.7})
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}
	if svc.ModelName() != "Groq:llama-3.1-8b-instant" {
		t.Errorf("ModelName() = %q", svc.ModelName())
	}

	text, err := svc.Complete(context.Background(), "be funny", "tell a joke")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "A joke." {
		t.Errorf("Complete() = %q, want trimmed text", text)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "tell a joke" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Model != "llama-3.1-8b-instant" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestLLMService_ChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(&config.LLMConfig{Provider: "ollama", BaseURL: server.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}
	_, err = svc.Complete(context.Background(), "", "hi")
	if !errors.Is(err, domain.ErrDependency) {
		t.Errorf("Complete() error = %v, want ErrDependency", err)
	}
}

func TestLLMService_Anthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s, want /messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic headers: %v", r.Header)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System != "sys" || len(req.Messages) != 1 {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(&config.LLMConfig{Provider: "Anthropic", APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}
	text, err := svc.Complete(context.Background(), "sys", "hi")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "Hello there" {
		t.Errorf("Complete() = %q", text)
	}
	if svc.ModelName() != "Anthropic:claude-3-haiku-20240307" {
		t.Errorf("ModelName() = %q", svc.ModelName())
	}
}

func TestNewLLMService_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{"unknown provider", config.LLMConfig{Provider: "mystery"}},
		{"cloud provider without key", config.LLMConfig{Provider: "openai"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLLMService(&tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
