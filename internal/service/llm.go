package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/domain"
)

// Completer produces a single chat completion. It is the seam between the
// joke workflow and whichever LLM provider is configured.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// ModelName is the label stored with each joke, e.g. "Groq:llama-3.1-8b-instant".
	ModelName() string
}

type providerDefaults struct {
	label     string
	baseURL   string
	model     string
	needsKey  bool
	anthropic bool
}

var providers = map[string]providerDefaults{
	"ollama":    {label: "Ollama", baseURL: "http://localhost:11434/v1", model: "llama3.2:latest"},
	"groq":      {label: "Groq", baseURL: "https://api.groq.com/openai/v1", model: "llama-3.1-8b-instant", needsKey: true},
	"openai":    {label: "OpenAI", baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini", needsKey: true},
	"anthropic": {label: "Anthropic", baseURL: "https://api.anthropic.com/v1", model: "claude-3-haiku-20240307", needsKey: true, anthropic: true},
}

// LLMService talks to an OpenAI-compatible chat completions endpoint or to
// the Anthropic messages API.
type LLMService struct {
	client      *resty.Client
	provider    providerDefaults
	model       string
	endpoint    string
	temperature float32
	maxTokens   int
}

// NewLLMService creates a client for the configured provider.
// Parameters:
//   - cfg: LLM configuration; empty model and base URL fall back to provider defaults.
//
// Returns:
//   - *LLMService: initialized client.
//   - error: non-nil for an unknown provider or a missing API key.
func NewLLMService(cfg *config.LLMConfig) (*LLMService, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	p, ok := providers[key]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if p.needsKey && cfg.APIKey == "" {
		return nil, fmt.Errorf("llm provider %s requires an api key", p.label)
	}

	model := cfg.Model
	if model == "" {
		model = p.model
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = p.baseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	endpoint := baseURL + "/chat/completions"
	if p.anthropic {
		endpoint = baseURL + "/messages"
		client.SetHeader("x-api-key", cfg.APIKey)
		client.SetHeader("anthropic-version", "2023-06-01")
	} else if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &LLMService{
		client:      client,
		provider:    p,
		model:       model,
		endpoint:    endpoint,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// ModelName returns "Provider:model".
func (s *LLMService) ModelName() string {
	return s.provider.label + ":" + s.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one system + user exchange and returns the trimmed reply.
// Failures are tagged with domain.ErrDependency.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - system: system prompt; may be empty.
//   - user: user prompt.
//
// Returns:
//   - string: completion text.
//   - error: non-nil if the request fails or the reply is empty.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	var (
		text string
		err  error
	)
	if s.provider.anthropic {
		text, err = s.completeAnthropic(ctx, system, user)
	} else {
		text, err = s.completeChat(ctx, system, user)
	}
	if err != nil {
		return "", domain.DependencyError(fmt.Errorf("%s: %w", s.provider.label, err))
	}
	return text, nil
}

func (s *LLMService) completeChat(ctx context.Context, system, user string) (string, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       s.model,
			Messages:    messages,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call chat API: %w", err)
	}

	if httpResp.IsError() {
		if resp.Error != nil {
			return "", fmt.Errorf("chat API returned HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("chat API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response: %s", string(httpResp.Body()))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty chat completion")
	}
	return text, nil
}

func (s *LLMService) completeAnthropic(ctx context.Context, system, user string) (string, error) {
	var resp anthropicResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(anthropicRequest{
			Model:       s.model,
			System:      system,
			Messages:    []chatMessage{{Role: "user", Content: user}},
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call messages API: %w", err)
	}

	if httpResp.IsError() {
		if resp.Error != nil {
			return "", fmt.Errorf("messages API returned HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("messages API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty messages completion")
	}
	return text, nil
}
