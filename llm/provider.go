// Package llm abstracts chat-completion providers behind a single
// interface. All supported providers speak the OpenAI-compatible API and
// share one underlying client; they differ only in base URL and
// credential requirements.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey reports a hosted provider configured without an API
// key. Local providers (ollama, lmstudio) construct without one.
var ErrMissingAPIKey = errors.New("llm: api key required")

// Provider is the interface for LLM interactions.
type Provider interface {
	// Chat sends a chat completion request. Exactly one network round
	// trip per call; retries and deadlines belong to the caller.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the response from a chat completion.
type ChatResponse struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	FinishReason     string `json:"finish_reason"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Config configures an LLM provider.
type Config struct {
	Provider string `json:"provider"` // openrouter, openai, groq, ollama, lmstudio, custom
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
}

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg), nil
	case "lmstudio":
		return NewLMStudio(cfg), nil
	case "openrouter":
		return NewOpenRouter(cfg)
	case "openai":
		return NewOpenAI(cfg)
	case "groq":
		return NewGroq(cfg)
	case "custom":
		return NewOpenAICompat(cfg), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
