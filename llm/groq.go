package llm

import (
	"context"
	"fmt"
)

// groqProvider implements Provider for Groq's inference API.
// Groq uses the OpenAI-compatible API format.
type groqProvider struct {
	base client
}

// NewGroq creates a provider for Groq.
func NewGroq(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: groq", ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &groqProvider{base: newClient(cfg)}, nil
}

func (p *groqProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
