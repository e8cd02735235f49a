package llm

import (
	"context"
	"fmt"
)

// openRouterProvider implements Provider for OpenRouter.
// OpenRouter uses the OpenAI-compatible API format and routes to many
// upstream models by namespaced name (e.g. "deepseek/deepseek-chat-v3-0324").
type openRouterProvider struct {
	base client
}

// NewOpenRouter creates a provider for OpenRouter.
func NewOpenRouter(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openrouter", ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	return &openRouterProvider{base: newClient(cfg)}, nil
}

func (p *openRouterProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
