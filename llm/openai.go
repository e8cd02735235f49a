package llm

import (
	"context"
	"fmt"
)

// openAIProvider implements Provider for the OpenAI API.
type openAIProvider struct {
	base client
}

// NewOpenAI creates a provider for OpenAI. An empty BaseURL uses the
// official endpoint.
func NewOpenAI(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai", ErrMissingAPIKey)
	}
	return &openAIProvider{base: newClient(cfg)}, nil
}

func (p *openAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
