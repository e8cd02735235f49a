package llm

import "context"

// lmStudioProvider implements Provider for LM Studio's local server,
// which exposes the OpenAI-compatible API. No API key is required.
type lmStudioProvider struct {
	base client
}

// NewLMStudio creates a provider for a local LM Studio instance.
func NewLMStudio(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234/v1"
	}
	return &lmStudioProvider{base: newClient(cfg)}
}

func (p *lmStudioProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
