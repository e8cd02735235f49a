package llm

import "context"

// ollamaProvider implements Provider for Ollama through its
// OpenAI-compatible endpoint. No API key is required.
type ollamaProvider struct {
	base client
}

// NewOllama creates a provider for a local Ollama instance.
func NewOllama(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434/v1"
	}
	return &ollamaProvider{base: newClient(cfg)}
}

func (p *ollamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}
