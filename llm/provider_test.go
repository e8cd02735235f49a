package llm

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"ollama", "*llm.ollamaProvider"},
		{"lmstudio", "*llm.lmStudioProvider"},
		{"openrouter", "*llm.openRouterProvider"},
		{"openai", "*llm.openAIProvider"},
		{"groq", "*llm.groqProvider"},
		{"custom", "*llm.openAICompatProvider"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Config{
				Provider: tt.provider,
				Model:    "test-model",
				APIKey:   "sk-test-key",
			}
			p, err := NewProvider(cfg)
			if err != nil {
				t.Fatalf("NewProvider(%q) returned error: %v", tt.provider, err)
			}
			gotType := fmt.Sprintf("%T", p)
			if gotType != tt.wantType {
				t.Errorf("NewProvider(%q) type = %s, want %s", tt.provider, gotType, tt.wantType)
			}
		})
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := Config{
		Provider: "doesnotexist",
		Model:    "test-model",
	}
	_, err := NewProvider(cfg)
	if err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
	want := "unknown llm provider: doesnotexist"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNewProviderEmpty(t *testing.T) {
	cfg := Config{
		Provider: "",
		Model:    "test-model",
	}
	_, err := NewProvider(cfg)
	if err == nil {
		t.Fatal("expected error for empty provider, got nil")
	}
	want := "llm provider not specified"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

// TestHostedProvidersRequireKey confirms the hosted providers fail fast
// without an API key while local providers construct without one.
func TestHostedProvidersRequireKey(t *testing.T) {
	hosted := []string{"openrouter", "openai", "groq"}
	for _, name := range hosted {
		t.Run(name, func(t *testing.T) {
			_, err := NewProvider(Config{Provider: name, Model: "m"})
			if !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("NewProvider(%q) error = %v, want ErrMissingAPIKey", name, err)
			}
		})
	}

	local := []string{"ollama", "lmstudio", "custom"}
	for _, name := range local {
		t.Run(name, func(t *testing.T) {
			if _, err := NewProvider(Config{Provider: name, Model: "m"}); err != nil {
				t.Errorf("NewProvider(%q) without key: %v", name, err)
			}
		})
	}
}

// TestDefaultBaseURLs verifies that when BaseURL is empty in the config,
// each provider constructor sets the correct default.
func TestDefaultBaseURLs(t *testing.T) {
	tests := []struct {
		provider string
		wantURL  string
	}{
		{"ollama", "http://localhost:11434/v1"},
		{"lmstudio", "http://localhost:1234/v1"},
		{"openrouter", "https://openrouter.ai/api/v1"},
		{"groq", "https://api.groq.com/openai/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Config{
				Provider: tt.provider,
				Model:    "test-model",
				APIKey:   "sk-test-key",
				// BaseURL intentionally left empty.
			}
			p, err := NewProvider(cfg)
			if err != nil {
				t.Fatalf("NewProvider(%q): %v", tt.provider, err)
			}

			if gotURL := baseConfig(t, p).FieldByName("BaseURL").String(); gotURL != tt.wantURL {
				t.Errorf("default BaseURL for %q = %q, want %q", tt.provider, gotURL, tt.wantURL)
			}
		})
	}
}

// TestCustomProviderNoDefaultURL confirms the custom provider does not
// override an empty BaseURL with a default.
func TestCustomProviderNoDefaultURL(t *testing.T) {
	p, err := NewProvider(Config{Provider: "custom", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewProvider(custom): %v", err)
	}

	if gotURL := baseConfig(t, p).FieldByName("BaseURL").String(); gotURL != "" {
		t.Errorf("custom provider BaseURL = %q, want empty", gotURL)
	}
}

// TestExplicitBaseURLPreserved verifies that a user-supplied BaseURL
// is not overwritten by the default.
func TestExplicitBaseURLPreserved(t *testing.T) {
	customURL := "http://my-server:9999/v1"

	for _, provider := range []string{"ollama", "lmstudio", "openrouter", "openai", "groq", "custom"} {
		t.Run(provider, func(t *testing.T) {
			cfg := Config{
				Provider: provider,
				Model:    "test-model",
				APIKey:   "sk-test-key",
				BaseURL:  customURL,
			}
			p, err := NewProvider(cfg)
			if err != nil {
				t.Fatalf("NewProvider(%q): %v", provider, err)
			}

			if gotURL := baseConfig(t, p).FieldByName("BaseURL").String(); gotURL != customURL {
				t.Errorf("provider %q BaseURL = %q, want %q", provider, gotURL, customURL)
			}
		})
	}
}

// TestModelPassedThrough verifies the model from Config is stored
// inside the provider as the per-request fallback.
func TestModelPassedThrough(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama", Model: "llama3:latest"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	if gotModel := baseConfig(t, p).FieldByName("Model").String(); gotModel != "llama3:latest" {
		t.Errorf("model = %q, want %q", gotModel, "llama3:latest")
	}
}

// baseConfig reaches base.cfg on a concrete provider via reflection.
func baseConfig(t *testing.T, p Provider) reflect.Value {
	t.Helper()
	v := reflect.ValueOf(p).Elem()
	base := v.FieldByName("base")
	if !base.IsValid() {
		t.Fatalf("provider %T has no base field", p)
	}
	return base.FieldByName("cfg")
}
