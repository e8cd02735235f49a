package gospo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bbiangul/gospo/llm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ChunkSize != 150 || cfg.Overlap != 30 {
		t.Errorf("chunking defaults: got %d/%d, want 150/30", cfg.ChunkSize, cfg.Overlap)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("concurrency default: got %d, want 4", cfg.Concurrency)
	}
	if cfg.MaxHops != 2 || cfg.MaxFacts != 50 {
		t.Errorf("query defaults: got hops=%d facts=%d, want 2 and 50", cfg.MaxHops, cfg.MaxFacts)
	}
	if cfg.LLM.Provider != "openrouter" {
		t.Errorf("default provider: got %q, want openrouter", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "deepseek/deepseek-chat-v3-0324" {
		t.Errorf("default model: got %q", cfg.LLM.Model)
	}
	if cfg.persistenceEnabled() {
		t.Error("persistence enabled by default, want off until requested")
	}
}

func TestResolveDBPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit path wins",
			cfg:  Config{DBPath: "/tmp/custom.db", DBName: "other", StorageDir: "local"},
			want: "/tmp/custom.db",
		},
		{
			name: "local storage",
			cfg:  Config{DBName: "kg", StorageDir: "local"},
			want: "kg.db",
		},
		{
			name: "cwd alias",
			cfg:  Config{DBName: "kg", StorageDir: "cwd"},
			want: "kg.db",
		},
		{
			name: "blank name defaults",
			cfg:  Config{StorageDir: "local"},
			want: "gospo.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.resolveDBPath(); got != tt.want {
				t.Errorf("resolveDBPath() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("home storage", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}
		cfg := Config{DBName: "kg", StorageDir: "home"}
		want := filepath.Join(home, ".gospo", "kg.db")
		if got := cfg.resolveDBPath(); got != want {
			t.Errorf("resolveDBPath() = %q, want %q", got, want)
		}
	})
}

func TestAnswerModelSelection(t *testing.T) {
	cfg := Config{LLM: llm.Config{Model: "extract-model"}}
	if got := cfg.answerModel(); got != "extract-model" {
		t.Errorf("answerModel without override: got %q, want extract-model", got)
	}
	cfg.AnswerModel = "answer-model"
	if got := cfg.answerModel(); got != "answer-model" {
		t.Errorf("answerModel with override: got %q, want answer-model", got)
	}
}
