package gospo

import (
	"os"
	"path/filepath"

	"github.com/bbiangul/gospo/chunker"
	"github.com/bbiangul/gospo/llm"
	"github.com/bbiangul/gospo/rag"
)

// Config holds all configuration for the gospo engine.
type Config struct {
	// Chunking
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"` // words per chunk (default 150)
	Overlap   int `json:"overlap" yaml:"overlap"`       // words shared between consecutive chunks (default 30)

	// Concurrency is the maximum number of parallel extraction calls
	// (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Query expansion
	MaxHops  int `json:"max_hops" yaml:"max_hops"`   // entity expansion radius (default 2)
	MaxFacts int `json:"max_facts" yaml:"max_facts"` // context fact cap (default 50)

	// LLM is the provider used for extraction and, unless AnswerModel
	// overrides it, for answer generation.
	LLM llm.Config `json:"llm" yaml:"llm"`

	// AnswerModel optionally routes answer generation to a different
	// model on the same provider. Empty means the extraction model.
	AnswerModel string `json:"answer_model" yaml:"answer_model"`

	// Persist enables the SQLite run store. Setting DBPath explicitly
	// also enables it.
	Persist bool `json:"persist" yaml:"persist"`

	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.gospo/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "gospo".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.gospo/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`
}

// DefaultConfig returns a Config with the standard pipeline defaults.
// Extraction runs against OpenRouter; persistence stays off until
// requested.
func DefaultConfig() Config {
	return Config{
		ChunkSize:   chunker.DefaultSize,
		Overlap:     chunker.DefaultOverlap,
		Concurrency: 4,
		MaxHops:     rag.DefaultMaxHops,
		MaxFacts:    rag.DefaultMaxFacts,
		LLM: llm.Config{
			Provider: "openrouter",
			Model:    "deepseek/deepseek-chat-v3-0324",
		},
		DBName:     "gospo",
		StorageDir: "home",
	}
}

// persistenceEnabled reports whether the engine should open a run store.
func (c *Config) persistenceEnabled() bool {
	return c.Persist || c.DBPath != ""
}

// answerModel returns the model used for answer generation.
func (c *Config) answerModel() string {
	if c.AnswerModel != "" {
		return c.AnswerModel
	}
	return c.LLM.Model
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "gospo"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".gospo")
		return filepath.Join(dir, name+".db")
	}
}
