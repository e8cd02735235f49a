// Package chunker splits raw text into overlapping word-count windows.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultSize is the default window size in words.
	DefaultSize = 150

	// DefaultOverlap is the default number of words shared between
	// consecutive windows.
	DefaultOverlap = 30
)

var (
	// ErrSize reports a non-positive chunk size.
	ErrSize = errors.New("chunker: chunk size must be positive")

	// ErrOverlap reports an overlap outside [0, size), which cannot
	// guarantee forward progress.
	ErrOverlap = errors.New("chunker: invalid overlap")
)

// Config controls chunking behavior.
type Config struct {
	// Size is the number of words per chunk.
	Size int `json:"size" yaml:"size"`

	// Overlap is the number of words shared between consecutive chunks.
	// Must be smaller than Size.
	Overlap int `json:"overlap" yaml:"overlap"`
}

// Chunk is one window of source text. Index is 1-based and identifies the
// chunk in extraction provenance.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Chunker splits text into word windows. It holds no per-call state:
// chunking the same text twice yields an identical sequence.
type Chunker struct {
	cfg Config
}

// New creates a Chunker. A zero Config takes the defaults (150 words,
// 30 overlap); a zero Size with an explicit Overlap defaults only the size.
// Fails before any work starts when the parameters cannot guarantee
// forward progress.
func New(cfg Config) (*Chunker, error) {
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
		if cfg.Overlap == 0 {
			cfg.Overlap = DefaultOverlap
		}
	}
	if cfg.Size < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrSize, cfg.Size)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrOverlap, cfg.Overlap, cfg.Size)
	}
	return &Chunker{cfg: cfg}, nil
}

// Size returns the configured window size in words.
func (c *Chunker) Size() int { return c.cfg.Size }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.cfg.Overlap }

// Chunk splits text into overlapping word windows. The final chunk may be
// shorter than the configured size. Empty input produces no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	total := len(words)

	var chunks []Chunk
	start := 0
	for start < total {
		end := min(start+c.cfg.Size, total)
		chunks = append(chunks, Chunk{
			Text:  strings.Join(words[start:end], " "),
			Index: len(chunks) + 1,
		})

		next := start + c.cfg.Size - c.cfg.Overlap
		if next <= start {
			// Forced advance so the loop always terminates.
			next = start + 1
		}
		start = next
	}
	return chunks
}
