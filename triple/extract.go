package triple

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bbiangul/gospo/chunker"
	"github.com/bbiangul/gospo/llm"
)

// defaultConcurrency is the default semaphore size for parallel chunk
// extraction.
const defaultConcurrency = 4

// maxResponseTokens caps a single extraction response.
const maxResponseTokens = 4096

// systemPrompt fixes the extraction contract: a JSON array of triples and
// nothing else.
const systemPrompt = `You are a knowledge extraction engine. You read text and return subject-predicate-object triples as JSON.

Rules:
1. Return ONLY a JSON array of objects with exactly the keys "subject", "predicate", "object".
2. No markdown code fences, no commentary, no text outside the JSON array.
3. Keep predicates concise: 1-3 word verb phrases such as "discovered", "was born in", "won".
4. All values must be lowercase.
5. Resolve pronouns to the concrete entity they refer to (write "marie curie", never "she").
6. Prefer specific objects: "nobel prize in physics", not "nobel prize".
7. Extract every factual statement in the text, not just the first few.

Example output:
[
  {"subject": "marie curie", "predicate": "discovered", "object": "radium"},
  {"subject": "marie curie", "predicate": "was born in", "object": "warsaw"}
]

Your entire response must start with '[' and end with ']'.`

// userPromptFmt wraps one chunk for extraction.
const userPromptFmt = "Extract all subject-predicate-object triples from the following text:\n\n```text\n%s\n```"

// ChunkFailure records one chunk whose extraction failed.
type ChunkFailure struct {
	Chunk int    `json:"chunk"`
	Err   string `json:"error"`
}

// Result aggregates a batch extraction. Failed chunks never abort the
// batch; they are reported here alongside everything that succeeded.
type Result struct {
	Triples          []Raw          `json:"triples"`
	FailedChunks     []ChunkFailure `json:"failed_chunks,omitempty"`
	TotalChunks      int            `json:"total_chunks"`
	SuccessfulChunks int            `json:"successful_chunks"`
}

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	// Model is the chat model used for extraction.
	Model string

	// Concurrency bounds the number of in-flight extraction calls.
	Concurrency int
}

// Extractor turns text chunks into raw triples via a chat-completion
// provider.
type Extractor struct {
	provider    llm.Provider
	model       string
	concurrency int
}

// NewExtractor creates an Extractor.
func NewExtractor(provider llm.Provider, cfg ExtractorConfig) *Extractor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Extractor{
		provider:    provider,
		model:       cfg.Model,
		concurrency: cfg.Concurrency,
	}
}

// Extract performs one completion round trip for a single chunk and
// recovers its triples. There is no retry: a failed call is the chunk's
// failure, and the caller decides what happens next.
func (e *Extractor) Extract(ctx context.Context, chunk chunker.Chunk) ([]Raw, error) {
	start := time.Now()

	resp, err := e.provider.Chat(ctx, llm.ChatRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptFmt, chunk.Text)},
		},
		Temperature: 0.0,
		MaxTokens:   maxResponseTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}

	triples, skipped, err := Recover(resp.Content, chunk.Index)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}
	if skipped > 0 {
		slog.Debug("extraction skipped malformed items", "chunk", chunk.Index, "skipped", skipped)
	}
	slog.Debug("chunk extracted", "chunk", chunk.Index, "triples", len(triples),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return triples, nil
}

// ExtractMany extracts triples from all chunks with bounded fan-out.
// Chunks fail independently; results are flattened in chunk order so
// downstream first-wins deduplication stays deterministic regardless of
// completion order.
func (e *Extractor) ExtractMany(ctx context.Context, chunks []chunker.Chunk) *Result {
	result := &Result{TotalChunks: len(chunks)}
	if len(chunks) == 0 {
		return result
	}

	start := time.Now()
	slog.Info("extracting triples", "chunks", len(chunks),
		"concurrency", e.concurrency, "model", e.model)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, e.concurrency)
		byChunk  = make([][]Raw, len(chunks))
		failures []ChunkFailure
	)

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk chunker.Chunk) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				failures = append(failures, ChunkFailure{Chunk: chunk.Index, Err: ctx.Err().Error()})
				mu.Unlock()
				return
			}

			triples, err := e.Extract(ctx, chunk)
			if err != nil {
				slog.Warn("chunk extraction failed", "chunk", chunk.Index, "error", err)
				mu.Lock()
				failures = append(failures, ChunkFailure{Chunk: chunk.Index, Err: err.Error()})
				mu.Unlock()
				return
			}
			byChunk[i] = triples
		}(i, chunk)
	}

	wg.Wait()

	for _, triples := range byChunk {
		result.Triples = append(result.Triples, triples...)
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].Chunk < failures[b].Chunk })
	result.FailedChunks = failures
	result.SuccessfulChunks = len(chunks) - len(failures)

	if len(failures) > 0 {
		slog.Warn("extraction completed with failures",
			"succeeded", result.SuccessfulChunks, "failed", len(failures), "total", len(chunks))
	}
	slog.Info("extraction complete", "triples", len(result.Triples),
		"chunks", len(chunks), "elapsed", time.Since(start).Round(time.Millisecond))
	return result
}
