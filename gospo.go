// Package gospo extracts subject-predicate-object triples from plain text
// with an LLM, accumulates them into an in-memory knowledge graph, and
// answers questions grounded in that graph.
package gospo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbiangul/gospo/chunker"
	"github.com/bbiangul/gospo/graph"
	"github.com/bbiangul/gospo/llm"
	"github.com/bbiangul/gospo/rag"
	"github.com/bbiangul/gospo/store"
	"github.com/bbiangul/gospo/triple"
)

// Engine is the main entry point for the triple extraction and Graph RAG
// pipeline. An Engine is safe for concurrent graph reads; ProcessText,
// the run operations, and Close are meant to be driven from one goroutine.
type Engine interface {
	// ProcessText chunks the text, extracts triples from every chunk, and
	// merges the normalized result into the knowledge graph. Repeated
	// calls accumulate into the same graph. Returns ErrNoTriples when the
	// chunks yielded nothing usable; the result still carries the counts.
	ProcessText(ctx context.Context, text string, opts ...ProcessOption) (*ProcessResult, error)

	// Answer answers a question from the current graph. The returned
	// string is always displayable; on a completion failure it carries
	// the failure text and the error wraps ErrLLMRequestFailed.
	Answer(ctx context.Context, question string, opts ...QueryOption) (string, error)

	// AnswerWithTrace is Answer plus the entities and fact counts that
	// went into the context.
	AnswerWithTrace(ctx context.Context, question string, opts ...QueryOption) (*rag.Trace, error)

	// Statistics reports node/edge counts, density, and connectivity.
	Statistics() graph.Statistics

	// TopEntities returns the k highest-degree entities.
	TopEntities(k int) []graph.DegreeEntry

	// ContextFacts renders graph facts around the given entities as
	// "<subject> <predicate> <object>." lines.
	ContextFacts(entities []string, maxDepth, maxFacts int) []string

	// Export writes the graph as a JSON document to path.
	Export(path string) error

	// Clear resets the graph. The store, if any, is untouched.
	Clear()

	// SaveRun persists the current graph triples as a run record and
	// returns the run ID. Requires a configured store.
	SaveRun(ctx context.Context, source string) (string, error)

	// LoadRun replaces the graph with the triples of a persisted run.
	LoadRun(ctx context.Context, runID string) (*store.Run, error)

	// ListRuns returns all persisted runs, newest first.
	ListRuns(ctx context.Context) ([]store.Run, error)

	// DeleteRun removes a persisted run and its triples.
	DeleteRun(ctx context.Context, runID string) error

	// Store returns the underlying run store for diagnostic access.
	// It is nil when persistence is disabled.
	Store() *store.Store

	// Close releases the store handle if one is open.
	Close() error
}

// ProcessResult reports what a single ProcessText pass did.
type ProcessResult struct {
	TotalChunks      int                   `json:"total_chunks"`
	SuccessfulChunks int                   `json:"successful_chunks"`
	FailedChunks     []triple.ChunkFailure `json:"failed_chunks,omitempty"`
	RawTriples       int                   `json:"raw_triples"`
	Triples          int                   `json:"triples"`
	EdgesApplied     int                   `json:"edges_applied"`
	Statistics       graph.Statistics      `json:"statistics"`
}

// ProcessOption configures a single ProcessText call.
type ProcessOption func(*processOptions)

type processOptions struct {
	chunkSize   int
	overlap     int
	chunkingSet bool
	concurrency int
}

// WithChunking overrides the chunk size and overlap for this call.
// An overlap of 0 means consecutive chunks share no words.
func WithChunking(size, overlap int) ProcessOption {
	return func(o *processOptions) {
		o.chunkSize = size
		o.overlap = overlap
		o.chunkingSet = true
	}
}

// WithConcurrency overrides the extraction fan-out for this call.
func WithConcurrency(n int) ProcessOption {
	return func(o *processOptions) { o.concurrency = n }
}

// QueryOption configures a single Answer call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	maxHops  int
	maxFacts int
}

// WithMaxHops overrides the entity expansion radius for this query.
func WithMaxHops(n int) QueryOption {
	return func(o *queryOptions) { o.maxHops = n }
}

// WithMaxFacts overrides the context fact cap for this query.
func WithMaxFacts(n int) QueryOption {
	return func(o *queryOptions) { o.maxFacts = n }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg       Config
	chunkr    *chunker.Chunker
	provider  llm.Provider
	extractor *triple.Extractor
	kg        *graph.Store
	answerer  *rag.Engine
	store     *store.Store
	closed    bool
	lastRun   store.Run
}

// New creates an engine with the given configuration. The store is only
// opened when cfg requests persistence.
func New(cfg Config) (Engine, error) {
	chunkr, err := chunker.New(chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.Overlap})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, cfg.LLM.Provider)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var s *store.Store
	if cfg.persistenceEnabled() {
		s, err = store.New(cfg.resolveDBPath())
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
	}

	kg := graph.NewStore()
	extractor := triple.NewExtractor(provider, triple.ExtractorConfig{
		Model:       cfg.LLM.Model,
		Concurrency: cfg.Concurrency,
	})
	answerer := rag.New(kg, provider, rag.Config{
		Model:    cfg.answerModel(),
		MaxHops:  cfg.MaxHops,
		MaxFacts: cfg.MaxFacts,
	})

	return &engine{
		cfg:       cfg,
		chunkr:    chunkr,
		provider:  provider,
		extractor: extractor,
		kg:        kg,
		answerer:  answerer,
		store:     s,
	}, nil
}

// ProcessText runs the chunk -> extract -> normalize -> insert pipeline.
func (e *engine) ProcessText(ctx context.Context, text string, opts ...ProcessOption) (*ProcessResult, error) {
	options := &processOptions{}
	for _, o := range opts {
		o(options)
	}

	chunkr := e.chunkr
	if options.chunkingSet {
		var err error
		chunkr, err = chunker.New(chunker.Config{Size: options.chunkSize, Overlap: options.overlap})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	ext := e.extractor
	if options.concurrency > 0 {
		ext = triple.NewExtractor(e.provider, triple.ExtractorConfig{
			Model:       e.cfg.LLM.Model,
			Concurrency: options.concurrency,
		})
	}

	start := time.Now()
	chunks := chunkr.Chunk(text)
	if len(chunks) == 0 {
		slog.Info("process: empty input, nothing to do")
		return &ProcessResult{Statistics: e.kg.Statistics()}, nil
	}
	slog.Info("process: text chunked",
		"chunks", len(chunks), "chunk_size", chunkr.Size(), "overlap", chunkr.Overlap())

	res := ext.ExtractMany(ctx, chunks)
	normalized := triple.Normalize(res.Triples)
	applied := e.kg.AddTriples(normalized)
	stats := e.kg.Statistics()

	e.lastRun = store.Run{
		ChunkSize:        chunkr.Size(),
		Overlap:          chunkr.Overlap(),
		TotalChunks:      res.TotalChunks,
		SuccessfulChunks: res.SuccessfulChunks,
	}

	result := &ProcessResult{
		TotalChunks:      res.TotalChunks,
		SuccessfulChunks: res.SuccessfulChunks,
		FailedChunks:     res.FailedChunks,
		RawTriples:       len(res.Triples),
		Triples:          len(normalized),
		EdgesApplied:     applied,
		Statistics:       stats,
	}

	slog.Info("process: graph updated",
		"chunks", res.TotalChunks, "failed", len(res.FailedChunks),
		"raw_triples", len(res.Triples), "triples", len(normalized),
		"nodes", stats.Nodes, "edges", stats.Edges,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(normalized) == 0 {
		return result, fmt.Errorf("%w from %d chunks", ErrNoTriples, res.TotalChunks)
	}
	return result, nil
}

// Answer answers a question from the current graph.
func (e *engine) Answer(ctx context.Context, question string, opts ...QueryOption) (string, error) {
	trace, err := e.AnswerWithTrace(ctx, question, opts...)
	return trace.Answer, err
}

// AnswerWithTrace answers a question and reports the context that fed it.
func (e *engine) AnswerWithTrace(ctx context.Context, question string, opts ...QueryOption) (*rag.Trace, error) {
	options := &queryOptions{}
	for _, o := range opts {
		o(options)
	}

	trace, err := e.answerer.AnswerWithTrace(ctx, question, options.maxHops, options.maxFacts)

	// Query logging is best-effort: a store hiccup never fails the query.
	if e.store != nil && !e.closed {
		if lerr := e.store.LogQuery(ctx, store.QueryLog{
			Question:         question,
			Answer:           trace.Answer,
			InitialEntities:  trace.InitialEntities,
			EntitiesUsed:     trace.EntitiesUsed,
			ContextFactCount: trace.ContextFactCount,
			ModelUsed:        e.cfg.answerModel(),
		}); lerr != nil {
			slog.Warn("query log write failed", "error", lerr)
		}
	}

	if err != nil {
		return trace, fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}
	return trace, nil
}

// Statistics reports the current graph statistics.
func (e *engine) Statistics() graph.Statistics {
	return e.kg.Statistics()
}

// TopEntities returns the k highest-degree entities.
func (e *engine) TopEntities(k int) []graph.DegreeEntry {
	return e.kg.TopByDegree(k)
}

// ContextFacts renders facts around the given entities.
func (e *engine) ContextFacts(entities []string, maxDepth, maxFacts int) []string {
	return e.kg.ContextFacts(entities, maxDepth, maxFacts)
}

// Export writes the graph as a JSON document to path.
func (e *engine) Export(path string) error {
	if err := e.kg.WriteFile(path); err != nil {
		return fmt.Errorf("exporting graph: %w", err)
	}
	stats := e.kg.Statistics()
	slog.Info("graph exported", "path", path, "nodes", stats.Nodes, "edges", stats.Edges)
	return nil
}

// Clear resets the graph and the pending run metadata.
func (e *engine) Clear() {
	e.kg.Clear()
	e.lastRun = store.Run{}
	slog.Info("graph cleared")
}

// runStore returns the store when it is open and configured.
func (e *engine) runStore() (*store.Store, error) {
	if e.store == nil {
		return nil, ErrStoreDisabled
	}
	if e.closed {
		return nil, ErrStoreClosed
	}
	return e.store, nil
}

// SaveRun persists the current graph triples under a new run ID. Chunk
// metadata on the record reflects the most recent ProcessText call.
func (e *engine) SaveRun(ctx context.Context, source string) (string, error) {
	s, err := e.runStore()
	if err != nil {
		return "", err
	}

	run := e.lastRun
	run.ID = ""
	run.Source = source
	triples := e.kg.Triples()

	id, err := s.SaveRun(ctx, run, triples)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	slog.Info("run saved", "run_id", id, "source", source, "triples", len(triples))
	return id, nil
}

// LoadRun replaces the graph with the triples of a persisted run.
func (e *engine) LoadRun(ctx context.Context, runID string) (*store.Run, error) {
	s, err := e.runStore()
	if err != nil {
		return nil, err
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("loading run: %w", err)
	}
	triples, err := s.LoadTriples(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading run triples: %w", err)
	}

	e.kg.Clear()
	applied := e.kg.AddTriples(triples)
	e.lastRun = store.Run{
		ChunkSize:        run.ChunkSize,
		Overlap:          run.Overlap,
		TotalChunks:      run.TotalChunks,
		SuccessfulChunks: run.SuccessfulChunks,
	}

	stats := e.kg.Statistics()
	slog.Info("run loaded",
		"run_id", runID, "triples", len(triples), "applied", applied,
		"nodes", stats.Nodes, "edges", stats.Edges)
	return run, nil
}

// ListRuns returns all persisted runs, newest first.
func (e *engine) ListRuns(ctx context.Context) ([]store.Run, error) {
	s, err := e.runStore()
	if err != nil {
		return nil, err
	}
	return s.ListRuns(ctx)
}

// DeleteRun removes a persisted run and its triples.
func (e *engine) DeleteRun(ctx context.Context, runID string) error {
	s, err := e.runStore()
	if err != nil {
		return err
	}
	if err := s.DeleteRun(ctx, runID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("deleting run: %w", err)
	}
	slog.Info("run deleted", "run_id", runID)
	return nil
}

// Store returns the underlying run store, or nil when persistence is off.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close releases the store handle. Safe to call more than once.
func (e *engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}
