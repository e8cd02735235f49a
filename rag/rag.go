// Package rag answers natural-language questions from the knowledge
// graph. A question is matched against graph entities, the match set is
// expanded along edges, and the facts among the expanded set become the
// context for a single completion call.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bbiangul/gospo/graph"
	"github.com/bbiangul/gospo/llm"
)

// Expansion defaults, shared with the facade configuration.
const (
	DefaultMaxHops  = 2
	DefaultMaxFacts = 50
)

const (
	answerTemperature = 0.7
	answerMaxTokens   = 500

	// contextDepth is the fixed subgraph growth applied when rendering
	// facts around the expanded entity set.
	contextDepth = 2
)

// answerSystemPrompt grounds the model in the supplied facts.
const answerSystemPrompt = `You are a question answering assistant grounded in a knowledge graph. Answer using only the provided context facts. If the context does not contain the answer, say you do not know. Keep answers short and factual.`

const answerUserFmt = "%s\n\nQuestion: %s\n\nAnswer based on the context above."

const (
	contextHeader   = "Knowledge graph context:"
	noEntityContext = "No matching entities found in the knowledge graph."
	noFactsContext  = "No relevant facts found in the knowledge graph."
	failurePrefix   = "Query failed: "
)

// Config configures the answer engine. Zero values take the defaults.
type Config struct {
	// Model is the chat model used for answer generation.
	Model string

	// MaxHops bounds entity expansion around the matched entities.
	MaxHops int

	// MaxFacts caps the number of context facts sent to the model.
	MaxFacts int
}

// Trace is the full record of one answered question.
type Trace struct {
	Answer           string   `json:"answer"`
	InitialEntities  []string `json:"initial_entities"`
	EntitiesUsed     []string `json:"entities_used"`
	ContextFactCount int      `json:"context_fact_count"`
}

// Engine answers questions against a graph through a chat-completion
// provider.
type Engine struct {
	store    *graph.Store
	provider llm.Provider
	cfg      Config
}

// New creates an answer engine.
func New(store *graph.Store, provider llm.Provider, cfg Config) *Engine {
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = DefaultMaxHops
	}
	if cfg.MaxFacts <= 0 {
		cfg.MaxFacts = DefaultMaxFacts
	}
	return &Engine{store: store, provider: provider, cfg: cfg}
}

// Answer answers a question using the engine's configured expansion
// bounds. See AnswerWithTrace for the error contract.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	trace, err := e.AnswerWithTrace(ctx, question, 0, 0)
	return trace.Answer, err
}

// AnswerWithTrace answers a question and reports which entities and how
// many facts informed the answer. maxHops and maxFacts override the
// engine defaults when positive.
//
// The call proceeds even when nothing in the graph matches the question;
// the model then sees a sentinel context instead of facts. A failed
// completion never panics or loses the trace: the returned Trace carries
// a user-visible failure message as its answer and the error reports the
// cause, so display-only callers can ignore the error.
func (e *Engine) AnswerWithTrace(ctx context.Context, question string, maxHops, maxFacts int) (*Trace, error) {
	if maxHops <= 0 {
		maxHops = e.cfg.MaxHops
	}
	if maxFacts <= 0 {
		maxFacts = e.cfg.MaxFacts
	}

	start := time.Now()
	trace := &Trace{InitialEntities: []string{}, EntitiesUsed: []string{}}

	initial := e.matchEntities(question)
	if len(initial) > 0 {
		trace.InitialEntities = initial
	}

	var contextText string
	if len(initial) == 0 {
		contextText = noEntityContext
	} else {
		used := append([]string(nil), initial...)
		seen := make(map[string]bool, len(used))
		for _, entity := range used {
			seen[entity] = true
		}
		for _, entity := range initial {
			for _, rel := range e.store.RelatedEntities(entity, maxHops) {
				if !seen[rel.Entity] {
					seen[rel.Entity] = true
					used = append(used, rel.Entity)
				}
			}
		}
		trace.EntitiesUsed = used

		facts := e.store.ContextFacts(used, contextDepth, maxFacts)
		trace.ContextFactCount = len(facts)
		if len(facts) == 0 {
			contextText = noFactsContext
		} else {
			contextText = contextHeader + "\n" + strings.Join(facts, "\n")
		}
	}

	slog.Debug("question context assembled",
		"initial_entities", len(trace.InitialEntities),
		"entities_used", len(trace.EntitiesUsed),
		"facts", trace.ContextFactCount)

	resp, err := e.provider.Chat(ctx, llm.ChatRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(answerUserFmt, contextText, question)},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		trace.Answer = failurePrefix + err.Error()
		slog.Warn("answer generation failed", "error", err,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return trace, fmt.Errorf("generating answer: %w", err)
	}

	trace.Answer = strings.TrimSpace(resp.Content)
	slog.Info("question answered",
		"entities_used", len(trace.EntitiesUsed),
		"facts", trace.ContextFactCount,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return trace, nil
}

// matchEntities finds graph entities mentioned in the question: either
// the whole entity name appears in the lower-cased question, or any
// single word of the entity name matches a question word. Words on both
// sides are whitespace-delimited, so "prize?" does not word-match
// "prize". The match is deliberately permissive, so entities sharing a
// common word with the question are pulled in too.
func (e *Engine) matchEntities(question string) []string {
	qLower := strings.ToLower(question)
	qWords := make(map[string]bool)
	for _, w := range strings.Fields(qLower) {
		qWords[w] = true
	}

	var matched []string
	for _, entity := range e.store.Entities() {
		if strings.Contains(qLower, entity) {
			matched = append(matched, entity)
			continue
		}
		for _, w := range strings.Fields(entity) {
			if qWords[w] {
				matched = append(matched, entity)
				break
			}
		}
	}
	return matched
}
