// Command gospo builds a knowledge graph from plain-text files and answers
// questions against it.
//
// Build a graph from two files and ask a question:
//
//	gospo -input notes.txt -input bio.txt -question "Who discovered polonium?"
//
// Persist the extraction as a run and inspect it later:
//
//	gospo -input bio.txt -db graphs/curie.db -save
//	gospo -db graphs/curie.db -list-runs
//
// Reload a saved run and export the graph as JSON:
//
//	gospo -db graphs/curie.db -load <run-id> -export graph.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/bbiangul/gospo"
)

// stringSlice implements flag.Value for multi-value string flags.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ", ") }
func (s *stringSlice) Set(val string) error {
	*s = append(*s, val)
	return nil
}

func main() {
	var inputs stringSlice

	var (
		question     = flag.String("question", "", "Question to answer against the graph")
		trace        = flag.Bool("trace", false, "Print the query trace (entities, fact count) as JSON")
		top          = flag.Int("top", 0, "Print the top N entities by degree")
		stats        = flag.Bool("stats", false, "Print graph statistics as JSON")
		export       = flag.String("export", "", "Write the graph as a JSON document to this path")
		save         = flag.Bool("save", false, "Persist processed triples as a run (requires -db)")
		source       = flag.String("source", "", "Source label recorded with -save (default: first input filename)")
		load         = flag.String("load", "", "Load a saved run by ID before answering (requires -db)")
		listRuns     = flag.Bool("list-runs", false, "List saved runs (requires -db)")
		deleteRun    = flag.String("delete-run", "", "Delete a saved run by ID (requires -db)")
		dbPath       = flag.String("db", "", "SQLite database path; enables persistence")
		configPath   = flag.String("config", "", "Path to config file (JSON)")
		providerName = flag.String("provider", "", "LLM provider: openrouter, openai, groq, ollama, lmstudio, custom")
		model        = flag.String("model", "", "Model name for triple extraction")
		answerModel  = flag.String("answer-model", "", "Model name for answer generation (default: extraction model)")
		baseURL      = flag.String("base-url", "", "Provider base URL override")
		apiKey       = flag.String("api-key", "", "Provider API key (default: from env)")
		chunkSize    = flag.Int("chunk-size", 0, "Words per chunk (0 = config default)")
		chunkOverlap = flag.Int("chunk-overlap", -1, "Words shared between chunks (-1 = config default)")
		concurrency  = flag.Int("concurrency", 0, "Max parallel extraction calls (0 = config default)")
		maxHops      = flag.Int("max-hops", 0, "Entity expansion radius for queries (0 = config default)")
		maxFacts     = flag.Int("max-facts", 0, "Context fact cap for queries (0 = config default)")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Var(&inputs, "input", "Path to a text file to process (repeatable)")
	flag.Parse()

	// Structured JSON logging.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	// Load .env if present; absence is fine.
	_ = godotenv.Load()

	cfg := gospo.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("GOSPO_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GOSPO_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("GOSPO_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GOSPO_ANSWER_MODEL"); v != "" {
		cfg.AnswerModel = v
	}
	if v := os.Getenv("GOSPO_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GOSPO_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	// Explicit flags beat config file and environment.
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *providerName != "" {
		cfg.LLM.Provider = *providerName
	}
	if *model != "" {
		cfg.LLM.Model = *model
	}
	if *answerModel != "" {
		cfg.AnswerModel = *answerModel
	}
	if *baseURL != "" {
		cfg.LLM.BaseURL = *baseURL
	}
	if *apiKey != "" {
		cfg.LLM.APIKey = *apiKey
	}
	if *chunkSize > 0 {
		cfg.ChunkSize = *chunkSize
	}
	if *chunkOverlap >= 0 {
		cfg.Overlap = *chunkOverlap
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}
	if *maxHops > 0 {
		cfg.MaxHops = *maxHops
	}
	if *maxFacts > 0 {
		cfg.MaxFacts = *maxFacts
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openrouter":
			cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		}
	}

	needDB := *save || *load != "" || *listRuns || *deleteRun != ""
	if needDB && cfg.DBPath == "" && !cfg.Persist {
		slog.Error("persistence flags require -db, GOSPO_DB_PATH, or db_path in the config file")
		os.Exit(1)
	}

	if len(inputs) == 0 && *question == "" && *load == "" && !*listRuns &&
		*deleteRun == "" && *export == "" && !*stats && *top == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := gospo.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	if *deleteRun != "" {
		if err := eng.DeleteRun(ctx, *deleteRun); err != nil {
			slog.Error("deleting run", "run_id", *deleteRun, "error", err)
			os.Exit(1)
		}
	}

	if *listRuns {
		runs, err := eng.ListRuns(ctx)
		if err != nil {
			slog.Error("listing runs", "error", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No saved runs.")
		}
		for _, r := range runs {
			fmt.Printf("%-36s  %-19s  %5d triples  %s\n", r.ID, r.CreatedAt, r.TripleCount, r.Source)
		}
	}

	if *load != "" {
		run, err := eng.LoadRun(ctx, *load)
		if err != nil {
			slog.Error("loading run", "run_id", *load, "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Loaded run %s (%s, %d triples)\n", run.ID, run.Source, run.TripleCount)
	}

	if len(inputs) > 0 {
		processInputs(ctx, eng, inputs)
	}

	if *save {
		label := *source
		if label == "" && len(inputs) > 0 {
			label = filepath.Base(inputs[0])
		}
		id, err := eng.SaveRun(ctx, label)
		if err != nil {
			slog.Error("saving run", "error", err)
			os.Exit(1)
		}
		fmt.Printf("run saved: %s\n", id)
	}

	if *question != "" {
		answerQuestion(ctx, eng, *question, *trace)
	}

	if *top > 0 {
		for i, e := range eng.TopEntities(*top) {
			fmt.Printf("%3d. %-30s degree=%d (in=%d, out=%d)\n", i+1, e.Entity, e.Degree, e.InDegree, e.OutDegree)
		}
	}

	if *stats {
		data, err := json.MarshalIndent(eng.Statistics(), "", "  ")
		if err != nil {
			slog.Error("marshaling statistics", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	}

	if *export != "" {
		if err := eng.Export(*export); err != nil {
			slog.Error("exporting graph", "path", *export, "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Graph written to %s\n", *export)
	}
}

// processInputs reads all input files concurrently, then feeds them to the
// engine one at a time so graph insertion order follows the flag order.
func processInputs(ctx context.Context, eng gospo.Engine, inputs []string) {
	texts := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			texts[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("reading inputs", "error", err)
		os.Exit(1)
	}

	for i, path := range inputs {
		res, err := eng.ProcessText(ctx, texts[i])
		if err != nil {
			if errors.Is(err, gospo.ErrNoTriples) {
				slog.Warn("no triples extracted", "file", path, "chunks", res.TotalChunks)
				continue
			}
			slog.Error("processing file", "file", path, "error", err)
			os.Exit(1)
		}
		if len(res.FailedChunks) > 0 {
			slog.Warn("some chunks failed extraction",
				"file", path, "failed", len(res.FailedChunks), "total", res.TotalChunks)
		}
		fmt.Fprintf(os.Stderr, "Processed %s: %d chunks, %d triples, graph now %d nodes / %d edges\n",
			filepath.Base(path), res.TotalChunks, res.Triples,
			res.Statistics.Nodes, res.Statistics.Edges)
	}
}

// answerQuestion prints the answer, and optionally the trace, to stdout.
func answerQuestion(ctx context.Context, eng gospo.Engine, question string, withTrace bool) {
	trace, err := eng.AnswerWithTrace(ctx, question)
	if err != nil {
		// The trace still carries a displayable failure message.
		slog.Warn("answer generation failed", "error", err)
	}
	fmt.Println(trace.Answer)

	if withTrace {
		data, merr := json.MarshalIndent(trace, "", "  ")
		if merr != nil {
			slog.Error("marshaling trace", "error", merr)
			os.Exit(1)
		}
		fmt.Println(string(data))
	}
}
