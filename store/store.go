// Package store persists extraction runs and their triples in SQLite,
// plus a best-effort log of answered questions. A run is one ingestion
// of source text; loading a run's triples is enough to rebuild the
// graph exactly.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bbiangul/gospo/triple"
)

// ErrNotFound reports a run id with no stored run.
var ErrNotFound = errors.New("store: run not found")

// Run is one persisted extraction run.
type Run struct {
	ID               string `json:"id"`
	Source           string `json:"source"`
	ChunkSize        int    `json:"chunk_size"`
	Overlap          int    `json:"overlap"`
	TotalChunks      int    `json:"total_chunks"`
	SuccessfulChunks int    `json:"successful_chunks"`
	TripleCount      int    `json:"triple_count"`
	CreatedAt        string `json:"created_at"`
}

// QueryLog is one logged question/answer exchange.
type QueryLog struct {
	Question         string   `json:"question"`
	Answer           string   `json:"answer"`
	InitialEntities  []string `json:"initial_entities"`
	EntitiesUsed     []string `json:"entities_used"`
	ContextFactCount int      `json:"context_fact_count"`
	ModelUsed        string   `json:"model_used"`
}

// Store wraps the SQLite database for all gospo persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	// Run pending migrations.
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Run operations ---

// SaveRun stores a run and its triples atomically. A blank run ID is
// assigned a fresh UUID. Returns the run ID.
func (s *Store) SaveRun(ctx context.Context, run Run, triples []triple.Normalized) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.TripleCount = len(triples)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, chunk_size, overlap, total_chunks, successful_chunks, triple_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.ChunkSize, run.Overlap, run.TotalChunks,
		run.SuccessfulChunks, run.TripleCount); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triples (run_id, subject, predicate, object, source_chunk)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing triple insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range triples {
		if _, err := stmt.ExecContext(ctx, run.ID, t.Subject, t.Predicate, t.Object, t.SourceChunk); err != nil {
			return "", fmt.Errorf("inserting triple: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing save: %w", err)
	}
	return run.ID, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run := &Run{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, chunk_size, overlap, total_chunks, successful_chunks, triple_count, created_at
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.Source, &run.ChunkSize, &run.Overlap,
		&run.TotalChunks, &run.SuccessfulChunks, &run.TripleCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LoadTriples returns a run's triples in their stored order.
func (s *Store) LoadTriples(ctx context.Context, runID string) ([]triple.Normalized, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object, source_chunk
		FROM triples WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []triple.Normalized
	for rows.Next() {
		var t triple.Normalized
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &t.SourceChunk); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, chunk_size, overlap, total_chunks, successful_chunks, triple_count, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Source, &run.ChunkSize, &run.Overlap,
			&run.TotalChunks, &run.SuccessfulChunks, &run.TripleCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and, via cascade, its triples.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

// --- Query log ---

// LogQuery appends one answered question to the query log.
func (s *Store) LogQuery(ctx context.Context, q QueryLog) error {
	initial, err := json.Marshal(q.InitialEntities)
	if err != nil {
		return fmt.Errorf("encoding initial entities: %w", err)
	}
	used, err := json.Marshal(q.EntitiesUsed)
	if err != nil {
		return fmt.Errorf("encoding entities used: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_log (question, answer, initial_entities, entities_used, context_facts, model_used)
		VALUES (?, ?, ?, ?, ?, ?)
	`, q.Question, q.Answer, string(initial), string(used), q.ContextFactCount, q.ModelUsed)
	return err
}
