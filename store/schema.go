package store

// schemaSQL is the base schema applied on open. Statements are
// idempotent; versioned changes beyond the base live in migrations.go.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	chunk_size INTEGER NOT NULL DEFAULT 0,
	overlap INTEGER NOT NULL DEFAULT 0,
	total_chunks INTEGER NOT NULL DEFAULT 0,
	successful_chunks INTEGER NOT NULL DEFAULT 0,
	triple_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS triples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	subject TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	source_chunk INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_triples_run ON triples(run_id);
CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject);

CREATE TABLE IF NOT EXISTS query_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	answer TEXT,
	initial_entities TEXT,
	entities_used TEXT,
	context_facts INTEGER NOT NULL DEFAULT 0,
	model_used TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
