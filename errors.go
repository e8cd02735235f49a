package gospo

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values,
	// including chunking parameters that cannot guarantee progress.
	ErrInvalidConfig = errors.New("gospo: invalid configuration")

	// ErrMissingAPIKey is returned when a hosted LLM provider is configured
	// without an API key.
	ErrMissingAPIKey = errors.New("gospo: missing API key")

	// ErrLLMRequestFailed is returned when a completion request fails.
	ErrLLMRequestFailed = errors.New("gospo: LLM request failed")

	// ErrNoTriples is returned when a processing pass recovered no valid
	// triples from any chunk.
	ErrNoTriples = errors.New("gospo: no triples recovered")

	// ErrStoreDisabled is returned when a persistence operation is called
	// but the engine was configured without a database path.
	ErrStoreDisabled = errors.New("gospo: triple store not configured")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("gospo: store is closed")

	// ErrRunNotFound is returned when a persisted run ID does not exist.
	ErrRunNotFound = errors.New("gospo: run not found")
)
