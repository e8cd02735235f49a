// Package triple turns text chunks into subject-predicate-object triples.
//
// Extraction sends each chunk to a chat-completion model and recovers a
// JSON array from whatever the model returns, walking a chain of parsing
// strategies from strict to forgiving. Recovered triples are normalized
// (lowercased, whitespace-collapsed, deduplicated) before graph insertion.
package triple

// Raw is a triple exactly as recovered from model output, before
// normalization. Chunk is the 1-based index of the chunk it came from.
type Raw struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Chunk     int    `json:"chunk"`
}

// Normalized is a cleaned, deduplicated triple ready for graph insertion.
type Normalized struct {
	Subject     string `json:"subject"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	SourceChunk int    `json:"source_chunk"`
}
