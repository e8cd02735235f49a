package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExportNode is one node in the export document.
type ExportNode struct {
	ID        string `json:"id"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// Export is the serializable description of the whole graph.
type Export struct {
	Nodes      []ExportNode `json:"nodes"`
	Edges      []Edge       `json:"edges"`
	Statistics Statistics   `json:"statistics"`
}

// Export captures the graph as a document: nodes with degree counts,
// edges with labels and provenance, and summary statistics, all in
// insertion order.
func (s *Store) Export() *Export {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := &Export{
		Nodes:      make([]ExportNode, 0, len(s.nodeOrder)),
		Edges:      make([]Edge, 0, len(s.edgeOrder)),
		Statistics: s.statsLocked(),
	}
	for _, name := range s.nodeOrder {
		n := s.nodes[name]
		doc.Nodes = append(doc.Nodes, ExportNode{
			ID:        name,
			InDegree:  len(n.in),
			OutDegree: len(n.out),
		})
	}
	for _, key := range s.edgeOrder {
		doc.Edges = append(doc.Edges, *s.edges[key])
	}
	return doc
}

// WriteFile writes the export document to path as indented JSON,
// creating parent directories as needed.
func (s *Store) WriteFile(path string) error {
	doc := s.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing graph export: %w", err)
	}
	return nil
}
