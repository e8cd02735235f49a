// Package graph holds the in-memory directed knowledge graph built from
// normalized triples. Entities are nodes, predicates are edge labels, and
// every read walks nodes and edges in insertion order so repeated runs
// over the same input produce identical output.
package graph

import (
	"sync"

	"github.com/bbiangul/gospo/triple"
)

// Edge is a directed, labeled edge. Provenance is the 1-based index of
// the chunk the winning triple came from.
type Edge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Label      string `json:"label"`
	Provenance int    `json:"provenance"`
}

type edgeKey struct {
	source string
	target string
}

type node struct {
	out []string // successor names in insertion order
	in  []string // predecessor names in insertion order
}

// Statistics summarizes the graph. Density and connectivity are computed
// only for a non-empty graph and stay zero-valued otherwise.
type Statistics struct {
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	Density         float64 `json:"density"`
	WeaklyConnected bool    `json:"weakly_connected"`
	ComponentCount  int     `json:"component_count"`
}

// Store is the in-memory graph. One writer at a time, any number of
// readers.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*node
	nodeOrder []string
	edges     map[edgeKey]*Edge
	edgeOrder []edgeKey
}

// NewStore creates an empty graph.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*node),
		edges: make(map[edgeKey]*Edge),
	}
}

// AddTriples inserts triples as nodes and edges and returns the number
// applied. Nodes are created implicitly. Re-adding an existing
// (subject, object) pair overwrites the edge's label and provenance but
// keeps the edge's original position in iteration order; the overwrite
// still counts as applied. Triples with an empty field are skipped.
func (s *Store) AddTriples(triples []triple.Normalized) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, t := range triples {
		if t.Subject == "" || t.Predicate == "" || t.Object == "" {
			continue
		}
		s.ensureNode(t.Subject)
		s.ensureNode(t.Object)

		key := edgeKey{t.Subject, t.Object}
		if e, ok := s.edges[key]; ok {
			e.Label = t.Predicate
			e.Provenance = t.SourceChunk
		} else {
			s.edges[key] = &Edge{
				Source:     t.Subject,
				Target:     t.Object,
				Label:      t.Predicate,
				Provenance: t.SourceChunk,
			}
			s.edgeOrder = append(s.edgeOrder, key)
			s.nodes[t.Subject].out = append(s.nodes[t.Subject].out, t.Object)
			s.nodes[t.Object].in = append(s.nodes[t.Object].in, t.Subject)
		}
		applied++
	}
	return applied
}

func (s *Store) ensureNode(name string) {
	if _, ok := s.nodes[name]; !ok {
		s.nodes[name] = &node{}
		s.nodeOrder = append(s.nodeOrder, name)
	}
}

// HasEntity reports whether name is a node in the graph.
func (s *Store) HasEntity(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[name]
	return ok
}

// Entities returns all entity names in insertion order.
func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.nodeOrder...)
}

// Edges returns all edges in insertion order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, 0, len(s.edgeOrder))
	for _, key := range s.edgeOrder {
		out = append(out, *s.edges[key])
	}
	return out
}

// Triples returns every edge as a normalized triple in insertion order,
// the record form used for persistence.
func (s *Store) Triples() []triple.Normalized {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]triple.Normalized, 0, len(s.edgeOrder))
	for _, key := range s.edgeOrder {
		e := s.edges[key]
		out = append(out, triple.Normalized{
			Subject:     e.Source,
			Predicate:   e.Label,
			Object:      e.Target,
			SourceChunk: e.Provenance,
		})
	}
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodeOrder)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edgeOrder)
}

// Statistics computes node and edge counts, directed density, and weak
// connectivity.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *Store) statsLocked() Statistics {
	st := Statistics{Nodes: len(s.nodeOrder), Edges: len(s.edgeOrder)}
	if st.Nodes == 0 {
		return st
	}
	if st.Nodes > 1 {
		st.Density = float64(st.Edges) / float64(st.Nodes*(st.Nodes-1))
	}
	st.ComponentCount = s.componentsLocked()
	st.WeaklyConnected = st.ComponentCount == 1
	return st
}

// componentsLocked counts weakly connected components, treating every
// edge as undirected.
func (s *Store) componentsLocked() int {
	visited := make(map[string]bool, len(s.nodes))
	count := 0
	for _, name := range s.nodeOrder {
		if visited[name] {
			continue
		}
		count++
		visited[name] = true
		queue := []string{name}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			n := s.nodes[cur]
			for _, nb := range n.out {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
			for _, nb := range n.in {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return count
}

// Clear removes all nodes and edges.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*node)
	s.nodeOrder = nil
	s.edges = make(map[edgeKey]*Edge)
	s.edgeOrder = nil
}
