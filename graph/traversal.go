package graph

import (
	"fmt"
	"sort"
)

// Relationship is one edge between a discovered entity and its discovery
// predecessor. Direction "out" means via -> entity, "in" means
// entity -> via.
type Relationship struct {
	Direction  string `json:"direction"`
	Label      string `json:"label"`
	Provenance int    `json:"provenance"`
}

// Related is one entity discovered during neighborhood expansion.
// Via is the node it was first reached from.
type Related struct {
	Entity        string         `json:"entity"`
	Hops          int            `json:"hops"`
	Via           string         `json:"via"`
	Relationships []Relationship `json:"relationships"`
}

// DegreeEntry is one node with its degree counts.
type DegreeEntry struct {
	Entity    string `json:"entity"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// View is an induced subgraph: entity names plus every edge between
// them, both in insertion order.
type View struct {
	Entities []string
	Edges    []Edge
}

// RelatedEntities walks outward from entity up to maxHops, following
// edges in both directions. Each entity is reported once, at the depth it
// was first reached, with the edges that connect it to its discovery
// predecessor. Unknown entities and maxHops <= 0 yield no results.
func (s *Store) RelatedEntities(entity string, maxHops int) []Related {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxHops <= 0 {
		return nil
	}
	if _, ok := s.nodes[entity]; !ok {
		return nil
	}

	var related []Related
	visited := map[string]bool{entity: true}
	frontier := []string{entity}

	for depth := 1; depth <= maxHops && len(frontier) > 0; depth++ {
		var next []string
		for _, cur := range frontier {
			n := s.nodes[cur]
			for _, nb := range n.out {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				related = append(related, s.discoveryLocked(nb, cur, depth))
				next = append(next, nb)
			}
			for _, nb := range n.in {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				related = append(related, s.discoveryLocked(nb, cur, depth))
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return related
}

// discoveryLocked builds the record for nb first reached from cur.
func (s *Store) discoveryLocked(nb, cur string, hops int) Related {
	r := Related{Entity: nb, Hops: hops, Via: cur}
	if e, ok := s.edges[edgeKey{cur, nb}]; ok {
		r.Relationships = append(r.Relationships, Relationship{
			Direction: "out", Label: e.Label, Provenance: e.Provenance,
		})
	}
	if e, ok := s.edges[edgeKey{nb, cur}]; ok {
		r.Relationships = append(r.Relationships, Relationship{
			Direction: "in", Label: e.Label, Provenance: e.Provenance,
		})
	}
	return r
}

// Subgraph grows the given entity set by one undirected hop per round for
// maxDepth rounds, then returns the induced subgraph. Entities not in the
// graph are ignored.
func (s *Store) Subgraph(entities []string, maxDepth int) *View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	include := make(map[string]bool)
	for _, e := range entities {
		if _, ok := s.nodes[e]; ok {
			include[e] = true
		}
	}

	for depth := 0; depth < maxDepth && len(include) > 0; depth++ {
		// Snapshot membership so each round expands by exactly one hop.
		current := make([]string, 0, len(include))
		for _, name := range s.nodeOrder {
			if include[name] {
				current = append(current, name)
			}
		}
		grew := false
		for _, name := range current {
			n := s.nodes[name]
			for _, nb := range n.out {
				if !include[nb] {
					include[nb] = true
					grew = true
				}
			}
			for _, nb := range n.in {
				if !include[nb] {
					include[nb] = true
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}

	v := &View{}
	for _, name := range s.nodeOrder {
		if include[name] {
			v.Entities = append(v.Entities, name)
		}
	}
	for _, key := range s.edgeOrder {
		if include[key.source] && include[key.target] {
			v.Edges = append(v.Edges, *s.edges[key])
		}
	}
	return v
}

// ContextFacts renders the subgraph around entities as natural-language
// fact lines ("subject predicate object.") in edge insertion order,
// truncated at maxFacts. maxFacts <= 0 means no cap.
func (s *Store) ContextFacts(entities []string, maxDepth, maxFacts int) []string {
	view := s.Subgraph(entities, maxDepth)

	var facts []string
	for _, e := range view.Edges {
		if maxFacts > 0 && len(facts) >= maxFacts {
			break
		}
		facts = append(facts, fmt.Sprintf("%s %s %s.", e.Source, e.Label, e.Target))
	}
	return facts
}

// TopByDegree returns the k highest-degree entities. The sort is stable,
// so ties keep node insertion order.
func (s *Store) TopByDegree(k int) []DegreeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		return nil
	}
	entries := make([]DegreeEntry, 0, len(s.nodeOrder))
	for _, name := range s.nodeOrder {
		n := s.nodes[name]
		entries = append(entries, DegreeEntry{
			Entity:    name,
			Degree:    len(n.in) + len(n.out),
			InDegree:  len(n.in),
			OutDegree: len(n.out),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Degree > entries[j].Degree
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
