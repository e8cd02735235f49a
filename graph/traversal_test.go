package graph

import (
	"reflect"
	"testing"

	"github.com/bbiangul/gospo/triple"
)

// chainStore builds a -> b -> c -> d.
func chainStore() *Store {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("a", "knows", "b", 1),
		nt("b", "knows", "c", 2),
		nt("c", "knows", "d", 3),
	})
	return s
}

func TestRelatedEntitiesHops(t *testing.T) {
	s := chainStore()

	related := s.RelatedEntities("a", 2)
	if len(related) != 2 {
		t.Fatalf("RelatedEntities(a, 2) returned %d entities, want 2", len(related))
	}

	if related[0].Entity != "b" || related[0].Hops != 1 || related[0].Via != "a" {
		t.Errorf("first discovery = %+v, want b at 1 hop via a", related[0])
	}
	if related[1].Entity != "c" || related[1].Hops != 2 || related[1].Via != "b" {
		t.Errorf("second discovery = %+v, want c at 2 hops via b", related[1])
	}

	for _, r := range related {
		if r.Entity == "d" {
			t.Error("d discovered at maxHops 2, want it excluded")
		}
	}
}

func TestRelatedEntitiesEmptyCases(t *testing.T) {
	s := chainStore()

	tests := []struct {
		name    string
		entity  string
		maxHops int
	}{
		{"zero hops", "a", 0},
		{"negative hops", "a", -1},
		{"unknown entity", "zz", 2},
		{"unknown entity zero hops", "zz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.RelatedEntities(tt.entity, tt.maxHops); len(got) != 0 {
				t.Errorf("RelatedEntities(%q, %d) = %+v, want empty", tt.entity, tt.maxHops, got)
			}
		})
	}
}

func TestRelatedEntitiesDirections(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("marie curie", "married", "pierre curie", 1),
		nt("sorbonne", "employed", "marie curie", 2),
	})

	related := s.RelatedEntities("marie curie", 1)
	if len(related) != 2 {
		t.Fatalf("RelatedEntities() returned %d entities, want 2", len(related))
	}

	// Successors are reported before predecessors.
	pierre, sorbonne := related[0], related[1]
	if pierre.Entity != "pierre curie" || sorbonne.Entity != "sorbonne" {
		t.Fatalf("discovery order = [%s, %s], want [pierre curie, sorbonne]",
			related[0].Entity, related[1].Entity)
	}

	wantPierre := []Relationship{{Direction: "out", Label: "married", Provenance: 1}}
	if !reflect.DeepEqual(pierre.Relationships, wantPierre) {
		t.Errorf("pierre relationships = %+v, want %+v", pierre.Relationships, wantPierre)
	}

	wantSorbonne := []Relationship{{Direction: "in", Label: "employed", Provenance: 2}}
	if !reflect.DeepEqual(sorbonne.Relationships, wantSorbonne) {
		t.Errorf("sorbonne relationships = %+v, want %+v", sorbonne.Relationships, wantSorbonne)
	}
}

func TestRelatedEntitiesBothDirectionsBetweenPair(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("marie curie", "married", "pierre curie", 1),
		nt("pierre curie", "collaborated with", "marie curie", 2),
	})

	related := s.RelatedEntities("marie curie", 1)
	if len(related) != 1 {
		t.Fatalf("RelatedEntities() returned %d entities, want 1", len(related))
	}

	want := []Relationship{
		{Direction: "out", Label: "married", Provenance: 1},
		{Direction: "in", Label: "collaborated with", Provenance: 2},
	}
	if !reflect.DeepEqual(related[0].Relationships, want) {
		t.Errorf("relationships = %+v, want %+v", related[0].Relationships, want)
	}
}

func TestRelatedEntitiesFirstHopWins(t *testing.T) {
	// Diamond: a -> b, a -> c, b -> d, c -> d. d must be discovered once.
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("a", "p", "b", 1),
		nt("a", "p", "c", 1),
		nt("b", "p", "d", 1),
		nt("c", "p", "d", 1),
	})

	related := s.RelatedEntities("a", 3)
	seen := make(map[string]int)
	for _, r := range related {
		seen[r.Entity]++
	}
	if seen["d"] != 1 {
		t.Errorf("d discovered %d times, want exactly once", seen["d"])
	}
	for _, r := range related {
		if r.Entity == "d" {
			if r.Hops != 2 {
				t.Errorf("d hops = %d, want 2 (first reachable depth)", r.Hops)
			}
			if r.Via != "b" {
				t.Errorf("d via = %q, want %q (insertion-order frontier)", r.Via, "b")
			}
		}
	}
}

func TestSubgraph(t *testing.T) {
	s := chainStore()

	t.Run("depth zero keeps seeds only", func(t *testing.T) {
		v := s.Subgraph([]string{"b"}, 0)
		if !reflect.DeepEqual(v.Entities, []string{"b"}) {
			t.Errorf("Entities = %v, want [b]", v.Entities)
		}
		if len(v.Edges) != 0 {
			t.Errorf("Edges = %+v, want none (no pair inside the set)", v.Edges)
		}
	})

	t.Run("one round reaches both neighbors", func(t *testing.T) {
		v := s.Subgraph([]string{"b"}, 1)
		if !reflect.DeepEqual(v.Entities, []string{"a", "b", "c"}) {
			t.Errorf("Entities = %v, want [a b c]", v.Entities)
		}
		if len(v.Edges) != 2 {
			t.Errorf("Edges = %+v, want the a->b and b->c edges", v.Edges)
		}
	})

	t.Run("unknown seeds ignored", func(t *testing.T) {
		v := s.Subgraph([]string{"nope"}, 2)
		if len(v.Entities) != 0 || len(v.Edges) != 0 {
			t.Errorf("Subgraph = %+v, want empty view", v)
		}
	})
}

func TestContextFacts(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("marie curie", "married", "pierre curie", 1),
		nt("marie curie", "discovered", "radium", 1),
		nt("marie curie", "won", "nobel prize in physics", 2),
	})

	facts := s.ContextFacts([]string{"marie curie"}, 1, 50)
	want := []string{
		"marie curie married pierre curie.",
		"marie curie discovered radium.",
		"marie curie won nobel prize in physics.",
	}
	if !reflect.DeepEqual(facts, want) {
		t.Errorf("ContextFacts() = %v, want %v", facts, want)
	}
}

func TestContextFactsCap(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("hub", "p1", "a", 1),
		nt("hub", "p2", "b", 1),
		nt("hub", "p3", "c", 1),
		nt("hub", "p4", "d", 1),
	})

	facts := s.ContextFacts([]string{"hub"}, 1, 2)
	want := []string{"hub p1 a.", "hub p2 b."}
	if !reflect.DeepEqual(facts, want) {
		t.Errorf("ContextFacts() = %v, want first 2 in insertion order", facts)
	}
}

func TestTopByDegree(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("marie curie", "discovered", "radium", 1),
		nt("marie curie", "discovered", "polonium", 1),
		nt("marie curie", "won", "nobel prize", 2),
		nt("pierre curie", "married", "marie curie", 3),
	})

	top := s.TopByDegree(1)
	if len(top) != 1 {
		t.Fatalf("TopByDegree(1) returned %d entries, want 1", len(top))
	}
	got := top[0]
	if got.Entity != "marie curie" {
		t.Errorf("top entity = %q, want %q", got.Entity, "marie curie")
	}
	if got.Degree != 4 || got.InDegree != 1 || got.OutDegree != 3 {
		t.Errorf("top entry = %+v, want degree 4 (in 1, out 3)", got)
	}
}

func TestTopByDegreeTiesKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	s.AddTriples([]triple.Normalized{
		nt("a", "p", "b", 1),
		nt("c", "p", "d", 1),
	})

	top := s.TopByDegree(4)
	want := []string{"a", "b", "c", "d"}
	for i, entry := range top {
		if entry.Entity != want[i] {
			t.Errorf("TopByDegree()[%d] = %q, want %q", i, entry.Entity, want[i])
		}
		if entry.Degree != 1 {
			t.Errorf("degree of %q = %d, want 1", entry.Entity, entry.Degree)
		}
	}
}

func TestTopByDegreeBounds(t *testing.T) {
	s := chainStore()

	if got := s.TopByDegree(0); got != nil {
		t.Errorf("TopByDegree(0) = %+v, want nil", got)
	}
	if got := s.TopByDegree(100); len(got) != 4 {
		t.Errorf("TopByDegree(100) returned %d entries, want all 4", len(got))
	}
}
