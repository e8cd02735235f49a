package triple

import (
	"reflect"
	"testing"
)

func TestNormalizeCleansFields(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Normalized
	}{
		{
			"lowercases",
			Raw{Subject: "Marie Curie", Predicate: "Discovered", Object: "Radium", Chunk: 1},
			Normalized{Subject: "marie curie", Predicate: "discovered", Object: "radium", SourceChunk: 1},
		},
		{
			"collapses internal whitespace",
			Raw{Subject: "marie\t curie", Predicate: "was  born \n in", Object: "warsaw,   poland", Chunk: 2},
			Normalized{Subject: "marie curie", Predicate: "was born in", Object: "warsaw, poland", SourceChunk: 2},
		},
		{
			"trims edges",
			Raw{Subject: "  pierre curie ", Predicate: " married ", Object: "\tmarie curie\n", Chunk: 3},
			Normalized{Subject: "pierre curie", Predicate: "married", Object: "marie curie", SourceChunk: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]Raw{tt.raw})
			if len(got) != 1 {
				t.Fatalf("Normalize() returned %d triples, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestNormalizeDropsEmptyFields(t *testing.T) {
	raw := []Raw{
		{Subject: "marie curie", Predicate: "discovered", Object: "radium", Chunk: 1},
		{Subject: "", Predicate: "discovered", Object: "polonium", Chunk: 1},
		{Subject: "marie curie", Predicate: "   ", Object: "polonium", Chunk: 1},
		{Subject: "marie curie", Predicate: "discovered", Object: "\n\t", Chunk: 1},
	}

	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("Normalize() returned %d triples, want 1", len(got))
	}
	if got[0].Object != "radium" {
		t.Errorf("surviving triple = %+v, want the radium triple", got[0])
	}
}

func TestNormalizeFirstWins(t *testing.T) {
	raw := []Raw{
		{Subject: "Marie Curie", Predicate: "discovered", Object: "radium", Chunk: 1},
		{Subject: "marie curie", Predicate: "won", Object: "nobel prize", Chunk: 1},
		{Subject: "marie  curie", Predicate: "DISCOVERED", Object: "Radium", Chunk: 4},
		{Subject: "marie curie", Predicate: "won", Object: "nobel prize", Chunk: 9},
	}

	want := []Normalized{
		{Subject: "marie curie", Predicate: "discovered", Object: "radium", SourceChunk: 1},
		{Subject: "marie curie", Predicate: "won", Object: "nobel prize", SourceChunk: 1},
	}

	got := Normalize(raw)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := []Raw{
		{Subject: "Albert Einstein", Predicate: "developed", Object: "Theory  of Relativity", Chunk: 1},
		{Subject: "albert einstein", Predicate: "won", Object: "nobel prize in physics", Chunk: 2},
	}

	first := Normalize(raw)

	again := make([]Raw, len(first))
	for i, n := range first {
		again[i] = Raw{Subject: n.Subject, Predicate: n.Predicate, Object: n.Object, Chunk: n.SourceChunk}
	}
	second := Normalize(again)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-normalizing changed output: first %+v, second %+v", first, second)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) returned %d triples, want 0", len(got))
	}
	if got := Normalize([]Raw{}); len(got) != 0 {
		t.Errorf("Normalize(empty) returned %d triples, want 0", len(got))
	}
}
