package triple

import (
	"regexp"
	"strings"
)

var spaceRE = regexp.MustCompile(`\s+`)

// clean lowercases s, trims it, and collapses internal whitespace runs to
// a single space.
func clean(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// Normalize cleans every field of every triple, drops triples with an
// empty field, and deduplicates by the (subject, predicate, object) tuple.
// The first occurrence of a tuple wins; later duplicates are discarded
// along with their chunk provenance. Order is otherwise preserved, and
// normalizing an already-normalized list is a no-op.
func Normalize(raw []Raw) []Normalized {
	seen := make(map[[3]string]struct{}, len(raw))
	out := make([]Normalized, 0, len(raw))
	for _, r := range raw {
		s := clean(r.Subject)
		p := clean(r.Predicate)
		o := clean(r.Object)
		if s == "" || p == "" || o == "" {
			continue
		}
		key := [3]string{s, p, o}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Normalized{Subject: s, Predicate: p, Object: o, SourceChunk: r.Chunk})
	}
	return out
}
