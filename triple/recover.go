package triple

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrUnrecoverable reports a model payload from which no strategy could
// recover a JSON array.
var ErrUnrecoverable = errors.New("triple: no JSON array recovered from model output")

var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// wrapperKeys are object keys models commonly wrap their array in.
var wrapperKeys = []string{"triples", "results", "data", "items"}

// recovery strategies, attempted in order from strict to forgiving
var strategies = []func(string) ([]any, bool){
	parseDirect,
	parseBracketSpan,
	parseBracketSpanRepaired,
	parseRepaired,
}

// Recover extracts triples from a raw model payload. It strips Markdown
// code fences, then walks the strategy chain until one produces a JSON
// list. List items missing any of the three keys, or carrying non-string
// values, are skipped and counted rather than failing the chunk. A
// recovered empty list is a valid result, not an error.
func Recover(payload string, chunk int) ([]Raw, int, error) {
	candidate := stripFences(payload)
	for _, parse := range strategies {
		if list, ok := parse(candidate); ok {
			triples, skipped := validate(list, chunk)
			return triples, skipped, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: payload %q", ErrUnrecoverable, preview(payload, 120))
}

// stripFences returns the contents of the first Markdown code fence, or
// the trimmed payload when no fence is present.
func stripFences(s string) string {
	if m := fenceRE.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

func parseDirect(s string) ([]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return coerceList(v)
}

// parseBracketSpan parses the widest [...] span in the payload, covering
// arrays embedded in prose.
func parseBracketSpan(s string) ([]any, bool) {
	span, ok := bracketSpan(s)
	if !ok {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal([]byte(span), &list); err != nil {
		return nil, false
	}
	return list, true
}

// parseBracketSpanRepaired repairs the widest [...] span before parsing,
// covering truncated or syntactically sloppy arrays.
func parseBracketSpanRepaired(s string) ([]any, bool) {
	span, ok := bracketSpan(s)
	if !ok {
		return nil, false
	}
	repaired, err := jsonrepair.JSONRepair(span)
	if err != nil {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal([]byte(repaired), &list); err != nil {
		return nil, false
	}
	return list, true
}

// parseRepaired repairs the whole payload as a last resort and re-applies
// the shape coercions.
func parseRepaired(s string) ([]any, bool) {
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, false
	}
	return coerceList(v)
}

// bracketSpan returns the substring from the first '[' to the last ']'.
func bracketSpan(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// coerceList accepts the shapes models actually produce: a bare array, an
// object with exactly one array value, an object using a conventional
// wrapper key, or a single triple object.
func coerceList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case map[string]any:
		var lists [][]any
		for _, item := range val {
			if l, ok := item.([]any); ok {
				lists = append(lists, l)
			}
		}
		if len(lists) == 1 {
			return lists[0], true
		}
		for _, key := range wrapperKeys {
			if l, ok := val[key].([]any); ok {
				return l, true
			}
		}
		if isTripleShaped(val) {
			return []any{val}, true
		}
	}
	return nil, false
}

// isTripleShaped reports whether m carries all three triple keys,
// whatever their value types. Value types are checked during validation.
func isTripleShaped(m map[string]any) bool {
	for _, key := range []string{"subject", "predicate", "object"} {
		if _, ok := m[key]; !ok {
			return false
		}
	}
	return true
}

// validate filters a recovered list down to well-formed triples, tagging
// each with its source chunk. Malformed items are counted, not fatal.
func validate(list []any, chunk int) ([]Raw, int) {
	triples := make([]Raw, 0, len(list))
	skipped := 0
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		s, okS := m["subject"].(string)
		p, okP := m["predicate"].(string)
		o, okO := m["object"].(string)
		if !okS || !okP || !okO {
			skipped++
			continue
		}
		triples = append(triples, Raw{Subject: s, Predicate: p, Object: o, Chunk: chunk})
	}
	return triples, skipped
}

// preview collapses whitespace and truncates s for error messages.
func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
