package catalog

import (
	"encoding/json"
	"strings"
)

// NormalizeTerms canonicalizes a free-text tag or artist list: entries are
// trimmed, blanks dropped, and duplicates removed case-insensitively while
// preserving the first-seen spelling and order. The result is the only form
// the scoring core ever sees.
func NormalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DecodeTerms recovers a tag or artist list from a persisted payload.
// New rows store a JSON array; rows migrated from the legacy schema store
// comma-separated text. Decoding is best-effort and never fails: anything
// that is not a JSON array is treated as delimited text.
func DecodeTerms(payload string) []string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil
	}

	if strings.HasPrefix(payload, "[") {
		var terms []string
		if err := json.Unmarshal([]byte(payload), &terms); err == nil {
			return NormalizeTerms(terms)
		}
		// Malformed JSON falls through to the delimited-text path.
	}

	return NormalizeTerms(strings.Split(payload, ","))
}

// EncodeTerms serializes a term list for storage. The list is normalized
// first so persisted payloads are always canonical.
func EncodeTerms(terms []string) string {
	terms = NormalizeTerms(terms)
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		// A []string cannot fail to marshal.
		return "[]"
	}
	return string(data)
}
