package recommend

import "strings"

// Jaccard computes the tag-set similarity J(A,B) = |A ∩ B| / |A ∪ B| over
// case-folded terms. Returns 0.0 when either list is empty. Symmetric in
// its arguments.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	as := foldSet(a)
	bs := foldSet(b)

	inter := 0
	for t := range as {
		if bs[t] {
			inter++
		}
	}

	union := len(as) + len(bs) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// Intersect returns the terms of a whose case-folded form also appears in b,
// preserving a's order and spelling. Used for score explanations.
func Intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	bs := foldSet(b)
	var out []string
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if bs[key] {
			out = append(out, t)
		}
	}
	return out
}

// foldSet builds a case-folded set from a term list, dropping blanks.
func foldSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = true
		}
	}
	return set
}
