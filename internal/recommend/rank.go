package recommend

import "sort"

// Rank sorts scored events in place, descending by score. The sort is
// stable: events with equal scores keep the order they were supplied in,
// which makes ranked output reproducible for identical inputs.
func Rank(scored []ScoredEvent) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

// TopN returns the first n entries of a ranked list without copying the
// underlying events. n <= 0 yields an empty slice.
func TopN(ranked []ScoredEvent, n int) []ScoredEvent {
	if n <= 0 {
		return []ScoredEvent{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
