package recommend

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// randomPoolSplitMin is the ranked-list length above which the random pool
// is drawn from the lower half instead of the whole list. Tunable, but the
// value is part of the observable output for a given seed, so changing it
// changes every diversified response.
const randomPoolSplitMin = 10

// RandomPool selects the candidate pool for diversification: the lower half
// of the ranked list when it is long enough to have one, otherwise the
// whole list.
func RandomPool(ranked []ScoredEvent) []ScoredEvent {
	if len(ranked) > randomPoolSplitMin {
		return ranked[len(ranked)/2:]
	}
	return ranked
}

// seededRand derives a pseudo-random generator from a seed key. The same
// key always yields the same sequence, so identical requests reproduce
// identical diversified output. Global random state is never touched.
func seededRand(seedKey string) *rand.Rand {
	sum := sha256.Sum256([]byte(seedKey))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}

// Diversify reorders a ranked list by periodically substituting entries
// drawn from a seeded shuffle of pool. It emits up to randomEvery
// consecutive items from the head of the ranked list, then up to
// randomCount items popped from the shuffled pool, repeating until topN
// items are emitted or both sources are exhausted.
//
// Each output item carries RandomPick = true iff its event ID is absent
// from the unmodified top-topN ranked slice. Inputs are not modified.
func Diversify(ranked, pool []ScoredEvent, topN, randomEvery, randomCount int, seedKey string) []ScoredEvent {
	if topN <= 0 {
		return []ScoredEvent{}
	}
	if randomEvery < 0 {
		randomEvery = 0
	}
	if randomCount < 0 {
		randomCount = 0
	}

	// IDs that earned a top-N slot by rank; anything else is a random insertion.
	topIDs := make(map[string]bool, topN)
	for _, se := range TopN(ranked, topN) {
		topIDs[se.Event.ID] = true
	}

	shuffled := make([]ScoredEvent, len(pool))
	copy(shuffled, pool)
	rng := seededRand(seedKey)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	out := make([]ScoredEvent, 0, topN)
	head := 0

	for len(out) < topN {
		emitted := 0

		for i := 0; i < randomEvery && head < len(ranked) && len(out) < topN; i++ {
			out = append(out, flagged(ranked[head], topIDs))
			head++
			emitted++
		}

		for i := 0; i < randomCount && len(shuffled) > 0 && len(out) < topN; i++ {
			out = append(out, flagged(shuffled[0], topIDs))
			shuffled = shuffled[1:]
			emitted++
		}

		if emitted == 0 {
			break
		}
	}

	return out
}

// flagged copies a scored event with its random-insertion flag set from the
// top-N membership.
func flagged(se ScoredEvent, topIDs map[string]bool) ScoredEvent {
	se.RandomPick = !topIDs[se.Event.ID]
	return se
}
