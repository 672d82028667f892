// Package recommend implements the event recommendation core: tag
// similarity, context and artist scoring, language preference matching,
// composite scoring with two operating modes, date eligibility filtering,
// ranking, and deterministic diversification.
//
// The package is pure computation over inputs supplied wholesale per
// request. It holds no state between calls: weights are passed in rather
// than cached, "today" is caller-supplied for testability, and
// diversification randomness is reseeded per request from an explicit key
// instead of shared global entropy. Requests may therefore be evaluated
// concurrently without coordination.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := recommend.LoadCalibration("configs/weights.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	eligible := recommend.FilterEligible(events, from, to, today)
//	scored := make([]recommend.ScoredEvent, 0, len(eligible))
//	for _, ev := range eligible {
//		scored = append(scored, recommend.Score(user, ev, recommend.ModeHybrid, weights))
//	}
//	recommend.Rank(scored)
//	results := recommend.Diversify(scored, recommend.RandomPool(scored),
//		topN, randomEvery, randomCount, seedKey)
//
// Calibration:
//
// Weights are tunable at deploy time via a JSON calibration file loaded at
// startup. Partial files are merged over the defaults so a single weight
// can be overridden without restating the rest.
package recommend
