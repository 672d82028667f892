package recommend

import (
	"fmt"
	"time"

	"github.com/onnwee/gigfeed/internal/catalog"
)

// Request carries the per-call ranking parameters. Nothing here is
// persisted by the core.
type Request struct {
	Username    string
	DateFrom    *time.Time
	DateTo      *time.Time
	TopN        int
	Mode        Mode
	Diversify   bool
	RandomEvery int
	RandomCount int
}

// SeedKey derives the diversification seed from the request identity:
// username, mode, and date bounds. Two identical requests therefore
// reproduce identical diversified output.
func (r Request) SeedKey() string {
	from, to := "", ""
	if r.DateFrom != nil {
		from = r.DateFrom.Format(catalog.DateLayout)
	}
	if r.DateTo != nil {
		to = r.DateTo.Format(catalog.DateLayout)
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.Username, r.Mode, from, to)
}

// Recommend runs the full pipeline over a candidate catalog: eligibility
// filter, per-event scoring, ranking, and optional diversification, ending
// with the top-N cut. Pure and stateless; safe for concurrent callers.
func Recommend(user UserContext, events []catalog.Event, req Request, matrix CityMatrix, weights *Weights, today time.Time) []ScoredEvent {
	if req.TopN <= 0 {
		return []ScoredEvent{}
	}

	eligible := FilterEligible(events, req.DateFrom, req.DateTo, today)

	scored := make([]ScoredEvent, 0, len(eligible))
	for _, ev := range eligible {
		scored = append(scored, Score(user, ev, req.Mode, matrix, weights))
	}
	Rank(scored)

	if req.Diversify {
		return Diversify(scored, RandomPool(scored), req.TopN, req.RandomEvery, req.RandomCount, req.SeedKey())
	}

	out := make([]ScoredEvent, 0, req.TopN)
	out = append(out, TopN(scored, req.TopN)...)
	return out
}

// ResultSummary is the audit-worthy digest of one result.
type ResultSummary struct {
	EventID    string  `json:"event_id"`
	Score      float64 `json:"score"`
	RandomPick bool    `json:"random_pick"`
}

// Summary is the log-worthy record of a ranking request, intended for the
// audit collaborator. The core builds it but never stores it.
type Summary struct {
	Username    string          `json:"username"`
	Mode        Mode            `json:"mode"`
	Weights     Weights         `json:"weights"`
	Diversify   bool            `json:"diversify"`
	RandomEvery int             `json:"random_every"`
	RandomCount int             `json:"random_count"`
	Results     []ResultSummary `json:"results"`
}

// Summarize builds the audit summary for a completed request.
func Summarize(req Request, weights *Weights, results []ScoredEvent) Summary {
	if weights == nil {
		weights = DefaultWeights()
	}

	rs := make([]ResultSummary, 0, len(results))
	for _, se := range results {
		rs = append(rs, ResultSummary{
			EventID:    se.Event.ID,
			Score:      se.Score,
			RandomPick: se.RandomPick,
		})
	}

	return Summary{
		Username:    req.Username,
		Mode:        req.Mode,
		Weights:     *weights,
		Diversify:   req.Diversify,
		RandomEvery: req.RandomEvery,
		RandomCount: req.RandomCount,
		Results:     rs,
	}
}
