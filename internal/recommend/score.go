package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onnwee/gigfeed/internal/catalog"
)

// Mode selects how the composite score is assembled.
type Mode string

const (
	// ModeBaseline scores by tag similarity alone. Context, artist, and
	// language terms are still computed for the breakdown but carry zero
	// effective weight.
	ModeBaseline Mode = "baseline"

	// ModeHybrid blends all four terms under the configured weights.
	ModeHybrid Mode = "hybrid"
)

// ErrInvalidMode is returned when a request names an unknown scoring mode.
var ErrInvalidMode = errors.New("invalid scoring mode")

// ParseMode validates a mode string. Blank defaults to hybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ModeHybrid, nil
	case ModeBaseline:
		return ModeBaseline, nil
	case ModeHybrid:
		return ModeHybrid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// UserContext carries the profile fields the scorer reads. Tags and
// artists are expected in canonical form (see catalog.NormalizeTerms).
type UserContext struct {
	Username        string
	City            string
	Tags            []string
	FavoriteArtists []string
}

// Term is one scoring component: the raw component value and its weighted
// contribution to the final score.
type Term struct {
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

// Breakdown records every term that went into a score, plus the weights
// used, so a response can explain itself without recomputation.
type Breakdown struct {
	Mode        Mode    `json:"mode"`
	CBF         Term    `json:"cbf"`
	Context     Term    `json:"context"`
	ArtistBoost Term    `json:"artist_boost"`
	Language    Term    `json:"language"`
	Weights     Weights `json:"weights"`
}

// ScoredEvent is a scored catalog entry with its breakdown and explanation.
// RandomPick marks results inserted by the diversifier rather than earned
// by rank.
type ScoredEvent struct {
	Event              catalog.Event `json:"event"`
	Score              float64       `json:"score"`
	Breakdown          Breakdown     `json:"breakdown"`
	MatchedTags        []string      `json:"matched_tags"`
	MatchedArtists     []string      `json:"matched_artists"`
	CityScore          float64       `json:"city_score"`
	LanguageMatch      float64       `json:"language_match"`
	LanguagePreference string        `json:"language_preference"`
	Explanation        string        `json:"explanation"`
	RandomPick         bool          `json:"random_pick"`
}

// Score computes the composite score for one event. Pure: every call is
// independent and safe to run concurrently.
func Score(user UserContext, ev catalog.Event, mode Mode, matrix CityMatrix, weights *Weights) ScoredEvent {
	if weights == nil {
		weights = DefaultWeights()
	}

	cbf := Jaccard(user.Tags, ev.Tags)
	cityScore := matrix.Proximity(user.City, ev.City)
	context := ContextScore(cityScore)
	boost := ArtistBoost(user.FavoriteArtists, ev.Artists, weights.MaxArtistBoost)
	preference := InferLanguagePreference(user.Tags)
	langMatch := LanguageMatch(preference, ev.Language)

	breakdown := Breakdown{
		Mode:        mode,
		Weights:     *weights,
		CBF:         Term{Raw: cbf},
		Context:     Term{Raw: context},
		ArtistBoost: Term{Raw: boost},
		Language:    Term{Raw: langMatch},
	}

	var score float64
	if mode == ModeBaseline {
		// Baseline is the pure content-based score; the other terms stay in
		// the breakdown with zero weighted contribution.
		score = cbf
		breakdown.CBF.Weighted = cbf
	} else {
		// The -0.2 shift maps the [0.2, 1.0] language match range onto
		// [0, 0.8] so the term discriminates weak matches without ever
		// going negative.
		breakdown.CBF.Weighted = weights.CBF * cbf
		breakdown.Context.Weighted = weights.Context * context
		breakdown.ArtistBoost.Weighted = boost
		breakdown.Language.Weighted = weights.Language * (langMatch - WeakLanguageMatch)
		score = breakdown.CBF.Weighted +
			breakdown.Context.Weighted +
			breakdown.ArtistBoost.Weighted +
			breakdown.Language.Weighted
	}

	score = clamp01(score)

	matchedTags := Intersect(user.Tags, ev.Tags)
	matchedArtists := Intersect(user.FavoriteArtists, ev.Artists)

	return ScoredEvent{
		Event:              ev,
		Score:              score,
		Breakdown:          breakdown,
		MatchedTags:        matchedTags,
		MatchedArtists:     matchedArtists,
		CityScore:          cityScore,
		LanguageMatch:      langMatch,
		LanguagePreference: preference,
		Explanation:        explain(matchedTags, matchedArtists, cityScore, langMatch, preference),
	}
}

// explain assembles the human-readable score explanation.
func explain(matchedTags, matchedArtists []string, cityScore, langMatch float64, preference string) string {
	var parts []string

	if len(matchedTags) > 0 {
		parts = append(parts, "matched tags: "+strings.Join(matchedTags, ", "))
	} else {
		parts = append(parts, "no matching tags")
	}
	if len(matchedArtists) > 0 {
		parts = append(parts, "favorite artists playing: "+strings.Join(matchedArtists, ", "))
	}
	parts = append(parts, fmt.Sprintf("city proximity %.2f", cityScore))
	parts = append(parts, fmt.Sprintf("language match %.2f (preference: %s)", langMatch, preference))

	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
