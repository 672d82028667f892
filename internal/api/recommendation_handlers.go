package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/gigfeed/internal/audit"
	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/middleware"
	"github.com/onnwee/gigfeed/internal/recommend"
	"github.com/onnwee/gigfeed/internal/tracing"
)

// DefaultTopN is the result count used when top_n is not provided.
const DefaultTopN = 10

// weightSumTolerance absorbs float parsing noise when checking that
// w_cbf and w_context sum to 1.0.
const weightSumTolerance = 1e-9

// RecommendationDefaults carries the configured fallbacks for the
// diversification query parameters.
type RecommendationDefaults struct {
	Diversify   bool
	RandomEvery int
	RandomCount int
}

// RecommendationHandlers holds dependencies for the recommendation endpoint.
type RecommendationHandlers struct {
	profileRepo catalog.ProfileRepository
	eventRepo   catalog.EventRepository
	auditRepo   audit.Repository
	weights     *recommend.Weights
	matrix      recommend.CityMatrix
	defaults    RecommendationDefaults
	metrics     *Metrics

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewRecommendationHandlers creates a new RecommendationHandlers instance.
// weights may be nil to use defaults; auditRepo and metrics may be nil.
func NewRecommendationHandlers(profileRepo catalog.ProfileRepository, eventRepo catalog.EventRepository, auditRepo audit.Repository, weights *recommend.Weights, defaults RecommendationDefaults, metrics *Metrics) *RecommendationHandlers {
	if weights == nil {
		weights = recommend.DefaultWeights()
	}
	return &RecommendationHandlers{
		profileRepo: profileRepo,
		eventRepo:   eventRepo,
		auditRepo:   auditRepo,
		weights:     weights,
		matrix:      recommend.DefaultCityMatrix(),
		defaults:    defaults,
		metrics:     metrics,
		now:         time.Now,
	}
}

// RecommendationResponse is the JSON body for GET /recommendations.
type RecommendationResponse struct {
	Username  string                  `json:"username"`
	Mode      recommend.Mode          `json:"mode"`
	Diversify bool                    `json:"diversify"`
	Count     int                     `json:"count"`
	Results   []recommend.ScoredEvent `json:"results"`
}

// Recommendations handles GET /recommendations.
//
// Query parameters: username (required), date_from, date_to (YYYY-MM-DD),
// top_n, mode (baseline|hybrid), diversify, random_every, random_count,
// and per-request weight overrides w_cbf, w_context, max_artist_boost,
// w_language. Overridden weights must each lie in [0,1] and w_cbf +
// w_context must sum to 1.0.
func (h *RecommendationHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	q := r.URL.Query()

	username := strings.TrimSpace(q.Get("username"))
	if username == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "username is required")
		return
	}

	mode, err := recommend.ParseMode(q.Get("mode"))
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidMode)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidMode, fmt.Sprintf("mode must be %q or %q", recommend.ModeBaseline, recommend.ModeHybrid))
		return
	}

	dateFrom, err := parseDateParam(q.Get("date_from"))
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "date_from must be YYYY-MM-DD")
		return
	}
	dateTo, err := parseDateParam(q.Get("date_to"))
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "date_to must be YYYY-MM-DD")
		return
	}
	if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidDateRange)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidDateRange, "date_from must not be after date_to")
		return
	}

	topN := DefaultTopN
	if raw := q.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "top_n must be a positive integer")
			return
		}
		topN = n
	}

	diversify := h.defaults.Diversify
	if raw := q.Get("diversify"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "diversify must be a boolean")
			return
		}
		diversify = b
	}

	randomEvery, err := positiveIntParam(q.Get("random_every"), h.defaults.RandomEvery)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "random_every must be a non-negative integer")
		return
	}
	randomCount, err := positiveIntParam(q.Get("random_count"), h.defaults.RandomCount)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "random_count must be a non-negative integer")
		return
	}

	weights, werr := h.resolveWeights(q)
	if werr != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidWeight)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidWeight, werr)
		return
	}

	profile, err := h.profileRepo.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, catalog.ErrProfileNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeProfileNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeProfileNotFound, fmt.Sprintf("No profile for username %q", username))
			return
		}
		slog.ErrorContext(r.Context(), "failed to load profile", "username", username, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile")
		return
	}

	events, err := h.eventRepo.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list events", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load events")
		return
	}

	req := recommend.Request{
		Username:    username,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		TopN:        topN,
		Mode:        mode,
		Diversify:   diversify,
		RandomEvery: randomEvery,
		RandomCount: randomCount,
	}
	user := recommend.UserContext{
		Username:        profile.Username,
		City:            profile.City,
		Tags:            profile.Tags,
		FavoriteArtists: profile.FavoriteArtists,
	}

	ctx, endSpan := tracing.StartSpan(r.Context(), "score_events")
	tracing.SetAttributes(ctx,
		attribute.String("recommend.mode", string(mode)),
		attribute.Int("recommend.candidates", len(events)),
		attribute.Bool("recommend.diversify", diversify),
	)

	start := h.now()
	results := recommend.Recommend(user, events, req, h.matrix, weights, start)
	h.metrics.ObserveRecommendation(string(mode), diversify, len(events), h.now().Sub(start).Seconds())

	tracing.AddEvent(ctx, "scoring_complete", attribute.Int("recommend.results", len(results)))
	endSpan(nil)

	h.writeAudit(r, req, weights, results)

	WriteJSON(w, http.StatusOK, RecommendationResponse{
		Username:  username,
		Mode:      mode,
		Diversify: diversify,
		Count:     len(results),
		Results:   results,
	})
}

// writeAudit records the request summary. Audit failures are logged, never
// surfaced to the caller.
func (h *RecommendationHandlers) writeAudit(r *http.Request, req recommend.Request, weights *recommend.Weights, results []recommend.ScoredEvent) {
	if h.auditRepo == nil {
		return
	}
	entry := audit.Entry{
		Summary:   recommend.Summarize(req, weights, results),
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if _, err := h.auditRepo.Record(r.Context(), entry); err != nil {
		slog.WarnContext(r.Context(), "failed to record recommendation audit",
			"username", req.Username,
			"error", err)
	}
}

// resolveWeights applies per-request weight overrides on top of the
// configured weights. Returns a validation message when an override is out
// of range or the cbf/context pair does not sum to 1.0.
func (h *RecommendationHandlers) resolveWeights(q map[string][]string) (*recommend.Weights, string) {
	resolved := *h.weights
	overridden := false

	set := func(param string, dst *float64) string {
		vals, ok := q[param]
		if !ok || len(vals) == 0 || vals[0] == "" {
			return ""
		}
		f, err := strconv.ParseFloat(vals[0], 64)
		if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Sprintf("%s must be a number in [0,1]", param)
		}
		*dst = f
		overridden = true
		return ""
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"w_cbf", &resolved.CBF},
		{"w_context", &resolved.Context},
		{"max_artist_boost", &resolved.MaxArtistBoost},
		{"w_language", &resolved.Language},
	} {
		if msg := set(p.name, p.dst); msg != "" {
			return nil, msg
		}
	}

	if overridden && math.Abs(resolved.CBF+resolved.Context-1.0) > weightSumTolerance {
		return nil, "w_cbf and w_context must sum to 1.0"
	}

	return &resolved, ""
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(catalog.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// positiveIntParam parses an optional non-negative integer parameter.
func positiveIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}
