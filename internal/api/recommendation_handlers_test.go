package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/gigfeed/internal/audit"
	"github.com/onnwee/gigfeed/internal/catalog"
)

// testToday keeps every sample event in SampleEvents eligible.
var testToday = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRecommendationFixture(t *testing.T) (*RecommendationHandlers, *audit.InMemoryRepository) {
	t.Helper()

	profiles := catalog.NewInMemoryProfileRepository()
	events := catalog.NewInMemoryEventRepository()
	auditRepo := audit.NewInMemoryRepository()

	ctx := context.Background()
	if err := profiles.Save(ctx, &catalog.UserProfile{
		Username:        "stelios",
		City:            "Limassol",
		Tags:            []string{"concert", "rock", "lang_english"},
		FavoriteArtists: []string{"Arctic Monkeys"},
	}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	sample := catalog.SampleEvents()
	for i := range sample {
		if err := events.Insert(ctx, &sample[i]); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}

	h := NewRecommendationHandlers(profiles, events, auditRepo, nil, RecommendationDefaults{
		Diversify:   false,
		RandomEvery: 2,
		RandomCount: 1,
	}, nil)
	h.now = func() time.Time { return testToday }

	return h, auditRepo
}

func doRecommend(t *testing.T, h *RecommendationHandlers, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/recommendations?"+query, nil)
	w := httptest.NewRecorder()
	h.Recommendations(w, req)
	return w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v, body: %s", err, w.Body.String())
	}
	return resp.Error.Code
}

func TestRecommendations_HappyPath(t *testing.T) {
	h, auditRepo := newRecommendationFixture(t)

	w := doRecommend(t, h, "username=stelios&top_n=3&mode=hybrid")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Username != "stelios" {
		t.Errorf("expected username stelios, got %s", resp.Username)
	}
	if resp.Count != 3 || len(resp.Results) != 3 {
		t.Errorf("expected 3 results, got count=%d len=%d", resp.Count, len(resp.Results))
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score > resp.Results[i-1].Score {
			t.Errorf("results not sorted descending at index %d", i)
		}
	}

	// The rock festival in the user's own city should rank first.
	if resp.Results[0].Event.Title != "Limassol Rock Festival" {
		t.Errorf("expected Limassol Rock Festival first, got %s", resp.Results[0].Event.Title)
	}

	// The request must leave an audit trail.
	logs, err := auditRepo.QueryByUser(context.Background(), "stelios", 0)
	if err != nil {
		t.Fatalf("failed to query audit: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(logs))
	}
	if logs[0].Mode != "hybrid" || len(logs[0].Results) != 3 {
		t.Errorf("audit record mismatch: mode=%s results=%d", logs[0].Mode, len(logs[0].Results))
	}
}

func TestRecommendations_ValidationFailures(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"missing username", "top_n=3", ErrCodeValidation},
		{"unknown mode", "username=stelios&mode=neural", ErrCodeInvalidMode},
		{"bad date_from", "username=stelios&date_from=March+1", ErrCodeValidation},
		{"bad date_to", "username=stelios&date_to=2026-13-40", ErrCodeValidation},
		{"inverted range", "username=stelios&date_from=2026-04-01&date_to=2026-03-01", ErrCodeInvalidDateRange},
		{"zero top_n", "username=stelios&top_n=0", ErrCodeValidation},
		{"negative top_n", "username=stelios&top_n=-2", ErrCodeValidation},
		{"bad diversify", "username=stelios&diversify=maybe", ErrCodeValidation},
		{"negative random_every", "username=stelios&random_every=-1", ErrCodeValidation},
		{"weight above one", "username=stelios&w_cbf=1.2", ErrCodeInvalidWeight},
		{"negative weight", "username=stelios&w_language=-0.1", ErrCodeInvalidWeight},
		{"weights do not sum", "username=stelios&w_cbf=0.5&w_context=0.3", ErrCodeInvalidWeight},
		{"partial override breaks sum", "username=stelios&w_cbf=0.5", ErrCodeInvalidWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRecommend(t, h, tt.query)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := decodeErrorCode(t, w); got != tt.wantCode {
				t.Errorf("expected error code %s, got %s", tt.wantCode, got)
			}
		})
	}
}

func TestRecommendations_WeightOverrides(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	w := doRecommend(t, h, "username=stelios&w_cbf=0.7&w_context=0.3&max_artist_boost=0.2&w_language=0.1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	got := resp.Results[0].Breakdown.Weights
	if got.CBF != 0.7 || got.Context != 0.3 || got.MaxArtistBoost != 0.2 || got.Language != 0.1 {
		t.Errorf("overridden weights not applied: %+v", got)
	}
}

func TestRecommendations_ProfileNotFound(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	w := doRecommend(t, h, "username=nobody")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if got := decodeErrorCode(t, w); got != ErrCodeProfileNotFound {
		t.Errorf("expected error code %s, got %s", ErrCodeProfileNotFound, got)
	}
}

func TestRecommendations_DateWindow(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	// Only the 2026-03-10 festival falls inside the window.
	w := doRecommend(t, h, "username=stelios&date_from=2026-03-09&date_to=2026-03-11&top_n=10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result in window, got %d", resp.Count)
	}
	if resp.Results[0].Event.Title != "Limassol Rock Festival" {
		t.Errorf("unexpected event in window: %s", resp.Results[0].Event.Title)
	}
}

func TestRecommendations_DiversifyDeterministic(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	ids := func() []string {
		w := doRecommend(t, h, "username=stelios&top_n=4&diversify=true&random_every=1&random_count=1")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp RecommendationResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		out := make([]string, 0, len(resp.Results))
		for _, se := range resp.Results {
			out = append(out, se.Event.ID)
		}
		return out
	}

	first := ids()
	second := ids()
	if len(first) == 0 {
		t.Fatal("expected diversified results")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("diversified output not deterministic: %v vs %v", first, second)
		}
	}
}

func TestRecommendations_MethodNotAllowed(t *testing.T) {
	h, _ := newRecommendationFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/recommendations?username=stelios", nil)
	w := httptest.NewRecorder()
	h.Recommendations(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}
