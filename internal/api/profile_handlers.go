package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/onnwee/gigfeed/internal/audit"
	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/middleware"
	"github.com/onnwee/gigfeed/internal/validate"
)

// DefaultHistoryLimit bounds GET /profiles/{username}/history when no
// limit parameter is given.
const DefaultHistoryLimit = 20

// ProfileHandlers holds dependencies for profile HTTP handlers.
type ProfileHandlers struct {
	profileRepo catalog.ProfileRepository
	auditRepo   audit.Repository
}

// NewProfileHandlers creates a new ProfileHandlers instance.
// auditRepo may be nil; the history endpoint then returns empty lists.
func NewProfileHandlers(profileRepo catalog.ProfileRepository, auditRepo audit.Repository) *ProfileHandlers {
	return &ProfileHandlers{
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
	}
}

// SaveProfileRequest represents the request body for creating or updating
// a profile. Profiles are upserted by username.
type SaveProfileRequest struct {
	Username        string   `json:"username"`
	City            string   `json:"city"`
	Tags            []string `json:"tags"`
	FavoriteArtists []string `json:"favorite_artists"`
}

// SaveProfile handles POST /profiles.
// Tags and favorite artists are normalized at the boundary: trimmed,
// case-insensitively deduplicated, first occurrence wins.
func (h *ProfileHandlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	username, err := validate.Username(req.Username)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("invalid username: %v", err))
		return
	}

	profile := &catalog.UserProfile{
		Username:        username,
		City:            strings.TrimSpace(req.City),
		Tags:            catalog.NormalizeTerms(req.Tags),
		FavoriteArtists: catalog.NormalizeTerms(req.FavoriteArtists),
	}

	if err := h.profileRepo.Save(r.Context(), profile); err != nil {
		slog.ErrorContext(r.Context(), "failed to save profile", "username", username, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to save profile")
		return
	}

	WriteJSON(w, http.StatusCreated, profile)
}

// GetProfile handles GET /profiles/{username}.
func (h *ProfileHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	username := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if username == "" || strings.Contains(username, "/") {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid profile path")
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

	WriteJSON(w, http.StatusOK, profile)
}

// HistoryResponse is the JSON body for the recommendation history endpoint.
type HistoryResponse struct {
	Username string                     `json:"username"`
	Count    int                        `json:"count"`
	History  []*audit.RecommendationLog `json:"history"`
}

// GetHistory handles GET /profiles/{username}/history.
// Returns the user's recent recommendation audit records, newest first.
// An optional limit query parameter bounds the result count.
func (h *ProfileHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	trimmed := strings.TrimPrefix(r.URL.Path, "/profiles/")
	username := strings.TrimSuffix(trimmed, "/history")
	if username == "" || username == trimmed || strings.Contains(username, "/") {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid history path")
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history := []*audit.RecommendationLog{}
	if h.auditRepo != nil {
		logs, err := h.auditRepo.QueryByUser(r.Context(), username, limit)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to query recommendation history", "username", username, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load history")
			return
		}
		history = logs
	}

	WriteJSON(w, http.StatusOK, HistoryResponse{
		Username: username,
		Count:    len(history),
		History:  history,
	})
}
