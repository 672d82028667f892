package api

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/middleware"
)

// OptionsHandlers serves the vocabulary endpoints backing the onboarding
// and admin UIs.
type OptionsHandlers struct {
	eventRepo catalog.EventRepository
}

// NewOptionsHandlers creates a new OptionsHandlers instance.
func NewOptionsHandlers(eventRepo catalog.EventRepository) *OptionsHandlers {
	return &OptionsHandlers{eventRepo: eventRepo}
}

// OptionsResponse is the JSON body for the vocabulary endpoints.
type OptionsResponse struct {
	Options []string `json:"options"`
}

// TagOptions handles GET /tag-options.
// The tag vocabulary is fixed; lang_* entries double as language
// preference markers.
func (h *OptionsHandlers) TagOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	WriteJSON(w, http.StatusOK, OptionsResponse{Options: catalog.TagOptions})
}

// ArtistOptions handles GET /artist-options.
// Returns the distinct artists across the event catalog, sorted
// case-insensitively.
func (h *OptionsHandlers) ArtistOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	artists, err := h.eventRepo.ArtistOptions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load artist options", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load artist options")
		return
	}
	if artists == nil {
		artists = []string{}
	}

	WriteJSON(w, http.StatusOK, OptionsResponse{Options: artists})
}
