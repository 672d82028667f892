package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/middleware"
	"github.com/onnwee/gigfeed/internal/validate"
)

// EventHandlers holds dependencies for event HTTP handlers.
type EventHandlers struct {
	eventRepo catalog.EventRepository
}

// NewEventHandlers creates a new EventHandlers instance.
func NewEventHandlers(eventRepo catalog.EventRepository) *EventHandlers {
	return &EventHandlers{eventRepo: eventRepo}
}

// EventRequest represents the request body for creating or updating an event.
type EventRequest struct {
	Title    string   `json:"title"`
	City     string   `json:"city"`
	Date     string   `json:"date"`
	Language string   `json:"language"`
	Tags     []string `json:"tags"`
	Artists  []string `json:"artists"`
}

// buildEvent validates the request body and assembles a catalog event.
// Returns an error code and message on validation failure.
func buildEvent(req EventRequest) (*catalog.Event, string, string) {
	title, err := validate.EventTitle(req.Title)
	if err != nil {
		return nil, ErrCodeValidation, fmt.Sprintf("invalid event title: %v", err)
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		return nil, ErrCodeValidation, "city is required"
	}

	date := catalog.ParseEventDate(req.Date)
	if date.IsZero() {
		return nil, ErrCodeValidation, "date must be YYYY-MM-DD"
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if !catalog.ValidLanguage(language) {
		return nil, ErrCodeValidation, fmt.Sprintf("language must be %q, %q, or %q",
			catalog.LanguageGreek, catalog.LanguageEnglish, catalog.LanguageBoth)
	}

	return &catalog.Event{
		Title:    title,
		City:     city,
		Date:     date,
		RawDate:  req.Date,
		Language: language,
		Tags:     catalog.NormalizeTerms(req.Tags),
		Artists:  catalog.NormalizeTerms(req.Artists),
	}, "", ""
}

// CreateEvent handles POST /admin/events.
func (h *EventHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	event, code, msg := buildEvent(req)
	if code != "" {
		ctx := middleware.SetErrorCode(r.Context(), code)
		WriteError(w, ctx, http.StatusBadRequest, code, msg)
		return
	}

	if err := h.eventRepo.Insert(r.Context(), event); err != nil {
		slog.ErrorContext(r.Context(), "failed to insert event", "title", event.Title, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create event")
		return
	}

	WriteJSON(w, http.StatusCreated, event)
}

// eventID extracts the event ID from /admin/events/{id} or /events/{id}.
func eventID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// UpdateOrDeleteEvent handles PUT and DELETE on /admin/events/{id}.
func (h *EventHandlers) UpdateOrDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := eventID(r.URL.Path, "/admin/events/")
	if id == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid event path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateEvent(w, r, id)
	case http.MethodDelete:
		h.deleteEvent(w, r, id)
	default:
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

func (h *EventHandlers) updateEvent(w http.ResponseWriter, r *http.Request, id string) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	event, code, msg := buildEvent(req)
	if code != "" {
		ctx := middleware.SetErrorCode(r.Context(), code)
		WriteError(w, ctx, http.StatusBadRequest, code, msg)
		return
	}
	event.ID = id

	if err := h.eventRepo.Update(r.Context(), event); err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeEventNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeEventNotFound, fmt.Sprintf("No event with id %q", id))
			return
		}
		slog.ErrorContext(r.Context(), "failed to update event", "event_id", id, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to update event")
		return
	}

	WriteJSON(w, http.StatusOK, event)
}

func (h *EventHandlers) deleteEvent(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.eventRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeEventNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeEventNotFound, fmt.Sprintf("No event with id %q", id))
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete event", "event_id", id, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EventListResponse is the JSON body for GET /events.
type EventListResponse struct {
	Count  int             `json:"count"`
	Events []catalog.Event `json:"events"`
}

// ListEvents handles GET /events (public catalog listing).
func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	events, err := h.eventRepo.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list events", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list events")
		return
	}

	WriteJSON(w, http.StatusOK, EventListResponse{Count: len(events), Events: events})
}

// GetEvent handles GET /events/{id} (public single-event lookup).
func (h *EventHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	id := eventID(r.URL.Path, "/events/")
	if id == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid event path")
		return
	}

	event, err := h.eventRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeEventNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeEventNotFound, fmt.Sprintf("No event with id %q", id))
			return
		}
		slog.ErrorContext(r.Context(), "failed to load event", "event_id", id, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load event")
		return
	}

	WriteJSON(w, http.StatusOK, event)
}
