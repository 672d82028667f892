package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ProfileRepository defines the interface for user profile operations.
// Implementations must canonicalize tags and artists before persisting.
type ProfileRepository interface {
	// Save inserts or updates the profile keyed by username.
	Save(ctx context.Context, profile *UserProfile) error

	// GetByUsername retrieves a profile. Returns ErrProfileNotFound when no
	// profile exists for the username.
	GetByUsername(ctx context.Context, username string) (*UserProfile, error)
}

// EventRepository defines the interface for event catalog operations.
type EventRepository interface {
	// Insert stores a new event. A blank ID is assigned a fresh UUID.
	Insert(ctx context.Context, event *Event) error

	// Update modifies an existing event. Returns ErrEventNotFound when the
	// ID is unknown.
	Update(ctx context.Context, event *Event) error

	// Delete removes an event. Returns ErrEventNotFound when the ID is unknown.
	Delete(ctx context.Context, id string) error

	// GetByID retrieves an event. Returns ErrEventNotFound when the ID is unknown.
	GetByID(ctx context.Context, id string) (*Event, error)

	// List returns all events in insertion order.
	List(ctx context.Context) ([]Event, error)

	// ArtistOptions returns the distinct artists across all events, sorted
	// case-insensitively.
	ArtistOptions(ctx context.Context) ([]string, error)
}

// canonicalizeProfile normalizes the mutable term lists of a profile in place.
func canonicalizeProfile(p *UserProfile) {
	p.Username = strings.TrimSpace(p.Username)
	p.City = strings.TrimSpace(p.City)
	p.Tags = NormalizeTerms(p.Tags)
	p.FavoriteArtists = NormalizeTerms(p.FavoriteArtists)
}

// canonicalizeEvent normalizes the term lists of an event in place and
// derives the parsed date from RawDate.
func canonicalizeEvent(e *Event) {
	e.Title = strings.TrimSpace(e.Title)
	e.City = strings.TrimSpace(e.City)
	e.Language = strings.ToLower(strings.TrimSpace(e.Language))
	e.Tags = NormalizeTerms(e.Tags)
	e.Artists = NormalizeTerms(e.Artists)
	e.Date = ParseEventDate(e.RawDate)
}

// InMemoryProfileRepository is an in-memory implementation of
// ProfileRepository. Used for testing and development. Thread-safe.
type InMemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
}

// NewInMemoryProfileRepository creates a new in-memory profile repository.
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		profiles: make(map[string]*UserProfile),
	}
}

// Save inserts or updates the profile keyed by username.
func (r *InMemoryProfileRepository) Save(_ context.Context, profile *UserProfile) error {
	p := *profile
	canonicalizeProfile(&p)

	r.mu.Lock()
	r.profiles[strings.ToLower(p.Username)] = &p
	r.mu.Unlock()
	return nil
}

// GetByUsername retrieves a profile by username.
func (r *InMemoryProfileRepository) GetByUsername(_ context.Context, username string) (*UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrProfileNotFound
	}
	// Return a copy to avoid external modification.
	cp := *p
	return &cp, nil
}

// InMemoryEventRepository is an in-memory implementation of EventRepository.
// Used for testing and development. Thread-safe; List preserves insertion
// order so ranking tie-breaks stay reproducible.
type InMemoryEventRepository struct {
	mu     sync.RWMutex
	events map[string]*Event
	order  []string
}

// NewInMemoryEventRepository creates a new in-memory event repository.
func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{
		events: make(map[string]*Event),
	}
}

// Insert stores a new event, assigning a UUID when the ID is blank.
func (r *InMemoryEventRepository) Insert(_ context.Context, event *Event) error {
	e := *event
	canonicalizeEvent(&e)
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	event.ID = e.ID

	r.mu.Lock()
	if _, exists := r.events[e.ID]; !exists {
		r.order = append(r.order, e.ID)
	}
	r.events[e.ID] = &e
	r.mu.Unlock()
	return nil
}

// Update modifies an existing event.
func (r *InMemoryEventRepository) Update(_ context.Context, event *Event) error {
	e := *event
	canonicalizeEvent(&e)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[e.ID]; !exists {
		return ErrEventNotFound
	}
	r.events[e.ID] = &e
	return nil
}

// Delete removes an event by ID.
func (r *InMemoryEventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[id]; !exists {
		return ErrEventNotFound
	}
	delete(r.events, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetByID retrieves an event by its ID.
func (r *InMemoryEventRepository) GetByID(_ context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

// List returns all events in insertion order.
func (r *InMemoryEventRepository) List(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.events[id])
	}
	return out, nil
}

// ArtistOptions returns the distinct artists across all events, sorted
// case-insensitively.
func (r *InMemoryEventRepository) ArtistOptions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]string)
	for _, e := range r.events {
		for _, a := range e.Artists {
			key := strings.ToLower(a)
			if _, ok := seen[key]; !ok {
				seen[key] = a
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}
