// Package catalog provides the user profile and event models together with
// their repositories. Tags and artists are held in canonical form (trimmed,
// case-insensitively deduplicated, first-seen order) everywhere inside the
// service; repositories canonicalize on read so scoring never sees raw
// persisted payloads.
package catalog

import (
	"errors"
	"time"
)

// Event languages. An event is performed in Greek, English, or mixes both.
const (
	LanguageGreek   = "greek"
	LanguageEnglish = "english"
	LanguageBoth    = "both"
)

var (
	// ErrProfileNotFound is returned when no profile exists for a username.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEventNotFound is returned when no event exists for an ID.
	ErrEventNotFound = errors.New("event not found")
)

// UserProfile holds the onboarding answers for a single user.
// Username is the unique identifier; profiles are upserted, never deleted.
type UserProfile struct {
	Username        string    `json:"username"`
	City            string    `json:"city"`
	Tags            []string  `json:"tags"`
	FavoriteArtists []string  `json:"favorite_artists"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// Event is a catalog entry created through the admin surface.
// Date carries a calendar date only; a zero Date means the persisted value
// could not be parsed and the event will never pass the eligibility filter.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	City     string    `json:"city"`
	Date     time.Time `json:"-"`
	RawDate  string    `json:"date"`
	Language string    `json:"language"`
	Tags     []string  `json:"tags"`
	Artists  []string  `json:"artists"`
}

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// ValidLanguage reports whether s is one of the supported event languages.
func ValidLanguage(s string) bool {
	switch s {
	case LanguageGreek, LanguageEnglish, LanguageBoth:
		return true
	}
	return false
}

// ParseEventDate parses a YYYY-MM-DD date string. A failure returns the zero
// time rather than an error: malformed dates make an event ineligible, they
// are not a fault.
func ParseEventDate(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// TagOptions is the fixed tag vocabulary offered by the admin and
// onboarding UIs. The lang_* entries double as language preference markers.
var TagOptions = []string{
	"concert",
	"lang_greek",
	"lang_english",
	"laiko",
	"entehno",
	"rebetiko",
	"greek_pop",
	"greek_rock",
	"rock",
	"pop",
	"indie",
	"alternative",
	"metal",
	"jazz",
	"soul",
	"rnb",
	"electronic",
	"edm",
	"techno",
	"house",
	"latin",
	"reggaeton",
	"reggae",
	"classical",
	"acoustic",
	"instrumental",
	"live",
	"festival",
	"club",
}
