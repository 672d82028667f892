// Package validate provides centralized input validation and sanitization
// utilities for the Gigfeed API. User-supplied text is length-checked and
// HTML-escaped before it reaches storage.
package validate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// Username and event title limits enforced at the API boundary.
const (
	MinUsernameLength   = 2
	MaxUsernameLength   = 64
	MinEventTitleLength = 3
	MaxEventTitleLength = 120
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SanitizeHTML escapes HTML special characters to prevent XSS attacks.
// This should be called on all user-generated text that will be displayed in HTML.
func SanitizeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeString performs both validation and HTML sanitization.
// Returns the sanitized string and an error if validation fails.
func SanitizeString(s string, constraints StringConstraints) (string, error) {
	validated, err := String(s, constraints)
	if err != nil {
		return "", err
	}
	return SanitizeHTML(validated), nil
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// Username validates a profile username:
// - 2-64 characters
// - Letters, numbers, underscore, dash, period only
// Returns the trimmed username.
func Username(name string) (string, error) {
	return String(name, StringConstraints{
		MinLength:      MinUsernameLength,
		MaxLength:      MaxUsernameLength,
		AllowedPattern: usernamePattern,
		TrimSpace:      true,
	})
}

// EventTitle validates and sanitizes an event title:
// - 3-120 characters after trimming
// - HTML special characters escaped
// No character allowlist; titles carry punctuation and non-Latin scripts.
func EventTitle(title string) (string, error) {
	return SanitizeString(title, StringConstraints{
		MinLength: MinEventTitleLength,
		MaxLength: MaxEventTitleLength,
		TrimSpace: true,
	})
}
