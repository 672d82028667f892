package middleware

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		// Static routes - no normalization
		{
			name:     "root path",
			path:     "/",
			expected: "/",
		},
		{
			name:     "recommendations endpoint",
			path:     "/recommendations",
			expected: "/recommendations",
		},
		{
			name:     "profiles collection",
			path:     "/profiles",
			expected: "/profiles",
		},
		{
			name:     "events collection",
			path:     "/events",
			expected: "/events",
		},
		{
			name:     "admin events collection",
			path:     "/admin/events",
			expected: "/admin/events",
		},
		{
			name:     "tag options",
			path:     "/tag-options",
			expected: "/tag-options",
		},
		{
			name:     "artist options",
			path:     "/artist-options",
			expected: "/artist-options",
		},
		{
			name:     "auth token",
			path:     "/auth/token",
			expected: "/auth/token",
		},
		{
			name:     "health endpoint",
			path:     "/health",
			expected: "/health",
		},
		{
			name:     "ready endpoint",
			path:     "/ready",
			expected: "/ready",
		},
		{
			name:     "metrics endpoint",
			path:     "/metrics",
			expected: "/metrics",
		},

		// Profiles patterns
		{
			name:     "profile by username",
			path:     "/profiles/stelios",
			expected: "/profiles/{username}",
		},
		{
			name:     "profile history",
			path:     "/profiles/stelios/history",
			expected: "/profiles/{username}/history",
		},

		// Admin event patterns
		{
			name:     "admin event by id",
			path:     "/admin/events/123",
			expected: "/admin/events/{id}",
		},
		{
			name:     "admin event by uuid",
			path:     "/admin/events/550e8400-e29b-41d4-a716-446655440000",
			expected: "/admin/events/{id}",
		},

		// Public event patterns
		{
			name:     "event by id",
			path:     "/events/123",
			expected: "/events/{id}",
		},
		{
			name:     "event by uuid",
			path:     "/events/550e8400-e29b-41d4-a716-446655440000",
			expected: "/events/{id}",
		},

		// Edge cases
		{
			name:     "trailing slash on collection",
			path:     "/events/",
			expected: "/events/",
		},
		{
			name:     "unknown route",
			path:     "/unknown/path",
			expected: "/unknown/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.path)
			if result != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestNormalizePath_CardinalityControl(t *testing.T) {
	// Test that different IDs normalize to the same pattern
	paths := []string{
		"/events/1",
		"/events/2",
		"/events/999",
		"/events/550e8400-e29b-41d4-a716-446655440000",
		"/events/abc-def-ghi",
	}

	expected := "/events/{id}"
	seen := make(map[string]bool)

	for _, path := range paths {
		result := normalizePath(path)
		if result != expected {
			t.Errorf("normalizePath(%q) = %q, want %q", path, result, expected)
		}
		seen[result] = true
	}

	// Should all normalize to the same pattern (low cardinality)
	if len(seen) != 1 {
		t.Errorf("Expected all paths to normalize to single pattern, got %d patterns: %v", len(seen), seen)
	}
}
