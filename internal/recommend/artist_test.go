package recommend

import (
	"math"
	"testing"
)

// TestArtistBoost tests the favorite-artist bonus calculation.
func TestArtistBoost(t *testing.T) {
	tests := []struct {
		name     string
		user     []string
		event    []string
		maxBoost float64
		expected float64
	}{
		{
			name:     "single favorite matches regardless of roster size",
			user:     []string{"Imagine Dragons"},
			event:    []string{"Imagine Dragons", "Arctic Monkeys"},
			maxBoost: 0.3,
			expected: 0.3,
		},
		{
			name:     "half of favorites match",
			user:     []string{"Imagine Dragons", "Coldplay"},
			event:    []string{"Imagine Dragons"},
			maxBoost: 0.3,
			expected: 0.15,
		},
		{
			name:     "no overlap",
			user:     []string{"Coldplay"},
			event:    []string{"Imagine Dragons"},
			maxBoost: 0.3,
			expected: 0.0,
		},
		{
			name:     "empty user favorites",
			user:     nil,
			event:    []string{"Imagine Dragons"},
			maxBoost: 0.3,
			expected: 0.0,
		},
		{
			name:     "empty event roster",
			user:     []string{"Imagine Dragons"},
			event:    nil,
			maxBoost: 0.3,
			expected: 0.0,
		},
		{
			name:     "case insensitive match",
			user:     []string{"imagine dragons"},
			event:    []string{"IMAGINE DRAGONS"},
			maxBoost: 0.3,
			expected: 0.3,
		},
		{
			name:     "boost never exceeds cap",
			user:     []string{"A"},
			event:    []string{"A", "a"},
			maxBoost: 0.3,
			expected: 0.3,
		},
		{
			name:     "zero cap yields zero boost",
			user:     []string{"A"},
			event:    []string{"A"},
			maxBoost: 0.0,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ArtistBoost(tt.user, tt.event, tt.maxBoost)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}
