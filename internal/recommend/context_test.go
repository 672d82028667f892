package recommend

import (
	"math"
	"testing"
)

// TestCityMatrix_Proximity tests city proximity lookups.
func TestCityMatrix_Proximity(t *testing.T) {
	matrix := DefaultCityMatrix()

	tests := []struct {
		name      string
		userCity  string
		eventCity string
		expected  float64
	}{
		{
			name:      "same city",
			userCity:  "Nicosia",
			eventCity: "Nicosia",
			expected:  1.0,
		},
		{
			name:      "nicosia to limassol",
			userCity:  "Nicosia",
			eventCity: "Limassol",
			expected:  0.6,
		},
		{
			name:      "limassol to nicosia is not symmetric in the shipped matrix",
			userCity:  "Limassol",
			eventCity: "Nicosia",
			expected:  0.4,
		},
		{
			name:      "case folded lookup",
			userCity:  "PAPHOS",
			eventCity: "limassol",
			expected:  0.8,
		},
		{
			name:      "unknown user city",
			userCity:  "Athens",
			eventCity: "Nicosia",
			expected:  UnknownCityScore,
		},
		{
			name:      "unknown event city",
			userCity:  "Nicosia",
			eventCity: "Athens",
			expected:  UnknownCityScore,
		},
		{
			name:      "empty user city",
			userCity:  "",
			eventCity: "Nicosia",
			expected:  UnknownCityScore,
		},
		{
			name:      "empty event city",
			userCity:  "Nicosia",
			eventCity: "  ",
			expected:  UnknownCityScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matrix.Proximity(tt.userCity, tt.eventCity)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestContextScore tests the city/date blend.
func TestContextScore(t *testing.T) {
	tests := []struct {
		name      string
		cityScore float64
		expected  float64
	}{
		{
			name:      "same city",
			cityScore: 1.0,
			expected:  1.0,
		},
		{
			name:      "neighbor city",
			cityScore: 0.6,
			expected:  0.8,
		},
		{
			name:      "unknown city fallback",
			cityScore: UnknownCityScore,
			expected:  0.65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ContextScore(tt.cityScore)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestDefaultCityMatrix_SelfScores verifies every shipped city maps to
// itself with 1.0 and to every other shipped city within [0.3, 0.8].
func TestDefaultCityMatrix_SelfScores(t *testing.T) {
	matrix := DefaultCityMatrix()
	cities := []string{"nicosia", "larnaca", "limassol", "paphos"}

	for _, uc := range cities {
		row, ok := matrix[uc]
		if !ok {
			t.Fatalf("missing row for %s", uc)
		}
		if len(row) != len(cities) {
			t.Errorf("%s: expected %d entries, got %d", uc, len(cities), len(row))
		}
		for _, ec := range cities {
			score, ok := row[ec]
			if !ok {
				t.Errorf("%s: missing entry for %s", uc, ec)
				continue
			}
			if uc == ec && score != 1.0 {
				t.Errorf("%s self-score: expected 1.0, got %f", uc, score)
			}
			if uc != ec && (score < 0.3 || score > 0.8) {
				t.Errorf("%s->%s: neighbor score %f outside [0.3, 0.8]", uc, ec, score)
			}
		}
	}
}
