package recommend

import (
	"math"
	"testing"

	"github.com/onnwee/gigfeed/internal/catalog"
)

// TestInferLanguagePreference tests preference inference from marker tags.
func TestInferLanguagePreference(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected string
	}{
		{
			name:     "no markers means no preference",
			tags:     []string{"rock", "live"},
			expected: catalog.LanguageBoth,
		},
		{
			name:     "english marker only",
			tags:     []string{"rock", "lang_english"},
			expected: catalog.LanguageEnglish,
		},
		{
			name:     "greek marker only",
			tags:     []string{"laiko", "lang_greek"},
			expected: catalog.LanguageGreek,
		},
		{
			name:     "both markers cancel out",
			tags:     []string{"lang_greek", "lang_english"},
			expected: catalog.LanguageBoth,
		},
		{
			name:     "markers are case folded",
			tags:     []string{"LANG_ENGLISH"},
			expected: catalog.LanguageEnglish,
		},
		{
			name:     "empty tags",
			tags:     nil,
			expected: catalog.LanguageBoth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := InferLanguagePreference(tt.tags)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

// TestLanguageMatch tests the preference-versus-event-language score table.
func TestLanguageMatch(t *testing.T) {
	tests := []struct {
		name       string
		preference string
		language   string
		expected   float64
	}{
		{
			name:       "no preference always matches",
			preference: catalog.LanguageBoth,
			language:   catalog.LanguageGreek,
			expected:   1.0,
		},
		{
			name:       "english preference with english event",
			preference: catalog.LanguageEnglish,
			language:   catalog.LanguageEnglish,
			expected:   1.0,
		},
		{
			name:       "english preference with bilingual event",
			preference: catalog.LanguageEnglish,
			language:   catalog.LanguageBoth,
			expected:   1.0,
		},
		{
			name:       "english preference with greek event",
			preference: catalog.LanguageEnglish,
			language:   catalog.LanguageGreek,
			expected:   WeakLanguageMatch,
		},
		{
			name:       "greek preference with greek event",
			preference: catalog.LanguageGreek,
			language:   catalog.LanguageGreek,
			expected:   1.0,
		},
		{
			name:       "greek preference with bilingual event",
			preference: catalog.LanguageGreek,
			language:   catalog.LanguageBoth,
			expected:   1.0,
		},
		{
			name:       "greek preference with english event",
			preference: catalog.LanguageGreek,
			language:   catalog.LanguageEnglish,
			expected:   WeakLanguageMatch,
		},
		{
			name:       "unrecognized preference is permissive",
			preference: "spanish",
			language:   catalog.LanguageGreek,
			expected:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LanguageMatch(tt.preference, tt.language)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}
