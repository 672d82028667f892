package recommend

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultWeights verifies the shipped weight values.
func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	if math.Abs(w.CBF-0.6) > 0.001 {
		t.Errorf("expected w_cbf 0.6, got %f", w.CBF)
	}
	if math.Abs(w.Context-0.4) > 0.001 {
		t.Errorf("expected w_context 0.4, got %f", w.Context)
	}
	if math.Abs(w.CBF+w.Context-1.0) > 0.001 {
		t.Errorf("expected w_cbf + w_context == 1.0, got %f", w.CBF+w.Context)
	}
	if math.Abs(w.MaxArtistBoost-0.3) > 0.001 {
		t.Errorf("expected max_artist_boost 0.3, got %f", w.MaxArtistBoost)
	}
	if math.Abs(w.Language-0.15) > 0.001 {
		t.Errorf("expected w_language 0.15, got %f", w.Language)
	}
}

// TestMergeCalibration tests partial override merging.
func TestMergeCalibration(t *testing.T) {
	tests := []struct {
		name     string
		base     *Weights
		override *Weights
		expected Weights
	}{
		{
			name:     "nil base falls back to defaults",
			base:     nil,
			override: &Weights{CBF: 0.9},
			expected: *DefaultWeights(),
		},
		{
			name:     "nil override copies base",
			base:     &Weights{CBF: 0.7, Context: 0.3, MaxArtistBoost: 0.2, Language: 0.1},
			override: nil,
			expected: Weights{CBF: 0.7, Context: 0.3, MaxArtistBoost: 0.2, Language: 0.1},
		},
		{
			name:     "partial override keeps remaining base values",
			base:     DefaultWeights(),
			override: &Weights{CBF: 0.5, Context: 0.5},
			expected: Weights{CBF: 0.5, Context: 0.5, MaxArtistBoost: 0.3, Language: 0.15},
		},
		{
			name:     "zero override values are ignored",
			base:     DefaultWeights(),
			override: &Weights{},
			expected: *DefaultWeights(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MergeCalibration(tt.base, tt.override)
			if *result != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, *result)
			}
		})
	}
}

// TestLoadCalibration tests file loading with graceful degradation.
func TestLoadCalibration(t *testing.T) {
	t.Run("empty path uses defaults without error", func(t *testing.T) {
		w, err := LoadCalibration("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults, got %+v", *w)
		}
	})

	t.Run("missing file returns defaults with error", func(t *testing.T) {
		w, err := LoadCalibration("/nonexistent/calibration.json")
		if err == nil {
			t.Error("expected error for missing file")
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults, got %+v", *w)
		}
	})

	t.Run("malformed file returns defaults with error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		w, err := LoadCalibration(path)
		if err == nil {
			t.Error("expected error for malformed file")
		}
		if *w != *DefaultWeights() {
			t.Errorf("expected defaults, got %+v", *w)
		}
	})

	t.Run("valid file merges over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "calibration.json")
		body := `{"version":"1","weights":{"w_cbf":0.7,"w_context":0.3}}`
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		w, err := LoadCalibration(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := Weights{CBF: 0.7, Context: 0.3, MaxArtistBoost: 0.3, Language: 0.15}
		if *w != expected {
			t.Errorf("expected %+v, got %+v", expected, *w)
		}
	})
}

func TestMergeOverrides(t *testing.T) {
	tests := []struct {
		name      string
		base      *Weights
		overrides map[string]float64
		expected  Weights
	}{
		{
			name:      "nil base uses defaults",
			base:      nil,
			overrides: map[string]float64{"w_cbf": 0.8, "w_context": 0.2},
			expected:  Weights{CBF: 0.8, Context: 0.2, MaxArtistBoost: 0.3, Language: 0.15},
		},
		{
			name:      "empty overrides keep base",
			base:      &Weights{CBF: 0.5, Context: 0.5, MaxArtistBoost: 0.2, Language: 0.1},
			overrides: map[string]float64{},
			expected:  Weights{CBF: 0.5, Context: 0.5, MaxArtistBoost: 0.2, Language: 0.1},
		},
		{
			name:      "unknown keys skipped",
			base:      DefaultWeights(),
			overrides: map[string]float64{"w_tempo": 0.9, "max_artist_boost": 0.1},
			expected:  Weights{CBF: 0.6, Context: 0.4, MaxArtistBoost: 0.1, Language: 0.15},
		},
		{
			name:      "zero value applied, unlike file merge",
			base:      DefaultWeights(),
			overrides: map[string]float64{"w_language": 0},
			expected:  Weights{CBF: 0.6, Context: 0.4, MaxArtistBoost: 0.3, Language: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeOverrides(tt.base, tt.overrides)
			if *got != tt.expected {
				t.Errorf("MergeOverrides() = %+v, want %+v", *got, tt.expected)
			}
		})
	}
}
