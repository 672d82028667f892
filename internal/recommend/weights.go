package recommend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights holds the four scoring weights. CBF and Context are expected to
// sum to 1.0; the API layer validates that invariant before scoring. The
// core tolerates any finite values and only clamps the final score.
type Weights struct {
	CBF            float64 `json:"w_cbf"`            // tag similarity
	Context        float64 `json:"w_context"`        // city/date context
	MaxArtistBoost float64 `json:"max_artist_boost"` // cap on the favorite-artist bonus
	Language       float64 `json:"w_language"`       // language preference fit
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configuration
}

// DefaultWeights returns the default scoring weight configuration.
//
// Hybrid formula: score = (cbf * 0.6) + (context * 0.4) + artist_boost + (0.15 * (language - 0.2))
//   - Tag similarity carries most of the signal
//   - Context blends city proximity with date adequacy
//   - Artist boost is an additive bonus capped at 0.3
//   - Language term maps the [0.2, 1.0] match range onto [0, 0.8] so it never
//     subtracts from the score
func DefaultWeights() *Weights {
	return &Weights{
		CBF:            0.6,
		Context:        0.4,
		MaxArtistBoost: 0.3,
		Language:       0.15,
	}
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// Partial configurations are merged with defaults for graceful degradation.
// On error, returns default weights so startup can proceed.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights.
// Only non-zero values from the override are applied, which allows partial
// overrides in the calibration file.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.CBF != 0 {
		result.CBF = override.CBF
	}
	if override.Context != 0 {
		result.Context = override.Context
	}
	if override.MaxArtistBoost != 0 {
		result.MaxArtistBoost = override.MaxArtistBoost
	}
	if override.Language != 0 {
		result.Language = override.Language
	}

	return &result
}

// MergeOverrides applies named weight overrides on top of base weights.
// Keys follow the calibration file fields; unknown keys are logged and
// skipped so a stray config row cannot break startup.
func MergeOverrides(base *Weights, overrides map[string]float64) *Weights {
	if base == nil {
		base = DefaultWeights()
	}
	result := *base

	for key, value := range overrides {
		switch key {
		case "w_cbf":
			result.CBF = value
		case "w_context":
			result.Context = value
		case "max_artist_boost":
			result.MaxArtistBoost = value
		case "w_language":
			result.Language = value
		default:
			slog.Warn("ignoring unknown weight override", "key", key)
		}
	}

	logCalibrationOverrides(base, &result)
	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.CBF != defaults.CBF {
		overrides = append(overrides, fmt.Sprintf("w_cbf: %.2f -> %.2f", defaults.CBF, loaded.CBF))
	}
	if loaded.Context != defaults.Context {
		overrides = append(overrides, fmt.Sprintf("w_context: %.2f -> %.2f", defaults.Context, loaded.Context))
	}
	if loaded.MaxArtistBoost != defaults.MaxArtistBoost {
		overrides = append(overrides, fmt.Sprintf("max_artist_boost: %.2f -> %.2f", defaults.MaxArtistBoost, loaded.MaxArtistBoost))
	}
	if loaded.Language != defaults.Language {
		overrides = append(overrides, fmt.Sprintf("w_language: %.2f -> %.2f", defaults.Language, loaded.Language))
	}

	if len(overrides) > 0 {
		slog.Info("loaded weight calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded weight calibration (using all defaults)")
	}
}
