package recommend

import "strings"

// UnknownCityScore is the fallback proximity when either city is blank or
// absent from the matrix.
const UnknownCityScore = 0.3

// dateAdequacy is fixed at 1.0: the eligibility filter guarantees every
// scored event falls inside the requested window before scoring runs.
const dateAdequacy = 1.0

// CityMatrix maps user city -> event city -> proximity score in [0.3, 1.0].
// Loaded once at startup and passed by reference; never mutated at runtime.
type CityMatrix map[string]map[string]float64

// DefaultCityMatrix returns the shipped proximity matrix covering the four
// Cyprus cities. Self-proximity is 1.0; neighbor scores reflect road
// distance bands.
func DefaultCityMatrix() CityMatrix {
	return CityMatrix{
		"nicosia":  {"nicosia": 1.0, "larnaca": 0.7, "limassol": 0.6, "paphos": 0.4},
		"larnaca":  {"larnaca": 1.0, "nicosia": 0.7, "limassol": 0.7, "paphos": 0.5},
		"limassol": {"limassol": 1.0, "paphos": 0.8, "larnaca": 0.6, "nicosia": 0.4},
		"paphos":   {"paphos": 1.0, "limassol": 0.8, "larnaca": 0.5, "nicosia": 0.3},
	}
}

// Proximity looks up the city pair, case-folded. Unknown pairs and blank
// cities degrade to UnknownCityScore rather than failing.
func (m CityMatrix) Proximity(userCity, eventCity string) float64 {
	uc := strings.ToLower(strings.TrimSpace(userCity))
	ec := strings.ToLower(strings.TrimSpace(eventCity))
	if uc == "" || ec == "" {
		return UnknownCityScore
	}

	if row, ok := m[uc]; ok {
		if score, ok := row[ec]; ok {
			return score
		}
	}
	return UnknownCityScore
}

// ContextScore blends city proximity with the fixed date adequacy term:
// (city + 1.0) / 2.0.
func ContextScore(cityScore float64) float64 {
	return (cityScore + dateAdequacy) / 2.0
}
