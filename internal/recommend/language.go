package recommend

import (
	"strings"

	"github.com/onnwee/gigfeed/internal/catalog"
)

// Language preference marker tags. A user opts into a language preference by
// selecting one of these during onboarding.
const (
	TagPrefersGreek   = "lang_greek"
	TagPrefersEnglish = "lang_english"
)

// WeakLanguageMatch is the floor score for an event in a language the user
// did not ask for. Non-zero so a strong event in the "wrong" language still
// ranks, just lower.
const WeakLanguageMatch = 0.2

// InferLanguagePreference derives a user's language preference from their
// tags. Both markers, or neither, mean no preference.
func InferLanguagePreference(userTags []string) string {
	var greek, english bool
	for _, t := range userTags {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case TagPrefersGreek:
			greek = true
		case TagPrefersEnglish:
			english = true
		}
	}

	switch {
	case greek == english:
		return catalog.LanguageBoth
	case english:
		return catalog.LanguageEnglish
	default:
		return catalog.LanguageGreek
	}
}

// LanguageMatch scores an event's language against an inferred preference.
// No preference always matches fully; a single-language preference scores
// 1.0 for that language or a bilingual event and WeakLanguageMatch
// otherwise. Unrecognized preferences are permissive.
func LanguageMatch(preference, eventLanguage string) float64 {
	eventLanguage = strings.ToLower(strings.TrimSpace(eventLanguage))

	switch preference {
	case catalog.LanguageBoth:
		return 1.0
	case catalog.LanguageEnglish:
		if eventLanguage == catalog.LanguageEnglish || eventLanguage == catalog.LanguageBoth {
			return 1.0
		}
		return WeakLanguageMatch
	case catalog.LanguageGreek:
		if eventLanguage == catalog.LanguageGreek || eventLanguage == catalog.LanguageBoth {
			return 1.0
		}
		return WeakLanguageMatch
	default:
		return 1.0
	}
}
