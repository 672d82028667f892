package catalog

import (
	"context"
	"fmt"
)

// SampleEvents returns the demo catalog used for local development.
func SampleEvents() []Event {
	return []Event{
		{
			Title:    "Limassol Rock Festival",
			City:     "Limassol",
			RawDate:  "2026-03-10",
			Language: LanguageEnglish,
			Tags:     []string{"concert", "lang_english", "rock", "live", "festival"},
			Artists:  []string{"Imagine Dragons", "Arctic Monkeys"},
		},
		{
			Title:    "Nicosia Techno Night",
			City:     "Nicosia",
			RawDate:  "2026-03-15",
			Language: LanguageEnglish,
			Tags:     []string{"concert", "lang_english", "electronic", "techno", "club"},
			Artists:  []string{"Charlotte de Witte"},
		},
		{
			Title:    "Paphos Greek Night",
			City:     "Paphos",
			RawDate:  "2026-03-20",
			Language: LanguageGreek,
			Tags:     []string{"concert", "lang_greek", "laiko", "live"},
			Artists:  []string{"Antonis Remos"},
		},
		{
			Title:    "Larnaca Jazz Evening",
			City:     "Larnaca",
			RawDate:  "2026-03-22",
			Language: LanguageEnglish,
			Tags:     []string{"concert", "lang_english", "jazz", "soul", "live"},
			Artists:  []string{"Local Jazz Quartet"},
		},
	}
}

// SeedEvents inserts the sample events when the catalog is empty.
// Returns the number of events inserted (0 when the catalog already has data).
func SeedEvents(ctx context.Context, repo EventRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	events := SampleEvents()
	for i := range events {
		if err := repo.Insert(ctx, &events[i]); err != nil {
			return i, fmt.Errorf("failed to seed event %q: %w", events[i].Title, err)
		}
	}
	return len(events), nil
}
