package recommend

// ArtistBoost computes the favorite-artist bonus. The overlap ratio is
// relative to the user's favorites, not the event's roster: a user with one
// favorite that plays gets the full ratio no matter how many other acts the
// event lists. Returns 0.0 when either side is empty.
//
// boost = min(maxBoost * |∩| / |user|, maxBoost)
func ArtistBoost(userArtists, eventArtists []string, maxBoost float64) float64 {
	if len(userArtists) == 0 || len(eventArtists) == 0 {
		return 0.0
	}

	us := foldSet(userArtists)
	es := foldSet(eventArtists)
	if len(us) == 0 || len(es) == 0 {
		return 0.0
	}

	overlap := 0
	for a := range us {
		if es[a] {
			overlap++
		}
	}
	if overlap == 0 {
		return 0.0
	}

	boost := maxBoost * float64(overlap) / float64(len(us))
	if boost > maxBoost {
		boost = maxBoost
	}
	return boost
}
