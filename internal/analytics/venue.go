// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// UnknownVenue groups publications with an empty venue string.
const UnknownVenue = "Unknown"

// Venues groups publications by their trimmed venue string and ranks the
// groups by count, then total citations, then name.
func Venues(pubs []types.Publication) types.VenueMetrics {
	groups := make(map[string]*types.VenueStat)
	for _, p := range pubs {
		name := strings.TrimSpace(p.Venue)
		if name == "" {
			name = UnknownVenue
		}
		s, ok := groups[name]
		if !ok {
			s = &types.VenueStat{Venue: name, Type: normalize.ClassifyVenue(name)}
			groups[name] = s
		}
		s.Count++
		s.TotalCitations += p.CitedBy
	}

	ranking := make([]types.VenueStat, 0, len(groups))
	for _, s := range groups {
		s.MeanCitations = round(float64(s.TotalCitations)/float64(s.Count), 2)
		ranking = append(ranking, *s)
	}
	slices.SortFunc(ranking, func(a, b types.VenueStat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalCitations, a.TotalCitations); c != 0 {
			return c
		}
		return strings.Compare(a.Venue, b.Venue)
	})
	return types.VenueMetrics{TotalVenues: len(ranking), Ranking: ranking}
}
