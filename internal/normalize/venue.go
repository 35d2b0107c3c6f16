// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// venueRule maps lowercase venue keywords to a publication type. Rules are
// checked in slice order and the first matching rule wins, so "IEEE
// Conference on ..." classifies as a conference.
type venueRule struct {
	typ      types.PublicationType
	keywords []string
}

var venueRules = []venueRule{
	{types.TypeConference, []string{"conference", "proceedings", "symposium", "workshop", "congress", "meeting"}},
	{types.TypeJournal, []string{"journal", "transactions", "letters", "review", "magazine", "ieee", "acm"}},
	{types.TypeBook, []string{"book", "chapter"}},
	{types.TypeThesis, []string{"thesis", "dissertation"}},
}

// ClassifyVenue returns the publication type for a venue string. Unmatched
// and empty venues are articles.
func ClassifyVenue(venue string) types.PublicationType {
	lower := strings.ToLower(venue)
	if strings.TrimSpace(lower) == "" {
		return types.TypeArticle
	}
	for _, r := range venueRules {
		if containsAny(lower, r.keywords) {
			return r.typ
		}
	}
	return types.TypeArticle
}

// IsJournalVenue reports whether venue carries any journal keyword,
// regardless of precedence.
func IsJournalVenue(venue string) bool {
	return containsAny(strings.ToLower(venue), venueRules[1].keywords)
}

// IsConferenceVenue reports whether venue carries any conference keyword.
func IsConferenceVenue(venue string) bool {
	return containsAny(strings.ToLower(venue), venueRules[0].keywords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
