// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// BuildProfile assembles the subject researcher's profile from the first
// crawl page. When aliases is empty, DefaultAliases of the profile name is
// used.
func BuildProfile(authorID string, author *crawl.RawAuthor, citedBy *crawl.RawCitedByTable, aliases []string) types.AuthorProfile {
	p := types.AuthorProfile{ScholarID: authorID, Interests: []string{}}
	if author != nil {
		p.Name = strings.TrimSpace(author.Name)
		p.Affiliation = strings.TrimSpace(author.Affiliations)
		p.Email = author.Email
		p.Homepage = author.Website
		for _, in := range author.Interests {
			if t := strings.TrimSpace(in.Title); t != "" {
				p.Interests = append(p.Interests, t)
			}
		}
	}

	p.Aliases = cleanAliases(aliases)
	if len(p.Aliases) == 0 {
		p.Aliases = DefaultAliases(p.Name)
	}

	if citedBy != nil {
		var r types.ReportedMetrics
		r.Citations, r.CitationsRecent, r.RecentSince = citedBy.Metric("citations")
		r.HIndex, r.HIndexRecent, _ = citedBy.Metric("h_index")
		r.I10Index, r.I10IndexRecent, _ = citedBy.Metric("i10_index")
		p.Reported = r
		for _, g := range citedBy.Graph {
			p.CitationGraph = append(p.CitationGraph, types.YearCount{Year: g.Year, Count: g.Citations})
		}
	}
	return p
}

func cleanAliases(in []string) []string {
	var out []string
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
