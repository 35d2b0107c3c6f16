// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"strings"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// Quality tier thresholds.
const (
	HighImpactCitations       = 50
	MediumImpactCitations     = 10
	RecentHighImpactCitations = 20
	RecentYears               = 5
)

// Quality counts publications per quality tier and per impact category.
// Recency is measured against referenceYear.
func Quality(pubs []types.Publication, referenceYear int) types.QualityMetrics {
	var q types.QualityMetrics
	for _, p := range pubs {
		c := p.CitedBy
		switch {
		case c >= HighImpactCitations:
			q.HighImpact++
		case c >= MediumImpactCitations:
			q.MediumImpact++
		}
		if isRecentHighImpact(p, referenceYear) {
			q.RecentHighImpact++
		}

		switch {
		case c > 25:
			q.HighlyCited++
		case c >= 6:
			q.WellCited++
		case c >= 1:
			q.Cited++
		default:
			q.Uncited++
		}
	}
	return q
}

func isRecentHighImpact(p types.Publication, referenceYear int) bool {
	return p.Year != nil && *p.Year >= referenceYear-RecentYears && p.CitedBy >= RecentHighImpactCitations
}

// TopCited returns the n most cited publications with their share of total
// citations.
func TopCited(pubs []types.Publication, n int) []types.CitedWork {
	total := 0
	for _, p := range pubs {
		total += p.CitedBy
	}
	ranked := rankByCitations(pubs)
	out := make([]types.CitedWork, 0, min(n, len(ranked)))
	for _, p := range ranked[:min(n, len(ranked))] {
		out = append(out, citedWork(p, total))
	}
	return out
}

// RecentHighImpact returns up to n recent publications with at least
// RecentHighImpactCitations citations, most cited first.
func RecentHighImpact(pubs []types.Publication, referenceYear, n int) []types.CitedWork {
	total := 0
	for _, p := range pubs {
		total += p.CitedBy
	}
	out := []types.CitedWork{}
	for _, p := range rankByCitations(pubs) {
		if len(out) == n {
			break
		}
		if isRecentHighImpact(p, referenceYear) {
			out = append(out, citedWork(p, total))
		}
	}
	return out
}

// Authorship counts first and corresponding authorships.
func Authorship(pubs []types.Publication) types.AuthorshipMetrics {
	var a types.AuthorshipMetrics
	for _, p := range pubs {
		if p.IsFirstAuthor {
			a.FirstAuthor++
		}
		if p.IsCorrespondingAuthor {
			a.CorrespondingAuthor++
		}
	}
	a.FirstAuthorRate = percent(a.FirstAuthor, len(pubs))
	return a
}

var publicationTypes = []types.PublicationType{
	types.TypeJournal,
	types.TypeConference,
	types.TypeBook,
	types.TypeThesis,
	types.TypeArticle,
}

// TypeCounts counts publications per type. Every type is listed, in a
// fixed order.
func TypeCounts(pubs []types.Publication) []types.TypeCount {
	counts := make(map[types.PublicationType]int)
	for _, p := range pubs {
		counts[p.Type]++
	}
	out := make([]types.TypeCount, len(publicationTypes))
	for i, t := range publicationTypes {
		out[i] = types.TypeCount{Type: t, Count: counts[t]}
	}
	return out
}

// publishers are matched against the venue by case-insensitive substring.
// The first matching publisher wins.
var publishers = []string{"IEEE", "Springer", "Elsevier", "MDPI"}

// Publishers counts publications per recognized publisher, omitting
// publishers with no publications.
func Publishers(pubs []types.Publication) []types.PublisherCount {
	counts := make([]int, len(publishers))
	for _, p := range pubs {
		venue := strings.ToLower(p.Venue)
		for i, name := range publishers {
			if strings.Contains(venue, strings.ToLower(name)) {
				counts[i]++
				break
			}
		}
	}
	out := []types.PublisherCount{}
	for i, name := range publishers {
		if counts[i] > 0 {
			out = append(out, types.PublisherCount{Publisher: name, Count: counts[i]})
		}
	}
	return out
}
