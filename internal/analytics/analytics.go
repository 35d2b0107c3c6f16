// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analytics computes bibliometric metrics from a normalized
// publication set. Every function is pure: identical input yields identical
// output, with ties broken on stable secondary keys and recency anchored to
// a reference year rather than the wall clock.
package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// DefaultTopN bounds ranked lists when the configuration leaves TopN zero.
const DefaultTopN = 10

// Analyze computes the full metrics snapshot for pubs.
func Analyze(pubs []types.Publication, cfg types.AnalyticsConfig) types.MetricsSnapshot {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	ref := ReferenceYear(pubs, cfg.ReferenceYear)

	snap := types.MetricsSnapshot{
		ReferenceYear:    ref,
		Impact:           Impact(pubs),
		Distribution:     Distribution(pubs),
		Collaboration:    Collaboration(pubs, cfg.Aliases, topN),
		Temporal:         Temporal(pubs, ref),
		Venues:           Venues(pubs),
		Quality:          Quality(pubs, ref),
		Authorship:       Authorship(pubs),
		Types:            TypeCounts(pubs),
		TopCited:         TopCited(pubs, topN),
		RecentHighImpact: RecentHighImpact(pubs, ref, topN),
		Publishers:       Publishers(pubs),
	}
	snap.Recommendations = Recommendations(snap)
	snap.Benchmark = Benchmark(snap, cfg.Benchmark)
	return snap
}

// ReferenceYear returns configured when positive, otherwise the latest
// publication year in pubs, or zero when no publication is dated.
func ReferenceYear(pubs []types.Publication, configured int) int {
	if configured > 0 {
		return configured
	}
	latest := 0
	for _, p := range pubs {
		if p.Year != nil && *p.Year > latest {
			latest = *p.Year
		}
	}
	return latest
}

// SortPublications orders pubs for output: year descending with undated
// last, then citations descending, then ID.
func SortPublications(pubs []types.Publication) []types.Publication {
	out := slices.Clone(pubs)
	slices.SortStableFunc(out, func(a, b types.Publication) int {
		switch {
		case a.Year == nil && b.Year != nil:
			return 1
		case a.Year != nil && b.Year == nil:
			return -1
		case a.Year != nil && b.Year != nil && *a.Year != *b.Year:
			return cmp.Compare(*b.Year, *a.Year)
		}
		if c := cmp.Compare(b.CitedBy, a.CitedBy); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// rankByCitations orders pubs by citations descending, then ID.
func rankByCitations(pubs []types.Publication) []types.Publication {
	out := slices.Clone(pubs)
	slices.SortStableFunc(out, func(a, b types.Publication) int {
		if c := cmp.Compare(b.CitedBy, a.CitedBy); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func citedWork(p types.Publication, totalCitations int) types.CitedWork {
	return types.CitedWork{
		ID:            p.ID,
		Title:         p.Title,
		Year:          p.Year,
		Venue:         p.Venue,
		Citations:     p.CitedBy,
		CitationShare: percent(p.CitedBy, totalCitations),
	}
}
