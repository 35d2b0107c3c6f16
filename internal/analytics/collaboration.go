// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/pkg/types"
)

type pairKey struct{ a, b string }

// Collaboration builds the co-authorship summary. Authors matching any
// alias are the subject researcher and are excluded; each remaining
// co-author counts once per publication, and every unordered pair of
// co-authors on a publication counts once.
func Collaboration(pubs []types.Publication, aliases []string, topN int) types.CollaborationMetrics {
	m := types.CollaborationMetrics{
		TotalWorks:       len(pubs),
		Collaborators:    []types.Collaborator{},
		TopCollaborators: []types.Collaborator{},
		Pairs:            []types.CollaborationPair{},
	}
	if len(pubs) == 0 {
		return m
	}

	counts := make(map[string]int)
	pairs := make(map[pairKey]int)
	totalAuthors := 0
	m.MinAuthors = len(pubs[0].Authors)

	for _, p := range pubs {
		n := len(p.Authors)
		totalAuthors += n
		m.MaxAuthors = max(m.MaxAuthors, n)
		m.MinAuthors = min(m.MinAuthors, n)

		co := coauthors(p.Authors, aliases)
		if len(co) == 0 {
			m.SoloWorks++
			continue
		}
		m.CollaborativeWorks++
		for _, c := range co {
			counts[c]++
		}
		for i := 0; i < len(co); i++ {
			for j := i + 1; j < len(co); j++ {
				a, b := co[i], co[j]
				if b < a {
					a, b = b, a
				}
				pairs[pairKey{a, b}]++
			}
		}
	}

	m.CollaborationRate = percent(m.CollaborativeWorks, m.TotalWorks)
	m.SoloShare = round(float64(m.SoloWorks)/float64(m.TotalWorks), 4)
	m.AverageAuthorsPerPaper = round(float64(totalAuthors)/float64(m.TotalWorks), 2)
	m.UniqueCollaborators = len(counts)

	for name, c := range counts {
		m.Collaborators = append(m.Collaborators, types.Collaborator{Name: name, Count: c})
	}
	slices.SortFunc(m.Collaborators, func(x, y types.Collaborator) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return strings.Compare(x.Name, y.Name)
	})
	m.TopCollaborators = slices.Clone(m.Collaborators[:min(topN, len(m.Collaborators))])

	for k, c := range pairs {
		m.Pairs = append(m.Pairs, types.CollaborationPair{A: k.a, B: k.b, Count: c})
	}
	slices.SortFunc(m.Pairs, func(x, y types.CollaborationPair) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		if c := strings.Compare(x.A, y.A); c != 0 {
			return c
		}
		return strings.Compare(x.B, y.B)
	})
	return m
}

// PairCount returns how many publications list both a and b as co-authors.
func PairCount(m types.CollaborationMetrics, a, b string) int {
	if b < a {
		a, b = b, a
	}
	for _, p := range m.Pairs {
		if p.A == a && p.B == b {
			return p.Count
		}
	}
	return 0
}

// coauthors returns the distinct authors of a publication that do not
// match the subject's aliases, in list order.
func coauthors(authors, aliases []string) []string {
	seen := make(map[string]bool, len(authors))
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] || normalize.MatchesAlias(a, aliases) {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
