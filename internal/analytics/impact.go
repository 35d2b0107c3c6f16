// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// HIndex returns the largest k such that k of the counts are at least k.
func HIndex(counts []int) int {
	sorted := slices.Clone(counts)
	slices.SortFunc(sorted, func(a, b int) int { return cmp.Compare(b, a) })
	h := 0
	for i, c := range sorted {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

// I10Index returns the number of counts that are at least 10.
func I10Index(counts []int) int {
	n := 0
	for _, c := range counts {
		if c >= 10 {
			n++
		}
	}
	return n
}

// Impact computes the citation impact indices of pubs.
func Impact(pubs []types.Publication) types.ImpactMetrics {
	counts := citationCounts(pubs)
	m := types.ImpactMetrics{
		TotalPublications: len(pubs),
		HIndex:            HIndex(counts),
		I10Index:          I10Index(counts),
	}
	for _, c := range counts {
		m.TotalCitations += c
		if c > m.MaxCitations {
			m.MaxCitations = c
		}
		if c > 0 {
			m.WithCitations++
		} else {
			m.WithoutCitations++
		}
	}
	if len(pubs) == 0 {
		return m
	}
	m.MeanCitations = round(float64(m.TotalCitations)/float64(len(pubs)), 2)
	m.MedianCitations = round(median(counts), 2)
	m.CitationRate = percent(m.WithCitations, len(pubs))

	ranked := rankByCitations(pubs)
	top := citedWork(ranked[0], m.TotalCitations)
	m.MostCited = &top
	return m
}

// bucketBounds are the inclusive citation-count ranges of the distribution.
// A negative upper bound means unbounded.
var bucketBounds = []struct {
	label    string
	min, max int
}{
	{"0", 0, 0},
	{"1-5", 1, 5},
	{"6-10", 6, 10},
	{"11-25", 11, 25},
	{"26-50", 26, 50},
	{"51-100", 51, 100},
	{">100", 101, -1},
}

// Distribution counts publications per citation bucket, in bucket order.
func Distribution(pubs []types.Publication) []types.DistributionBucket {
	buckets := make([]types.DistributionBucket, len(bucketBounds))
	for i, b := range bucketBounds {
		buckets[i] = types.DistributionBucket{Label: b.label, Min: b.min}
		if b.max >= 0 {
			hi := b.max
			buckets[i].Max = &hi
		}
	}
	for _, p := range pubs {
		for i, b := range bucketBounds {
			if p.CitedBy >= b.min && (b.max < 0 || p.CitedBy <= b.max) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

func citationCounts(pubs []types.Publication) []int {
	counts := make([]int, len(pubs))
	for i, p := range pubs {
		counts[i] = max(p.CitedBy, 0)
	}
	return counts
}

func median(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	sorted := slices.Clone(counts)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// percent returns part/whole as a percentage rounded to two places.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)*100/float64(whole), 2)
}
