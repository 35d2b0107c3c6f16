// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"slices"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// Trend window sizes, in distinct publication years.
const (
	trendWindow  = 5
	recentWindow = 5
)

// Trend thresholds relative to the prior window mean.
const (
	increaseRatio = 1.2
	decreaseRatio = 0.8
)

// Temporal computes productivity over time. Undated publications are
// counted separately and excluded from every per-year figure.
func Temporal(pubs []types.Publication, referenceYear int) types.TemporalMetrics {
	m := types.TemporalMetrics{
		ByYear:       []types.YearStat{},
		RecentWindow: []types.YearStat{},
		Trend:        types.TrendInsufficientData,
	}

	perYear := make(map[int]*types.YearStat)
	for _, p := range pubs {
		if p.Year == nil {
			m.UndatedPublications++
			continue
		}
		s, ok := perYear[*p.Year]
		if !ok {
			s = &types.YearStat{Year: *p.Year}
			perYear[*p.Year] = s
		}
		s.Publications++
		s.Citations += p.CitedBy
	}

	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	slices.Sort(years)
	for _, y := range years {
		m.ByYear = append(m.ByYear, *perYear[y])
	}
	m.RecentWindow = window(perYear, referenceYear)

	if len(years) == 0 {
		return m
	}
	m.FirstYear = years[0]
	m.LastYear = years[len(years)-1]
	m.CareerSpan = m.LastYear - m.FirstYear + 1
	m.ActiveYears = len(years)

	dated := len(pubs) - m.UndatedPublications
	m.AveragePerYear = round(float64(dated)/float64(m.CareerSpan), 2)

	best := 0
	for _, y := range years {
		if perYear[y].Publications >= best {
			best = perYear[y].Publications
			m.MostProductiveYear = y
		}
	}

	m.Trend, m.RecentMean, m.PriorMean = trend(years, perYear)
	return m
}

// trend compares the mean publication count of the most recent distinct
// years against the distinct years immediately before them.
func trend(years []int, perYear map[int]*types.YearStat) (types.Trend, float64, float64) {
	if len(years) < 2 {
		return types.TrendInsufficientData, 0, 0
	}
	desc := slices.Clone(years)
	slices.Reverse(desc)

	recent := desc[:min(trendWindow, len(desc))]
	prior := desc[len(recent):min(len(recent)+trendWindow, len(desc))]

	recentMean := meanPublications(recent, perYear)
	if len(prior) == 0 {
		return types.TrendStable, round(recentMean, 2), 0
	}
	priorMean := meanPublications(prior, perYear)

	t := types.TrendStable
	switch {
	case recentMean > priorMean*increaseRatio:
		t = types.TrendIncreasing
	case recentMean < priorMean*decreaseRatio:
		t = types.TrendDecreasing
	}
	return t, round(recentMean, 2), round(priorMean, 2)
}

func meanPublications(years []int, perYear map[int]*types.YearStat) float64 {
	total := 0
	for _, y := range years {
		total += perYear[y].Publications
	}
	return float64(total) / float64(len(years))
}

// window returns the calendar years ending at referenceYear, oldest first,
// with zero counts for years without publications.
func window(perYear map[int]*types.YearStat, referenceYear int) []types.YearStat {
	out := []types.YearStat{}
	if referenceYear <= 0 {
		return out
	}
	for y := referenceYear - recentWindow + 1; y <= referenceYear; y++ {
		if s, ok := perYear[y]; ok {
			out = append(out, *s)
			continue
		}
		out = append(out, types.YearStat{Year: y})
	}
	return out
}
