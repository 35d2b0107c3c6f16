// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"fmt"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// Recommendation priorities, highest first.
const (
	PriorityHigh        = "high"
	PriorityMedium      = "medium"
	PriorityLow         = "low"
	PriorityInformative = "informative"
)

// Benchmark statuses and performance labels.
const (
	StatusBelow  = "below"
	StatusWithin = "within"
	StatusAbove  = "above"

	PerformanceAboveAverage = "above_average"
	PerformanceDeveloping   = "developing"
)

// DefaultBenchmark is the reference used when no career stage is configured.
var DefaultBenchmark = types.BenchmarkConfig{
	CareerStage:  "Assistant Professor",
	HIndexMin:    10,
	HIndexMax:    15,
	CitationsMin: 300,
	CitationsMax: 800,
}

// Recommendation thresholds.
const (
	minCollaborationRate = 80
	minCitationRate      = 80
	minVenues            = 20
	strongHIndex         = 10
	advantageRate        = 70
)

// Recommendations derives strategic suggestions from a computed snapshot,
// in a fixed rule order.
func Recommendations(s types.MetricsSnapshot) []types.Recommendation {
	out := []types.Recommendation{}
	if s.Temporal.Trend == types.TrendDecreasing {
		out = append(out, types.Recommendation{
			Category:       "Productivity",
			Priority:       PriorityHigh,
			Recommendation: "Increase the publication rate to maintain academic visibility",
			Reasoning: fmt.Sprintf("Mean yearly output fell from %.2f to %.2f publications",
				s.Temporal.PriorMean, s.Temporal.RecentMean),
		})
	}
	if s.Collaboration.CollaborationRate < minCollaborationRate {
		out = append(out, types.Recommendation{
			Category:       "Collaboration",
			Priority:       PriorityMedium,
			Recommendation: "Seek more collaborations to widen the research network",
			Reasoning:      fmt.Sprintf("Only %.2f%% of publications are collaborative", s.Collaboration.CollaborationRate),
		})
	}
	if s.Impact.CitationRate < minCitationRate {
		out = append(out, types.Recommendation{
			Category:       "Impact",
			Priority:       PriorityMedium,
			Recommendation: "Focus effort on higher-impact publications",
			Reasoning:      fmt.Sprintf("%.2f%% of publications have not been cited yet", round(100-s.Impact.CitationRate, 2)),
		})
	}
	if s.Venues.TotalVenues < minVenues {
		out = append(out, types.Recommendation{
			Category:       "Diversification",
			Priority:       PriorityLow,
			Recommendation: "Explore new journals and conferences to broaden reach",
			Reasoning:      fmt.Sprintf("Publications are concentrated in %d venues", s.Venues.TotalVenues),
		})
	}
	if s.Impact.HIndex >= strongHIndex {
		out = append(out, types.Recommendation{
			Category:       "Strengths",
			Priority:       PriorityInformative,
			Recommendation: "Maintain the current publication quality",
			Reasoning:      fmt.Sprintf("An h-index of %d indicates solid academic impact", s.Impact.HIndex),
		})
	}
	return out
}

// Benchmark positions the snapshot against cfg, falling back to
// DefaultBenchmark when cfg names no career stage.
func Benchmark(s types.MetricsSnapshot, cfg types.BenchmarkConfig) types.BenchmarkComparison {
	if cfg.CareerStage == "" {
		cfg = DefaultBenchmark
	}
	h, cites := s.Impact.HIndex, s.Impact.TotalCitations
	b := types.BenchmarkComparison{
		CareerStage:           cfg.CareerStage,
		HIndex:                h,
		ExpectedHIndex:        fmt.Sprintf("%d-%d", cfg.HIndexMin, cfg.HIndexMax),
		HIndexStatus:          status(h, cfg.HIndexMin, cfg.HIndexMax),
		Citations:             cites,
		ExpectedCitations:     fmt.Sprintf("%d-%d", cfg.CitationsMin, cfg.CitationsMax),
		CitationsStatus:       status(cites, cfg.CitationsMin, cfg.CitationsMax),
		Performance:           PerformanceDeveloping,
		CompetitiveAdvantages: []string{},
	}
	if h >= cfg.HIndexMin && cites >= cfg.CitationsMin {
		b.Performance = PerformanceAboveAverage
	}
	if s.Collaboration.CollaborationRate > advantageRate {
		b.CompetitiveAdvantages = append(b.CompetitiveAdvantages, "High collaboration rate")
	}
	if s.Impact.CitationRate > advantageRate {
		b.CompetitiveAdvantages = append(b.CompetitiveAdvantages, "Strong citation rate")
	}
	if s.Temporal.Trend == types.TrendIncreasing {
		b.CompetitiveAdvantages = append(b.CompetitiveAdvantages, "Growing productivity")
	}
	return b
}

func status(v, lo, hi int) string {
	switch {
	case v < lo:
		return StatusBelow
	case v > hi:
		return StatusAbove
	default:
		return StatusWithin
	}
}
