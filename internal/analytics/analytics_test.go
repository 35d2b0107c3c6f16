// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchanero/scholar-engine/pkg/types"
)

func year(y int) *int { return &y }

func pub(id string, cites int, y *int, authors ...string) types.Publication {
	return types.Publication{ID: id, Title: "Title " + id, CitedBy: cites, Year: y, Authors: authors, Type: types.TypeArticle}
}

func pubsWithCounts(counts ...int) []types.Publication {
	pubs := make([]types.Publication, len(counts))
	for i, c := range counts {
		pubs[i] = pub(string(rune('a'+i)), c, year(2020))
	}
	return pubs
}

func TestHIndex(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"descending", []int{10, 8, 5, 4, 3}, 4},
		{"capped by rank", []int{25, 8, 5, 3, 3}, 4},
		{"all zero", []int{0, 0, 0}, 0},
		{"empty", nil, 0},
		{"unsorted", []int{3, 0, 6, 1, 5}, 3},
		{"all high", []int{100, 100}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HIndex(tt.counts))
		})
	}
}

func TestHIndexDoesNotMutateInput(t *testing.T) {
	counts := []int{1, 5, 3}
	HIndex(counts)
	assert.Equal(t, []int{1, 5, 3}, counts)
}

func TestI10Index(t *testing.T) {
	assert.Equal(t, 3, I10Index([]int{12, 10, 9, 30}))
	assert.Equal(t, 0, I10Index(nil))
}

func TestImpact(t *testing.T) {
	m := Impact(pubsWithCounts(10, 0, 5, 1))

	assert.Equal(t, 4, m.TotalPublications)
	assert.Equal(t, 16, m.TotalCitations)
	assert.Equal(t, 2, m.HIndex)
	assert.Equal(t, 1, m.I10Index)
	assert.Equal(t, 4.0, m.MeanCitations)
	assert.Equal(t, 3.0, m.MedianCitations)
	assert.Equal(t, 10, m.MaxCitations)
	assert.Equal(t, 3, m.WithCitations)
	assert.Equal(t, 1, m.WithoutCitations)
	assert.Equal(t, 75.0, m.CitationRate)
	require.NotNil(t, m.MostCited)
	assert.Equal(t, "a", m.MostCited.ID)
	assert.Equal(t, 62.5, m.MostCited.CitationShare)
}

func TestImpactEmpty(t *testing.T) {
	m := Impact(nil)
	assert.Zero(t, m.TotalPublications)
	assert.Zero(t, m.MeanCitations)
	assert.Nil(t, m.MostCited)
}

func TestImpactIndicesBoundedByPublicationCount(t *testing.T) {
	m := Impact(pubsWithCounts(500, 400, 300))
	assert.LessOrEqual(t, m.HIndex, m.TotalPublications)
	assert.LessOrEqual(t, m.I10Index, m.TotalPublications)
}

func TestDistribution(t *testing.T) {
	buckets := Distribution(pubsWithCounts(0, 3, 7, 20, 30, 60, 200, 5))
	require.Len(t, buckets, 7)

	labels := make([]string, len(buckets))
	counts := make([]int, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
		counts[i] = b.Count
	}
	assert.Equal(t, []string{"0", "1-5", "6-10", "11-25", "26-50", "51-100", ">100"}, labels)
	assert.Equal(t, []int{1, 2, 1, 1, 1, 1, 1}, counts)

	require.NotNil(t, buckets[1].Max)
	assert.Equal(t, 5, *buckets[1].Max)
	assert.Nil(t, buckets[6].Max)
}

func TestCollaborationExample(t *testing.T) {
	pubs := []types.Publication{
		pub("p1", 0, year(2020), "A", "B"),
		pub("p2", 0, year(2021), "A", "C", "B"),
	}
	m := Collaboration(pubs, []string{"A"}, 10)

	assert.Equal(t, 2, m.UniqueCollaborators)
	assert.Equal(t, 1, PairCount(m, "B", "C"))
	assert.Equal(t, 1, PairCount(m, "C", "B"))
	assert.Equal(t, 0, PairCount(m, "A", "B"))
	assert.Equal(t, []types.Collaborator{{Name: "B", Count: 2}, {Name: "C", Count: 1}}, m.Collaborators)
	assert.Equal(t, 2, m.CollaborativeWorks)
	assert.Equal(t, 0, m.SoloWorks)
	assert.Equal(t, 100.0, m.CollaborationRate)
	assert.Equal(t, 2.5, m.AverageAuthorsPerPaper)
	assert.Equal(t, 3, m.MaxAuthors)
	assert.Equal(t, 2, m.MinAuthors)
}

func TestCollaborationSoloAndDuplicates(t *testing.T) {
	pubs := []types.Publication{
		pub("p1", 0, nil, "R Smith"),
		pub("p2", 0, nil, "R Smith", "J Doe", "J Doe"),
		pub("p3", 0, nil, "Robert Smith", "K Lee"),
	}
	m := Collaboration(pubs, []string{"Smith"}, 1)

	assert.Equal(t, 1, m.SoloWorks)
	assert.Equal(t, 2, m.CollaborativeWorks)
	assert.Equal(t, 0.3333, m.SoloShare)
	assert.Equal(t, 2, m.UniqueCollaborators)
	assert.Equal(t, []types.Collaborator{{Name: "J Doe", Count: 1}}, m.TopCollaborators)
	assert.Empty(t, m.Pairs)
}

func TestCollaborationEmpty(t *testing.T) {
	m := Collaboration(nil, []string{"A"}, 10)
	assert.NotNil(t, m.Collaborators)
	assert.NotNil(t, m.Pairs)
	assert.Zero(t, m.CollaborationRate)
}

func countsPerYear(perYear map[int]int) []types.Publication {
	var pubs []types.Publication
	n := 0
	for y, c := range perYear {
		for j := 0; j < c; j++ {
			n++
			pubs = append(pubs, pub(string(rune('a'+n)), 1, year(y)))
		}
	}
	return pubs
}

func TestTemporalTrend(t *testing.T) {
	tests := []struct {
		name    string
		perYear map[int]int
		want    types.Trend
	}{
		{
			name:    "increasing",
			perYear: map[int]int{2015: 1, 2016: 1, 2017: 1, 2018: 1, 2019: 1, 2020: 2, 2021: 2, 2022: 2, 2023: 2, 2024: 2},
			want:    types.TrendIncreasing,
		},
		{
			name:    "decreasing",
			perYear: map[int]int{2015: 3, 2016: 3, 2017: 3, 2018: 3, 2019: 3, 2020: 1, 2021: 1, 2022: 1, 2023: 1, 2024: 1},
			want:    types.TrendDecreasing,
		},
		{
			name:    "stable within band",
			perYear: map[int]int{2018: 2, 2019: 2, 2020: 2, 2021: 2, 2022: 2, 2023: 2},
			want:    types.TrendStable,
		},
		{
			name:    "no prior window",
			perYear: map[int]int{2022: 1, 2024: 5},
			want:    types.TrendStable,
		},
		{
			name:    "single year",
			perYear: map[int]int{2024: 4},
			want:    types.TrendInsufficientData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Temporal(countsPerYear(tt.perYear), 2024)
			assert.Equal(t, tt.want, m.Trend)
		})
	}
}

func TestTemporalStatistics(t *testing.T) {
	pubs := []types.Publication{
		pub("a", 3, year(2018)),
		pub("b", 5, year(2020)),
		pub("c", 1, year(2020)),
		pub("d", 0, year(2022)),
		pub("e", 2, year(2022)),
		pub("f", 9, nil),
	}
	m := Temporal(pubs, 2023)

	assert.Equal(t, []types.YearStat{
		{Year: 2018, Publications: 1, Citations: 3},
		{Year: 2020, Publications: 2, Citations: 6},
		{Year: 2022, Publications: 2, Citations: 2},
	}, m.ByYear)
	assert.Equal(t, 2018, m.FirstYear)
	assert.Equal(t, 2022, m.LastYear)
	assert.Equal(t, 5, m.CareerSpan)
	assert.Equal(t, 3, m.ActiveYears)
	assert.Equal(t, 1.0, m.AveragePerYear)
	assert.Equal(t, 2022, m.MostProductiveYear, "ties go to the later year")
	assert.Equal(t, 1, m.UndatedPublications)

	require.Len(t, m.RecentWindow, 5)
	assert.Equal(t, types.YearStat{Year: 2019}, m.RecentWindow[0])
	assert.Equal(t, 2, m.RecentWindow[1].Publications)
	assert.Equal(t, types.YearStat{Year: 2023}, m.RecentWindow[4])
}

func TestTemporalEmpty(t *testing.T) {
	m := Temporal(nil, 0)
	assert.Equal(t, types.TrendInsufficientData, m.Trend)
	assert.NotNil(t, m.ByYear)
	assert.Empty(t, m.RecentWindow)
}

func TestVenuesRanking(t *testing.T) {
	pubs := []types.Publication{
		{ID: "1", Venue: "Sensors", CitedBy: 4},
		{ID: "2", Venue: "Sensors ", CitedBy: 2},
		{ID: "3", Venue: "IEEE Access", CitedBy: 10},
		{ID: "4", Venue: "Applied Sciences", CitedBy: 10},
		{ID: "5", Venue: "", CitedBy: 1},
	}
	m := Venues(pubs)

	require.Equal(t, 4, m.TotalVenues)
	got := make([]string, len(m.Ranking))
	for i, v := range m.Ranking {
		got[i] = v.Venue
	}
	assert.Equal(t, []string{"Sensors", "Applied Sciences", "IEEE Access", UnknownVenue}, got)
	assert.Equal(t, 3.0, m.Ranking[0].MeanCitations)
	assert.Equal(t, types.TypeJournal, m.Ranking[2].Type)
}

func TestQualityTiers(t *testing.T) {
	pubs := []types.Publication{
		pub("a", 60, year(2023)),
		pub("b", 50, year(2010)),
		pub("c", 20, year(2019)),
		pub("d", 10, year(2024)),
		pub("e", 5, year(2024)),
		pub("f", 0, nil),
		pub("g", 30, nil),
	}
	q := Quality(pubs, 2024)

	assert.Equal(t, 2, q.HighImpact)
	assert.Equal(t, 3, q.MediumImpact)
	assert.Equal(t, 2, q.RecentHighImpact, "a (2023) and c (2019) qualify; g is undated")
	assert.Equal(t, 3, q.HighlyCited)
	assert.Equal(t, 2, q.WellCited)
	assert.Equal(t, 1, q.Cited)
	assert.Equal(t, 1, q.Uncited)
}

func TestTopCited(t *testing.T) {
	pubs := []types.Publication{
		pub("b", 10, year(2020)),
		pub("a", 10, year(2021)),
		pub("c", 20, nil),
		pub("d", 0, nil),
	}
	top := TopCited(pubs, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "c", top[0].ID)
	assert.Equal(t, "a", top[1].ID, "equal counts break ties by ID")
	assert.Equal(t, "b", top[2].ID)
	assert.Equal(t, 50.0, top[0].CitationShare)

	assert.Len(t, TopCited(pubs, 10), 4)
	assert.Empty(t, TopCited(nil, 10))
}

func TestRecentHighImpact(t *testing.T) {
	pubs := []types.Publication{
		pub("old", 100, year(2010)),
		pub("new", 25, year(2022)),
		pub("newer", 40, year(2024)),
		pub("low", 5, year(2024)),
	}
	got := RecentHighImpact(pubs, 2024, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].ID)
	assert.Equal(t, "new", got[1].ID)

	assert.Len(t, RecentHighImpact(pubs, 2024, 1), 1)
}

func TestAuthorship(t *testing.T) {
	pubs := []types.Publication{
		{ID: "1", IsFirstAuthor: true, IsCorrespondingAuthor: true},
		{ID: "2", IsFirstAuthor: true},
		{ID: "3"},
		{ID: "4", IsCorrespondingAuthor: true},
	}
	a := Authorship(pubs)
	assert.Equal(t, 2, a.FirstAuthor)
	assert.Equal(t, 2, a.CorrespondingAuthor)
	assert.Equal(t, 50.0, a.FirstAuthorRate)
}

func TestTypeCountsListsEveryType(t *testing.T) {
	pubs := []types.Publication{
		{ID: "1", Type: types.TypeJournal},
		{ID: "2", Type: types.TypeJournal},
		{ID: "3", Type: types.TypeThesis},
	}
	assert.Equal(t, []types.TypeCount{
		{Type: types.TypeJournal, Count: 2},
		{Type: types.TypeConference, Count: 0},
		{Type: types.TypeBook, Count: 0},
		{Type: types.TypeThesis, Count: 1},
		{Type: types.TypeArticle, Count: 0},
	}, TypeCounts(pubs))
}

func TestPublishers(t *testing.T) {
	pubs := []types.Publication{
		{ID: "1", Venue: "IEEE Transactions on Affective Computing"},
		{ID: "2", Venue: "Sensors (MDPI)"},
		{ID: "3", Venue: "ieee access"},
		{ID: "4", Venue: "Journal of Things"},
	}
	assert.Equal(t, []types.PublisherCount{
		{Publisher: "IEEE", Count: 2},
		{Publisher: "MDPI", Count: 1},
	}, Publishers(pubs))
	assert.Empty(t, Publishers(nil))
}

func TestRecommendations(t *testing.T) {
	var s types.MetricsSnapshot
	s.Temporal.Trend = types.TrendDecreasing
	s.Collaboration.CollaborationRate = 50
	s.Impact.CitationRate = 60
	s.Venues.TotalVenues = 5
	s.Impact.HIndex = 12

	recs := Recommendations(s)
	require.Len(t, recs, 5)
	priorities := make([]string, len(recs))
	for i, r := range recs {
		priorities[i] = r.Priority
	}
	assert.Equal(t, []string{PriorityHigh, PriorityMedium, PriorityMedium, PriorityLow, PriorityInformative}, priorities)
	assert.Contains(t, recs[2].Reasoning, "40.00%")

	var healthy types.MetricsSnapshot
	healthy.Temporal.Trend = types.TrendStable
	healthy.Collaboration.CollaborationRate = 95
	healthy.Impact.CitationRate = 90
	healthy.Venues.TotalVenues = 30
	assert.Empty(t, Recommendations(healthy))
}

func TestBenchmark(t *testing.T) {
	var s types.MetricsSnapshot
	s.Impact.HIndex = 12
	s.Impact.TotalCitations = 900
	s.Impact.CitationRate = 85
	s.Collaboration.CollaborationRate = 60
	s.Temporal.Trend = types.TrendIncreasing

	b := Benchmark(s, types.BenchmarkConfig{})
	assert.Equal(t, DefaultBenchmark.CareerStage, b.CareerStage)
	assert.Equal(t, "10-15", b.ExpectedHIndex)
	assert.Equal(t, StatusWithin, b.HIndexStatus)
	assert.Equal(t, StatusAbove, b.CitationsStatus)
	assert.Equal(t, PerformanceAboveAverage, b.Performance)
	assert.Equal(t, []string{"Strong citation rate", "Growing productivity"}, b.CompetitiveAdvantages)

	custom := types.BenchmarkConfig{CareerStage: "Full Professor", HIndexMin: 25, HIndexMax: 40, CitationsMin: 2000, CitationsMax: 5000}
	b = Benchmark(s, custom)
	assert.Equal(t, StatusBelow, b.HIndexStatus)
	assert.Equal(t, PerformanceDeveloping, b.Performance)
}

func TestReferenceYear(t *testing.T) {
	pubs := []types.Publication{pub("a", 0, year(2019)), pub("b", 0, nil), pub("c", 0, year(2023))}
	assert.Equal(t, 2023, ReferenceYear(pubs, 0))
	assert.Equal(t, 2030, ReferenceYear(pubs, 2030))
	assert.Equal(t, 0, ReferenceYear(nil, 0))
}

func TestSortPublications(t *testing.T) {
	pubs := []types.Publication{
		pub("undated", 99, nil),
		pub("old", 1, year(2019)),
		pub("new-low", 1, year(2024)),
		pub("new-high", 5, year(2024)),
	}
	got := SortPublications(pubs)
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"new-high", "new-low", "old", "undated"}, ids)
	assert.Equal(t, "undated", pubs[0].ID, "input is not reordered")
}

func TestAnalyzeDeterministic(t *testing.T) {
	pubs := []types.Publication{
		pub("p1", 12, year(2021), "A Smith", "B Jones"),
		pub("p2", 12, year(2022), "C Wu", "A Smith", "B Jones"),
		pub("p3", 0, nil, "A Smith"),
		pub("p4", 55, year(2018), "B Jones", "C Wu"),
	}
	pubs[1].Venue = "IEEE Access"
	cfg := types.AnalyticsConfig{Aliases: []string{"Smith"}}

	first := Analyze(pubs, cfg)
	second := Analyze(pubs, cfg)
	assert.Equal(t, first, second)

	assert.Equal(t, 2022, first.ReferenceYear)
	assert.Equal(t, 3, first.Impact.HIndex)
	assert.Equal(t, 2, PairCount(first.Collaboration, "B Jones", "C Wu"))
	assert.Equal(t, 2, first.Collaboration.UniqueCollaborators)
	assert.Len(t, first.Types, 5)
	assert.NotNil(t, first.Recommendations)
	assert.Equal(t, DefaultBenchmark.CareerStage, first.Benchmark.CareerStage)
}
