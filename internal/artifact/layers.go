// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"

	"github.com/marchanero/scholar-engine/internal/analytics"
	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// Layer limits.
const (
	BasicPublicationLimit = 20
	SummaryTopCited       = 5
	SummaryTopVenues      = 5
)

// ReportVersion identifies the executive summary layout.
const ReportVersion = "1.0.0"

type basicDoc struct {
	LastUpdated  string              `json:"lastUpdated"`
	Author       types.AuthorProfile `json:"author"`
	Metrics      types.KeyMetrics    `json:"metrics"`
	Publications []types.Publication `json:"publications"`
}

type detailedDoc struct {
	basicDoc
	AllPublications      []types.Publication             `json:"allPublications"`
	DetailedPublications []normalize.DetailedPublication `json:"detailedPublications"`
	AdvancedMetrics      types.MetricsSnapshot           `json:"advancedMetrics"`
	ScrapingMetadata     scrapingMetadata                `json:"scrapingMetadata"`
}

type scrapingMetadata struct {
	Source            string             `json:"source"`
	Engine            string             `json:"engine"`
	AuthorID          string             `json:"authorId"`
	TotalRequests     int                `json:"totalApiRequests"`
	PagesProcessed    int                `json:"pagesProcessed"`
	ArticlesProcessed int                `json:"articlesProcessed"`
	Completeness      types.Completeness `json:"completeness"`
}

type paginationDoc struct {
	LastUpdated   string                     `json:"lastUpdated"`
	Metrics       types.KeyMetrics           `json:"metrics"`
	Pagination    paginationInfo             `json:"pagination"`
	ByYear        []types.YearStat           `json:"publicationsByYear"`
	Venues        types.VenueMetrics         `json:"venues"`
	Collaboration types.CollaborationMetrics `json:"collaboration"`
	Quality       types.QualityMetrics       `json:"quality"`
	Provenance    Provenance                 `json:"provenance"`
}

type paginationInfo struct {
	TotalPages         int                `json:"totalPages"`
	TotalRequests      int                `json:"totalRequests"`
	MaxRequests        int                `json:"maxRequests"`
	ArticlesPerPage    int                `json:"articlesPerPage"`
	StartOffset        int                `json:"startOffset"`
	TotalPublications  int                `json:"totalPublications"`
	Completeness       types.Completeness `json:"completeness"`
	ContinuationOffset *int               `json:"continuationOffset"`
	StopReason         types.StopReason   `json:"stopReason"`
	Notes              string             `json:"notes"`
}

type summaryDoc struct {
	LastUpdated         string                    `json:"lastUpdated"`
	Metadata            summaryMetadata           `json:"metadata"`
	AuthorProfile       summaryAuthor             `json:"authorProfile"`
	Metrics             types.KeyMetrics          `json:"metrics"`
	Productivity        productivity              `json:"productivityAnalysis"`
	ResearchImpact      researchImpact            `json:"researchImpact"`
	Collaboration       collaborationProfile      `json:"collaborationProfile"`
	PublicationStrategy publicationStrategy       `json:"publicationStrategy"`
	Recommendations     []types.Recommendation    `json:"strategicRecommendations"`
	Benchmark           types.BenchmarkComparison `json:"benchmarkComparison"`
	PaginationSummary   paginationSummary         `json:"paginationSummary"`
}

type summaryMetadata struct {
	GeneratedAt   string `json:"generatedAt"`
	ReportVersion string `json:"reportVersion"`
	DataSource    string `json:"dataSource"`
	ReportType    string `json:"reportType"`
}

type summaryAuthor struct {
	Name        string   `json:"name"`
	Affiliation string   `json:"affiliation"`
	Interests   []string `json:"interests"`
	ScholarID   string   `json:"scholarId"`
}

type productivity struct {
	Trend              types.Trend      `json:"productivityTrend"`
	MostProductiveYear int              `json:"mostProductiveYear"`
	AveragePerYear     float64          `json:"averagePerYear"`
	RecentMean         float64          `json:"recentMean"`
	PriorMean          float64          `json:"priorMean"`
	CareerSpan         int              `json:"careerSpan"`
	RecentYears        []types.YearStat `json:"recentYearsAnalysis"`
}

type researchImpact struct {
	TopPublications     []types.CitedWork          `json:"topPublications"`
	Distribution        []types.DistributionBucket `json:"impactDistribution"`
	Quality             types.QualityMetrics       `json:"impactCategories"`
	RecentHighImpact    []types.CitedWork          `json:"recentHighImpact"`
	FirstAuthor         int                        `json:"firstAuthorPublications"`
	CorrespondingAuthor int                        `json:"correspondingAuthorPublications"`
}

type collaborationProfile struct {
	UniqueCollaborators    int                  `json:"totalUniqueCollaborators"`
	SoloWorks              int                  `json:"singleAuthorPublications"`
	CollaborativeWorks     int                  `json:"multiAuthorPublications"`
	CollaborationRate      float64              `json:"collaborationRate"`
	AverageAuthorsPerPaper float64              `json:"averageAuthorsPerPaper"`
	TopCollaborators       []types.Collaborator `json:"topCollaborators"`
}

type publicationStrategy struct {
	TopVenues   []types.VenueStat      `json:"topVenues"`
	Publishers  []types.PublisherCount `json:"publisherDistribution"`
	Types       []types.TypeCount      `json:"publicationTypes"`
	TotalVenues int                    `json:"venueCount"`
}

type paginationSummary struct {
	TotalPages         int                `json:"totalPages"`
	ArticlesPerPage    int                `json:"articlesPerPage"`
	Completeness       types.Completeness `json:"completeness"`
	ContinuationOffset *int               `json:"continuationOffset"`
}

// layers builds every document of the bundle from one snapshot and one
// precomputed KeyMetrics block, keyed by file name.
func layers(snap Snapshot, stamp string, key types.KeyMetrics) map[string]any {
	sorted := analytics.SortPublications(snap.Publications)
	if sorted == nil {
		sorted = []types.Publication{}
	}
	m := snap.Metrics
	p := snap.Pagination

	basic := basicDoc{
		LastUpdated:  stamp,
		Author:       snap.Author,
		Metrics:      key,
		Publications: sorted[:min(BasicPublicationLimit, len(sorted))],
	}

	detailed := detailedDoc{
		basicDoc:             basic,
		AllPublications:      sorted,
		DetailedPublications: normalize.DetailAll(sorted, m.ReferenceYear),
		AdvancedMetrics:      m,
		ScrapingMetadata: scrapingMetadata{
			Source:            snap.Provenance.Source,
			Engine:            snap.Provenance.Engine,
			AuthorID:          snap.Provenance.AuthorID,
			TotalRequests:     p.RequestCount,
			PagesProcessed:    p.PagesProcessed,
			ArticlesProcessed: len(sorted),
			Completeness:      p.Completeness,
		},
	}

	pagination := paginationDoc{
		LastUpdated: stamp,
		Metrics:     key,
		Pagination: paginationInfo{
			TotalPages:         p.PagesProcessed,
			TotalRequests:      p.RequestCount,
			MaxRequests:        p.MaxRequests,
			ArticlesPerPage:    p.PageSize,
			StartOffset:        p.StartOffset,
			TotalPublications:  len(sorted),
			Completeness:       p.Completeness,
			ContinuationOffset: p.ContinuationOffset,
			StopReason:         p.StopReason,
			Notes:              paginationNotes(p),
		},
		ByYear:        m.Temporal.ByYear,
		Venues:        m.Venues,
		Collaboration: m.Collaboration,
		Quality:       m.Quality,
		Provenance:    snap.Provenance,
	}

	interests := snap.Author.Interests
	if interests == nil {
		interests = []string{}
	}
	summary := summaryDoc{
		LastUpdated: stamp,
		Metadata: summaryMetadata{
			GeneratedAt:   stamp,
			ReportVersion: ReportVersion,
			DataSource:    snap.Provenance.Source,
			ReportType:    "Executive Summary",
		},
		AuthorProfile: summaryAuthor{
			Name:        snap.Author.Name,
			Affiliation: snap.Author.Affiliation,
			Interests:   interests,
			ScholarID:   snap.Author.ScholarID,
		},
		Metrics: key,
		Productivity: productivity{
			Trend:              m.Temporal.Trend,
			MostProductiveYear: m.Temporal.MostProductiveYear,
			AveragePerYear:     m.Temporal.AveragePerYear,
			RecentMean:         m.Temporal.RecentMean,
			PriorMean:          m.Temporal.PriorMean,
			CareerSpan:         m.Temporal.CareerSpan,
			RecentYears:        m.Temporal.RecentWindow,
		},
		ResearchImpact: researchImpact{
			TopPublications:     head(m.TopCited, SummaryTopCited),
			Distribution:        m.Distribution,
			Quality:             m.Quality,
			RecentHighImpact:    m.RecentHighImpact,
			FirstAuthor:         m.Authorship.FirstAuthor,
			CorrespondingAuthor: m.Authorship.CorrespondingAuthor,
		},
		Collaboration: collaborationProfile{
			UniqueCollaborators:    m.Collaboration.UniqueCollaborators,
			SoloWorks:              m.Collaboration.SoloWorks,
			CollaborativeWorks:     m.Collaboration.CollaborativeWorks,
			CollaborationRate:      m.Collaboration.CollaborationRate,
			AverageAuthorsPerPaper: m.Collaboration.AverageAuthorsPerPaper,
			TopCollaborators:       m.Collaboration.TopCollaborators,
		},
		PublicationStrategy: publicationStrategy{
			TopVenues:   head(m.Venues.Ranking, SummaryTopVenues),
			Publishers:  m.Publishers,
			Types:       m.Types,
			TotalVenues: m.Venues.TotalVenues,
		},
		Recommendations: m.Recommendations,
		Benchmark:       m.Benchmark,
		PaginationSummary: paginationSummary{
			TotalPages:         p.PagesProcessed,
			ArticlesPerPage:    p.PageSize,
			Completeness:       p.Completeness,
			ContinuationOffset: p.ContinuationOffset,
		},
	}

	return map[string]any{
		BasicFile:      basic,
		DetailedFile:   detailed,
		PaginationFile: pagination,
		SummaryFile:    summary,
	}
}

func paginationNotes(p types.PaginationState) string {
	if p.IsPartial() && p.ContinuationOffset != nil {
		return fmt.Sprintf("More publications may be available; re-run with --start %d to continue.", *p.ContinuationOffset)
	}
	return "All available publications were retrieved."
}

func head[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	return s[:min(n, len(s))]
}
