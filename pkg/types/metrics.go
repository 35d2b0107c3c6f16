// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Trend classifies the publication rate of the recent window against the
// preceding window.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// MetricsSnapshot is the derived, read-only result of the analytics stage.
// It is recomputed in full on every run from the current publication set.
type MetricsSnapshot struct {
	// ReferenceYear is the year recency windows were anchored to.
	ReferenceYear int `json:"referenceYear" yaml:"referenceYear"`

	Impact           ImpactMetrics        `json:"impact" yaml:"impact"`
	Distribution     []DistributionBucket `json:"citationDistribution" yaml:"citationDistribution"`
	Collaboration    CollaborationMetrics `json:"collaboration" yaml:"collaboration"`
	Temporal         TemporalMetrics      `json:"temporal" yaml:"temporal"`
	Venues           VenueMetrics         `json:"venues" yaml:"venues"`
	Quality          QualityMetrics       `json:"quality" yaml:"quality"`
	Authorship       AuthorshipMetrics    `json:"authorship" yaml:"authorship"`
	Types            []TypeCount          `json:"publicationTypes" yaml:"publicationTypes"`
	TopCited         []CitedWork          `json:"topCited" yaml:"topCited"`
	RecentHighImpact []CitedWork          `json:"recentHighImpact" yaml:"recentHighImpact"`
	Publishers       []PublisherCount     `json:"publishers" yaml:"publishers"`
	Recommendations  []Recommendation     `json:"recommendations" yaml:"recommendations"`
	Benchmark        BenchmarkComparison  `json:"benchmark" yaml:"benchmark"`
}

// ImpactMetrics holds the citation-based impact indices.
type ImpactMetrics struct {
	TotalPublications int     `json:"totalPublications" yaml:"totalPublications"`
	TotalCitations    int     `json:"totalCitations" yaml:"totalCitations"`
	HIndex            int     `json:"hIndex" yaml:"hIndex"`
	I10Index          int     `json:"i10Index" yaml:"i10Index"`
	MeanCitations     float64 `json:"meanCitations" yaml:"meanCitations"`
	MedianCitations   float64 `json:"medianCitations" yaml:"medianCitations"`
	MaxCitations      int     `json:"maxCitations" yaml:"maxCitations"`
	WithCitations     int     `json:"publicationsWithCitations" yaml:"publicationsWithCitations"`
	WithoutCitations  int     `json:"publicationsWithoutCitations" yaml:"publicationsWithoutCitations"`

	// CitationRate is the percentage of publications cited at least once.
	CitationRate float64 `json:"citationRate" yaml:"citationRate"`

	MostCited *CitedWork `json:"mostCited" yaml:"mostCited"`
}

// DistributionBucket counts publications whose citation count falls in
// [Min, Max]. A nil Max means unbounded.
type DistributionBucket struct {
	Label string `json:"label" yaml:"label"`
	Min   int    `json:"min" yaml:"min"`
	Max   *int   `json:"max" yaml:"max"`
	Count int    `json:"count" yaml:"count"`
}

// Collaborator is a co-author other than the subject researcher.
type Collaborator struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// CollaborationPair counts publications on which two collaborators both
// appear. A sorts before B.
type CollaborationPair struct {
	A     string `json:"a" yaml:"a"`
	B     string `json:"b" yaml:"b"`
	Count int    `json:"count" yaml:"count"`
}

// CollaborationMetrics summarizes the co-authorship network.
type CollaborationMetrics struct {
	TotalWorks         int `json:"totalWorks" yaml:"totalWorks"`
	SoloWorks          int `json:"soloWorks" yaml:"soloWorks"`
	CollaborativeWorks int `json:"collaborativeWorks" yaml:"collaborativeWorks"`

	// CollaborationRate is the percentage of works with at least one
	// collaborator. SoloShare is solo works over total works.
	CollaborationRate float64 `json:"collaborationRate" yaml:"collaborationRate"`
	SoloShare         float64 `json:"soloShare" yaml:"soloShare"`

	AverageAuthorsPerPaper float64 `json:"averageAuthorsPerPaper" yaml:"averageAuthorsPerPaper"`
	MaxAuthors             int     `json:"maxAuthors" yaml:"maxAuthors"`
	MinAuthors             int     `json:"minAuthors" yaml:"minAuthors"`

	UniqueCollaborators int                 `json:"uniqueCollaborators" yaml:"uniqueCollaborators"`
	Collaborators       []Collaborator      `json:"collaborators" yaml:"collaborators"`
	TopCollaborators    []Collaborator      `json:"topCollaborators" yaml:"topCollaborators"`
	Pairs               []CollaborationPair `json:"pairs" yaml:"pairs"`
}

// YearStat is the per-year publication and citation count.
type YearStat struct {
	Year         int `json:"year" yaml:"year"`
	Publications int `json:"publications" yaml:"publications"`
	Citations    int `json:"citations" yaml:"citations"`
}

// TemporalMetrics describes productivity over time.
type TemporalMetrics struct {
	ByYear              []YearStat `json:"byYear" yaml:"byYear"`
	FirstYear           int        `json:"firstYear" yaml:"firstYear"`
	LastYear            int        `json:"lastYear" yaml:"lastYear"`
	CareerSpan          int        `json:"careerSpan" yaml:"careerSpan"`
	ActiveYears         int        `json:"activeYears" yaml:"activeYears"`
	AveragePerYear      float64    `json:"averagePerYear" yaml:"averagePerYear"`
	MostProductiveYear  int        `json:"mostProductiveYear" yaml:"mostProductiveYear"`
	RecentMean          float64    `json:"recentMean" yaml:"recentMean"`
	PriorMean           float64    `json:"priorMean" yaml:"priorMean"`
	Trend               Trend      `json:"trend" yaml:"trend"`
	RecentWindow        []YearStat `json:"recentWindow" yaml:"recentWindow"`
	UndatedPublications int        `json:"undatedPublications" yaml:"undatedPublications"`
}

// VenueStat aggregates publications sharing one venue string.
type VenueStat struct {
	Venue          string          `json:"venue" yaml:"venue"`
	Type           PublicationType `json:"type" yaml:"type"`
	Count          int             `json:"count" yaml:"count"`
	TotalCitations int             `json:"totalCitations" yaml:"totalCitations"`
	MeanCitations  float64         `json:"meanCitations" yaml:"meanCitations"`
}

// VenueMetrics ranks venues by publication count.
type VenueMetrics struct {
	TotalVenues int         `json:"totalVenues" yaml:"totalVenues"`
	Ranking     []VenueStat `json:"ranking" yaml:"ranking"`
}

// QualityMetrics holds quality-tier and impact-category counts.
type QualityMetrics struct {
	HighImpact       int `json:"highImpact" yaml:"highImpact"`
	MediumImpact     int `json:"mediumImpact" yaml:"mediumImpact"`
	RecentHighImpact int `json:"recentHighImpact" yaml:"recentHighImpact"`

	HighlyCited int `json:"highlyCited" yaml:"highlyCited"`
	WellCited   int `json:"wellCited" yaml:"wellCited"`
	Cited       int `json:"cited" yaml:"cited"`
	Uncited     int `json:"uncited" yaml:"uncited"`
}

// AuthorshipMetrics counts the subject researcher's authorship roles.
type AuthorshipMetrics struct {
	FirstAuthor         int     `json:"firstAuthor" yaml:"firstAuthor"`
	CorrespondingAuthor int     `json:"correspondingAuthor" yaml:"correspondingAuthor"`
	FirstAuthorRate     float64 `json:"firstAuthorRate" yaml:"firstAuthorRate"`
}

// TypeCount counts publications of one type.
type TypeCount struct {
	Type  PublicationType `json:"type" yaml:"type"`
	Count int             `json:"count" yaml:"count"`
}

// CitedWork is a publication reference in ranked lists.
type CitedWork struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Year      *int   `json:"year" yaml:"year"`
	Venue     string `json:"venue" yaml:"venue"`
	Citations int    `json:"citations" yaml:"citations"`

	// CitationShare is the work's percentage of total citations.
	CitationShare float64 `json:"citationShare" yaml:"citationShare"`
}

// PublisherCount counts publications attributed to one publisher.
type PublisherCount struct {
	Publisher string `json:"publisher" yaml:"publisher"`
	Count     int    `json:"count" yaml:"count"`
}

// Recommendation is one strategic suggestion in the executive summary.
type Recommendation struct {
	Category       string `json:"category" yaml:"category"`
	Priority       string `json:"priority" yaml:"priority"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
	Reasoning      string `json:"reasoning" yaml:"reasoning"`
}

// BenchmarkComparison positions the researcher against a configured
// career-stage reference. Status values are "below", "within", "above".
type BenchmarkComparison struct {
	CareerStage       string `json:"careerStage" yaml:"careerStage"`
	HIndex            int    `json:"hIndex" yaml:"hIndex"`
	ExpectedHIndex    string `json:"expectedHIndex" yaml:"expectedHIndex"`
	HIndexStatus      string `json:"hIndexStatus" yaml:"hIndexStatus"`
	Citations         int    `json:"citations" yaml:"citations"`
	ExpectedCitations string `json:"expectedCitations" yaml:"expectedCitations"`
	CitationsStatus   string `json:"citationsStatus" yaml:"citationsStatus"`

	// Performance is "above_average" when both minimums are met, else
	// "developing".
	Performance           string   `json:"performance" yaml:"performance"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages" yaml:"competitiveAdvantages"`
}

// KeyMetrics is the numeric block embedded verbatim in every artifact layer.
// It is built once per bundle with NewKeyMetrics.
type KeyMetrics struct {
	TotalPublications int     `json:"totalPublications" yaml:"totalPublications"`
	TotalCitations    int     `json:"totalCitations" yaml:"totalCitations"`
	HIndex            int     `json:"hIndex" yaml:"hIndex"`
	I10Index          int     `json:"i10Index" yaml:"i10Index"`
	MeanCitations     float64 `json:"meanCitations" yaml:"meanCitations"`
	CitationsRecent   int     `json:"citationsRecent" yaml:"citationsRecent"`
	HIndexRecent      int     `json:"hIndexRecent" yaml:"hIndexRecent"`
	I10IndexRecent    int     `json:"i10IndexRecent" yaml:"i10IndexRecent"`
	RecentSince       int     `json:"recentSince,omitempty" yaml:"recentSince,omitempty"`
}

// NewKeyMetrics combines computed totals with the provider's recent-window
// values.
func NewKeyMetrics(m MetricsSnapshot, reported ReportedMetrics) KeyMetrics {
	return KeyMetrics{
		TotalPublications: m.Impact.TotalPublications,
		TotalCitations:    m.Impact.TotalCitations,
		HIndex:            m.Impact.HIndex,
		I10Index:          m.Impact.I10Index,
		MeanCitations:     m.Impact.MeanCitations,
		CitationsRecent:   reported.CitationsRecent,
		HIndexRecent:      reported.HIndexRecent,
		I10IndexRecent:    reported.I10IndexRecent,
		RecentSince:       reported.RecentSince,
	}
}

// ArtifactBundle describes one published set of artifact files.
type ArtifactBundle struct {
	Dir         string          `json:"dir" yaml:"dir"`
	Files       []string        `json:"files" yaml:"files"`
	GeneratedAt string          `json:"generatedAt" yaml:"generatedAt"`
	Metrics     KeyMetrics      `json:"metrics" yaml:"metrics"`
	Pagination  PaginationState `json:"pagination" yaml:"pagination"`
}
