// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-engine pipeline.
// Implements: crawler output (AuthorProfile, PaginationState);
//
//	normalizer output (Publication);
//	analytics output (MetricsSnapshot);
//	stage configuration (PipelineConfig).
//
// See DESIGN.md § Data Model.
package types

// PublicationType classifies the venue a publication appeared in.
type PublicationType string

const (
	TypeJournal    PublicationType = "journal"
	TypeConference PublicationType = "conference"
	TypeBook       PublicationType = "book"
	TypeThesis     PublicationType = "thesis"
	TypeArticle    PublicationType = "article"
)

// Publication is the canonical record produced by the normalizer. It is
// never mutated after creation within a run.
type Publication struct {
	// ID is the upstream citation identifier, or "pub_N" (N = absolute
	// position in the crawl) when the upstream record carries none.
	ID string `json:"id" yaml:"id"`

	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the parsed author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the raw venue string (journal, proceedings, book, thesis).
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year, nil when absent or unparseable.
	Year *int `json:"year" yaml:"year"`

	// CitedBy is the upstream citation count, never negative.
	CitedBy int `json:"citedBy" yaml:"citedBy"`

	// Type is the venue classification.
	Type PublicationType `json:"type" yaml:"type"`

	// IsFirstAuthor reports whether the subject researcher is listed first.
	IsFirstAuthor bool `json:"isFirstAuthor" yaml:"isFirstAuthor"`

	// IsCorrespondingAuthor reports whether the raw author string carries
	// the corresponding-author marker.
	IsCorrespondingAuthor bool `json:"isCorrespondingAuthor" yaml:"isCorrespondingAuthor"`

	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
	CitedByLink string `json:"citedByLink,omitempty" yaml:"citedByLink,omitempty"`
	CitationID  string `json:"citationId,omitempty" yaml:"citationId,omitempty"`

	// Incomplete marks a fallback record built from a raw article that
	// failed validation.
	Incomplete bool `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

// YearValue returns the publication year and whether it is known.
func (p Publication) YearValue() (int, bool) {
	if p.Year == nil {
		return 0, false
	}
	return *p.Year, true
}

// AuthorProfile describes the subject researcher. It is built once from the
// first successful crawl page and passed by value between stages.
type AuthorProfile struct {
	Name        string   `json:"name" yaml:"name"`
	Affiliation string   `json:"affiliation" yaml:"affiliation"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	Interests   []string `json:"interests" yaml:"interests"`
	Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	ScholarID   string   `json:"scholarId" yaml:"scholarId"`

	// Aliases are the identity strings matched (case-insensitive substring)
	// against author names to recognise the subject researcher.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Reported holds the provider's own citation table.
	Reported ReportedMetrics `json:"reportedMetrics" yaml:"reportedMetrics"`

	// CitationGraph is the provider's per-year citation histogram.
	CitationGraph []YearCount `json:"citationGraph,omitempty" yaml:"citationGraph,omitempty"`
}

// ReportedMetrics is the upstream citation table: all-time values and the
// recent-window values (window start year in RecentSince).
type ReportedMetrics struct {
	Citations       int `json:"citations" yaml:"citations"`
	CitationsRecent int `json:"citationsRecent" yaml:"citationsRecent"`
	HIndex          int `json:"hIndex" yaml:"hIndex"`
	HIndexRecent    int `json:"hIndexRecent" yaml:"hIndexRecent"`
	I10Index        int `json:"i10Index" yaml:"i10Index"`
	I10IndexRecent  int `json:"i10IndexRecent" yaml:"i10IndexRecent"`
	RecentSince     int `json:"recentSince,omitempty" yaml:"recentSince,omitempty"`
}

// YearCount pairs a year with a count.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`
}
