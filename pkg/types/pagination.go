// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Completeness reports whether a crawl read every available page.
type Completeness string

const (
	CompletenessComplete Completeness = "complete"
	CompletenessPartial  Completeness = "partial"
)

// StopReason records which termination condition ended the crawl loop.
type StopReason string

const (
	StopEmptyPage       StopReason = "empty_page"
	StopShortPage       StopReason = "short_page"
	StopNoNextPage      StopReason = "no_next_page"
	StopRequestBudget   StopReason = "request_budget"
	StopQuotaExhausted  StopReason = "quota_exhausted"
	StopMalformedPage   StopReason = "malformed_page"
	StopTransientError  StopReason = "transient_error"
	StopRequestRejected StopReason = "request_rejected"
)

// PaginationState is owned by the crawler and persisted into provenance
// metadata. A partial crawl carries the offset a later invocation must be
// given to continue; there is no automatic resumption.
type PaginationState struct {
	StartOffset        int          `json:"startOffset" yaml:"startOffset"`
	PageSize           int          `json:"pageSize" yaml:"pageSize"`
	SortOrder          string       `json:"sortOrder" yaml:"sortOrder"`
	MaxRequests        int          `json:"maxRequests" yaml:"maxRequests"`
	RequestCount       int          `json:"requestCount" yaml:"requestCount"`
	PagesProcessed     int          `json:"pagesProcessed" yaml:"pagesProcessed"`
	Completeness       Completeness `json:"completeness" yaml:"completeness"`
	ContinuationOffset *int         `json:"continuationOffset" yaml:"continuationOffset"`
	StopReason         StopReason   `json:"stopReason" yaml:"stopReason"`
}

// IsPartial reports whether more data is believed to be available.
func (s PaginationState) IsPartial() bool {
	return s.Completeness == CompletenessPartial
}

// MarkPartial sets completeness to partial with the given continuation offset.
func (s *PaginationState) MarkPartial(reason StopReason, next int) {
	s.Completeness = CompletenessPartial
	s.StopReason = reason
	s.ContinuationOffset = &next
}

// MarkComplete sets completeness to complete and clears the continuation offset.
func (s *PaginationState) MarkComplete(reason StopReason) {
	s.Completeness = CompletenessComplete
	s.StopReason = reason
	s.ContinuationOffset = nil
}
