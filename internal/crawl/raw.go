// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// RawResponse is one google_scholar_author result page.
type RawResponse struct {
	SearchMetadata RawSearchMetadata `json:"search_metadata"`
	Error          string            `json:"error"`
	Author         *RawAuthor        `json:"author"`
	CitedBy        *RawCitedByTable  `json:"cited_by"`
	Articles       []RawArticle      `json:"articles"`
	Pagination     *RawPagination    `json:"serpapi_pagination"`
}

// RawSearchMetadata carries the provider's processing status.
type RawSearchMetadata struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RawAuthor is the profile block of the first page.
type RawAuthor struct {
	Name         string        `json:"name"`
	Affiliations string        `json:"affiliations"`
	Email        string        `json:"email"`
	Website      string        `json:"website"`
	Interests    []RawInterest `json:"interests"`
}

// RawInterest is one research-interest tag.
type RawInterest struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// RawCitedByTable is the provider's citation table and per-year graph. Each
// table row holds one metric keyed by name ("citations", "h_index",
// "i10_index") mapping "all" and "since_YYYY" to values.
type RawCitedByTable struct {
	Table []map[string]map[string]int `json:"table"`
	Graph []RawGraphPoint             `json:"graph"`
}

// RawGraphPoint is one year of the citation histogram.
type RawGraphPoint struct {
	Year      int `json:"year"`
	Citations int `json:"citations"`
}

// Metric returns the all-time and recent values of the named table row and
// the year the recent window starts. Missing rows yield zeros.
func (t RawCitedByTable) Metric(name string) (all, recent, since int) {
	for _, row := range t.Table {
		values, ok := row[name]
		if !ok {
			continue
		}
		all = values["all"]
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if y, found := strings.CutPrefix(k, "since_"); found {
				recent = values[k]
				since, _ = strconv.Atoi(y)
			}
		}
		return all, recent, since
	}
	return 0, 0, 0
}

// RawArticle is one article entry as returned by the provider. Validation
// tags are enforced by the normalizer.
type RawArticle struct {
	Title       string     `json:"title" validate:"required"`
	Link        string     `json:"link" validate:"omitempty,url"`
	CitationID  string     `json:"citation_id"`
	Authors     string     `json:"authors"`
	Publication string     `json:"publication"`
	CitedBy     RawCitedBy `json:"cited_by"`
	Year        FlexString `json:"year"`
}

// RawCitedBy is the per-article citation count.
type RawCitedBy struct {
	Value   *int   `json:"value" validate:"omitempty,gte=0"`
	Link    string `json:"link" validate:"omitempty,url"`
	CitesID string `json:"cites_id"`
}

// RawPagination is the provider's next-page cursor.
type RawPagination struct {
	Next string `json:"next"`
}

// HasNext reports whether the cursor points at another page.
func (p *RawPagination) HasNext() bool {
	return p != nil && p.Next != ""
}

// FlexString decodes a JSON string, number, or null into a string. The
// provider is inconsistent about the type of the year field.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
