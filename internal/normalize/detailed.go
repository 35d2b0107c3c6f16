// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// Estimated impact levels by citations per year of age.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// DetailedPublication is a Publication enriched with metadata extracted
// from its venue string and link, plus preformatted citations.
type DetailedPublication struct {
	types.Publication `yaml:",inline"`

	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// YearHint is a year found in the title. It is never promoted to Year.
	YearHint *int `json:"yearHint,omitempty" yaml:"yearHint,omitempty"`

	AuthorCount       int    `json:"authorCount" yaml:"authorCount"`
	HasCoAuthors      bool   `json:"hasCoAuthors" yaml:"hasCoAuthors"`
	IsJournalPaper    bool   `json:"isJournalPaper" yaml:"isJournalPaper"`
	IsConferencePaper bool   `json:"isConferencePaper" yaml:"isConferencePaper"`
	EstimatedImpact   string `json:"estimatedImpact" yaml:"estimatedImpact"`

	CitationFormats CitationFormats `json:"citationFormats" yaml:"citationFormats"`
}

// CitationFormats holds one publication rendered in common styles.
type CitationFormats struct {
	BibTeX  string `json:"bibtex" yaml:"bibtex"`
	APA     string `json:"apa" yaml:"apa"`
	MLA     string `json:"mla" yaml:"mla"`
	Chicago string `json:"chicago" yaml:"chicago"`
}

// Detail enriches pub. referenceYear anchors the impact estimate so output
// does not depend on the wall clock.
func Detail(pub types.Publication, referenceYear int) DetailedPublication {
	d := DetailedPublication{
		Publication:       pub,
		AuthorCount:       len(pub.Authors),
		HasCoAuthors:      len(pub.Authors) > 1,
		IsJournalPaper:    IsJournalVenue(pub.Venue),
		IsConferencePaper: IsConferenceVenue(pub.Venue),
		EstimatedImpact:   EstimateImpact(pub.CitedBy, pub.Year, referenceYear),
	}
	if doi, ok := ExtractDOI(pub.Link); ok {
		d.DOI = doi
	} else if doi, ok := ExtractDOI(pub.Venue); ok {
		d.DOI = doi
	}
	d.Volume, _ = ExtractVolume(pub.Venue)
	d.Issue, _ = ExtractIssue(pub.Venue)
	d.Pages, _ = ExtractPages(pub.Venue)
	if y, ok := ExtractYearHint(pub.Title); ok {
		d.YearHint = &y
	}
	d.CitationFormats = FormatCitations(pub, d.Volume, d.Issue, d.Pages, d.DOI)
	return d
}

// DetailAll enriches every publication in order.
func DetailAll(pubs []types.Publication, referenceYear int) []DetailedPublication {
	out := make([]DetailedPublication, len(pubs))
	for i, p := range pubs {
		out[i] = Detail(p, referenceYear)
	}
	return out
}

// EstimateImpact classifies citations per year since publication. Works
// with an unknown year, or from the reference year itself, count as one
// year old.
func EstimateImpact(citations int, year *int, referenceYear int) string {
	age := 1
	if year != nil && referenceYear-*year > 1 {
		age = referenceYear - *year
	}
	perYear := float64(citations) / float64(age)
	switch {
	case perYear >= 10:
		return ImpactHigh
	case perYear >= 3:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// FormatCitations renders pub as BibTeX, APA, MLA, and Chicago
// (author-date). Unknown years render as "n.d.".
func FormatCitations(pub types.Publication, volume, issue, pages, doi string) CitationFormats {
	year := "n.d."
	if pub.Year != nil {
		year = strconv.Itoa(*pub.Year)
	}
	authors := strings.Join(pub.Authors, ", ")
	if authors == "" {
		authors = "Unknown Author"
	}
	venue := pub.Venue
	if venue == "" {
		venue = "Unknown Venue"
	}

	return CitationFormats{
		BibTeX:  bibTeX(pub, year, volume, issue, pages, doi),
		APA:     fmt.Sprintf("%s (%s). %s. %s.", authors, year, pub.Title, venue),
		MLA:     fmt.Sprintf("%s. \"%s.\" %s (%s).", authors, pub.Title, venue, year),
		Chicago: fmt.Sprintf("%s. %s. \"%s.\" %s.", authors, year, pub.Title, venue),
	}
}

func bibTeX(pub types.Publication, year, volume, issue, pages, doi string) string {
	entry, venueField := "article", "journal"
	switch pub.Type {
	case types.TypeConference:
		entry, venueField = "inproceedings", "booktitle"
	case types.TypeBook:
		entry, venueField = "book", "publisher"
	case types.TypeThesis:
		entry, venueField = "phdthesis", "school"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entry, citationKey(pub, year))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s={%s},\n", name, value)
		}
	}
	field("title", strings.NewReplacer("{", "", "}", "").Replace(pub.Title))
	field("author", strings.Join(pub.Authors, " and "))
	field(venueField, pub.Venue)
	if pub.Year != nil {
		field("year", year)
	}
	field("volume", volume)
	field("number", issue)
	field("pages", pages)
	field("doi", doi)
	b.WriteString("}")
	return b.String()
}

// foldDiacritics strips combining marks so "Sánchez" keys as "sanchez".
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// citationKey is the lowercase ASCII letters of the first author's
// surname followed by the year, e.g. "smith2021".
func citationKey(pub types.Publication, year string) string {
	name := "unknown"
	if len(pub.Authors) > 0 {
		fields := strings.Fields(pub.Authors[0])
		if len(fields) > 0 {
			name = fields[len(fields)-1]
		}
	}
	if folded, _, err := transform.String(foldDiacritics(), name); err == nil {
		name = folded
	}
	key := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	if key == "" {
		key = "unknown"
	}
	if year == "n.d." {
		year = "nd"
	}
	return key + year
}
