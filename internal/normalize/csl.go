// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// cslTypes maps publication types to CSL item types.
var cslTypes = map[types.PublicationType]string{
	types.TypeJournal:    "article-journal",
	types.TypeConference: "paper-conference",
	types.TypeBook:       "book",
	types.TypeThesis:     "thesis",
	types.TypeArticle:    "article",
}

// FormatCSL writes publications as a CSL-YAML list to w.
func FormatCSL(pubs []DetailedPublication, w io.Writer) error {
	items := make([]CSLItem, len(pubs))
	for i, p := range pubs {
		items[i] = ToCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a detailed publication to a CSLItem.
func ToCSLItem(p DetailedPublication) CSLItem {
	typ, ok := cslTypes[p.Type]
	if !ok {
		typ = "article"
	}
	item := CSLItem{
		ID:             p.ID,
		Type:           typ,
		Title:          p.Title,
		ContainerTitle: p.Venue,
		Volume:         p.Volume,
		Issue:          p.Issue,
		Page:           p.Pages,
		DOI:            p.DOI,
		URL:            p.Link,
	}
	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if p.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*p.Year}}}
	}
	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
