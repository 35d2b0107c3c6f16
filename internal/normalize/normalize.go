// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps raw provider records into canonical Publications.
// Raw records are validated at this boundary; a record that fails
// validation becomes a minimal fallback Publication and never fails the run.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/pkg/types"
)

const untitled = "Untitled"

// Stats counts what NormalizeAll did with its input.
type Stats struct {
	Total      int `json:"total" yaml:"total"`
	Normalized int `json:"normalized" yaml:"normalized"`
	Fallbacks  int `json:"fallbacks" yaml:"fallbacks"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
}

// Normalize converts one raw article. position is the article's absolute
// zero-based index in the crawl and only feeds the fallback ID. When raw
// fails validation Normalize returns a fallback record together with an
// error wrapping ErrValidation.
func Normalize(raw crawl.RawArticle, author types.AuthorProfile, position int) (types.Publication, error) {
	if err := validateStruct(raw); err != nil {
		return fallback(raw, author, position), err
	}

	authors := ParseAuthors(raw.Authors)
	pub := types.Publication{
		ID:                    publicationID(raw, position),
		Title:                 strings.TrimSpace(raw.Title),
		Authors:               authors,
		Venue:                 strings.TrimSpace(raw.Publication),
		Year:                  parseYear(string(raw.Year)),
		CitedBy:               citedBy(raw),
		Type:                  ClassifyVenue(raw.Publication),
		IsFirstAuthor:         len(authors) > 0 && MatchesAlias(authors[0], author.Aliases),
		IsCorrespondingAuthor: HasCorrespondingMarker(raw.Authors),
		Link:                  raw.Link,
		CitedByLink:           raw.CitedBy.Link,
		CitationID:            raw.CitationID,
	}
	if pub.Title == "" {
		pub.Title = untitled
	}
	return pub, nil
}

// NormalizeAll normalizes raws in order. Article i sits at absolute
// position startOffset+i. Duplicate IDs are dropped after their first
// occurrence.
func NormalizeAll(raws []crawl.RawArticle, author types.AuthorProfile, startOffset int, logger *zap.Logger) ([]types.Publication, Stats) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := Stats{Total: len(raws)}
	seen := make(map[string]bool, len(raws))
	pubs := make([]types.Publication, 0, len(raws))

	for i, raw := range raws {
		pos := startOffset + i
		pub, err := Normalize(raw, author, pos)
		if seen[pub.ID] {
			stats.Duplicates++
			logger.Debug("dropping duplicate publication", zap.String("id", pub.ID))
			continue
		}
		seen[pub.ID] = true

		if err != nil {
			stats.Fallbacks++
			logger.Warn("article failed validation, using fallback record",
				zap.Int("position", pos),
				zap.String("id", pub.ID),
				zap.Error(err))
		} else {
			stats.Normalized++
		}
		pubs = append(pubs, pub)
	}
	return pubs, stats
}

func fallback(raw crawl.RawArticle, author types.AuthorProfile, position int) types.Publication {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = untitled
	}
	authors := ParseAuthors(raw.Authors)
	return types.Publication{
		ID:                    publicationID(raw, position),
		Title:                 title,
		Authors:               authors,
		Venue:                 strings.TrimSpace(raw.Publication),
		Year:                  parseYear(string(raw.Year)),
		CitedBy:               citedBy(raw),
		Type:                  types.TypeArticle,
		IsFirstAuthor:         len(authors) > 0 && MatchesAlias(authors[0], author.Aliases),
		IsCorrespondingAuthor: HasCorrespondingMarker(raw.Authors),
		CitationID:            raw.CitationID,
		Incomplete:            true,
	}
}

func publicationID(raw crawl.RawArticle, position int) string {
	if id := strings.TrimSpace(raw.CitationID); id != "" {
		return id
	}
	return fmt.Sprintf("pub_%d", position+1)
}

// parseYear returns nil for absent, unparseable, or non-positive years.
func parseYear(s string) *int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}

func citedBy(raw crawl.RawArticle) int {
	if raw.CitedBy.Value == nil || *raw.CitedBy.Value < 0 {
		return 0
	}
	return *raw.CitedBy.Value
}
