// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact publishes the layered JSON bundle consumed by the site.
// Every layer of one bundle is built from a single snapshot, shares one
// timestamp, and embeds the same KeyMetrics block. Publication is
// all-or-nothing: files are staged beside their targets and renamed into
// place only after every layer has been staged, with rollback from backups
// if a rename fails.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/marchanero/scholar-engine/pkg/types"
)

// Bundle file names.
const (
	BasicFile      = "scholar.json"
	DetailedFile   = "scholar-detailed.json"
	PaginationFile = "scholar-pagination.json"
	SummaryFile    = "scholar-executive-summary.json"
)

// Files lists the bundle files in publication order.
var Files = []string{BasicFile, DetailedFile, PaginationFile, SummaryFile}

// ErrWriteFailure is returned when the bundle could not be published. No
// file of the failed bundle is left visible.
var ErrWriteFailure = errors.New("artifact write failed")

// TimestampFormat is the layout of lastUpdated and generatedAt fields.
const TimestampFormat = time.RFC3339

// Provenance records where the bundle's data came from.
type Provenance struct {
	Source   string `json:"source"`
	Engine   string `json:"engine"`
	AuthorID string `json:"authorId"`
}

// DefaultProvenance describes data acquired from Google Scholar through
// the SerpAPI author engine.
func DefaultProvenance(authorID string) Provenance {
	return Provenance{Source: "Google Scholar", Engine: "serpapi/google_scholar_author", AuthorID: authorID}
}

// Snapshot is the complete in-memory input of one bundle.
type Snapshot struct {
	Author       types.AuthorProfile
	Publications []types.Publication
	Metrics      types.MetricsSnapshot
	Pagination   types.PaginationState
	Provenance   Provenance
	GeneratedAt  time.Time
}

// Write publishes snap to dir as the four bundle files. It either replaces
// every file or leaves the directory as it was.
func Write(ctx context.Context, dir string, snap Snapshot) (types.ArtifactBundle, error) {
	stamp := snap.GeneratedAt.UTC().Format(TimestampFormat)
	key := types.NewKeyMetrics(snap.Metrics, snap.Author.Reported)
	docs := layers(snap, stamp, key)

	contents := make([]fileContent, 0, len(Files))
	for _, name := range Files {
		data, err := EncodeJSON(docs[name])
		if err != nil {
			return types.ArtifactBundle{}, fmt.Errorf("%w: encoding %s: %w", ErrWriteFailure, name, err)
		}
		contents = append(contents, fileContent{name: name, data: data})
	}

	if err := publish(ctx, dir, contents); err != nil {
		return types.ArtifactBundle{}, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	paths := make([]string, len(Files))
	for i, name := range Files {
		paths[i] = filepath.Join(dir, name)
	}
	return types.ArtifactBundle{
		Dir:         dir,
		Files:       paths,
		GeneratedAt: stamp,
		Metrics:     key,
		Pagination:  snap.Pagination,
	}, nil
}

// EncodeJSON renders v with two-space indentation and a trailing newline.
// HTML characters are not escaped.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON atomically writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}
