// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchanero/scholar-engine/internal/analytics"
	"github.com/marchanero/scholar-engine/pkg/types"
)

func intPtr(v int) *int { return &v }

func testSnapshot(n int, at time.Time) Snapshot {
	pubs := make([]types.Publication, n)
	for i := range pubs {
		pubs[i] = types.Publication{
			ID:      fmt.Sprintf("cid:%d", i),
			Title:   fmt.Sprintf("Stress detection study %d", i),
			Authors: []string{"R Sánchez-Reolid", fmt.Sprintf("Coauthor %d", i%3)},
			Venue:   "Sensors 21 (3), 1-20",
			Year:    intPtr(2015 + i%8),
			CitedBy: i * 3,
			Type:    types.TypeJournal,
		}
	}
	author := types.AuthorProfile{
		Name:      "R Sánchez-Reolid",
		ScholarID: "abc123",
		Aliases:   []string{"Sánchez-Reolid"},
		Reported:  types.ReportedMetrics{Citations: 500, CitationsRecent: 320, HIndexRecent: 9, RecentSince: 2020},
	}
	pagination := types.PaginationState{PageSize: 100, MaxRequests: 5, RequestCount: 1, PagesProcessed: 1}
	pagination.MarkComplete(types.StopShortPage)

	return Snapshot{
		Author:       author,
		Publications: pubs,
		Metrics:      analytics.Analyze(pubs, types.AnalyticsConfig{Aliases: author.Aliases}),
		Pagination:   pagination,
		Provenance:   DefaultProvenance("abc123"),
		GeneratedAt:  at,
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestWriteProducesConsistentBundle(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	bundle, err := Write(context.Background(), dir, testSnapshot(25, at))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01T12:00:00Z", bundle.GeneratedAt)
	require.Len(t, bundle.Files, 4)
	assert.Equal(t, 25, bundle.Metrics.TotalPublications)
	assert.Equal(t, 320, bundle.Metrics.CitationsRecent)

	var metrics []any
	for _, name := range Files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		require.NoError(t, err, name)
		assert.True(t, strings.HasSuffix(string(data), "}\n"), "%s ends with a newline", name)
		assert.True(t, strings.HasPrefix(string(data), "{\n  \""), "%s uses two-space indent", name)

		doc := readJSON(t, path)
		assert.Equal(t, bundle.GeneratedAt, doc["lastUpdated"], name)
		metrics = append(metrics, doc["metrics"])
	}
	for _, m := range metrics[1:] {
		assert.Equal(t, metrics[0], m, "every layer embeds the same metrics block")
	}

	basic := readJSON(t, filepath.Join(dir, BasicFile))
	assert.Len(t, basic["publications"], BasicPublicationLimit)

	detailed := readJSON(t, filepath.Join(dir, DetailedFile))
	assert.Len(t, detailed["allPublications"], 25)
	assert.Len(t, detailed["detailedPublications"], 25)
	assert.Contains(t, detailed, "advancedMetrics")
	assert.Contains(t, detailed, "scrapingMetadata")

	pag := readJSON(t, filepath.Join(dir, PaginationFile))
	info := pag["pagination"].(map[string]any)
	assert.Equal(t, "complete", info["completeness"])
	assert.Equal(t, float64(1), info["totalPages"])
	assert.Nil(t, info["continuationOffset"])

	summary := readJSON(t, filepath.Join(dir, SummaryFile))
	assert.Contains(t, summary, "strategicRecommendations")
	assert.Contains(t, summary, "benchmarkComparison")
	assert.Equal(t, bundle.GeneratedAt, summary["metadata"].(map[string]any)["generatedAt"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temporary or backup files remain")
}

var timestampField = regexp.MustCompile(`"(lastUpdated|generatedAt)": "[^"]*"`)

func TestWriteIsIdempotentExceptTimestamps(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	_, err := Write(context.Background(), dirA, testSnapshot(12, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = Write(context.Background(), dirB, testSnapshot(12, time.Date(2026, 2, 2, 8, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	for _, name := range Files {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.NotEqual(t, string(a), string(b), name)
		assert.Equal(t,
			timestampField.ReplaceAllString(string(a), ""),
			timestampField.ReplaceAllString(string(b), ""),
			name)
	}
}

func TestWritePartialPagination(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot(4, time.Now())
	snap.Pagination.MarkPartial(types.StopRequestBudget, 500)

	_, err := Write(context.Background(), dir, snap)
	require.NoError(t, err)

	info := readJSON(t, filepath.Join(dir, PaginationFile))["pagination"].(map[string]any)
	assert.Equal(t, "partial", info["completeness"])
	assert.Equal(t, float64(500), info["continuationOffset"])
	assert.Contains(t, info["notes"], "--start 500")
}

func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}

func TestWriteRollsBackOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(context.Background(), dir, testSnapshot(5, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	before := snapshotDir(t, dir)

	orig := rename
	t.Cleanup(func() { rename = orig })
	calls := 0
	rename = func(from, to string) error {
		if filepath.Base(to) == PaginationFile {
			return errors.New("disk full")
		}
		calls++
		return orig(from, to)
	}

	_, err = Write(context.Background(), dir, testSnapshot(9, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailure)
	assert.Positive(t, calls, "earlier files were replaced before the failure")
	assert.Equal(t, before, snapshotDir(t, dir), "prior bundle is restored byte for byte")
}

func TestWriteFirstBundleRenameFailureLeavesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(from, to string) error {
		if filepath.Base(to) == SummaryFile {
			return errors.New("permission denied")
		}
		return orig(from, to)
	}

	_, err := Write(context.Background(), dir, testSnapshot(3, time.Now()))
	require.ErrorIs(t, err, ErrWriteFailure)
	assert.Empty(t, snapshotDir(t, dir))
}

func TestWriteCancelledBeforeStaging(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, dir, testSnapshot(3, time.Now()))
	require.ErrorIs(t, err, ErrWriteFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snapshotDir(t, dir))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	require.NoError(t, WriteJSON(path, map[string]any{"title": "A & B <c>"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"A & B <c>\"\n}\n", string(data))
}
