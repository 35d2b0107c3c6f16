// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/marchanero/scholar-engine/internal/analytics"
	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/pkg/types"
)

var generated = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func writeBundle(t *testing.T, dir string, at time.Time) {
	t.Helper()
	pubs := make([]types.Publication, 8)
	for i := range pubs {
		year := 2018 + i
		pubs[i] = types.Publication{
			ID:      fmt.Sprintf("cid:%d", i),
			Title:   fmt.Sprintf("Paper %d", i),
			Authors: []string{"A Author", "B Coauthor"},
			Venue:   "Sensors",
			Year:    &year,
			CitedBy: i * 4,
			Type:    types.TypeJournal,
		}
	}
	author := types.AuthorProfile{Name: "A Author", ScholarID: "abc123", Aliases: []string{"A Author"}}
	pagination := types.PaginationState{PageSize: 100, MaxRequests: 5, RequestCount: 1, PagesProcessed: 1}
	pagination.MarkComplete(types.StopShortPage)

	_, err := artifact.Write(context.Background(), dir, artifact.Snapshot{
		Author:       author,
		Publications: pubs,
		Metrics:      analytics.Analyze(pubs, types.AnalyticsConfig{Aliases: author.Aliases}),
		Pagination:   pagination,
		Provenance:   artifact.DefaultProvenance("abc123"),
		GeneratedAt:  at,
	})
	require.NoError(t, err)
}

func clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type usage struct {
	n   int
	err error
}

func (u usage) MonthlyUsage(context.Context, time.Time) (int, error) {
	return u.n, u.err
}

func TestVerifyFreshBundleIsExcellent(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)

	r, err := Verify(context.Background(), dir, Options{Now: clock(generated.Add(2 * time.Hour))})
	require.NoError(t, err)

	assert.Equal(t, Excellent, r.Overall)
	assert.True(t, r.Healthy())
	assert.Equal(t, "4/4", r.FilesHealthy)
	assert.Equal(t, Fresh, r.Freshness)
	require.NotNil(t, r.AgeHours)
	assert.InDelta(t, 2.0, *r.AgeHours, 0.001)
	assert.True(t, r.Consistency.Consistent())
	assert.Nil(t, r.Quota)
	assert.Empty(t, r.Recommendations)

	require.Len(t, r.Files, 4)
	for _, f := range r.Files {
		assert.Equal(t, 100, f.Score, f.Name)
		assert.Equal(t, "A", f.Grade, f.Name)
		assert.Positive(t, f.SizeBytes, f.Name)
		assert.Empty(t, f.Issues, f.Name)
	}
	assert.Equal(t, 8, r.Files[0].Records, "basic layer counts its publication list")
	assert.Equal(t, 8, r.Files[1].Records, "detailed layer counts allPublications")
	assert.Equal(t, 8, r.Files[2].Records, "pagination layer reports totalPublications")
	assert.Equal(t, artifact.SummaryTopCited, r.Files[3].Records)
}

func TestVerifyFreshnessTiers(t *testing.T) {
	tests := []struct {
		age       time.Duration
		freshness Freshness
		score     int
	}{
		{time.Hour, Fresh, 100},
		{3 * 24 * time.Hour, Recent, 100},
		{10 * 24 * time.Hour, Stale, 95},
		{40 * 24 * time.Hour, Stale, 85},
	}
	dir := t.TempDir()
	writeBundle(t, dir, generated)
	for _, tt := range tests {
		t.Run(tt.age.String(), func(t *testing.T) {
			r, err := Verify(context.Background(), dir, Options{Now: clock(generated.Add(tt.age))})
			require.NoError(t, err)
			assert.Equal(t, tt.freshness, r.Freshness)
			assert.Equal(t, tt.score, r.Files[0].Score)
		})
	}
}

func TestVerifyStaleBundleIsGood(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)

	r, err := Verify(context.Background(), dir, Options{Now: clock(generated.Add(45 * 24 * time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, Good, r.Overall)
	assert.Equal(t, "B", r.Files[0].Grade)
	assert.Contains(t, r.Files[0].Issues, "data is 45 days old")
	require.NotEmpty(t, r.Recommendations)
	last := r.Recommendations[len(r.Recommendations)-1]
	assert.Equal(t, Low, last.Priority)
	assert.Equal(t, "Maintenance", last.Category)
}

func TestVerifyMissingAndInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)
	require.NoError(t, os.Remove(filepath.Join(dir, artifact.SummaryFile)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.PaginationFile), []byte("{not json"), 0o644))

	r, err := Verify(context.Background(), dir, Options{Now: clock(generated.Add(50 * 24 * time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, NeedsWork, r.Overall)
	assert.False(t, r.Healthy())
	assert.Equal(t, "2/4", r.FilesHealthy)

	pag := r.Files[2]
	assert.True(t, pag.Exists)
	assert.False(t, pag.Parseable)
	assert.Equal(t, "F", pag.Grade)
	assert.False(t, r.Files[3].Exists)

	require.GreaterOrEqual(t, len(r.Recommendations), 3)
	assert.Equal(t, High, r.Recommendations[0].Priority)
	assert.Equal(t, High, r.Recommendations[1].Priority)
	assert.Equal(t, Low, r.Recommendations[len(r.Recommendations)-1].Priority)
	for i := 1; i < len(r.Recommendations); i++ {
		assert.LessOrEqual(t,
			priorityRank[r.Recommendations[i-1].Priority],
			priorityRank[r.Recommendations[i].Priority],
			"recommendations are ordered by priority")
	}
}

func TestVerifyEmptyDirectory(t *testing.T) {
	r, err := Verify(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Equal(t, NeedsWork, r.Overall)
	assert.Equal(t, Unknown, r.Freshness)
	assert.Nil(t, r.AgeHours)
	assert.Len(t, r.Recommendations, 4)
}

func TestVerifyDetectsMixedBundles(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeBundle(t, dirA, generated)
	writeBundle(t, dirB, generated.Add(time.Hour))

	data, err := os.ReadFile(filepath.Join(dirB, artifact.DetailedFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dirA, artifact.DetailedFile), data, 0o644))

	r, err := Verify(context.Background(), dirA, Options{Now: clock(generated.Add(2 * time.Hour))})
	require.NoError(t, err)
	assert.False(t, r.Consistency.SharedTimestamp)
	assert.True(t, r.Consistency.IdenticalMetrics)
	assert.Equal(t, NeedsWork, r.Overall)
	assert.Equal(t, "Consistency", r.Recommendations[0].Category)
}

func TestVerifyDetectsMetricDrift(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)

	path := filepath.Join(dir, artifact.SummaryFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["metrics"].(map[string]any)["hIndex"] = 99
	require.NoError(t, artifact.WriteJSON(path, doc))

	r, err := Verify(context.Background(), dir, Options{Now: clock(generated)})
	require.NoError(t, err)
	assert.True(t, r.Consistency.SharedTimestamp)
	assert.False(t, r.Consistency.IdenticalMetrics)
	assert.Equal(t, NeedsWork, r.Overall)
}

func TestVerifyQuota(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)

	tests := []struct {
		name     string
		used     int
		quota    int
		category string
		priority Priority
		percent  float64
	}{
		{"low usage", 12, 0, "", "", 12},
		{"near limit", 85, 100, "Quota", Medium, 85},
		{"exhausted", 260, 250, "Quota", High, 104},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Verify(context.Background(), dir, Options{
				Now:          clock(generated),
				Usage:        usage{n: tt.used},
				MonthlyQuota: tt.quota,
			})
			require.NoError(t, err)
			require.NotNil(t, r.Quota)
			assert.Equal(t, "2026-06", r.Quota.Month)
			assert.Equal(t, tt.used, r.Quota.Used)
			assert.InDelta(t, tt.percent, r.Quota.UsagePercent, 0.001)
			if tt.category == "" {
				assert.Empty(t, r.Recommendations)
				assert.Equal(t, DefaultMonthlyQuota, r.Quota.Quota)
				return
			}
			require.Len(t, r.Recommendations, 1)
			assert.Equal(t, tt.priority, r.Recommendations[0].Priority)
			assert.Equal(t, Excellent, r.Overall, "quota does not degrade artifact health")
		})
	}
}

func TestVerifyQuotaSourceError(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)
	_, err := Verify(context.Background(), dir, Options{Usage: usage{err: errors.New("locked")}})
	assert.ErrorContains(t, err, "locked")
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, generated)
	r, err := Verify(context.Background(), dir, Options{Now: clock(generated)})
	require.NoError(t, err)

	jsonPath := filepath.Join(dir, ReportFile)
	require.NoError(t, WriteReport(jsonPath, r, ""))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded HealthReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Excellent, decoded.Overall)

	yamlPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, WriteReport(yamlPath, r, ""))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, "EXCELLENT", fromYAML["overall"])

	assert.Error(t, WriteReport(jsonPath, r, "xml"))
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", ReportFile), ReportPath(types.VerifyConfig{}, "out"))
	assert.Equal(t, filepath.Join("out", "verification-report.yaml"), ReportPath(types.VerifyConfig{Format: FormatYAML}, "out"))
	assert.Equal(t, "x.json", ReportPath(types.VerifyConfig{ReportPath: "x.json"}, "out"))
}
