// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/internal/httputil"
	"github.com/marchanero/scholar-engine/internal/ledger"
	"github.com/marchanero/scholar-engine/internal/telemetry"
	"github.com/marchanero/scholar-engine/internal/verify"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// fakeFetcher serves pages of pageSize articles out of total, failing with
// quota exhaustion on call quotaAt when set.
type fakeFetcher struct {
	total    int
	pageSize int
	quotaAt  int
	calls    int
}

func (f *fakeFetcher) FetchPage(_ context.Context, pr crawl.PageRequest) httputil.Outcome[crawl.Page] {
	f.calls++
	if f.quotaAt > 0 && f.calls >= f.quotaAt {
		return httputil.Fatal(crawl.Page{Status: 429}, crawl.ErrRateLimitExceeded)
	}
	n := min(f.pageSize, max(f.total-pr.Offset, 0))
	resp := &crawl.RawResponse{
		SearchMetadata: crawl.RawSearchMetadata{ID: "s", Status: "Success"},
		Author:         &crawl.RawAuthor{Name: "A Author", Affiliations: "Test University"},
		CitedBy: &crawl.RawCitedByTable{Table: []map[string]map[string]int{
			{"citations": {"all": 900, "since_2021": 400}},
			{"h_index": {"all": 12, "since_2021": 9}},
		}},
	}
	for i := 0; i < n; i++ {
		pos := pr.Offset + i
		cites := pos % 30
		resp.Articles = append(resp.Articles, crawl.RawArticle{
			Title:       fmt.Sprintf("Paper %d", pos),
			CitationID:  fmt.Sprintf("cid:%d", pos),
			Authors:     "A Author, B Coauthor, C Coauthor",
			Publication: "IEEE Transactions on Tests 12 (3), 1-10",
			Year:        crawl.FlexString(strconv.Itoa(2015 + pos%10)),
			CitedBy:     crawl.RawCitedBy{Value: &cites},
		})
	}
	if pr.Offset+n < f.total {
		resp.Pagination = &crawl.RawPagination{Next: "https://serpapi.com/next"}
	}
	return httputil.OK(crawl.Page{Status: 200, Response: resp})
}

type env struct {
	cfg     types.PipelineConfig
	deps    Deps
	store   *ledger.Store
	metrics *telemetry.Metrics
	out     *bytes.Buffer
}

func newEnv(t *testing.T, f crawl.Fetcher) *env {
	t.Helper()
	dir := t.TempDir()
	store, err := ledger.Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	metrics, err := telemetry.New()
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ids := 0
	out := &bytes.Buffer{}
	return &env{
		cfg: types.PipelineConfig{
			Crawl: types.CrawlConfig{
				AuthorID:       "abc123",
				PageSize:       10,
				MaxRequests:    5,
				MaxAttempts:    2,
				RetryBaseDelay: time.Millisecond,
			},
			Identity:  types.IdentityConfig{Aliases: []string{"A Author"}},
			Artifacts: types.ArtifactConfig{OutputDir: filepath.Join(dir, "public"), DiagnosticsDir: filepath.Join(dir, "diag")},
			Telemetry: types.TelemetryConfig{TextfilePath: filepath.Join(dir, "metrics", "scholar.prom")},
		},
		deps: Deps{
			Fetcher: f,
			Ledger:  store,
			Metrics: metrics,
			Out:     out,
			Now:     func() time.Time { return at },
			NewRunID: func() string {
				ids++
				return fmt.Sprintf("run-%d", ids)
			},
		},
		store:   store,
		metrics: metrics,
		out:     out,
	}
}

func TestRunPublishesVerifiedBundle(t *testing.T) {
	e := newEnv(t, &fakeFetcher{total: 25, pageSize: 10})

	out, err := Run(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-1", out.RunID)
	assert.Len(t, out.Snapshot.Publications, 25)
	assert.Equal(t, types.CompletenessComplete, out.Bundle.Pagination.Completeness)
	assert.Equal(t, types.StopShortPage, out.Bundle.Pagination.StopReason)
	assert.Equal(t, 25, out.Bundle.Metrics.TotalPublications)
	assert.Equal(t, 400, out.Bundle.Metrics.CitationsRecent)
	assert.Equal(t, 2, out.Metrics.Collaboration.UniqueCollaborators)

	require.NotNil(t, out.Report)
	assert.Equal(t, verify.Excellent, out.Report.Overall)
	assert.FileExists(t, out.ReportPath)
	for _, name := range artifact.Files {
		assert.FileExists(t, filepath.Join(e.cfg.Artifacts.OutputDir, name))
	}
	assert.Empty(t, out.DiagnosticsPath)

	run, err := e.store.Run(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSucceeded, run.Status)
	assert.Equal(t, 3, run.Requests)
	assert.Equal(t, 25, run.Publications)

	used, err := e.store.MonthlyUsage(context.Background(), e.deps.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, used)
	assert.Equal(t, 3, out.Report.Quota.Used)

	n, err := testutil.GatherAndCount(e.metrics.Registry(), "scholar_engine_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "every request succeeded")
	prom, err := os.ReadFile(e.cfg.Telemetry.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `scholar_engine_requests_total{class="ok"} 3`)
	assert.Contains(t, string(prom), "scholar_engine_monthly_requests 3")

	assert.Contains(t, e.out.String(), "publications: 25")
	assert.Contains(t, e.out.String(), "health: EXCELLENT")
}

var stamp = regexp.MustCompile(`"(lastUpdated|generatedAt)": "[^"]*"`)

func TestRunIsIdempotent(t *testing.T) {
	e := newEnv(t, &fakeFetcher{total: 14, pageSize: 10})
	_, err := Run(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	first := readBundle(t, e.cfg.Artifacts.OutputDir)

	e.deps.Fetcher = &fakeFetcher{total: 14, pageSize: 10}
	later := time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC)
	e.deps.Now = func() time.Time { return later }
	_, err = Run(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	second := readBundle(t, e.cfg.Artifacts.OutputDir)

	for name, a := range first {
		assert.NotEqual(t, a, second[name], name)
		assert.Equal(t, stamp.ReplaceAllString(a, ""), stamp.ReplaceAllString(second[name], ""), name)
	}
}

func readBundle(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, name := range artifact.Files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		out[name] = string(data)
	}
	return out
}

func TestRunRequestBudgetIsPartial(t *testing.T) {
	e := newEnv(t, &fakeFetcher{total: 500, pageSize: 10})
	e.cfg.Crawl.MaxRequests = 3

	out, err := Run(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	p := out.Bundle.Pagination
	assert.Equal(t, types.CompletenessPartial, p.Completeness)
	require.NotNil(t, p.ContinuationOffset)
	assert.Equal(t, 30, *p.ContinuationOffset)
	assert.Contains(t, e.out.String(), "continue with --start 30")

	cont, err := e.store.LastContinuation(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, cont)
	assert.Equal(t, 30, *cont)
}

func TestRunQuotaExhaustionKeepsBundleAndWritesDiagnostics(t *testing.T) {
	f := &fakeFetcher{total: 50, pageSize: 10}
	e := newEnv(t, f)
	_, err := Run(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	before := readBundle(t, e.cfg.Artifacts.OutputDir)

	e.deps.Fetcher = &fakeFetcher{total: 50, pageSize: 10, quotaAt: 3}
	out, err := Run(context.Background(), e.deps, e.cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, crawl.ErrRateLimitExceeded)

	p := out.Snapshot.Pagination
	assert.Equal(t, types.CompletenessPartial, p.Completeness)
	assert.Equal(t, types.StopQuotaExhausted, p.StopReason)
	require.NotNil(t, p.ContinuationOffset)
	assert.Equal(t, 20, *p.ContinuationOffset)
	assert.Len(t, out.Snapshot.Publications, 20, "publications from the first two pages are retained")

	assert.Equal(t, before, readBundle(t, e.cfg.Artifacts.OutputDir), "published bundle is untouched")

	require.NotEmpty(t, out.DiagnosticsPath)
	data, err := os.ReadFile(out.DiagnosticsPath)
	require.NoError(t, err)
	var d Diagnostic
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, "run-2", d.RunID)
	assert.Equal(t, StageCrawl, d.Stage)
	assert.Equal(t, "rate_limit_exceeded", d.Class)
	assert.Equal(t, 3, d.Requests)
	assert.Len(t, d.Publications, 20)

	run, err := e.store.Run(context.Background(), "run-2")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, run.Status)
	prom, err := os.ReadFile(e.cfg.Telemetry.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `scholar_engine_runs_total{result="failure"} 1`)
	assert.Contains(t, string(prom), `scholar_engine_runs_total{result="success"} 1`)
}

func TestCrawlThenPublishFromSnapshot(t *testing.T) {
	e := newEnv(t, &fakeFetcher{total: 12, pageSize: 10})

	snap, err := Crawl(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	path := SnapshotPath(e.cfg)
	require.NoError(t, SaveSnapshot(path, snap))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Publications, loaded.Publications)
	assert.Equal(t, "A Author", loaded.Author.Name)
	assert.Equal(t, 12, loaded.Stats.Normalized)

	metrics := Analyze(loaded, e.cfg.Analytics)
	assert.Equal(t, 12, metrics.Impact.TotalPublications)

	bundle, err := Publish(context.Background(), OutputDir(e.cfg), loaded, metrics, e.deps.Now())
	require.NoError(t, err)
	assert.Equal(t, 12, bundle.Metrics.TotalPublications)

	report, reportPath, err := Verify(context.Background(), e.deps, e.cfg)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.Equal(t, filepath.Join(OutputDir(e.cfg), verify.ReportFile), reportPath)
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"publications": []}`), 0o644))
	_, err := LoadSnapshot(path)
	assert.ErrorContains(t, err, "no author id")

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunWithoutFetcher(t *testing.T) {
	e := newEnv(t, nil)
	_, err := Run(context.Background(), e.deps, e.cfg)
	assert.Error(t, err)
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, ClassWriteFailure, ErrorClass(fmt.Errorf("%w: disk full", artifact.ErrWriteFailure)))
	assert.Equal(t, "rate_limit_exceeded", ErrorClass(crawl.ErrRateLimitExceeded))
	assert.Equal(t, "unknown", ErrorClass(errors.New("boom")))
}
