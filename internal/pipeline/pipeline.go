// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the stages in order: crawl, normalize, analyze,
// write, verify. Each run carries its own run ID, clock, and author profile;
// nothing is shared between runs except the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marchanero/scholar-engine/internal/analytics"
	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/internal/ledger"
	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/internal/telemetry"
	"github.com/marchanero/scholar-engine/internal/verify"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// Default directories used when the configuration leaves them empty.
const (
	DefaultOutputDir      = "public/data"
	DefaultDiagnosticsDir = "data/diagnostics"
)

// Deps are the collaborators of a run. Fetcher is required; Ledger and
// Metrics may be nil.
type Deps struct {
	Fetcher crawl.Fetcher
	Ledger  *ledger.Store
	Metrics *telemetry.Metrics
	Logger  *zap.Logger

	// Out receives the human-readable run summary.
	Out io.Writer

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	// NewRunID generates run identifiers; nil means UUIDv7.
	NewRunID func() string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = newRunID
	}
	return d
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Outcome is what a full run produced.
type Outcome struct {
	RunID           string
	Snapshot        CrawlSnapshot
	Metrics         types.MetricsSnapshot
	Bundle          types.ArtifactBundle
	Report          *verify.HealthReport
	ReportPath      string
	DiagnosticsPath string
}

// OutputDir returns the configured artifact directory or the default.
func OutputDir(cfg types.PipelineConfig) string {
	if cfg.Artifacts.OutputDir != "" {
		return cfg.Artifacts.OutputDir
	}
	return DefaultOutputDir
}

// DiagnosticsDir returns the configured diagnostics directory or the default.
func DiagnosticsDir(cfg types.PipelineConfig) string {
	if cfg.Artifacts.DiagnosticsDir != "" {
		return cfg.Artifacts.DiagnosticsDir
	}
	return DefaultDiagnosticsDir
}

// Run executes every stage. A crawl or write failure leaves the published
// bundle untouched, writes a diagnostic report, and returns the error.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig) (Outcome, error) {
	deps = deps.withDefaults()
	runID := deps.NewRunID()
	log := deps.Logger.With(zap.String("run_id", runID), zap.String("author_id", cfg.Crawl.AuthorID))
	out := Outcome{RunID: runID}

	if err := startRun(ctx, deps, runID, cfg); err != nil {
		return out, err
	}

	snap, err := crawlStage(ctx, deps, cfg, runID, log)
	out.Snapshot = snap
	if err != nil {
		out.DiagnosticsPath = diagnose(deps, cfg, StageCrawl, runID, snap, err, log)
		finish(ctx, deps, cfg, runID, snap, err, log)
		return out, err
	}

	out.Metrics = Analyze(snap, cfg.Analytics)
	out.Bundle, err = Publish(ctx, OutputDir(cfg), snap, out.Metrics, deps.Now())
	if err != nil {
		out.DiagnosticsPath = diagnose(deps, cfg, StageWrite, runID, snap, err, log)
		finish(ctx, deps, cfg, runID, snap, err, log)
		return out, err
	}
	log.Info("bundle published",
		zap.String("dir", out.Bundle.Dir),
		zap.Int("publications", out.Bundle.Metrics.TotalPublications),
		zap.String("completeness", string(out.Bundle.Pagination.Completeness)))
	if deps.Metrics != nil {
		deps.Metrics.ObserveBundle(out.Bundle, deps.Now())
	}

	finish(ctx, deps, cfg, runID, snap, nil, log)

	report, path, err := Verify(ctx, deps, cfg)
	if err != nil {
		log.Warn("verification failed", zap.Error(err))
	} else {
		out.Report, out.ReportPath = &report, path
		if !report.Healthy() {
			log.Warn("bundle needs work", zap.String("overall", string(report.Overall)))
		}
	}

	printSummary(deps.Out, out)
	return out, nil
}

// Crawl runs the crawl and normalize stages as a tracked run of its own.
func Crawl(ctx context.Context, deps Deps, cfg types.PipelineConfig) (CrawlSnapshot, error) {
	deps = deps.withDefaults()
	runID := deps.NewRunID()
	log := deps.Logger.With(zap.String("run_id", runID), zap.String("author_id", cfg.Crawl.AuthorID))

	if err := startRun(ctx, deps, runID, cfg); err != nil {
		return CrawlSnapshot{}, err
	}
	snap, err := crawlStage(ctx, deps, cfg, runID, log)
	if err != nil {
		diagnose(deps, cfg, StageCrawl, runID, snap, err, log)
	}
	finish(ctx, deps, cfg, runID, snap, err, log)
	return snap, err
}

// Analyze computes the metrics of a crawl snapshot. The subject's aliases
// come from the snapshot's author profile.
func Analyze(snap CrawlSnapshot, cfg types.AnalyticsConfig) types.MetricsSnapshot {
	cfg.Aliases = snap.Author.Aliases
	return analytics.Analyze(snap.Publications, cfg)
}

// Publish writes the artifact bundle for snap to dir.
func Publish(ctx context.Context, dir string, snap CrawlSnapshot, metrics types.MetricsSnapshot, at time.Time) (types.ArtifactBundle, error) {
	return artifact.Write(ctx, dir, artifact.Snapshot{
		Author:       snap.Author,
		Publications: snap.Publications,
		Metrics:      metrics,
		Pagination:   snap.Pagination,
		Provenance:   artifact.DefaultProvenance(snap.AuthorID),
		GeneratedAt:  at,
	})
}

// Verify checks the published bundle and writes the health report.
func Verify(ctx context.Context, deps Deps, cfg types.PipelineConfig) (verify.HealthReport, string, error) {
	deps = deps.withDefaults()
	opts := verify.OptionsFrom(cfg.Verify, nil)
	opts.Now = deps.Now
	if deps.Ledger != nil {
		opts.Usage = deps.Ledger
	}
	report, err := verify.Verify(ctx, OutputDir(cfg), opts)
	if err != nil {
		return report, "", err
	}
	path := verify.ReportPath(cfg.Verify, OutputDir(cfg))
	if err := verify.WriteReport(path, report, cfg.Verify.Format); err != nil {
		return report, "", err
	}
	return report, path, nil
}

func crawlStage(ctx context.Context, deps Deps, cfg types.PipelineConfig, runID string, log *zap.Logger) (CrawlSnapshot, error) {
	if deps.Fetcher == nil {
		return CrawlSnapshot{}, errors.New("no fetcher configured")
	}

	recorders := crawl.Recorders{}
	if deps.Ledger != nil {
		recorders = append(recorders, deps.Ledger.Recorder(runID))
	}
	if deps.Metrics != nil {
		recorders = append(recorders, deps.Metrics)
	}

	res, err := crawl.Crawl(ctx, deps.Fetcher, cfg.Crawl.AuthorID, cfg.Crawl, recorders, log)
	profile := normalize.BuildProfile(cfg.Crawl.AuthorID, res.Author, res.CitedBy, cfg.Identity.Aliases)
	pubs, stats := normalize.NormalizeAll(res.Articles, profile, res.Pagination.StartOffset, log)

	snap := CrawlSnapshot{
		RunID:        runID,
		AuthorID:     cfg.Crawl.AuthorID,
		CrawledAt:    deps.Now().UTC().Format(artifact.TimestampFormat),
		Author:       profile,
		Publications: pubs,
		Pagination:   res.Pagination,
		Stats:        stats,
	}
	if deps.Metrics != nil {
		deps.Metrics.ObservePagination(res.Pagination)
	}
	log.Info("crawl finished",
		zap.Int("requests", res.Pagination.RequestCount),
		zap.Int("pages", res.Pagination.PagesProcessed),
		zap.Int("publications", len(pubs)),
		zap.Int("fallbacks", stats.Fallbacks),
		zap.String("stop_reason", string(res.Pagination.StopReason)),
		zap.Error(err))
	return snap, err
}

func startRun(ctx context.Context, deps Deps, runID string, cfg types.PipelineConfig) error {
	if deps.Ledger == nil {
		return nil
	}
	start := cfg.Crawl.StartOffset
	if start < 0 {
		start = 0
	}
	if err := deps.Ledger.StartRun(ctx, runID, cfg.Crawl.AuthorID, start, deps.Now()); err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// finish records the run outcome in the ledger and exports metrics. Its own
// failures are logged, never returned, so they cannot mask runErr.
func finish(ctx context.Context, deps Deps, cfg types.PipelineConfig, runID string, snap CrawlSnapshot, runErr error, log *zap.Logger) {
	// Record the outcome even when ctx was cancelled mid-run.
	ctx = context.WithoutCancel(ctx)
	if deps.Ledger != nil {
		if err := deps.Ledger.FinishRun(ctx, runID, deps.Now(), snap.Pagination, len(snap.Publications), runErr); err != nil {
			log.Warn("recording run outcome failed", zap.Error(err))
		}
	}
	if deps.Metrics == nil {
		return
	}
	deps.Metrics.ObserveRun(runErr)
	if deps.Ledger != nil {
		if n, err := deps.Ledger.MonthlyUsage(ctx, deps.Now()); err == nil {
			deps.Metrics.SetMonthlyUsage(n)
		}
	}
	if err := deps.Metrics.WriteTextfile(cfg.Telemetry.TextfilePath); err != nil {
		log.Warn("writing metrics textfile failed", zap.Error(err))
	}
}

func printSummary(w io.Writer, o Outcome) {
	m := o.Bundle.Metrics
	p := o.Bundle.Pagination
	fmt.Fprintf(w, "Run %s\n", o.RunID)
	fmt.Fprintf(w, "  publications: %d  citations: %d  h-index: %d  i10-index: %d\n",
		m.TotalPublications, m.TotalCitations, m.HIndex, m.I10Index)
	fmt.Fprintf(w, "  requests: %d  pages: %d  completeness: %s (%s)\n",
		p.RequestCount, p.PagesProcessed, p.Completeness, p.StopReason)
	if p.ContinuationOffset != nil {
		fmt.Fprintf(w, "  continue with --start %d\n", *p.ContinuationOffset)
	}
	fmt.Fprintf(w, "  bundle: %s\n", o.Bundle.Dir)
	if o.Report != nil {
		fmt.Fprintf(w, "  health: %s (%s)\n", o.Report.Overall, filepath.Base(o.ReportPath))
	}
}
