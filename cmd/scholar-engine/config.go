// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/internal/ledger"
	"github.com/marchanero/scholar-engine/internal/logging"
	"github.com/marchanero/scholar-engine/internal/pipeline"
	"github.com/marchanero/scholar-engine/internal/secrets"
	"github.com/marchanero/scholar-engine/internal/telemetry"
	"github.com/marchanero/scholar-engine/internal/verify"
	"github.com/marchanero/scholar-engine/pkg/types"
)

const defaultUserAgent = "scholar-engine/0.1"

// setDefaults registers every key so environment variables override them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.author_id", "")
	v.SetDefault("crawl.api_key", "")
	v.SetDefault("crawl.base_url", "")
	v.SetDefault("crawl.timeout", 30*time.Second)
	v.SetDefault("crawl.user_agent", defaultUserAgent)
	v.SetDefault("crawl.page_size", crawl.DefaultPageSize)
	v.SetDefault("crawl.max_requests", crawl.DefaultMaxRequests)
	v.SetDefault("crawl.start_offset", 0)
	v.SetDefault("crawl.sort_order", crawl.DefaultSortOrder)
	v.SetDefault("crawl.request_delay", crawl.DefaultRequestDelay)
	v.SetDefault("crawl.max_attempts", crawl.DefaultMaxAttempts)
	v.SetDefault("crawl.retry_base_delay", time.Second)
	v.SetDefault("identity.aliases", []string{})
	v.SetDefault("analytics.reference_year", 0)
	v.SetDefault("analytics.top_n", 10)
	// An empty career stage selects analytics.DefaultBenchmark.
	v.SetDefault("analytics.benchmark.career_stage", "")
	v.SetDefault("analytics.benchmark.h_index_min", 0)
	v.SetDefault("analytics.benchmark.h_index_max", 0)
	v.SetDefault("analytics.benchmark.citations_min", 0)
	v.SetDefault("analytics.benchmark.citations_max", 0)
	v.SetDefault("artifacts.output_dir", pipeline.DefaultOutputDir)
	v.SetDefault("artifacts.diagnostics_dir", pipeline.DefaultDiagnosticsDir)
	v.SetDefault("verify.report_path", "")
	v.SetDefault("verify.format", verify.FormatJSON)
	v.SetDefault("verify.monthly_quota", verify.DefaultMonthlyQuota)
	v.SetDefault("ledger.path", ledger.DefaultPath)
	v.SetDefault("telemetry.textfile_path", "")
	v.SetDefault("logging.development", false)
}

// loadConfig unmarshals the global viper state and applies the crawl flags
// the command defines.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("author") {
		cfg.Crawl.AuthorID, _ = flags.GetString("author")
	}
	if flags.Changed("start") {
		cfg.Crawl.StartOffset, _ = flags.GetInt("start")
	}
	if flags.Changed("max-requests") {
		cfg.Crawl.MaxRequests, _ = flags.GetInt("max-requests")
	}
	if cfg.Crawl.StartOffset < 0 {
		return cfg, fmt.Errorf("--start must be >= 0")
	}
	return cfg, nil
}

// addCrawlFlags registers the flags shared by commands that crawl.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().String("author", "", "Google Scholar author id (overrides crawl.author_id)")
	cmd.Flags().Int("start", 0, "article offset to continue a partial crawl from")
	cmd.Flags().Int("max-requests", 0, "per-run ceiling on upstream requests (default 5)")
	cmd.Flags().Bool("resume", false, "continue from the last partial run recorded in the ledger")
}

func newLogger(cfg types.PipelineConfig) (*zap.Logger, error) {
	return logging.New(cfg.Logging.Development)
}

// newDeps opens the ledger and metrics and, when crawling, the SerpAPI
// client. The returned close func releases the ledger.
func newDeps(cmd *cobra.Command, cfg *types.PipelineConfig, logger *zap.Logger, crawling bool) (pipeline.Deps, func(), error) {
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}
	closeFn := func() { store.Close() }

	metrics, err := telemetry.New()
	if err != nil {
		closeFn()
		return pipeline.Deps{}, nil, err
	}

	deps := pipeline.Deps{
		Ledger:  store,
		Metrics: metrics,
		Logger:  logger,
		Out:     cmd.OutOrStdout(),
	}
	if !crawling {
		return deps, closeFn, nil
	}

	if resume, _ := cmd.Flags().GetBool("resume"); resume && !cmd.Flags().Changed("start") {
		cont, err := store.LastContinuation(cmd.Context(), cfg.Crawl.AuthorID)
		if err != nil {
			closeFn()
			return pipeline.Deps{}, nil, err
		}
		if cont != nil {
			cfg.Crawl.StartOffset = *cont
			fmt.Fprintf(cmd.ErrOrStderr(), "Resuming from offset %d\n", *cont)
		}
	}

	key, err := secrets.APIKey(cfg.Crawl.APIKey, loadedSecrets)
	if err != nil {
		closeFn()
		return pipeline.Deps{}, nil, err
	}
	cfg.Crawl.APIKey = key
	deps.Fetcher = crawl.NewClient(cfg.Crawl)
	return deps, closeFn, nil
}

// snapshotPath returns --snapshot when set, else the default location.
func snapshotPath(cmd *cobra.Command, cfg types.PipelineConfig) string {
	if p, _ := cmd.Flags().GetString("snapshot"); p != "" {
		return p
	}
	return pipeline.SnapshotPath(cfg)
}
