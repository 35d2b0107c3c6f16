// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-engine/0.1").
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// CrawlConfig holds settings for the crawl stage.
type CrawlConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// AuthorID is the upstream author identifier (e.g. "jvEyX6IAAAAJ").
	AuthorID string `mapstructure:"author_id" json:"author_id" yaml:"author_id"`

	// APIKey is the provider credential. It is never serialized.
	APIKey string `mapstructure:"api_key" json:"-" yaml:"-"`

	// BaseURL overrides the provider endpoint (default https://serpapi.com/search.json).
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`

	// PageSize is the number of articles requested per page (default 100).
	PageSize int `mapstructure:"page_size" json:"page_size" yaml:"page_size"`

	// MaxRequests is the hard per-run ceiling on HTTP attempts (default 5).
	MaxRequests int `mapstructure:"max_requests" json:"max_requests" yaml:"max_requests"`

	// StartOffset is the first article offset to request; non-zero only when
	// continuing a partial crawl.
	StartOffset int `mapstructure:"start_offset" json:"start_offset" yaml:"start_offset"`

	// SortOrder is the upstream sort key (default "pubdate").
	SortOrder string `mapstructure:"sort_order" json:"sort_order" yaml:"sort_order"`

	// RequestDelay is the courtesy delay between requests (default 1s).
	RequestDelay time.Duration `mapstructure:"request_delay" json:"request_delay" yaml:"request_delay"`

	// MaxAttempts is the number of attempts per page before giving up (default 3).
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts" yaml:"max_attempts"`

	// RetryBaseDelay is the linear backoff unit; attempt n waits n*RetryBaseDelay.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" json:"retry_base_delay" yaml:"retry_base_delay"`
}

// IdentityConfig holds the strings that identify the subject researcher in
// author lists.
type IdentityConfig struct {
	Aliases []string `mapstructure:"aliases" json:"aliases" yaml:"aliases"`
}

// BenchmarkConfig is the career-stage reference the executive summary
// compares against.
type BenchmarkConfig struct {
	CareerStage  string `mapstructure:"career_stage" json:"career_stage" yaml:"career_stage"`
	HIndexMin    int    `mapstructure:"h_index_min" json:"h_index_min" yaml:"h_index_min"`
	HIndexMax    int    `mapstructure:"h_index_max" json:"h_index_max" yaml:"h_index_max"`
	CitationsMin int    `mapstructure:"citations_min" json:"citations_min" yaml:"citations_min"`
	CitationsMax int    `mapstructure:"citations_max" json:"citations_max" yaml:"citations_max"`
}

// AnalyticsConfig holds settings for the analytics stage.
type AnalyticsConfig struct {
	// Aliases identify the subject researcher; copied from IdentityConfig
	// by the pipeline.
	Aliases []string `mapstructure:"-" json:"-" yaml:"-"`

	// ReferenceYear anchors recency windows. Zero means the latest
	// publication year in the data set.
	ReferenceYear int `mapstructure:"reference_year" json:"reference_year" yaml:"reference_year"`

	// TopN bounds the top-cited, top-collaborator, and venue lists (default 10).
	TopN int `mapstructure:"top_n" json:"top_n" yaml:"top_n"`

	Benchmark BenchmarkConfig `mapstructure:"benchmark" json:"benchmark" yaml:"benchmark"`
}

// ArtifactConfig holds settings for the artifact writer.
type ArtifactConfig struct {
	// OutputDir is the directory the bundle is published to (e.g. "public/data").
	OutputDir string `mapstructure:"output_dir" json:"output_dir" yaml:"output_dir"`

	// DiagnosticsDir receives failure reports and crawl snapshots.
	DiagnosticsDir string `mapstructure:"diagnostics_dir" json:"diagnostics_dir" yaml:"diagnostics_dir"`
}

// VerifyConfig holds settings for the verification stage.
type VerifyConfig struct {
	// ReportPath is where the health report is written. Empty means
	// <output_dir>/verification-report.json.
	ReportPath string `mapstructure:"report_path" json:"report_path" yaml:"report_path"`

	// Format selects the report encoding: json or yaml.
	Format string `mapstructure:"format" json:"format" yaml:"format"`

	// MonthlyQuota is the provider's monthly request allowance (default 100).
	MonthlyQuota int `mapstructure:"monthly_quota" json:"monthly_quota" yaml:"monthly_quota"`
}

// LedgerConfig locates the SQLite request ledger.
type LedgerConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path"`
}

// TelemetryConfig controls the Prometheus textfile export. An empty path
// disables it.
type TelemetryConfig struct {
	TextfilePath string `mapstructure:"textfile_path" json:"textfile_path" yaml:"textfile_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development" json:"development" yaml:"development"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Crawl     CrawlConfig     `mapstructure:"crawl" json:"crawl" yaml:"crawl"`
	Identity  IdentityConfig  `mapstructure:"identity" json:"identity" yaml:"identity"`
	Analytics AnalyticsConfig `mapstructure:"analytics" json:"analytics" yaml:"analytics"`
	Artifacts ArtifactConfig  `mapstructure:"artifacts" json:"artifacts" yaml:"artifacts"`
	Verify    VerifyConfig    `mapstructure:"verify" json:"verify" yaml:"verify"`
	Ledger    LedgerConfig    `mapstructure:"ledger" json:"ledger" yaml:"ledger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry" yaml:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging"`
}
