// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify inspects a published artifact bundle and produces a health
// report: per-file quality scores, cross-file consistency, data freshness,
// and upstream quota consumption.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// DefaultMonthlyQuota is the provider allowance assumed when none is configured.
const DefaultMonthlyQuota = 100

// ReportFile is the default report name inside the artifact directory.
const ReportFile = "verification-report.json"

// Report encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Freshness classifies the age of the bundle.
type Freshness string

const (
	Fresh   Freshness = "FRESH"
	Recent  Freshness = "RECENT"
	Stale   Freshness = "STALE"
	Unknown Freshness = "UNKNOWN"
)

// Health is the overall classification.
type Health string

const (
	Excellent Health = "EXCELLENT"
	Good      Health = "GOOD"
	NeedsWork Health = "NEEDS_WORK"
)

// Priority orders recommendations.
type Priority string

const (
	High   Priority = "HIGH"
	Medium Priority = "MEDIUM"
	Low    Priority = "LOW"
)

var priorityRank = map[Priority]int{High: 0, Medium: 1, Low: 2}

// FileReport describes one expected artifact.
type FileReport struct {
	Name        string   `json:"name" yaml:"name"`
	Exists      bool     `json:"exists" yaml:"exists"`
	Parseable   bool     `json:"parseable" yaml:"parseable"`
	SizeBytes   int64    `json:"sizeBytes" yaml:"sizeBytes"`
	Records     int      `json:"recordCount" yaml:"recordCount"`
	LastUpdated string   `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Score       int      `json:"score" yaml:"score"`
	Grade       string   `json:"grade" yaml:"grade"`
	Issues      []string `json:"issues" yaml:"issues"`
}

// OK reports whether the file exists and parses.
func (f FileReport) OK() bool {
	return f.Exists && f.Parseable
}

// Consistency records whether the files describe one bundle.
type Consistency struct {
	SharedTimestamp  bool     `json:"sharedTimestamp" yaml:"sharedTimestamp"`
	IdenticalMetrics bool     `json:"identicalMetrics" yaml:"identicalMetrics"`
	Issues           []string `json:"issues" yaml:"issues"`
}

// Consistent reports whether both checks passed.
func (c Consistency) Consistent() bool {
	return c.SharedTimestamp && c.IdenticalMetrics
}

// QuotaUsage compares the month's recorded requests with the allowance.
type QuotaUsage struct {
	Month        string  `json:"month" yaml:"month"`
	Used         int     `json:"used" yaml:"used"`
	Quota        int     `json:"quota" yaml:"quota"`
	Remaining    int     `json:"remaining" yaml:"remaining"`
	UsagePercent float64 `json:"usagePercent" yaml:"usagePercent"`
}

// Exhausted reports whether no requests remain this month.
func (q QuotaUsage) Exhausted() bool {
	return q.Remaining <= 0
}

// Recommendation is one prioritized follow-up.
type Recommendation struct {
	Priority Priority `json:"priority" yaml:"priority"`
	Category string   `json:"category" yaml:"category"`
	Issue    string   `json:"issue" yaml:"issue"`
	Action   string   `json:"action" yaml:"action"`
}

// HealthReport is the result of Verify.
type HealthReport struct {
	GeneratedAt     string           `json:"generatedAt" yaml:"generatedAt"`
	Dir             string           `json:"dir" yaml:"dir"`
	Files           []FileReport     `json:"files" yaml:"files"`
	FilesHealthy    string           `json:"filesHealthy" yaml:"filesHealthy"`
	Consistency     Consistency      `json:"consistency" yaml:"consistency"`
	Freshness       Freshness        `json:"freshness" yaml:"freshness"`
	AgeHours        *float64         `json:"ageHours" yaml:"ageHours"`
	Quota           *QuotaUsage      `json:"quota,omitempty" yaml:"quota,omitempty"`
	Overall         Health           `json:"overall" yaml:"overall"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
}

// Healthy reports whether the bundle is fit to deploy.
func (r HealthReport) Healthy() bool {
	return r.Overall != NeedsWork
}

// UsageSource returns the number of upstream requests recorded in the
// calendar month containing at. ledger.Store implements it.
type UsageSource interface {
	MonthlyUsage(ctx context.Context, at time.Time) (int, error)
}

// Options configures Verify.
type Options struct {
	// Now is the clock; nil means time.Now.
	Now func() time.Time

	// Usage supplies quota consumption. Nil skips the quota check.
	Usage UsageSource

	// MonthlyQuota is the provider allowance (default 100).
	MonthlyQuota int
}

// OptionsFrom builds Options from configuration.
func OptionsFrom(cfg types.VerifyConfig, usage UsageSource) Options {
	return Options{Usage: usage, MonthlyQuota: cfg.MonthlyQuota}
}

// Verify checks every expected file in dir. It returns an error only when
// the quota source fails; problems with the bundle itself are reported.
func Verify(ctx context.Context, dir string, opts Options) (HealthReport, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	at := now()

	report := HealthReport{
		GeneratedAt: at.UTC().Format(artifact.TimestampFormat),
		Dir:         dir,
	}

	docs := make(map[string]document, len(artifact.Files))
	healthy := 0
	for _, name := range artifact.Files {
		fr, doc := inspect(filepath.Join(dir, name), name, at)
		report.Files = append(report.Files, fr)
		if fr.OK() {
			docs[name] = doc
			healthy++
		}
	}
	report.FilesHealthy = fmt.Sprintf("%d/%d", healthy, len(artifact.Files))
	report.Consistency = consistency(docs)

	report.Freshness = Unknown
	if doc, ok := docs[artifact.BasicFile]; ok {
		if ts, ok := doc.lastUpdated(); ok {
			age := at.Sub(ts).Hours()
			report.AgeHours = &age
			report.Freshness = classifyFreshness(at.Sub(ts))
		}
	}

	if opts.Usage != nil {
		q, err := quota(ctx, opts.Usage, at, opts.MonthlyQuota)
		if err != nil {
			return report, err
		}
		report.Quota = &q
	}

	report.Overall = overall(report)
	report.Recommendations = recommendations(report)
	return report, nil
}

func classifyFreshness(age time.Duration) Freshness {
	switch {
	case age <= 24*time.Hour:
		return Fresh
	case age <= 7*24*time.Hour:
		return Recent
	default:
		return Stale
	}
}

func quota(ctx context.Context, src UsageSource, at time.Time, limit int) (QuotaUsage, error) {
	if limit <= 0 {
		limit = DefaultMonthlyQuota
	}
	used, err := src.MonthlyUsage(ctx, at)
	if err != nil {
		return QuotaUsage{}, fmt.Errorf("reading quota usage: %w", err)
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaUsage{
		Month:        at.UTC().Format("2006-01"),
		Used:         used,
		Quota:        limit,
		Remaining:    remaining,
		UsagePercent: float64(int(float64(used)/float64(limit)*10000+0.5)) / 100,
	}, nil
}

// overall is EXCELLENT when every file is present, consistent, graded A and
// not stale; NEEDS_WORK when a file is missing or unreadable, the files
// disagree, or any grade is F; GOOD otherwise.
func overall(r HealthReport) Health {
	excellent := r.Consistency.Consistent() && r.Freshness != Stale && r.Freshness != Unknown
	for _, f := range r.Files {
		if !f.OK() || f.Grade == "F" {
			return NeedsWork
		}
		if f.Grade != "A" {
			excellent = false
		}
	}
	if !r.Consistency.Consistent() {
		return NeedsWork
	}
	if excellent {
		return Excellent
	}
	return Good
}

func recommendations(r HealthReport) []Recommendation {
	recs := []Recommendation{}
	for _, f := range r.Files {
		switch {
		case !f.Exists:
			recs = append(recs, Recommendation{High, "Data",
				fmt.Sprintf("Artifact %s is missing", f.Name),
				fmt.Sprintf("Run the pipeline to regenerate %s", f.Name)})
		case !f.Parseable:
			recs = append(recs, Recommendation{High, "Data",
				fmt.Sprintf("Artifact %s is not valid JSON", f.Name),
				fmt.Sprintf("Run the pipeline to regenerate %s", f.Name)})
		case f.Score < 70:
			recs = append(recs, Recommendation{Medium, "Data Quality",
				fmt.Sprintf("Low data quality in %s (grade %s)", f.Name, f.Grade),
				"Review the artifact: " + strings.Join(f.Issues, ", ")})
		}
	}
	for _, issue := range r.Consistency.Issues {
		recs = append(recs, Recommendation{High, "Consistency", issue,
			"Re-run the writer so every file comes from one bundle"})
	}
	if q := r.Quota; q != nil {
		switch {
		case q.Exhausted():
			recs = append(recs, Recommendation{High, "Quota",
				fmt.Sprintf("Monthly quota exhausted (%d/%d requests in %s)", q.Used, q.Quota, q.Month),
				"Wait for the quota to reset before crawling again"})
		case q.UsagePercent >= 80:
			recs = append(recs, Recommendation{Medium, "Quota",
				fmt.Sprintf("%.2f%% of the monthly quota used", q.UsagePercent),
				"Lower crawl.max_requests or reduce run frequency"})
		}
	}
	if r.Freshness == Stale {
		recs = append(recs, Recommendation{Low, "Maintenance", "Data is stale",
			"Re-run the crawler to refresh the bundle"})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

// WriteReport encodes r to path as JSON or YAML. An empty format is
// inferred from the extension.
func WriteReport(path string, r HealthReport, format string) error {
	if format == "" {
		format = FormatJSON
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
			format = FormatYAML
		}
	}
	switch format {
	case FormatJSON:
		return artifact.WriteJSON(path, r)
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return artifact.WriteFile(path, data)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// ReportPath resolves the configured report path against the output
// directory.
func ReportPath(cfg types.VerifyConfig, outputDir string) string {
	if cfg.ReportPath != "" {
		return cfg.ReportPath
	}
	name := ReportFile
	if cfg.Format == FormatYAML {
		name = strings.TrimSuffix(ReportFile, ".json") + ".yaml"
	}
	return filepath.Join(outputDir, name)
}

func inspect(path, name string, at time.Time) (FileReport, document) {
	fr := FileReport{Name: name, Grade: "F", Issues: []string{}}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		fr.Issues = append(fr.Issues, "file not found")
		return fr, nil
	}
	if err != nil {
		fr.Issues = append(fr.Issues, err.Error())
		return fr, nil
	}
	fr.Exists = true
	fr.SizeBytes = info.Size()

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Issues = append(fr.Issues, err.Error())
		return fr, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		fr.Issues = append(fr.Issues, "invalid JSON format")
		return fr, nil
	}
	fr.Parseable = true
	fr.Records = doc.records()
	fr.Score, fr.Issues = score(doc, at)
	fr.Grade = grade(fr.Score)
	if ts, ok := doc.lastUpdated(); ok {
		fr.LastUpdated = ts.UTC().Format(artifact.TimestampFormat)
	}
	return fr, doc
}

// score weighs author 20, publications 30, metrics 20, timestamp 15, and
// freshness 15 (≤7 days) or 10 (≤30 days).
func score(doc document, at time.Time) (int, []string) {
	s := 0
	issues := []string{}
	if doc.hasAuthor() {
		s += 20
	} else {
		issues = append(issues, "author information incomplete")
	}
	if doc.hasPublications() {
		s += 30
	} else {
		issues = append(issues, "no publications")
	}
	if doc.hasMetrics() {
		s += 20
	} else {
		issues = append(issues, "citation metrics missing")
	}
	ts, ok := doc.lastUpdated()
	if !ok {
		issues = append(issues, "lastUpdated missing")
		return s, issues
	}
	s += 15
	days := at.Sub(ts).Hours() / 24
	switch {
	case days <= 7:
		s += 15
	case days <= 30:
		s += 10
	default:
		issues = append(issues, fmt.Sprintf("data is %d days old", int(days)))
	}
	return min(s, 100), issues
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func consistency(docs map[string]document) Consistency {
	c := Consistency{SharedTimestamp: true, IdenticalMetrics: true, Issues: []string{}}
	var (
		refName   string
		refStamp  string
		refMetric *types.KeyMetrics
	)
	for _, name := range artifact.Files {
		doc, ok := docs[name]
		if !ok {
			continue
		}
		stamp := doc.stamp()
		m, hasMetrics := doc.metrics()
		if refName == "" {
			refName, refStamp = name, stamp
			if hasMetrics {
				refMetric = &m
			}
			continue
		}
		if stamp != refStamp {
			c.SharedTimestamp = false
			c.Issues = append(c.Issues, fmt.Sprintf("%s lastUpdated %q differs from %s %q", name, stamp, refName, refStamp))
		}
		if !hasMetrics || refMetric == nil || m != *refMetric {
			c.IdenticalMetrics = false
			c.Issues = append(c.Issues, fmt.Sprintf("%s metrics differ from %s", name, refName))
		}
	}
	return c
}
