// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemetry exports run metrics in the Prometheus text format. The
// pipeline is a batch job, so metrics are written to a node-exporter
// textfile at the end of each run instead of being scraped.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/pkg/types"
)

const namespace = "scholar_engine"

// Run results used as label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics owns every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	runs            *prometheus.CounterVec

	publications   prometheus.Gauge
	citations      prometheus.Gauge
	hIndex         prometheus.Gauge
	i10Index       prometheus.Gauge
	pagesProcessed prometheus.Gauge
	partial        prometheus.Gauge
	monthlyUsage   prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// New builds the collectors and registers them on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Upstream request attempts partitioned by outcome class.",
		}, []string{"class"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs partitioned by result.",
		}, []string{"result"}),
		publications: gauge("publications", "Publications in the latest bundle."),
		citations:    gauge("citations", "Total citations in the latest bundle."),
		hIndex:       gauge("h_index", "h-index computed for the latest bundle."),
		i10Index:     gauge("i10_index", "i10-index computed for the latest bundle."),
		pagesProcessed: gauge("pages_processed",
			"Pages read by the latest crawl."),
		partial: gauge("crawl_partial",
			"1 when the latest crawl stopped before reading every page."),
		monthlyUsage: gauge("monthly_requests",
			"Upstream requests recorded in the current calendar month."),
		lastSuccess: gauge("last_success_timestamp_seconds",
			"Unix time of the last successful run."),
	}
	for _, c := range []prometheus.Collector{
		m.requests,
		m.requestDuration,
		m.runs,
		m.publications,
		m.citations,
		m.hIndex,
		m.i10Index,
		m.pagesProcessed,
		m.partial,
		m.monthlyUsage,
		m.lastSuccess,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest implements crawl.RequestRecorder.
func (m *Metrics) RecordRequest(_ context.Context, r crawl.RequestRecord) error {
	m.requests.WithLabelValues(r.Class.String()).Inc()
	if r.Duration > 0 {
		m.requestDuration.Observe(r.Duration.Seconds())
	}
	return nil
}

// ObservePagination records the crawl's page count and completeness.
func (m *Metrics) ObservePagination(p types.PaginationState) {
	m.pagesProcessed.Set(float64(p.PagesProcessed))
	if p.IsPartial() {
		m.partial.Set(1)
	} else {
		m.partial.Set(0)
	}
}

// ObserveBundle records the headline metrics of a published bundle.
func (m *Metrics) ObserveBundle(b types.ArtifactBundle, at time.Time) {
	m.publications.Set(float64(b.Metrics.TotalPublications))
	m.citations.Set(float64(b.Metrics.TotalCitations))
	m.hIndex.Set(float64(b.Metrics.HIndex))
	m.i10Index.Set(float64(b.Metrics.I10Index))
	m.ObservePagination(b.Pagination)
	m.lastSuccess.Set(float64(at.Unix()))
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.runs.WithLabelValues(result).Inc()
}

// SetMonthlyUsage records the ledger's request count for the month.
func (m *Metrics) SetMonthlyUsage(n int) {
	m.monthlyUsage.Set(float64(n))
}

// WriteTextfile writes every metric to path for the node exporter's
// textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating textfile directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing textfile: %w", err)
	}
	return nil
}
