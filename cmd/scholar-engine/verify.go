// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/pipeline"
	"github.com/marchanero/scholar-engine/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the published bundle and write a health report",
	Long: `Verify inspects every artifact in the output directory: existence,
parseability, record counts, a weighted data-quality score, cross-file
consistency, freshness, and the month's SerpAPI quota consumption.

The command fails when the bundle needs work, so deployments can gate on it.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("format", "", "report format: json or yaml (overrides verify.format)")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		cfg.Verify.Format = f
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deps, closeDeps, err := newDeps(cmd, &cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeDeps()

	report, path, err := pipeline.Verify(cmd.Context(), deps, cfg)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", path)

	if !report.Healthy() {
		return fmt.Errorf("bundle in %s needs work", report.Dir)
	}
	return nil
}

func printReport(w io.Writer, r verify.HealthReport) {
	fmt.Fprintf(w, "Overall: %s\n", r.Overall)
	fmt.Fprintf(w, "Files: %s  freshness: %s  consistent: %t\n",
		r.FilesHealthy, r.Freshness, r.Consistency.Consistent())
	for _, f := range r.Files {
		if !f.Exists {
			fmt.Fprintf(w, "  %-36s missing\n", f.Name)
			continue
		}
		fmt.Fprintf(w, "  %-36s %d records, grade %s (%d)\n", f.Name, f.Records, f.Grade, f.Score)
	}
	if q := r.Quota; q != nil {
		fmt.Fprintf(w, "Quota %s: %d/%d requests (%.2f%%)\n", q.Month, q.Used, q.Quota, q.UsagePercent)
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  [%s] %s: %s. %s\n", rec.Priority, rec.Category, rec.Issue, rec.Action)
	}
}
