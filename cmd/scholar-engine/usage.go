// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/ledger"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show this month's SerpAPI usage and recent runs",
	Long: `Usage reads the request ledger and reports how many upstream requests
were made this calendar month (UTC) against verify.monthly_quota, followed
by the most recent runs.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().Int("runs", 10, "number of recent runs to list")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	now := time.Now().UTC()
	used, err := store.MonthlyUsage(ctx, now)
	if err != nil {
		return err
	}
	quota := cfg.Verify.MonthlyQuota
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d of %d requests used, %d remaining\n",
		now.Format("2006-01"), used, quota, max(quota-used, 0))

	limit, _ := cmd.Flags().GetInt("runs")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		line := fmt.Sprintf("  %s  %s  %-9s  %d req  %d pubs",
			r.StartedAt.Format(time.RFC3339), r.AuthorID, r.Status, r.Requests, r.Publications)
		if r.ContinuationOffset != nil {
			line += fmt.Sprintf("  partial, continue at %d", *r.ContinuationOffset)
		}
		if r.Error != "" {
			line += "  error: " + r.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
