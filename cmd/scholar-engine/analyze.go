// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/pipeline"
	"github.com/marchanero/scholar-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute analytics over a crawl snapshot",
	Long: `Analyze reads a crawl snapshot and prints impact, productivity,
collaboration, and venue metrics. No upstream requests are made.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("snapshot", "", "snapshot path (default <diagnostics_dir>/crawl-snapshot.json)")
	analyzeCmd.Flags().Bool("json", false, "print the full metrics snapshot as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snap, err := pipeline.LoadSnapshot(snapshotPath(cmd, cfg))
	if err != nil {
		return err
	}
	m := pipeline.Analyze(snap, cfg.Analytics)

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	printMetrics(w, snap.Author, m)
	return nil
}

func printMetrics(w io.Writer, author types.AuthorProfile, m types.MetricsSnapshot) {
	fmt.Fprintf(w, "%s (%s)\n", author.Name, author.Affiliation)
	fmt.Fprintf(w, "  publications: %d  citations: %d  mean: %.2f  median: %.1f\n",
		m.Impact.TotalPublications, m.Impact.TotalCitations, m.Impact.MeanCitations, m.Impact.MedianCitations)
	fmt.Fprintf(w, "  h-index: %d  i10-index: %d\n", m.Impact.HIndex, m.Impact.I10Index)
	fmt.Fprintf(w, "  years: %d-%d  trend: %s  most productive: %d\n",
		m.Temporal.FirstYear, m.Temporal.LastYear, m.Temporal.Trend, m.Temporal.MostProductiveYear)
	fmt.Fprintf(w, "  collaborators: %d  collaboration rate: %.2f%%\n",
		m.Collaboration.UniqueCollaborators, m.Collaboration.CollaborationRate)
	fmt.Fprintf(w, "  venues: %d\n", m.Venues.TotalVenues)
	for i, c := range m.TopCited {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "  %d. %s (%d citations)\n", i+1, c.Title, c.Citations)
	}
	for _, r := range m.Recommendations {
		fmt.Fprintf(w, "  [%s] %s: %s\n", r.Priority, r.Category, r.Recommendation)
	}
}
