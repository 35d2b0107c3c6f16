// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/pipeline"
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Publish the artifact bundle from a crawl snapshot",
	Long: `Write analyzes a crawl snapshot and publishes the four JSON artifacts
(basic, detailed, pagination, executive summary) to the output directory.
Either every file is replaced or none is.`,
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().String("snapshot", "", "snapshot path (default <diagnostics_dir>/crawl-snapshot.json)")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snap, err := pipeline.LoadSnapshot(snapshotPath(cmd, cfg))
	if err != nil {
		return err
	}

	metrics := pipeline.Analyze(snap, cfg.Analytics)
	bundle, err := pipeline.Publish(cmd.Context(), pipeline.OutputDir(cfg), snap, metrics, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published %d files to %s (%d publications, h-index %d)\n",
		len(bundle.Files), bundle.Dir, bundle.Metrics.TotalPublications, bundle.Metrics.HIndex)
	return nil
}
