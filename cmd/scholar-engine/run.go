// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl, analyze, publish, and verify in one run",
	Long: `Run executes every stage in order. The crawl stops at the request ceiling
(crawl.max_requests); a partial crawl is still published and its pagination
artifact names the offset to continue from with --start or --resume.

If the crawl or the write fails, the published bundle is left untouched and a
diagnostic report is written to the diagnostics directory.`,
	RunE: runRun,
}

func init() {
	addCrawlFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deps, closeDeps, err := newDeps(cmd, &cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeDeps()

	_, err = pipeline.Run(cmd.Context(), deps, cfg)
	return err
}
