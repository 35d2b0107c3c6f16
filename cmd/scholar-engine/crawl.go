// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/pipeline"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl and normalize an author's articles into a snapshot",
	Long: `Crawl fetches the author's article list page by page, normalizes each
record, and writes a crawl snapshot that analyze, write, and export read.
Nothing is published.`,
	RunE: runCrawl,
}

func init() {
	addCrawlFlags(crawlCmd)
	crawlCmd.Flags().String("snapshot", "", "snapshot path (default <diagnostics_dir>/crawl-snapshot.json)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
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

	snap, err := pipeline.Crawl(cmd.Context(), deps, cfg)
	if err != nil {
		return err
	}

	path := snapshotPath(cmd, cfg)
	if err := pipeline.SaveSnapshot(path, snap); err != nil {
		return err
	}
	p := snap.Pagination
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Crawled %d publications in %d request(s), %s (%s)\n",
		len(snap.Publications), p.RequestCount, p.Completeness, p.StopReason)
	if p.ContinuationOffset != nil {
		fmt.Fprintf(w, "Continue with --start %d\n", *p.ContinuationOffset)
	}
	fmt.Fprintf(w, "Snapshot: %s\n", path)
	return nil
}
