// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marchanero/scholar-engine/internal/analytics"
	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/internal/pipeline"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export publications from a crawl snapshot as CSL-YAML",
	Long: `Export writes every publication in a crawl snapshot as a CSL-YAML list
for reference managers (Zotero, pandoc-citeproc). Output goes to stdout
unless --output is set.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("snapshot", "", "snapshot path (default <diagnostics_dir>/crawl-snapshot.json)")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snap, err := pipeline.LoadSnapshot(snapshotPath(cmd, cfg))
	if err != nil {
		return err
	}

	pubs := analytics.SortPublications(snap.Publications)
	ref := analytics.ReferenceYear(pubs, cfg.Analytics.ReferenceYear)
	detailed := normalize.DetailAll(pubs, ref)

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		return normalize.FormatCSL(detailed, cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := normalize.FormatCSL(detailed, &buf); err != nil {
		return err
	}
	if err := artifact.WriteFile(out, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d publications to %s\n", len(detailed), out)
	return nil
}
