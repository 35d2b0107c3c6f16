// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/internal/normalize"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// SnapshotFile is the default crawl snapshot name inside the diagnostics
// directory.
const SnapshotFile = "crawl-snapshot.json"

// CrawlSnapshot is the normalized output of a crawl. It is what the analyze
// and write stages consume when run on their own.
type CrawlSnapshot struct {
	RunID        string                `json:"runId"`
	AuthorID     string                `json:"authorId"`
	CrawledAt    string                `json:"crawledAt"`
	Author       types.AuthorProfile   `json:"author"`
	Publications []types.Publication   `json:"publications"`
	Pagination   types.PaginationState `json:"pagination"`
	Stats        normalize.Stats       `json:"normalization"`
}

// SnapshotPath returns the default snapshot location for cfg.
func SnapshotPath(cfg types.PipelineConfig) string {
	return filepath.Join(DiagnosticsDir(cfg), SnapshotFile)
}

// SaveSnapshot writes snap to path atomically.
func SaveSnapshot(path string, snap CrawlSnapshot) error {
	return artifact.WriteJSON(path, snap)
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (CrawlSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CrawlSnapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap CrawlSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return CrawlSnapshot{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if snap.AuthorID == "" {
		return CrawlSnapshot{}, fmt.Errorf("snapshot %s has no author id", path)
	}
	return snap, nil
}
