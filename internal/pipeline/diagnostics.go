// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/marchanero/scholar-engine/internal/artifact"
	"github.com/marchanero/scholar-engine/internal/crawl"
	"github.com/marchanero/scholar-engine/pkg/types"
)

// Stages named in diagnostic reports.
const (
	StageCrawl = "crawl"
	StageWrite = "write"
)

// ClassWriteFailure is the diagnostic class of artifact write errors.
const ClassWriteFailure = "write_failure"

// Diagnostic is the postmortem report of a failed run. It keeps the
// publications gathered before the failure.
type Diagnostic struct {
	RunID        string                `json:"runId"`
	Stage        string                `json:"stage"`
	Error        string                `json:"error"`
	Class        string                `json:"class"`
	AuthorID     string                `json:"authorId"`
	FailedAt     string                `json:"failedAt"`
	Requests     int                   `json:"requestsUsed"`
	Pagination   types.PaginationState `json:"pagination"`
	Publications []types.Publication   `json:"partialPublications"`
}

// ErrorClass names the failure class of err for diagnostics.
func ErrorClass(err error) string {
	if errors.Is(err, artifact.ErrWriteFailure) {
		return ClassWriteFailure
	}
	return crawl.ErrorClass(err)
}

// diagnose writes a Diagnostic for runErr and returns its path, or "" when
// the report itself could not be written.
func diagnose(deps Deps, cfg types.PipelineConfig, stage, runID string, snap CrawlSnapshot, runErr error, log *zap.Logger) string {
	at := deps.Now().UTC()
	d := Diagnostic{
		RunID:        runID,
		Stage:        stage,
		Error:        runErr.Error(),
		Class:        ErrorClass(runErr),
		AuthorID:     cfg.Crawl.AuthorID,
		FailedAt:     at.Format(artifact.TimestampFormat),
		Requests:     snap.Pagination.RequestCount,
		Pagination:   snap.Pagination,
		Publications: snap.Publications,
	}
	if d.Publications == nil {
		d.Publications = []types.Publication{}
	}
	path := filepath.Join(DiagnosticsDir(cfg), fmt.Sprintf("failure-%s.json", runID))
	if err := artifact.WriteJSON(path, d); err != nil {
		log.Error("writing diagnostic report failed", zap.Error(err))
		return ""
	}
	log.Error("run failed",
		zap.String("stage", stage),
		zap.String("class", d.Class),
		zap.Int("partial_publications", len(d.Publications)),
		zap.String("diagnostics", path),
		zap.Error(runErr))
	fmt.Fprintf(deps.Out, "Run %s failed during %s (%s); diagnostics in %s\n", runID, stage, d.Class, path)
	return path
}
