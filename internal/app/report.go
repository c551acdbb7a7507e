package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	workerpool "github.com/retargetlab/mocap/internal/adapters/mq/worker"
	"github.com/retargetlab/mocap/internal/domain/model"
)

// FileResult is the per-file entry of a batch report.
type FileResult struct {
	SrcPath   string
	DstPath   string
	Err       error
	Warnings  []string
	FramesIn  int
	FramesOut int
}

// OK reports whether the file converted without an error.
func (r FileResult) OK() bool { return r.Err == nil }

// BatchReport aggregates the outcomes of one conversion run.
type BatchReport struct {
	RunID     string
	Schema    model.Schema
	TargetFPS float64
	Workers   int

	StartedAt  time.Time
	FinishedAt time.Time

	Files     []FileResult
	Succeeded int
	Failed    int
}

// NewBatchReport stamps a fresh report with a unique run id.
func NewBatchReport(schema model.Schema, targetFPS float64, workers int) *BatchReport {
	return &BatchReport{
		RunID:     uuid.New().String(),
		Schema:    schema,
		TargetFPS: targetFPS,
		Workers:   workers,
		StartedAt: time.Now(),
	}
}

// Record folds one worker result into the report.
func (r *BatchReport) Record(res workerpool.Result) {
	r.Files = append(r.Files, FileResult{
		SrcPath:   res.Job.SrcPath,
		DstPath:   res.Job.DstPath,
		Err:       res.Err,
		Warnings:  res.Warnings,
		FramesIn:  res.FramesIn,
		FramesOut: res.FramesOut,
	})
	if res.Err != nil {
		r.Failed++
	} else {
		r.Succeeded++
	}
}

// Finish marks the end of the run and orders files by source path so the
// report is stable regardless of worker scheduling.
func (r *BatchReport) Finish() {
	r.FinishedAt = time.Now()
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].SrcPath < r.Files[j].SrcPath
	})
}

// Elapsed returns the wall-clock duration of the run.
func (r *BatchReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// WarningCount totals warnings across all files.
func (r *BatchReport) WarningCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Warnings)
	}
	return n
}

// Summary renders a human-readable account of the run: counts first, then
// every failure with its reason, then per-file warnings.
func (r *BatchReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d succeeded, %d failed, %d warnings (%s)\n",
		r.RunID, r.Succeeded, r.Failed, r.WarningCount(), r.Elapsed().Round(time.Millisecond))
	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(&sb, "  FAIL %s: %v\n", f.SrcPath, f.Err)
		}
	}
	for _, f := range r.Files {
		if f.Err != nil {
			continue
		}
		for _, w := range f.Warnings {
			fmt.Fprintf(&sb, "  warn %s: %s\n", f.SrcPath, w)
		}
	}
	return sb.String()
}
