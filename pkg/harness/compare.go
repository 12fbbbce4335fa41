package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/hdrcheck/pkg/compare"
	"github.com/sdejongh/hdrcheck/pkg/logging"
	"github.com/sdejongh/hdrcheck/pkg/models"
	"github.com/sdejongh/hdrcheck/pkg/storage"
)

// CompareTrees compares two existing trees without running any tool.
// The report carries the top-level entry counts of both trees and has
// StatusFailed when any mismatch was recorded.
func CompareTrees(ctx context.Context, golden, candidate storage.Backend, diag io.Writer, logger logging.Logger, progress func(compare.RelPath)) (*models.RunReport, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	report := &models.RunReport{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
	}
	logger = logger.WithFields(logging.Fields{"run_id": report.ID})

	comparator := compare.NewTreeComparator(diag, logger)
	if progress != nil {
		comparator.SetProgressCallback(progress)
	}

	logger.Info(ctx, "comparing trees", logging.Fields{
		"golden":    golden.Root(),
		"candidate": candidate.Root(),
	})
	report.Comparison = comparator.Compare(ctx, golden, candidate)
	report.Counts.Compared = report.Comparison.FilesCompared

	// Unreadable roots are already recorded as list errors
	report.Counts.GeneratorHeaders, _ = countEntries(ctx, golden)
	report.Counts.CompilerHeaders, _ = countEntries(ctx, candidate)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if !report.Comparison.Identical() {
		n := report.ErrorCount()
		report.Status = models.StatusFailed
		logger.Warn(ctx, "trees differ", logging.Fields{"errors": n})
		return report, fmt.Errorf("%d errors occurred", n)
	}

	report.Status = models.StatusSuccess
	logger.Info(ctx, "trees identical", logging.Fields{"compared": report.Counts.Compared})
	return report, nil
}

// CountFiles returns the number of regular files below the root of tree
func CountFiles(ctx context.Context, tree storage.Backend) (int, error) {
	entries, err := tree.List(ctx, "")
	if err != nil {
		return 0, err
	}

	n := 0
	for _, entry := range entries {
		if entry.IsRegular {
			n++
		}
	}
	return n, nil
}
