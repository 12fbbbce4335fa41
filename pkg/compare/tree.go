package compare

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sdejongh/hdrcheck/pkg/logging"
	"github.com/sdejongh/hdrcheck/pkg/models"
	"github.com/sdejongh/hdrcheck/pkg/storage"
)

// TreeComparator compares a golden directory tree against a candidate tree
// byte for byte. Problems are accumulated into the returned result; the walk
// never stops early.
type TreeComparator struct {
	diag           io.Writer
	logger         logging.Logger
	progressReport func(path RelPath) // Optional, called after each file pair
}

// NewTreeComparator creates a comparator writing human-readable diagnostics
// to diag. Either argument may be nil.
func NewTreeComparator(diag io.Writer, logger logging.Logger) *TreeComparator {
	if diag == nil {
		diag = io.Discard
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TreeComparator{diag: diag, logger: logger}
}

// SetProgressCallback sets a callback invoked after every compared file pair
func (c *TreeComparator) SetProgressCallback(callback func(path RelPath)) {
	c.progressReport = callback
}

// Compare walks the union of both trees from their roots
func (c *TreeComparator) Compare(ctx context.Context, golden, candidate storage.Backend) *models.ComparisonResult {
	w := &treeWalk{
		ctx:       ctx,
		c:         c,
		golden:    golden,
		candidate: candidate,
		result: &models.ComparisonResult{
			GoldenRoot:    golden.Root(),
			CandidateRoot: candidate.Root(),
		},
	}

	c.logger.Debug(ctx, "comparing trees", logging.Fields{
		"golden":    golden.Root(),
		"candidate": candidate.Root(),
	})

	w.visit(Root)

	c.logger.Info(ctx, "tree comparison finished", logging.Fields{
		"files_compared": w.result.FilesCompared,
		"paths_visited":  w.result.PathsVisited,
		"errors":         w.result.Errors(),
	})

	return w.result
}

// treeWalk holds the state of a single Compare call
type treeWalk struct {
	ctx       context.Context
	c         *TreeComparator
	golden    storage.Backend
	candidate storage.Backend
	result    *models.ComparisonResult
}

func (w *treeWalk) visit(p RelPath) {
	w.result.PathsVisited++

	// Any stat failure means the entry is not usable on that side
	g, gErr := w.golden.Stat(w.ctx, p.Slash())
	cand, cErr := w.candidate.Stat(w.ctx, p.Slash())
	gExists, cExists := gErr == nil, cErr == nil

	switch {
	case gExists && cExists && g.IsDir && cand.IsDir:
		fmt.Fprintf(w.c.diag, "scanning %s\n", p)
		for _, name := range w.childNames(p) {
			w.visit(p.Join(name))
		}

	case gExists && cExists && g.IsRegular && cand.IsRegular:
		w.compareFiles(p)

	case gExists && !cExists:
		w.fail(models.Mismatch{
			Kind:       models.KindOnlyInGolden,
			Path:       p.String(),
			GoldenPath: w.golden.FullPath(p.Slash()),
			Message:    fmt.Sprintf("Only in %s: %s", w.golden.Root(), p),
		})

	case cExists && !gExists:
		w.fail(models.Mismatch{
			Kind:          models.KindOnlyInCandidate,
			Path:          p.String(),
			CandidatePath: w.candidate.FullPath(p.Slash()),
			Message:       fmt.Sprintf("Only in %s: %s", w.candidate.Root(), p),
		})

	default:
		gPath, cPath := w.golden.FullPath(p.Slash()), w.candidate.FullPath(p.Slash())
		w.fail(models.Mismatch{
			Kind:          models.KindType,
			Path:          p.String(),
			GoldenPath:    gPath,
			CandidatePath: cPath,
			Message:       fmt.Sprintf("Files differ: %s %s", gPath, cPath),
		})
	}
}

// childNames returns the sorted union of child names on both sides
func (w *treeWalk) childNames(p RelPath) []string {
	set := make(map[string]struct{})
	for _, side := range []storage.Backend{w.golden, w.candidate} {
		children, err := side.ReadDir(w.ctx, p.Slash())
		if err != nil {
			w.fail(models.Mismatch{
				Kind:    models.KindListError,
				Path:    p.String(),
				Message: fmt.Sprintf("error listing %s: %v", side.FullPath(p.Slash()), err),
			})
			continue
		}
		for _, child := range children {
			set[child.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *treeWalk) compareFiles(p RelPath) {
	fmt.Fprintf(w.c.diag, "checking %s\n", p)
	w.result.FilesCompared++

	gPath, cPath := w.golden.FullPath(p.Slash()), w.candidate.FullPath(p.Slash())
	gData := w.read(w.golden, p)
	cData := w.read(w.candidate, p)

	if !bytes.Equal(gData, cData) {
		fmt.Fprintf(w.c.diag, "File: %s\n%s\n", gPath, gData)
		fmt.Fprintf(w.c.diag, "File: %s\n%s\n", cPath, cData)
		w.fail(models.Mismatch{
			Kind:          models.KindContent,
			Path:          p.String(),
			GoldenPath:    gPath,
			CandidatePath: cPath,
			Message:       fmt.Sprintf("Files differ: %s %s", gPath, cPath),
		})
	}

	if w.c.progressReport != nil {
		w.c.progressReport(p)
	}
}

// read returns the full content of a file; on failure it records a
// read error and yields empty content so the walk can continue.
func (w *treeWalk) read(side storage.Backend, p RelPath) []byte {
	data, err := readAll(w.ctx, side, p.Slash())
	if err != nil {
		full := side.FullPath(p.Slash())
		w.fail(models.Mismatch{
			Kind:    models.KindReadError,
			Path:    p.String(),
			Message: fmt.Sprintf("error reading %s: %v", full, err),
		})
		return nil
	}
	return data
}

func readAll(ctx context.Context, side storage.Backend, path string) ([]byte, error) {
	r, err := side.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (w *treeWalk) fail(m models.Mismatch) {
	fmt.Fprintln(w.c.diag, m.Message)
	w.c.logger.Warn(w.ctx, m.Message, logging.Fields{
		"kind": string(m.Kind),
		"path": m.Path,
	})
	w.result.Record(m)
}
