// Package harness runs the header cross-check: compile the test sources,
// generate headers from the compiled classes, and compare both header sets.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/hdrcheck/pkg/compare"
	"github.com/sdejongh/hdrcheck/pkg/config"
	"github.com/sdejongh/hdrcheck/pkg/logging"
	"github.com/sdejongh/hdrcheck/pkg/models"
	"github.com/sdejongh/hdrcheck/pkg/storage"
	"github.com/sdejongh/hdrcheck/pkg/toolchain"
)

// Work directory layout
const (
	ClassesDir          = "classes"
	CompilerHeadersDir  = "headers.compiler"
	GeneratorHeadersDir = "headers.generator"
)

// Options configures a run
type Options struct {
	SourceDir     string
	WorkDir       string
	SourcePattern *regexp.Regexp

	ClassDirFlag  string
	HeaderDirFlag string
	OutputDirFlag string
	ClasspathFlag string

	// Clean removes output directories left by a previous run
	Clean bool

	// Diagnostics receives per-path comparison output
	Diagnostics io.Writer
	// GeneratorSink receives the header generator's messages
	GeneratorSink io.Writer
}

// OptionsFromConfig builds run options from configuration
func OptionsFromConfig(cfg *config.Config, sourceDir, workDir string) (Options, error) {
	pattern, err := regexp.Compile(cfg.Sources.Pattern)
	if err != nil {
		return Options{}, fmt.Errorf("invalid source pattern: %w", err)
	}

	return Options{
		SourceDir:     sourceDir,
		WorkDir:       workDir,
		SourcePattern: pattern,
		ClassDirFlag:  cfg.Toolchain.ClassDirFlag,
		HeaderDirFlag: cfg.Toolchain.HeaderDirFlag,
		OutputDirFlag: cfg.Toolchain.OutputDirFlag,
		ClasspathFlag: cfg.Toolchain.ClasspathFlag,
	}, nil
}

// Harness drives one compile/generate/compare run
type Harness struct {
	opts      Options
	compiler  toolchain.Compiler
	generator toolchain.HeaderGenerator
	logger    logging.Logger
	progress  func(path compare.RelPath)
}

// New creates a harness. A nil logger disables logging.
func New(opts Options, compiler toolchain.Compiler, generator toolchain.HeaderGenerator, logger logging.Logger) *Harness {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = io.Discard
	}
	if opts.GeneratorSink == nil {
		opts.GeneratorSink = opts.Diagnostics
	}
	if opts.SourcePattern == nil {
		opts.SourcePattern = regexp.MustCompile(config.DefaultSourcePattern)
	}

	return &Harness{
		opts:      opts,
		compiler:  compiler,
		generator: generator,
		logger:    logger,
	}
}

// SetProgressCallback sets a callback invoked after every compared header pair
func (h *Harness) SetProgressCallback(callback func(path compare.RelPath)) {
	h.progress = callback
}

// Run executes the whole check. Fatal conditions return the partial report
// with StatusError and the cause. Accumulated comparison errors return the
// full report with StatusFailed and an "N errors occurred" error.
func (h *Harness) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{
		ID:        uuid.New().String(),
		SourceDir: h.opts.SourceDir,
		WorkDir:   h.opts.WorkDir,
		StartTime: time.Now(),
	}
	logger := h.logger.WithFields(logging.Fields{"run_id": report.ID})
	comparator := compare.NewTreeComparator(h.opts.Diagnostics, logger)
	if h.progress != nil {
		comparator.SetProgressCallback(h.progress)
	}

	finish := func(status models.RunStatus) {
		report.Status = status
		report.EndTime = time.Now()
		report.Duration = report.EndTime.Sub(report.StartTime)
	}
	fatal := func(err error) (*models.RunReport, error) {
		finish(models.StatusError)
		logger.Error(ctx, "run aborted", err, nil)
		return report, err
	}

	work, err := h.prepareWorkDir(ctx)
	if err != nil {
		return fatal(err)
	}
	classesPath := work.FullPath(ClassesDir)
	compilerHeaders := work.FullPath(CompilerHeadersDir)
	generatorHeaders := work.FullPath(GeneratorHeadersDir)

	sources, err := h.discoverSources(ctx)
	if err != nil {
		return fatal(err)
	}
	report.Counts.SourceFiles = len(sources)
	logger.Info(ctx, "sources selected", logging.Fields{"count": len(sources), "dir": h.opts.SourceDir})

	compilerArgs := []string{h.opts.ClassDirFlag, classesPath, h.opts.HeaderDirFlag, compilerHeaders}
	compilerArgs = append(compilerArgs, sources...)
	rc, err := h.compiler.Compile(ctx, compilerArgs)
	if err != nil {
		return fatal(fmt.Errorf("failed to run compiler: %w", err))
	}
	if rc != 0 {
		return fatal(&models.ToolError{Tool: "compiler", ExitCode: rc})
	}

	binaryNames, err := h.binaryNames(ctx, work)
	if err != nil {
		return fatal(err)
	}

	generatorArgs := []string{h.opts.OutputDirFlag, generatorHeaders}
	if h.opts.ClasspathFlag != "" {
		generatorArgs = append(generatorArgs, h.opts.ClasspathFlag, classesPath)
	}
	generatorArgs = append(generatorArgs, binaryNames...)
	rc, err = h.generator.Run(ctx, generatorArgs, h.opts.GeneratorSink)
	if err != nil {
		return fatal(fmt.Errorf("failed to run header generator: %w", err))
	}
	if rc != 0 {
		return fatal(&models.ToolError{Tool: "generator", ExitCode: rc})
	}

	golden, err := storage.NewLocal(generatorHeaders)
	if err != nil {
		return fatal(fmt.Errorf("failed to open generator headers: %w", err))
	}
	defer golden.Close()

	candidate, err := storage.NewLocal(compilerHeaders)
	if err != nil {
		return fatal(fmt.Errorf("failed to open compiler headers: %w", err))
	}
	defer candidate.Close()

	report.Comparison = comparator.Compare(ctx, golden, candidate)

	if report.Counts.GeneratorHeaders, err = countEntries(ctx, golden); err != nil {
		return fatal(err)
	}
	if report.Counts.CompilerHeaders, err = countEntries(ctx, candidate); err != nil {
		return fatal(err)
	}
	report.Counts.Compared = report.Comparison.FilesCompared

	if !report.Counts.Consistent() {
		m := models.Mismatch{Kind: models.KindCounts, Message: "inconsistent counts"}
		fmt.Fprintln(h.opts.Diagnostics, m.Message)
		logger.Warn(ctx, m.Message, logging.Fields{
			"compiler_headers":  report.Counts.CompilerHeaders,
			"generator_headers": report.Counts.GeneratorHeaders,
			"compared":          report.Counts.Compared,
		})
		report.RunErrors = append(report.RunErrors, m)
	}

	if n := report.ErrorCount(); n > 0 {
		finish(models.StatusFailed)
		logger.Warn(ctx, "run failed", logging.Fields{"errors": n})
		return report, fmt.Errorf("%d errors occurred", n)
	}

	finish(models.StatusSuccess)
	logger.Info(ctx, "run succeeded", logging.Fields{"compared": report.Counts.Compared})
	return report, nil
}

// prepareWorkDir creates the three output directories below WorkDir
func (h *Harness) prepareWorkDir(ctx context.Context) (*storage.Local, error) {
	if err := os.MkdirAll(h.opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	work, err := storage.NewLocal(h.opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open work directory: %w", err)
	}

	for _, dir := range []string{ClassesDir, CompilerHeadersDir, GeneratorHeadersDir} {
		if h.opts.Clean {
			if err := work.Delete(ctx, dir); err != nil {
				return nil, fmt.Errorf("failed to clean %s: %w", dir, err)
			}
		}
		if err := work.MkdirAll(ctx, dir); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return work, nil
}

// discoverSources returns the paths of top-level source files whose names
// match the source pattern, sorted by name
func (h *Harness) discoverSources(ctx context.Context) ([]string, error) {
	src, err := storage.NewLocal(h.opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	defer src.Close()

	entries, err := src.ReadDir(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var sources []string
	for _, entry := range entries {
		if entry.IsDir || !h.opts.SourcePattern.MatchString(entry.Name) {
			continue
		}
		sources = append(sources, filepath.Join(h.opts.SourceDir, entry.Name))
	}
	return sources, nil
}

// binaryNames lists the top-level class files produced by the compiler
func (h *Harness) binaryNames(ctx context.Context, work storage.Backend) ([]string, error) {
	entries, err := work.ReadDir(ctx, ClassesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list compiled classes: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsRegular && toolchain.IsClassFile(entry.Name) {
			names = append(names, toolchain.BinaryName(entry.Name))
		}
	}
	sort.Strings(names)
	return names, nil
}

func countEntries(ctx context.Context, tree storage.Backend) (int, error) {
	entries, err := tree.ReadDir(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to count headers in %s: %w", tree.Root(), err)
	}
	return len(entries), nil
}
