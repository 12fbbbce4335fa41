package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sdejongh/hdrcheck/pkg/compare"
	"github.com/sdejongh/hdrcheck/pkg/harness"
	"github.com/sdejongh/hdrcheck/pkg/output"
	"github.com/sdejongh/hdrcheck/pkg/storage"
	"github.com/spf13/cobra"
)

// CompareFlags holds compare command flags
type CompareFlags struct {
	Golden     string
	Candidate  string
	Backend    string
	Progress   bool
	Output     string
	DiffReport string
	DiffFormat string
	Log        LogFlags
}

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two existing header trees",
		Long: `Compare a golden tree against a candidate tree without running any tool.
Every path present in either tree is checked; all differences are reported
before the command exits with 1. Identical trees exit with 0.`,
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&compareFlags.Golden, "golden", "g", "", "reference tree (required)")
	cmd.Flags().StringVarP(&compareFlags.Candidate, "candidate", "c", "", "tree validated against the golden tree (required)")
	cmd.MarkFlagRequired("golden")
	cmd.MarkFlagRequired("candidate")

	cmd.Flags().StringVar(&compareFlags.Backend, "backend", "local", "filesystem backend: local, billy")
	cmd.Flags().BoolVarP(&compareFlags.Progress, "progress", "p", false, "show a progress bar")
	cmd.Flags().StringVarP(&compareFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&compareFlags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&compareFlags.DiffFormat, "diff-format", "human", "differences report format: human, json")
	addLogFlags(cmd, &compareFlags.Log)

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateCompareFlags(); err != nil {
		return err
	}

	cfg, err := prepareConfig(compareFlags.Output, compareFlags.Log)
	if err != nil {
		return err
	}
	if compareFlags.Progress {
		cfg.Output.Progress = true
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	golden, err := openTree(compareFlags.Golden, compareFlags.Backend)
	if err != nil {
		return fmt.Errorf("failed to open golden tree: %w", err)
	}
	defer golden.Close()

	candidate, err := openTree(compareFlags.Candidate, compareFlags.Backend)
	if err != nil {
		return fmt.Errorf("failed to open candidate tree: %w", err)
	}
	defer candidate.Close()

	diag := diagnosticsWriter(cfg)

	var progress func(compare.RelPath)
	var bar *output.ProgressBar
	if cfg.Output.Progress && !cfg.Output.Quiet {
		total, err := harness.CountFiles(ctx, golden)
		if err != nil {
			return fmt.Errorf("failed to scan golden tree: %w", err)
		}
		// The bar owns the terminal; per-path lines would break it
		diag = nil
		bar = output.NewProgressBar(total, os.Stderr)
		progress = func(p compare.RelPath) {
			bar.Increment(p.String())
		}
	}

	formatter := output.New(cfg.Output.Format, cfg.Output.Color)
	formatter.Start(os.Stdout, "")

	report, _ := harness.CompareTrees(ctx, golden, candidate, diag, logger, progress)
	if bar != nil {
		bar.Finish()
	}
	formatter.Complete(report)

	if compareFlags.DiffReport != "" || cmd.Flags().Changed("diff-format") {
		if err := output.WriteDifferencesReport(report, compareFlags.DiffReport, compareFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	logger.Close()
	os.Exit(report.Status.ExitCode())
	return nil
}

// openTree opens a directory with the selected backend
func openTree(path, backend string) (storage.Backend, error) {
	if backend == "billy" {
		return storage.NewOS(path), nil
	}
	local, err := storage.NewLocal(path)
	if err != nil {
		return nil, err
	}
	return local, nil
}
