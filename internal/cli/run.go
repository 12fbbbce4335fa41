package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/hdrcheck/pkg/config"
	"github.com/sdejongh/hdrcheck/pkg/harness"
	"github.com/sdejongh/hdrcheck/pkg/models"
	"github.com/sdejongh/hdrcheck/pkg/output"
	"github.com/sdejongh/hdrcheck/pkg/toolchain"
	"github.com/spf13/cobra"
)

// SourceDirEnv names the environment variable supplying the default source directory
const SourceDirEnv = "TEST_SRC"

// RunFlags holds run command flags
type RunFlags struct {
	Source     string
	WorkDir    string
	Clean      bool
	Output     string
	DiffReport string
	DiffFormat string
	Log        LogFlags
}

var runFlags RunFlags

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile the test classes and cross-check both header sets",
		Long: `Compile every TestClassN.java source with the compiler, which emits native
headers as a side effect, then run the header generator on the compiled
classes and compare both header trees file by file.

Exit codes: 0 when the header sets are identical, 1 when differences or
inconsistent counts were found, 2 when a tool failed or the run could not
be set up.`,
		RunE: runRun,
	}

	defaultSrc := os.Getenv(SourceDirEnv)
	if defaultSrc == "" {
		defaultSrc = "."
	}

	cmd.Flags().StringVar(&runFlags.Source, "src", defaultSrc, "directory holding the test sources (default from $"+SourceDirEnv+")")
	cmd.Flags().StringVarP(&runFlags.WorkDir, "work", "w", ".", "directory receiving classes and both header sets")
	cmd.Flags().BoolVar(&runFlags.Clean, "clean", false, "remove output directories left by a previous run")
	cmd.Flags().StringVarP(&runFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&runFlags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&runFlags.DiffFormat, "diff-format", "human", "differences report format: human, json")
	addLogFlags(cmd, &runFlags.Log)

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateRunFlags(); err != nil {
		return err
	}

	// Load configuration and override it with command-line flags
	cfg, err := prepareConfig(runFlags.Output, runFlags.Log)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	opts, err := harness.OptionsFromConfig(cfg, runFlags.Source, runFlags.WorkDir)
	if err != nil {
		return err
	}
	opts.Clean = runFlags.Clean
	opts.Diagnostics = diagnosticsWriter(cfg)
	toolOutput := opts.Diagnostics
	if cfg.Output.Quiet {
		toolOutput = os.Stderr
	}
	compiler, generator := newCollaborators(cfg, toolOutput)
	opts.GeneratorSink = toolOutput

	h := harness.New(opts, compiler, generator, logger)

	formatter := output.New(cfg.Output.Format, cfg.Output.Color)
	formatter.Start(os.Stdout, "")

	report, runErr := h.Run(ctx)
	if report.Status == models.StatusError {
		formatter.Error(runErr)
	}
	formatter.Complete(report)

	if runFlags.DiffReport != "" || cmd.Flags().Changed("diff-format") {
		if err := output.WriteDifferencesReport(report, runFlags.DiffReport, runFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	logger.Close()
	os.Exit(report.Status.ExitCode())
	return nil
}

// newCollaborators builds the external compiler and header generator
func newCollaborators(cfg *config.Config, toolOutput io.Writer) (toolchain.Compiler, toolchain.HeaderGenerator) {
	tc := cfg.Toolchain
	compiler := toolchain.NewCommandCompiler(tc.Compiler.Program, tc.Compiler.Args, toolOutput,
		toolchain.WithEnv(tc.Compiler.Env))
	generator := toolchain.NewCommandGenerator(tc.Generator.Program, tc.Generator.Args,
		toolchain.WithEnv(tc.Generator.Env))
	return compiler, generator
}

// diagnosticsWriter returns where per-path diagnostics go: nowhere when
// quiet, stderr when stdout carries JSON, stdout otherwise
func diagnosticsWriter(cfg *config.Config) io.Writer {
	switch {
	case cfg.Output.Quiet:
		return io.Discard
	case cfg.Output.Format == "json":
		return os.Stderr
	default:
		return os.Stdout
	}
}
