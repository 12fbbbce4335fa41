package main

import (
	"fmt"
	"os"

	"github.com/sdejongh/hdrcheck/internal/cli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Setup failures share the exit code of fatal tool errors
		os.Exit(2)
	}
}

func run() error {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = date

	rootCmd := &cobra.Command{
		Use:   "hdrcheck",
		Short: "Cross-check native headers emitted by a compiler and a header generator",
		Long: `hdrcheck compiles a set of Java test classes with a compiler that emits
native headers, runs a standalone header generator on the compiled classes,
and verifies that both tools produced byte-identical header trees.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewRunCommand())
	rootCmd.AddCommand(cli.NewCompareCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
