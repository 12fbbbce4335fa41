package cli

import (
	"fmt"
	"strings"

	"github.com/sdejongh/hdrcheck/pkg/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the hdrcheck configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tc := cfg.Toolchain
			fmt.Printf("Compiler: %s\n", commandLine(tc.Compiler))
			fmt.Printf("Generator: %s\n", commandLine(tc.Generator))
			fmt.Printf("Compiler Flags: %s <classes> %s <headers>\n", tc.ClassDirFlag, tc.HeaderDirFlag)
			fmt.Printf("Generator Flags: %s <headers> %s <classes>\n", tc.OutputDirFlag, tc.ClasspathFlag)
			fmt.Printf("Source Pattern: %s\n", cfg.Sources.Pattern)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Color: %s\n", cfg.Output.Color)
			fmt.Printf("Logging: %t\n", cfg.Logging.Enabled)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if !force {
				if _, err := config.LoadFromFile(path); err == nil {
					return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
				}
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func commandLine(tool config.ToolConfig) string {
	return strings.TrimSpace(tool.Program + " " + strings.Join(tool.Args, " "))
}
