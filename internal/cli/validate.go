package cli

import (
	"fmt"

	"github.com/sdejongh/hdrcheck/internal/platform"
	"github.com/sdejongh/hdrcheck/pkg/config"
)

// validateRunFlags validates the run command flags
func validateRunFlags() error {
	src, err := platform.ExistingDir(runFlags.Source)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	runFlags.Source = src

	if err := platform.ValidatePath(runFlags.WorkDir); err != nil {
		return fmt.Errorf("work directory: %w", err)
	}
	runFlags.WorkDir = platform.NormalizePath(runFlags.WorkDir)

	if runFlags.Output != "" && !validFormats[runFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", runFlags.Output)
	}
	if !validFormats[runFlags.DiffFormat] {
		return fmt.Errorf("invalid differences format: %s (valid: human, json)", runFlags.DiffFormat)
	}

	return nil
}

// validateCompareFlags validates the compare command flags
func validateCompareFlags() error {
	golden, err := platform.ExistingDir(compareFlags.Golden)
	if err != nil {
		return fmt.Errorf("golden tree: %w", err)
	}
	candidate, err := platform.ExistingDir(compareFlags.Candidate)
	if err != nil {
		return fmt.Errorf("candidate tree: %w", err)
	}

	compareFlags.Golden = golden
	compareFlags.Candidate = candidate

	if compareFlags.Output != "" && !validFormats[compareFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", compareFlags.Output)
	}
	if !validFormats[compareFlags.DiffFormat] {
		return fmt.Errorf("invalid differences format: %s (valid: human, json)", compareFlags.DiffFormat)
	}
	if !validBackends[compareFlags.Backend] {
		return fmt.Errorf("invalid backend: %s (valid: local, billy)", compareFlags.Backend)
	}

	return nil
}

var validFormats = map[string]bool{
	"human": true,
	"json":  true,
}

var validBackends = map[string]bool{
	"local": true,
	"billy": true,
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// prepareConfig loads the configuration, overlays the command's output and
// logging flags and validates the result
func prepareConfig(format string, logFlags LogFlags) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyOutputFlags(cfg, format)
	applyLogFlags(cfg, logFlags)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOutputFlags overrides output config with command-line flags
func applyOutputFlags(cfg *config.Config, format string) {
	if format != "" {
		cfg.Output.Format = format
	}
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}
