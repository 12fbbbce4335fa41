package config

import (
	"regexp"

	"github.com/sdejongh/hdrcheck/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Sources   SourcesConfig   `yaml:"sources"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ToolConfig describes how to launch one collaborator
type ToolConfig struct {
	Program string            `yaml:"program"`
	Args    []string          `yaml:"args"` // Passed before the harness arguments
	Env     map[string]string `yaml:"env,omitempty"`
}

// ToolchainConfig holds the two collaborators and their directory flags
type ToolchainConfig struct {
	Compiler      ToolConfig `yaml:"compiler"`
	Generator     ToolConfig `yaml:"generator"`
	ClassDirFlag  string     `yaml:"class_dir_flag"`
	HeaderDirFlag string     `yaml:"header_dir_flag"`
	OutputDirFlag string     `yaml:"output_dir_flag"`
	ClasspathFlag string     `yaml:"classpath_flag"` // Empty disables the classpath argument
}

// SourcesConfig selects the input sources
type SourcesConfig struct {
	Pattern string `yaml:"pattern"` // Regular expression matched against file names
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar while comparing
	Color    string `yaml:"color"`    // "auto", "always" or "never"
	Quiet    bool   `yaml:"quiet"`    // Suppress per-path diagnostics
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// DefaultSourcePattern matches the test classes fed to the compiler
const DefaultSourcePattern = `^TestClass[0-9]+\.java$`

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Compiler: ToolConfig{
				Program: "javac",
				Args:    []string{"-XDjavah:full"},
			},
			Generator: ToolConfig{
				Program: "javah",
			},
			ClassDirFlag:  "-d",
			HeaderDirFlag: "-h",
			OutputDirFlag: "-d",
			ClasspathFlag: "-classpath",
		},
		Sources: SourcesConfig{
			Pattern: DefaultSourcePattern,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: false,
			Color:    "auto",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Toolchain.Compiler.Program == "" {
		return &models.ValidationError{
			Field:   "toolchain.compiler.program",
			Message: "is required",
		}
	}

	if c.Toolchain.Generator.Program == "" {
		return &models.ValidationError{
			Field:   "toolchain.generator.program",
			Message: "is required",
		}
	}

	dirFlags := map[string]string{
		"toolchain.class_dir_flag":  c.Toolchain.ClassDirFlag,
		"toolchain.header_dir_flag": c.Toolchain.HeaderDirFlag,
		"toolchain.output_dir_flag": c.Toolchain.OutputDirFlag,
	}
	for field, flag := range dirFlags {
		if flag == "" {
			return &models.ValidationError{Field: field, Message: "must not be empty"}
		}
	}

	if _, err := regexp.Compile(c.Sources.Pattern); err != nil || c.Sources.Pattern == "" {
		return &models.ValidationError{
			Field:   "sources.pattern",
			Message: "must be a valid regular expression",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[c.Output.Color] {
		return &models.ValidationError{
			Field:   "output.color",
			Message: "must be 'auto', 'always', or 'never'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
