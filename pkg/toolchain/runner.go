package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Result holds the captured output and exit code of a command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one external program with a fixed argument prefix
type Runner struct {
	program  string
	baseArgs []string
	options  Options
}

// Options configures command execution
type Options struct {
	// WorkingDir is the process working directory (empty = inherit)
	WorkingDir string

	// Env is appended to the current environment
	Env map[string]string

	// Stdout and Stderr receive output in addition to capture
	Stdout io.Writer
	Stderr io.Writer
}

// Option modifies Options
type Option func(*Options)

// WithWorkingDir sets the working directory
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv adds environment variables
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		merged := make(map[string]string, len(o.Env)+len(env))
		for k, v := range o.Env {
			merged[k] = v
		}
		for k, v := range env {
			merged[k] = v
		}
		o.Env = merged
	}
}

// WithOutput tees stdout and stderr to the given writers
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Options) {
		o.Stdout = stdout
		o.Stderr = stderr
	}
}

// NewRunner creates a runner for program; baseArgs precede every call's args
func NewRunner(program string, baseArgs []string, opts ...Option) *Runner {
	r := &Runner{
		program:  program,
		baseArgs: append([]string(nil), baseArgs...),
	}
	for _, opt := range opts {
		opt(&r.options)
	}
	return r
}

// Run executes the program. A process that starts and exits nonzero is not
// an error: its code is returned in Result.ExitCode. The error is reserved
// for failures to start or wait for the process.
func (r *Runner) Run(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	options := r.options
	for _, opt := range opts {
		opt(&options)
	}

	cmd := exec.CommandContext(ctx, r.program, append(append([]string(nil), r.baseArgs...), args...)...)

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeTo(&stdoutBuf, options.Stdout)
	cmd.Stderr = teeTo(&stderrBuf, options.Stderr)

	err := cmd.Run()

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("failed to run %s: %w", r.program, err)
	}

	return result, nil
}

func teeTo(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}
