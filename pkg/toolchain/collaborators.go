package toolchain

import (
	"context"
	"io"
	"os"
	"strings"
)

// Compiler compiles sources into class files and emits one header set.
// The exit code follows process conventions: 0 is success. The error is
// only for failures to invoke the compiler at all.
type Compiler interface {
	Compile(ctx context.Context, args []string) (int, error)
}

// HeaderGenerator emits headers for the named classes, writing its
// messages to sink.
type HeaderGenerator interface {
	Run(ctx context.Context, args []string, sink io.Writer) (int, error)
}

// CompilerFunc adapts a function to the Compiler interface
type CompilerFunc func(ctx context.Context, args []string) (int, error)

// Compile calls f
func (f CompilerFunc) Compile(ctx context.Context, args []string) (int, error) {
	return f(ctx, args)
}

// GeneratorFunc adapts a function to the HeaderGenerator interface
type GeneratorFunc func(ctx context.Context, args []string, sink io.Writer) (int, error)

// Run calls f
func (f GeneratorFunc) Run(ctx context.Context, args []string, sink io.Writer) (int, error) {
	return f(ctx, args, sink)
}

// CommandCompiler runs an external compiler program
type CommandCompiler struct {
	runner *Runner
	output io.Writer
}

// NewCommandCompiler creates a compiler backed by program; its output is
// forwarded to output (os.Stderr when nil)
func NewCommandCompiler(program string, baseArgs []string, output io.Writer, opts ...Option) *CommandCompiler {
	if output == nil {
		output = os.Stderr
	}
	return &CommandCompiler{
		runner: NewRunner(program, baseArgs, opts...),
		output: output,
	}
}

// Compile implements Compiler
func (c *CommandCompiler) Compile(ctx context.Context, args []string) (int, error) {
	result, err := c.runner.Run(ctx, args, WithOutput(c.output, c.output))
	if err != nil {
		return -1, err
	}
	return result.ExitCode, nil
}

// CommandGenerator runs an external header generator program
type CommandGenerator struct {
	runner *Runner
}

// NewCommandGenerator creates a header generator backed by program
func NewCommandGenerator(program string, baseArgs []string, opts ...Option) *CommandGenerator {
	return &CommandGenerator{runner: NewRunner(program, baseArgs, opts...)}
}

// Run implements HeaderGenerator; both output streams go to sink
func (g *CommandGenerator) Run(ctx context.Context, args []string, sink io.Writer) (int, error) {
	if sink == nil {
		sink = io.Discard
	}
	result, err := g.runner.Run(ctx, args, WithOutput(sink, sink))
	if err != nil {
		return -1, err
	}
	return result.ExitCode, nil
}

// ClassSuffix is the file suffix of compiled artifacts
const ClassSuffix = ".class"

// NestedDelimiter separates outer and nested type names in class file names
const NestedDelimiter = "$"

// IsClassFile reports whether name is a compiled artifact
func IsClassFile(name string) bool {
	return strings.HasSuffix(name, ClassSuffix) && len(name) > len(ClassSuffix)
}

// BinaryName infers the dotted type name from a class file name:
// "Outer$Inner.class" becomes "Outer.Inner".
func BinaryName(fileName string) string {
	name := strings.TrimSuffix(fileName, ClassSuffix)
	return strings.ReplaceAll(name, NestedDelimiter, ".")
}
