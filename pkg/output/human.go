package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sdejongh/hdrcheck/pkg/models"
	"golang.org/x/term"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer    io.Writer
	colorMode string
	pass      *color.Color
	fail      *color.Color
}

// NewHumanFormatter creates a new human-readable formatter.
// colorMode is "auto" (colour on terminals), "always" or "never".
func NewHumanFormatter(colorMode string) *HumanFormatter {
	return &HumanFormatter{
		colorMode: colorMode,
		pass:      color.New(color.FgGreen, color.Bold),
		fail:      color.New(color.FgRed, color.Bold),
	}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, runID string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	if useColor(writer, f.colorMode) {
		f.pass.EnableColor()
		f.fail.EnableColor()
	} else {
		f.pass.DisableColor()
		f.fail.DisableColor()
	}
	return nil
}

// Complete prints the summary counts, status and errors
func (f *HumanFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	w := f.writer
	c := report.Counts

	if report.SourceDir != "" {
		fmt.Fprintf(w, "%d source files found\n", c.SourceFiles)
		fmt.Fprintf(w, "%d header files generated by compiler\n", c.CompilerHeaders)
		fmt.Fprintf(w, "%d header files generated by generator\n", c.GeneratorHeaders)
		fmt.Fprintf(w, "%d header files compared\n", c.Compared)
	} else if report.Comparison != nil {
		fmt.Fprintf(w, "%d entries in %s\n", c.GeneratorHeaders, report.Comparison.GoldenRoot)
		fmt.Fprintf(w, "%d entries in %s\n", c.CompilerHeaders, report.Comparison.CandidateRoot)
		fmt.Fprintf(w, "%d files compared\n", c.Compared)
	}

	fmt.Fprintf(w, "\n")
	switch report.Status {
	case models.StatusSuccess:
		fmt.Fprintf(w, "Status: %s", f.pass.Sprint("PASS"))
	default:
		fmt.Fprintf(w, "Status: %s", f.fail.Sprint("FAIL"))
	}
	fmt.Fprintf(w, " (%s in %s)\n", report.Status, report.Duration.Round(time.Millisecond))

	if mismatches := report.Mismatches(); len(mismatches) > 0 {
		fmt.Fprintf(w, "\n%d errors:\n", len(mismatches))
		for _, m := range mismatches {
			fmt.Fprintf(w, "  %s\n", m.Message)
		}
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// useColor decides whether ANSI colours are written to w
func useColor(w io.Writer, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
