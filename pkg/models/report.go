package models

import (
	"time"
)

// RunReport represents the results of a compile/generate/compare run
type RunReport struct {
	ID        string
	SourceDir string
	WorkDir   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Counts Counts

	// Comparison is nil when the run aborted before comparing
	Comparison *ComparisonResult

	// RunErrors holds run-level mismatches such as inconsistent counts
	RunErrors []Mismatch

	Status RunStatus
}

// Counts holds the summary numbers printed at the end of a run
type Counts struct {
	SourceFiles      int `json:"source_files"`
	CompilerHeaders  int `json:"compiler_headers"`
	GeneratorHeaders int `json:"generator_headers"`
	Compared         int `json:"compared"`
}

// Consistent reports whether both header sets and the compared pairs agree
func (c Counts) Consistent() bool {
	return c.CompilerHeaders == c.GeneratorHeaders && c.CompilerHeaders == c.Compared
}

// Mismatches returns comparison mismatches followed by run-level ones
func (r *RunReport) Mismatches() []Mismatch {
	var all []Mismatch
	if r.Comparison != nil {
		all = append(all, r.Comparison.Mismatches...)
	}
	return append(all, r.RunErrors...)
}

// ErrorCount returns the total number of accumulated errors
func (r *RunReport) ErrorCount() int {
	n := len(r.RunErrors)
	if r.Comparison != nil {
		n += r.Comparison.Errors()
	}
	return n
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates identical header sets and consistent counts
	StatusSuccess RunStatus = "success"
	// StatusFailed indicates accumulated comparison errors
	StatusFailed RunStatus = "failed"
	// StatusError indicates a fatal condition aborted the run
	StatusError RunStatus = "error"
)

// ExitCode returns the process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFailed:
		return 1
	case StatusError:
		return 2
	default:
		return 2
	}
}
