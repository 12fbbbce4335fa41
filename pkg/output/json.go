package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/hdrcheck/pkg/models"
)

// JSONFormatter formats the run summary as one JSON document
type JSONFormatter struct {
	writer io.Writer
	runID  string
	errors []string
}

// JSONReportData is the document written by JSONFormatter
type JSONReportData struct {
	ID            string            `json:"id,omitempty"`
	Status        string            `json:"status"`
	ExitCode      int               `json:"exit_code"`
	Duration      string            `json:"duration"`
	DurationMs    int64             `json:"duration_ms"`
	SourceDir     string            `json:"source_dir,omitempty"`
	GoldenRoot    string            `json:"golden_root,omitempty"`
	CandidateRoot string            `json:"candidate_root,omitempty"`
	Counts        models.Counts     `json:"counts"`
	PathsVisited  int               `json:"paths_visited"`
	Mismatches    []models.Mismatch `json:"mismatches,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, runID string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.runID = runID
	return nil
}

// Complete writes the report as indented JSON
func (f *JSONFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	data := JSONReportData{
		ID:         report.ID,
		Status:     string(report.Status),
		ExitCode:   report.Status.ExitCode(),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		SourceDir:  report.SourceDir,
		Counts:     report.Counts,
		Mismatches: report.Mismatches(),
		Errors:     f.errors,
	}
	if data.ID == "" {
		data.ID = f.runID
	}
	if report.Comparison != nil {
		data.GoldenRoot = report.Comparison.GoldenRoot
		data.CandidateRoot = report.Comparison.CandidateRoot
		data.PathsVisited = report.Comparison.PathsVisited
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records a fatal error for inclusion in the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
