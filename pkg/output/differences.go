package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/hdrcheck/pkg/models"
)

// WriteDifferencesReport writes every accumulated mismatch of a run.
// Format can be "human" or "json"; an empty path writes to stdout.
// Nothing is written when the run has no mismatches.
func WriteDifferencesReport(report *models.RunReport, path string, format string) error {
	if report.ErrorCount() == 0 {
		return nil
	}

	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create differences file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "json":
		return writeDifferencesJSON(report, w)
	default:
		return writeDifferencesHuman(report, w)
	}
}

// writeDifferencesHuman writes mismatches grouped by kind
func writeDifferencesHuman(report *models.RunReport, w io.Writer) error {
	mismatches := report.Mismatches()

	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	if report.ID != "" {
		fmt.Fprintf(w, "Run: %s\n", report.ID)
	}
	if report.Comparison != nil {
		fmt.Fprintf(w, "Golden: %s\n", report.Comparison.GoldenRoot)
		fmt.Fprintf(w, "Candidate: %s\n", report.Comparison.CandidateRoot)
	}
	fmt.Fprintf(w, "\nTotal Differences: %d\n\n", len(mismatches))

	byKind := make(map[models.MismatchKind][]models.Mismatch)
	for _, m := range mismatches {
		byKind[m.Kind] = append(byKind[m.Kind], m)
	}

	for _, kind := range kindOrder {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d)", kindLabels[kind], len(group))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, m := range group {
			if m.Path != "" {
				fmt.Fprintf(w, "  %s\n", m.Path)
				fmt.Fprintf(w, "    %s\n", m.Message)
			} else {
				fmt.Fprintf(w, "  %s\n", m.Message)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes mismatches as a JSON document
func writeDifferencesJSON(report *models.RunReport, w io.Writer) error {
	out := struct {
		Generated     string            `json:"generated"`
		RunID         string            `json:"run_id,omitempty"`
		GoldenRoot    string            `json:"golden_root,omitempty"`
		CandidateRoot string            `json:"candidate_root,omitempty"`
		TotalCount    int               `json:"total_count"`
		Differences   []models.Mismatch `json:"differences"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		RunID:       report.ID,
		TotalCount:  report.ErrorCount(),
		Differences: report.Mismatches(),
	}
	if report.Comparison != nil {
		out.GoldenRoot = report.Comparison.GoldenRoot
		out.CandidateRoot = report.Comparison.CandidateRoot
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
