package output

import (
	"io"

	"github.com/sdejongh/hdrcheck/pkg/models"
)

// Formatter defines the interface for the end-of-run summary
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Start binds the formatter to a writer for the given run
	Start(writer io.Writer, runID string) error

	// Complete writes the summary of a finished (or aborted) run
	Complete(report *models.RunReport) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for a format name ("human" or "json")
func New(format string, colorMode string) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	return NewHumanFormatter(colorMode)
}

// kindOrder is the display order of mismatch groups
var kindOrder = []models.MismatchKind{
	models.KindCounts,
	models.KindReadError,
	models.KindListError,
	models.KindOnlyInGolden,
	models.KindOnlyInCandidate,
	models.KindType,
	models.KindContent,
}

var kindLabels = map[models.MismatchKind]string{
	models.KindCounts:          "Count Mismatches",
	models.KindReadError:       "Read Errors",
	models.KindListError:       "Listing Errors",
	models.KindOnlyInGolden:    "Only in Golden",
	models.KindOnlyInCandidate: "Only in Candidate",
	models.KindType:            "Type Mismatches",
	models.KindContent:         "Content Differences",
}
