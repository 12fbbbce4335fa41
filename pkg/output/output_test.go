package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/hdrcheck/pkg/models"
)

func failedReport() *models.RunReport {
	return &models.RunReport{
		ID:        "run-1",
		SourceDir: "/src",
		Duration:  1500 * time.Millisecond,
		Counts:    models.Counts{SourceFiles: 3, CompilerHeaders: 3, GeneratorHeaders: 2, Compared: 2},
		Comparison: &models.ComparisonResult{
			GoldenRoot:    "/work/headers.generator",
			CandidateRoot: "/work/headers.compiler",
			FilesCompared: 2,
			PathsVisited:  4,
			Mismatches: []models.Mismatch{
				{Kind: models.KindContent, Path: "A.h", Message: "Files differ: g/A.h c/A.h"},
				{Kind: models.KindOnlyInCandidate, Path: "C.h", Message: "Only in c: C.h"},
			},
		},
		RunErrors: []models.Mismatch{{Kind: models.KindCounts, Message: "inconsistent counts"}},
		Status:    models.StatusFailed,
	}
}

func TestHumanFormatterRunSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter("never")
	f.Start(&buf, "run-1")

	if err := f.Complete(failedReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"3 source files found\n",
		"3 header files generated by compiler\n",
		"2 header files generated by generator\n",
		"2 header files compared\n",
		"Status: FAIL (failed in 1.5s)\n",
		"3 errors:\n",
		"  Files differ: g/A.h c/A.h\n",
		"  inconsistent counts\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour disabled but output has escape codes:\n%s", out)
	}
}

func TestHumanFormatterCompareSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter("never")
	f.Start(&buf, "")

	report := &models.RunReport{
		Counts:     models.Counts{CompilerHeaders: 1, GeneratorHeaders: 1, Compared: 1},
		Comparison: &models.ComparisonResult{GoldenRoot: "a", CandidateRoot: "b", FilesCompared: 1},
		Status:     models.StatusSuccess,
	}
	f.Complete(report)

	out := buf.String()
	for _, want := range []string{"1 entries in a\n", "1 entries in b\n", "1 files compared\n", "Status: PASS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "errors:") {
		t.Errorf("successful run should not list errors:\n%s", out)
	}
}

func TestHumanFormatterColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter("always")
	f.Start(&buf, "")
	f.Complete(&models.RunReport{Status: models.StatusSuccess})

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("colour forced but no escape codes:\n%q", buf.String())
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if useColor(&buf, "auto") {
		t.Error("auto mode should not colour a buffer")
	}
	if !useColor(&buf, "always") {
		t.Error("always mode should colour")
	}
	if useColor(os.Stdout, "never") {
		t.Error("never mode should not colour")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&buf, "run-1")
	f.Error(errors.New("boom"))

	if err := f.Complete(failedReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var data JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if data.Status != "failed" || data.ExitCode != 1 {
		t.Errorf("status = %s/%d, want failed/1", data.Status, data.ExitCode)
	}
	if data.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", data.DurationMs)
	}
	if data.Counts.SourceFiles != 3 || data.PathsVisited != 4 {
		t.Errorf("counts = %+v visited=%d", data.Counts, data.PathsVisited)
	}
	if len(data.Mismatches) != 3 {
		t.Errorf("len(Mismatches) = %d, want 3", len(data.Mismatches))
	}
	if len(data.Errors) != 1 || data.Errors[0] != "boom" {
		t.Errorf("Errors = %v", data.Errors)
	}
}

func TestNew(t *testing.T) {
	if New("json", "never").Name() != "json" {
		t.Error("json format should return JSONFormatter")
	}
	if New("human", "never").Name() != "human" {
		t.Error("human format should return HumanFormatter")
	}
	if New("", "never").Name() != "human" {
		t.Error("unknown format should fall back to human")
	}
}

func TestWriteDifferencesReport(t *testing.T) {
	t.Run("NoMismatches", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diff.txt")
		report := &models.RunReport{Comparison: &models.ComparisonResult{}, Status: models.StatusSuccess}

		if err := WriteDifferencesReport(report, path, "human"); err != nil {
			t.Fatalf("WriteDifferencesReport() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("report file should not be created without mismatches")
		}
	})

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diff.txt")
		if err := WriteDifferencesReport(failedReport(), path, "human"); err != nil {
			t.Fatalf("WriteDifferencesReport() error = %v", err)
		}
		content, _ := os.ReadFile(path)
		out := string(content)

		for _, want := range []string{
			"Total Differences: 3",
			"Count Mismatches (1)",
			"Only in Candidate (1)",
			"Content Differences (1)",
			"  A.h\n    Files differ: g/A.h c/A.h\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
		// Groups follow the fixed kind order
		if strings.Index(out, "Count Mismatches") > strings.Index(out, "Content Differences") {
			t.Errorf("groups out of order:\n%s", out)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diff.json")
		if err := WriteDifferencesReport(failedReport(), path, "json"); err != nil {
			t.Fatalf("WriteDifferencesReport() error = %v", err)
		}
		content, _ := os.ReadFile(path)

		var data struct {
			TotalCount  int               `json:"total_count"`
			GoldenRoot  string            `json:"golden_root"`
			Differences []models.Mismatch `json:"differences"`
		}
		if err := json.Unmarshal(content, &data); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if data.TotalCount != 3 || len(data.Differences) != 3 {
			t.Errorf("total = %d, differences = %d, want 3/3", data.TotalCount, len(data.Differences))
		}
		if data.GoldenRoot != "/work/headers.generator" {
			t.Errorf("GoldenRoot = %q", data.GoldenRoot)
		}
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "diff.txt")
		if err := WriteDifferencesReport(failedReport(), path, "human"); err == nil {
			t.Error("expected error for missing parent directory")
		}
	})
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(2, &buf)
	bar.Increment("A.h")
	bar.Increment("B.h")
	bar.Finish()

	if bar.Current() != 2 {
		t.Errorf("Current() = %d, want 2", bar.Current())
	}
}
