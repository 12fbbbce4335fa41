package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newBufferLogger(format Format, level Level) (*StreamLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewStreamLogger(&buf, format, level)
	l.now = fixedNow
	return l, &buf
}

func TestStreamLogger_LogLevels(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", nil, nil)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level should be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("missing warn line, got:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("missing error line, got:\n%s", out)
	}
}

func TestStreamLogger_TextFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, DebugLevel)

	logger.Error(context.Background(), "compare failed", errors.New("boom"), Fields{"path": "A.h", "count": 2})

	want := `2024-03-01T12:00:00.000Z [ERROR] compare failed error="boom" count=2 path=A.h` + "\n"
	if buf.String() != want {
		t.Errorf("text line = %q, want %q", buf.String(), want)
	}
}

func TestStreamLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, InfoLevel)

	logger.Info(context.Background(), "checking", Fields{"path": "A.h"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON line %q: %v", buf.String(), err)
	}
	if entry["level"] != "INFO" || entry["message"] != "checking" || entry["path"] != "A.h" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["timestamp"] != "2024-03-01T12:00:00Z" {
		t.Errorf("timestamp = %v", entry["timestamp"])
	}
}

func TestStreamLogger_WithFields(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, InfoLevel)

	runLogger := logger.WithFields(Fields{"run_id": "abc"})
	runLogger.Info(context.Background(), "started", Fields{"step": "compile"})
	logger.Info(context.Background(), "plain", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], "started run_id=abc step=compile") {
		t.Errorf("derived logger line = %q", lines[0])
	}
	if strings.Contains(lines[1], "run_id") {
		t.Errorf("parent logger should not carry derived fields: %q", lines[1])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	logPath := filepath.Join(tempDir, "nested", "hdrcheck.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    100,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		logger.Info(context.Background(), "a reasonably long log message to force rotation", nil)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected first backup: %v", err)
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Errorf("backups beyond MaxBackups should be removed")
	}

	// Writes after Close are discarded rather than panicking
	logger.Info(context.Background(), "after close", nil)
}

func TestNullLogger(t *testing.T) {
	var logger Logger = NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "x", nil)
	logger.Info(ctx, "x", nil)
	logger.Warn(ctx, "x", nil)
	logger.Error(ctx, "x", errors.New("x"), nil)

	if logger.WithFields(Fields{"a": 1}) != logger {
		t.Error("WithFields() should return the same null logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be json")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat should default to text")
	}
}
