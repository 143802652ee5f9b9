package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"invalid", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := LevelString(test.level); got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %v", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected default output stderr, got %s", cfg.Output)
	}
	if !cfg.RedactAuthors {
		t.Error("author redaction should be on by default")
	}
	if cfg.Component != "rsidscan" {
		t.Errorf("Component = %q", cfg.Component)
	}
	if !strings.HasSuffix(cfg.FilePath, "rsidscan.log") {
		t.Errorf("FilePath = %q", cfg.FilePath)
	}
}

func TestShouldRedact(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"author", true},
		{"Author", true},
		{"authors", true},
		{"creator", true},
		{"last_modified_by", true},
		{"modified_by", true},
		{"rsid", false},
		{"run_id", false},
		{"path", false},
		{"words", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			if got := shouldRedact(test.key); got != test.expected {
				t.Errorf("shouldRedact(%q) = %v, expected %v", test.key, got, test.expected)
			}
		})
	}
}

// =============================================================================
// Output Tests
// =============================================================================

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestJSONRedaction(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Level: LevelInfo, Format: FormatJSON, Component: "test", RedactAuthors: true}
	logger := NewWithWriter(cfg, &buf)

	logger.Info("parsed metadata", "creator", "Jane Doe", "words", 12)

	entry := decodeLine(t, &buf)
	if entry["creator"] != Redacted {
		t.Errorf("creator = %v, want redacted", entry["creator"])
	}
	if entry["words"] != float64(12) {
		t.Errorf("words = %v", entry["words"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestRedactionDisabled(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Level: LevelInfo, Format: FormatJSON}
	NewWithWriter(cfg, &buf).Info("parsed metadata", "author", "Jane Doe")

	if entry := decodeLine(t, &buf); entry["author"] != "Jane Doe" {
		t.Errorf("author = %v", entry["author"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelWarn}, &buf)

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestWithRunIDAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: LevelInfo, Format: FormatJSON}, &buf)

	ctx := ContextWithRunID(context.Background(), "run-789")
	logger.WithContext(ctx).WithComponent("rsid").Info("extracted")

	entry := decodeLine(t, &buf)
	if entry["run_id"] != "run-789" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if entry["component"] != "rsid" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestRunIDFromContext(t *testing.T) {
	if got := RunIDFromContext(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if logger := Discard(); logger.WithContext(context.Background()) != logger {
		t.Error("WithContext without a run ID should return the same logger")
	}
}

func TestSetDefaultRoutesSlog(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cfg := &Config{Level: LevelInfo, Format: FormatJSON, RedactAuthors: true}
	SetDefault(NewWithWriter(cfg, &buf))

	slog.Info("package-level record", "author", "Jane Doe")

	entry := decodeLine(t, &buf)
	if entry["msg"] != "package-level record" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["author"] != Redacted {
		t.Errorf("author = %v, want redacted", entry["author"])
	}
}

func TestLoggerFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "rsidscan.log")
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = logPath

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("hello")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q", data)
	}
}

// =============================================================================
// FileRotator Tests
// =============================================================================

func TestFileRotator(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1, MaxBackups: 3})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	testData := []byte("test log line\n")
	n, err := rotator.Write(testData)
	if err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if n != len(testData) {
		t.Errorf("expected to write %d bytes, wrote %d", len(testData), n)
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
	if backups, _ := rotator.Backups(); len(backups) != 0 {
		t.Errorf("unexpected backups: %v", backups)
	}
}

func TestFileRotatorRotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}
	defer rotator.Close()

	chunk := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 5; i++ {
		if _, err := rotator.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	backups, err := rotator.Backups()
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected pruning to keep 2 backups, got %v", backups)
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(chunk)) {
		t.Errorf("current file size = %d, want %d", info.Size(), len(chunk))
	}
}

func TestFileRotatorCompress(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 1, MaxBackups: 5, Compress: true})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}

	chunk := bytes.Repeat([]byte("y"), 700*1024)
	rotator.Write(chunk)
	rotator.Write(chunk)
	if err := rotator.Close(); err != nil {
		t.Fatal(err)
	}

	backups, _ := rotator.Backups()
	if len(backups) != 1 || !strings.HasSuffix(backups[0], ".gz") {
		t.Errorf("expected one gzip backup, got %v", backups)
	}
}
