package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanMander/Forensic-linguistics/internal/config"
	"github.com/ZanMander/Forensic-linguistics/internal/docx/docxtest"
	"github.com/ZanMander/Forensic-linguistics/internal/report"
)

type runResult struct {
	stdout string
	stderr string
	err    error
	code   int
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err, code: exitCode(err)}
}

// testEnv writes a config with an isolated archive and returns its path.
func testEnv(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv(config.EnvPrefix+"CONFIG_DIR", dir)

	cfg := config.DefaultConfig()
	cfg.Report.Color = false
	cfg.Archive.Path = filepath.Join(dir, "archive.db")
	cfg.Logging.Level = "error"
	cfgPath = filepath.Join(dir, "config.toml")
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return dir, cfgPath
}

func writeDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := docxtest.Minimal(
		docxtest.Paragraph("00AA0001", docxtest.Run("", "The tide comes in")),
		docxtest.Paragraph("00BB0002", docxtest.Run("", "and goes out again")),
	)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errors.New("boom"), exitFailure},
		{usageErrorf("bad"), exitUsage},
		{&exitError{code: exitDetected}, exitDetected},
		{errors.New(`unknown command "frobnicate" for "rsidscan"`), exitUsage},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	r := run(t, "version")
	if r.code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", r.code, r.stderr)
	}
	if !strings.HasPrefix(r.stdout, "rsidscan dev") {
		t.Errorf("unexpected version output: %q", r.stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	_, cfgPath := testEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no documents", []string{"analyze"}},
		{"bad format", []string{"analyze", "--format", "pdf", "x.docx"}},
		{"unknown flag", []string{"analyze", "--bogus", "x.docx"}},
		{"unknown command", []string{"frobnicate"}},
		{"bad log level", []string{"--log-level", "loud", "schema"}},
		{"schema with args", []string{"schema", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, append([]string{"--config", cfgPath}, tt.args...)...)
			if r.code != exitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", r.code, exitUsage, r.stderr)
			}
		})
	}
}

// =============================================================================
// analyze
// =============================================================================

func TestAnalyzeJSON(t *testing.T) {
	dir, cfgPath := testEnv(t)
	doc := writeDoc(t, dir, "essay.docx")

	r := run(t, "--config", cfgPath, "analyze", "--format", "json", "--validate", doc)
	if r.code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", r.code, r.stderr)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.stdout), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if payload["file_name"] != "essay.docx" {
		t.Errorf("file_name = %v", payload["file_name"])
	}
	if err := report.ValidateJSON([]byte(r.stdout)); err != nil {
		t.Errorf("report does not match schema: %v", err)
	}
}

func TestAnalyzeWritesOutputAndCSV(t *testing.T) {
	dir, cfgPath := testEnv(t)
	doc := writeDoc(t, dir, "essay.docx")
	out := filepath.Join(dir, "report.md")
	csvPath := filepath.Join(dir, "words.csv")

	r := run(t, "--config", cfgPath, "analyze", "-f", "markdown", "-o", out, "--csv", csvPath, doc)
	if r.code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", r.code, r.stderr)
	}
	if r.stdout != "" {
		t.Errorf("expected nothing on stdout, got %q", r.stdout)
	}

	md, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Document Revision Forensics Report") {
		t.Errorf("unexpected report header: %.60q", md)
	}

	csvData, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "RSID,Word Count\n00AA0001,4\n00BB0002,4\n"
	if string(csvData) != want {
		t.Errorf("csv = %q, want %q", csvData, want)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	dir, cfgPath := testEnv(t)
	a := writeDoc(t, dir, "a.docx")
	b := writeDoc(t, dir, "b.docx")
	outDir := filepath.Join(dir, "reports")

	r := run(t, "--config", cfgPath, "analyze", "-f", "html", "-o", outDir, "--csv", outDir, a, b)
	if r.code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", r.code, r.stderr)
	}
	for _, name := range []string{"a.html", "b.html", "a.csv", "b.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if strings.Count(r.stderr, "[CLEAR]") != 2 {
		t.Errorf("expected two summaries on stderr, got %q", r.stderr)
	}
}

func TestAnalyzeFailures(t *testing.T) {
	dir, cfgPath := testEnv(t)
	good := writeDoc(t, dir, "good.docx")
	notZip := filepath.Join(dir, "bad.docx")
	if err := os.WriteFile(notZip, []byte("plain text"), 0600); err != nil {
		t.Fatal(err)
	}

	r := run(t, "--config", cfgPath, "analyze", good, notZip, filepath.Join(dir, "missing.docx"))
	if r.code != exitFailure {
		t.Fatalf("exit code = %d, want %d", r.code, exitFailure)
	}
	if !strings.Contains(r.stderr, "bad.docx") || !strings.Contains(r.stderr, "missing.docx") {
		t.Errorf("stderr should name both failures: %q", r.stderr)
	}
	if r.err == nil || r.err.Error() != "2 of 3 document(s) failed" {
		t.Errorf("unexpected error: %v", r.err)
	}
}

func TestFailOnDetectClearDocument(t *testing.T) {
	dir, cfgPath := testEnv(t)
	doc := writeDoc(t, dir, "essay.docx")

	r := run(t, "--config", cfgPath, "analyze", "--fail-on-detect", "-o", filepath.Join(dir, "out.txt"), doc)
	if r.code != exitOK {
		t.Errorf("clear document should exit 0, got %d (stderr: %s)", r.code, r.stderr)
	}
}

// =============================================================================
// archive and history
// =============================================================================

func TestArchiveAndHistory(t *testing.T) {
	dir, cfgPath := testEnv(t)
	doc := writeDoc(t, dir, "essay.docx")

	for i := 0; i < 2; i++ {
		r := run(t, "--config", cfgPath, "analyze", "--archive", "-o", filepath.Join(dir, "out.txt"), doc)
		if r.code != exitOK {
			t.Fatalf("analyze exit code %d, stderr: %s", r.code, r.stderr)
		}
	}

	r := run(t, "--config", cfgPath, "history", "--json")
	if r.code != exitOK {
		t.Fatalf("history exit code %d, stderr: %s", r.code, r.stderr)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(r.stdout), &records); err != nil {
		t.Fatalf("history output is not JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if _, ok := records[0]["payload"]; ok {
		t.Error("payload should be omitted from history")
	}

	fp, _ := records[0]["fingerprint"].(string)
	r = run(t, "--config", cfgPath, "history", "--fingerprint", fp, "--limit", "1")
	if r.code != exitOK {
		t.Fatalf("history exit code %d, stderr: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "essay.docx") || strings.Count(r.stdout, "\n") != 2 {
		t.Errorf("expected header plus one row, got:\n%s", r.stdout)
	}

	r = run(t, "--config", cfgPath, "history", "--fingerprint", "0000")
	if !strings.Contains(r.stdout, "No archived analyses.") {
		t.Errorf("unexpected output for unknown fingerprint: %q", r.stdout)
	}
}

func TestHistoryDelete(t *testing.T) {
	dir, cfgPath := testEnv(t)
	doc := writeDoc(t, dir, "essay.docx")

	r := run(t, "--config", cfgPath, "analyze", "--archive", "-o", filepath.Join(dir, "out.txt"), doc)
	if r.code != exitOK {
		t.Fatalf("analyze exit code %d, stderr: %s", r.code, r.stderr)
	}

	var records []map[string]any
	r = run(t, "--config", cfgPath, "history", "--json")
	if err := json.Unmarshal([]byte(r.stdout), &records); err != nil || len(records) != 1 {
		t.Fatalf("expected one record, got %q (%v)", r.stdout, err)
	}
	id, _ := records[0]["id"].(string)

	r = run(t, "--config", cfgPath, "history", "--delete", id)
	if r.code != exitOK {
		t.Fatalf("delete exit code %d, err: %v", r.code, r.err)
	}
	if !strings.Contains(r.stdout, "Deleted analysis "+id) {
		t.Errorf("unexpected delete output: %q", r.stdout)
	}

	r = run(t, "--config", cfgPath, "history")
	if !strings.Contains(r.stdout, "No archived analyses.") {
		t.Errorf("record should be gone: %q", r.stdout)
	}

	r = run(t, "--config", cfgPath, "history", "--delete", id)
	if r.code != exitFailure || r.err == nil || !strings.Contains(r.err.Error(), "not found") {
		t.Errorf("deleting twice: code %d, err %v", r.code, r.err)
	}

	r = run(t, "--config", cfgPath, "history", "--delete", id, "--json")
	if r.code != exitUsage {
		t.Errorf("--delete with --json: code %d, want %d", r.code, exitUsage)
	}
}

// =============================================================================
// schema and config
// =============================================================================

func TestSchemaCommand(t *testing.T) {
	_, cfgPath := testEnv(t)

	r := run(t, "--config", cfgPath, "schema")
	if r.code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", r.code, r.stderr)
	}
	if r.stdout != string(report.Schema()) {
		t.Error("schema output differs from the embedded schema")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nested", "config.toml")

	r := run(t, "--config", cfgPath, "config", "init")
	if r.code != exitOK {
		t.Fatalf("init exit code %d, stderr: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "initialized") {
		t.Errorf("unexpected init output: %q", r.stdout)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	r = run(t, "--config", cfgPath, "config", "init")
	if !strings.Contains(r.stdout, "already exists") {
		t.Errorf("second init should not overwrite: %q", r.stdout)
	}

	r = run(t, "--config", cfgPath, "config", "show", "--format", "json")
	if r.code != exitOK {
		t.Fatalf("show exit code %d, stderr: %s", r.code, r.stderr)
	}
	var shown map[string]any
	if err := json.Unmarshal([]byte(r.stdout), &shown); err != nil {
		t.Fatalf("show output is not JSON: %v", err)
	}
	if shown["version"] != float64(config.Version) {
		t.Errorf("version = %v", shown["version"])
	}

	r = run(t, "--config", cfgPath, "config", "show", "--format", "ini")
	if r.code != exitUsage {
		t.Errorf("exit code = %d, want %d", r.code, exitUsage)
	}
}

func TestWatchRequiresPaths(t *testing.T) {
	_, cfgPath := testEnv(t)

	r := run(t, "--config", cfgPath, "watch")
	if r.code != exitUsage {
		t.Errorf("exit code = %d, want %d", r.code, exitUsage)
	}
}
