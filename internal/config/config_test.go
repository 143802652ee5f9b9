package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanMander/Forensic-linguistics/internal/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.GreaterOrEqual(t, cfg.Analysis.Workers, 1)
	assert.Equal(t, []string{"*.docx", "*.docm"}, cfg.Watch.IncludePatterns)
	assert.Contains(t, cfg.Watch.ExcludePatterns, "~$*")
	assert.True(t, strings.HasSuffix(cfg.Archive.Path, "archive.db"))
	assert.True(t, cfg.Logging.RedactAuthors)
	assert.NoError(t, cfg.Validate())
}

func TestConfigPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(ConfigPath(), "config.toml"))

	dir := t.TempDir()
	t.Setenv("RSIDSCAN_CONFIG_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), ConfigPath())
}

func TestPlatformDataDirOverride(t *testing.T) {
	t.Setenv("RSIDSCAN_DATA_DIR", "/srv/rsidscan")
	assert.Equal(t, "/srv/rsidscan", PlatformDataDir())
	assert.Equal(t, filepath.Join("/srv/rsidscan", "archive.db"), DefaultConfig().Archive.Path)
}

// =============================================================================
// Load / Save Tests
// =============================================================================

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Report, cfg.Report)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `version = 1
[report]
format = "markdown"
[analysis]
workers = 3
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"version": 1, "report": {"format": "markdown"}, "analysis": {"workers": 3}}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `version: 1
report:
  format: markdown
analysis:
  workers: 3
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "markdown", cfg.Report.Format)
			assert.Equal(t, 3, cfg.Analysis.Workers)
			// Unset sections keep their defaults.
			assert.Equal(t, 2000, cfg.Watch.DebounceMs)
		})
	}
}

func TestLoadInvalidSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[report\nformat ="), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 1\n[report]\nformat = \"pdf\"\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "report.format", verrs[0].Field)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{"toml", "json", "yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config."+ext)
			cfg := DefaultConfig()
			cfg.Report.Format = "html"
			cfg.Watch.Paths = []string{t.TempDir()}

			require.NoError(t, Save(cfg, path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "html", loaded.Report.Format)
			assert.Equal(t, cfg.Watch.Paths, loaded.Watch.Paths)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotNil(t, cfg)
	assert.FileExists(t, path)

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

// =============================================================================
// Environment / Validation Tests
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RSIDSCAN_WORKERS", "5")
	t.Setenv("RSIDSCAN_REPORT_FORMAT", "JSON")
	t.Setenv("RSIDSCAN_ARCHIVE_PATH", "/tmp/rsid.db")
	t.Setenv("RSIDSCAN_LOG_LEVEL", "debug")
	t.Setenv("RSIDSCAN_MAX_DOCUMENT_BYTES", "not-a-number")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 5, cfg.Analysis.Workers)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "/tmp/rsid.db", cfg.Archive.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DefaultConfig().Analysis.MaxDocumentBytes, cfg.Analysis.MaxDocumentBytes)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"version", func(c *Config) { c.Version = 9 }, "version"},
		{"workers", func(c *Config) { c.Analysis.Workers = 0 }, "analysis.workers"},
		{"max bytes", func(c *Config) { c.Analysis.MaxDocumentBytes = 10 }, "analysis.max_document_bytes"},
		{"archive path", func(c *Config) { c.Archive.Enabled = true; c.Archive.Path = "" }, "archive.path"},
		{"glob", func(c *Config) { c.Watch.IncludePatterns = []string{"[abc"} }, "watch.include_patterns[0]"},
		{"debounce", func(c *Config) { c.Watch.DebounceMs = 1 }, "watch.debounce_ms"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log output", func(c *Config) { c.Logging.Output = "syslog" }, "logging.output"},
		{"log file", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, "logging.file_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestMissingWatchPathIsWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Paths = []string{"/definitely/not/here"}

	assert.NoError(t, cfg.Validate())
	warnings := cfg.WatchWarnings()
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].IsWarning())
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Paths = []string{"a"}

	clone := cfg.Clone()
	clone.Watch.Paths[0] = "b"
	clone.Watch.IncludePatterns[0] = "*.doc"

	assert.Equal(t, "a", cfg.Watch.Paths[0])
	assert.Equal(t, "*.docx", cfg.Watch.IncludePatterns[0])
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"

	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.Equal(t, int64(20), lc.MaxSize)
	assert.True(t, lc.RedactAuthors)

	cfg.Logging.Level = "loud"
	_, err = cfg.LoggerConfig()
	assert.Error(t, err)
}

func TestLoaderReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(DefaultConfig(), path))

	loader := NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Report.Format)

	changed := make(chan *Config, 1)
	loader.OnChange(func(c *Config) {
		c.Watch.Paths = append(c.Watch.Paths, "mutated")
		c.Report.Color = false
	})
	loader.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, loader.Watch())

	updated := DefaultConfig()
	updated.Report.Format = "markdown"
	require.NoError(t, Save(updated, path))

	select {
	case c := <-changed:
		assert.Equal(t, "markdown", c.Report.Format)
		assert.True(t, c.Report.Color, "callbacks must not share one config")
		assert.NotContains(t, c.Watch.Paths, "mutated")

		current := loader.Config()
		assert.Equal(t, "markdown", current.Report.Format)
		assert.NotContains(t, current.Watch.Paths, "mutated")
		current.Report.Format = "json"
		assert.Equal(t, "markdown", loader.Config().Report.Format)
	case err := <-loader.Errors():
		t.Fatalf("reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
