// Package config handles configuration loading, validation, and management for rsidscan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ZanMander/Forensic-linguistics/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RSIDSCAN_"

// Config holds the complete rsidscan configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Analysis controls the document pipeline.
	Analysis AnalysisConfig `toml:"analysis" json:"analysis" yaml:"analysis"`

	// Report controls rendering of results.
	Report ReportConfig `toml:"report" json:"report" yaml:"report"`

	// Archive controls persistence of past analyses.
	Archive ArchiveConfig `toml:"archive" json:"archive" yaml:"archive"`

	// Watch configuration for directory monitoring.
	Watch WatchConfig `toml:"watch" json:"watch" yaml:"watch"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// AnalysisConfig holds pipeline configuration.
type AnalysisConfig struct {
	// Workers bounds concurrent documents in batch mode.
	Workers int `toml:"workers" json:"workers" yaml:"workers"`

	// MaxDocumentBytes rejects larger files before they are opened.
	MaxDocumentBytes int64 `toml:"max_document_bytes" json:"max_document_bytes" yaml:"max_document_bytes"`
}

// ReportConfig holds report rendering configuration.
type ReportConfig struct {
	// Format is one of "text", "json", "markdown" or "html".
	Format string `toml:"format" json:"format" yaml:"format"`

	// ShowRuns includes the RSID-coloured text runs.
	ShowRuns bool `toml:"show_runs" json:"show_runs" yaml:"show_runs"`

	// Color enables terminal styling for the text format.
	Color bool `toml:"color" json:"color" yaml:"color"`
}

// ArchiveConfig holds report archive configuration.
type ArchiveConfig struct {
	// Enabled stores every analysis when true.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Paths is a list of directories to monitor for changes.
	Paths []string `toml:"paths" json:"paths" yaml:"paths"`

	// IncludePatterns are glob patterns for files to analyze.
	IncludePatterns []string `toml:"include_patterns" json:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns are glob patterns for files to skip.
	ExcludePatterns []string `toml:"exclude_patterns" json:"exclude_patterns" yaml:"exclude_patterns"`

	// DebounceMs is how long a file must be unchanged before analysis.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`

	// RedactAuthors hides author names in log attributes.
	RedactAuthors bool `toml:"redact_authors" json:"redact_authors" yaml:"redact_authors"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Analysis: AnalysisConfig{
			Workers:          min(runtime.NumCPU(), 8),
			MaxDocumentBytes: 100 << 20,
		},
		Report: ReportConfig{
			Format: "text",
			Color:  true,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    filepath.Join(PlatformDataDir(), "archive.db"),
		},
		Watch: WatchConfig{
			Paths:           []string{},
			IncludePatterns: DefaultDocumentPatterns(),
			ExcludePatterns: DefaultExcludePatterns(),
			DebounceMs:      2000,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "text",
			Output:        "stderr",
			FilePath:      filepath.Join(PlatformLogDir(), "rsidscan.log"),
			MaxSizeMB:     20,
			MaxBackups:    3,
			Compress:      true,
			RedactAuthors: true,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	if envDir := os.Getenv(EnvPrefix + "CONFIG_DIR"); envDir != "" {
		return filepath.Join(envDir, "config.toml")
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the archive and log file live in.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Archive.Enabled {
		dirs = append(dirs, filepath.Dir(c.Archive.Path))
	}
	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Variables are prefixed with RSIDSCAN_. Unparseable numeric or boolean
// values are ignored.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Workers = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_DOCUMENT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Analysis.MaxDocumentBytes = n
		}
	}

	if v := os.Getenv(EnvPrefix + "REPORT_FORMAT"); v != "" {
		c.Report.Format = strings.ToLower(v)
	}

	if v := os.Getenv(EnvPrefix + "ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
		c.Archive.Enabled = true
	}
	if v := os.Getenv(EnvPrefix + "ARCHIVE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Archive.Enabled = b
		}
	}

	if v := os.Getenv(EnvPrefix + "WATCH_PATHS"); v != "" {
		c.Watch.Paths = filepath.SplitList(v)
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Config{
		Version:  c.Version,
		Analysis: c.Analysis,
		Report:   c.Report,
		Archive:  c.Archive,
		Watch:    c.Watch,
		Logging:  c.Logging,
	}
	clone.Watch.Paths = append([]string{}, c.Watch.Paths...)
	clone.Watch.IncludePatterns = append([]string{}, c.Watch.IncludePatterns...)
	clone.Watch.ExcludePatterns = append([]string{}, c.Watch.ExcludePatterns...)
	return clone
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	return &logging.Config{
		Level:         level,
		Format:        format,
		Output:        c.Logging.Output,
		FilePath:      expandPath(c.Logging.FilePath),
		MaxSize:       int64(c.Logging.MaxSizeMB),
		MaxBackups:    c.Logging.MaxBackups,
		Compress:      c.Logging.Compress,
		RedactAuthors: c.Logging.RedactAuthors,
		Component:     "rsidscan",
	}, nil
}

// ArchivePath returns the archive location with a leading ~/ expanded.
func (c *Config) ArchivePath() string {
	return expandPath(c.Archive.Path)
}
