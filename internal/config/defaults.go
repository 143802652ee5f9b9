package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "rsidscan"

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/rsidscan/
//   - Linux:   $XDG_DATA_HOME/rsidscan/ or ~/.local/share/rsidscan/
//   - Windows: %APPDATA%\rsidscan\
//
// RSIDSCAN_DATA_DIR overrides all of them.
func PlatformDataDir() string {
	if envDir := os.Getenv(EnvPrefix + "DATA_DIR"); envDir != "" {
		return envDir
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", appName)
	case "windows":
		return windowsDataDir()
	default:
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
}

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/rsidscan/
//   - Linux:   $XDG_CONFIG_HOME/rsidscan/ or ~/.config/rsidscan/
//   - Windows: %APPDATA%\rsidscan\
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", appName)
	case "windows":
		return windowsDataDir()
	default:
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
}

// PlatformLogDir returns the platform-specific log directory.
//
// Platform paths:
//   - macOS:   ~/Library/Logs/rsidscan/
//   - Linux:   $XDG_STATE_HOME/rsidscan/ or ~/.local/state/rsidscan/
//   - Windows: %LOCALAPPDATA%\rsidscan\logs\
func PlatformLogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", appName)
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = os.Getenv("APPDATA")
		}
		return filepath.Join(local, appName, "logs")
	default:
		return xdgDir("XDG_STATE_HOME", ".local", "state")
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return home
}

func xdgDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	parts := append([]string{homeDir()}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

func windowsDataDir() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(homeDir(), "AppData", "Roaming")
	}
	return filepath.Join(appData, appName)
}

// DefaultDocumentPatterns returns default include patterns for documents.
func DefaultDocumentPatterns() []string {
	return []string{"*.docx", "*.docm"}
}

// DefaultExcludePatterns returns default exclude patterns.
func DefaultExcludePatterns() []string {
	return []string{
		// Office owner/lock files
		"~$*",
		// Hidden and temporary files
		".*",
		"*.tmp",
	}
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{"toml", "json", "yaml", "yml"}
}

// FindConfigFile searches the current directory and then the config
// directory for config.<ext>. It returns "" when none exists.
func FindConfigFile() string {
	for _, dir := range []string{".", PlatformConfigDir()} {
		for _, ext := range SupportedConfigFormats() {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
