// Package config provides configuration loading and discovery for mypyscan.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (MYPYSCAN_* prefix)
//  3. Config file (closest .mypyscan.toml or mypyscan.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern: starting from the target
// file's directory, walk up the filesystem until a config file is found.
// The closest config wins (no merging).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".mypyscan.toml", "mypyscan.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "MYPYSCAN_"

// Config represents the complete mypyscan configuration.
type Config struct {
	// Checker configures the external mypy invocation.
	Checker CheckerConfig `json:"checker" koanf:"checker"`

	// Scan configures buffer eligibility for scanning.
	Scan ScanConfig `json:"scan" koanf:"scan"`

	// Inspect configures the async inspection facade.
	Inspect InspectConfig `json:"inspect" koanf:"inspect"`

	// Output configures CLI output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Notifications controls user-visible warning pop-ups.
	Notifications NotificationsConfig `json:"notifications" koanf:"notifications"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// CheckerConfig configures the external mypy invocation.
//
// Example TOML configuration:
//
//	[checker]
//	path = "/usr/local/bin/mypy"
//	args = ["--strict"]
//	timeout = "60s"
type CheckerConfig struct {
	// Path is the mypy executable name or absolute path.
	Path string `json:"path,omitempty" koanf:"path"`

	// Args are extra arguments appended before the file list.
	Args []string `json:"args,omitempty" koanf:"args"`

	// Timeout is the wall-clock budget for one checker process run.
	Timeout string `json:"timeout,omitempty" koanf:"timeout"`
}

// ScanConfig configures which buffers are eligible for scanning.
type ScanConfig struct {
	// Extensions lists the file extensions considered scannable.
	Extensions []string `json:"extensions,omitempty" koanf:"extensions"`

	// Exclude lists doublestar glob patterns for paths to skip.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// MaxFileSize is the maximum buffer size in bytes (0 = unlimited).
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// InspectConfig configures the async inspection facade.
type InspectConfig struct {
	// Timeout bounds the wait for a background scan before giving up.
	// Giving up does not kill a still-running checker process.
	Timeout string `json:"timeout,omitempty" koanf:"timeout"`
}

// OutputConfig configures CLI output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text or json.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output: stdout, stderr, or a file path.
	Path string `json:"path,omitempty" koanf:"path"`

	// FailLevel sets the minimum severity that causes a non-zero exit code:
	// error, warning, note, none.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// NotificationsConfig controls user-visible warning pop-ups.
//
// Example TOML configuration:
//
//	[notifications]
//	mode = "auto"
type NotificationsConfig struct {
	// Mode controls when user notifications are shown: auto (suppressed in
	// CI), on, off. Debug logging is unaffected.
	Mode string `json:"mode,omitempty" koanf:"mode"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Checker: CheckerConfig{
			Path:    "mypy",
			Timeout: "120s",
		},
		Scan: ScanConfig{
			Extensions:  []string{".py", ".pyi"},
			MaxFileSize: 0,
		},
		Inspect: InspectConfig{
			Timeout: "30s",
		},
		Output: OutputConfig{
			Format:    "text",
			Path:      "stdout",
			FailLevel: "error",
		},
		Notifications: NotificationsConfig{
			Mode: "auto",
		},
	}
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath))
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath)
}

// LoadFromMap builds a config from raw key/value overrides on top of
// defaults. Used by tests and by callers that own their own settings storage.
func LoadFromMap(values map[string]any) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadWithConfigPath is an internal helper that loads config with an optional config file path.
func loadWithConfigPath(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", configPath, err)
		}
	}

	// 3. Load environment variables (MYPYSCAN_* prefix)
	// MYPYSCAN_CHECKER_PATH -> checker.path
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return &cfg, nil
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated equivalents.
var knownHyphenatedKeys = map[string]string{
	"max.file.size": "max-file-size",
	"fail.level":    "fail-level",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"checker":       {},
	"scan":          {},
	"inspect":       {},
	"output":        {},
	"notifications": {},
}

// envKeyTransform converts environment variable names to config keys.
// MYPYSCAN_CHECKER_PATH -> checker.path
// MYPYSCAN_SCAN_MAX_FILE_SIZE -> scan.max-file-size
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory, checking for
// config files at each level. Returns empty string if none is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(absPath)

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CheckerTimeout returns the parsed checker timeout, falling back to the
// default when the configured value is missing or malformed.
func (c *Config) CheckerTimeout() time.Duration {
	return parseDurationOr(c.Checker.Timeout, 120*time.Second)
}

// InspectTimeout returns the parsed inspection wait budget.
func (c *Config) InspectTimeout() time.Duration {
	return parseDurationOr(c.Inspect.Timeout, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
