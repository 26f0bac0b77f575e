package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir   string `toml:"cache_dir"`
	HistoryDir string `toml:"history_dir"`
	LogDir     string `toml:"log_dir"`
}

// Forensics contains byte-level analysis policy. These values are policy,
// not physics; the defaults match long-observed behavior and may be tuned.
type Forensics struct {
	// EntropyChunkSize is the window, in bytes, for per-chunk entropy.
	EntropyChunkSize int `toml:"entropy_chunk_size"`
	// HighEntropyThreshold flags chunks at or above this many bits/byte
	// (max 8.0) as possible encryption/compression.
	HighEntropyThreshold float64 `toml:"high_entropy_threshold"`
	// EmbeddedScanWindow bounds the embedded-object signature scan.
	EmbeddedScanWindow int `toml:"embedded_scan_window"`
	// ZeroRunMin and FFRunMin are the minimum byte-run lengths the pattern
	// scanner reports.
	ZeroRunMin int `toml:"zero_run_min"`
	FFRunMin   int `toml:"ff_run_min"`
	// HexDumpLimit caps how many bytes CLI hex dumps render by default.
	HexDumpLimit int `toml:"hex_dump_limit"`
	// DigestAlgorithms are computed for every analyzed file.
	DigestAlgorithms []string `toml:"digest_algorithms"`
}

// ELA contains error-level analysis policy.
type ELA struct {
	// Quality is the JPEG re-encode quality for the round trip, 10-100.
	Quality int `toml:"quality"`
	// Threshold is the mean amplified-difference level (0-255 scale) above
	// which a block is flagged suspicious.
	Threshold float64 `toml:"threshold"`
	// BlockSize is the square block edge in pixels.
	BlockSize int `toml:"block_size"`
}

// Cache contains configuration for the analysis result cache.
type Cache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// History contains configuration for the SQLite analysis history store.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Batch contains configuration for multi-file processing.
type Batch struct {
	// Workers bounds concurrent per-file analyses. Zero means NumCPU.
	Workers int `toml:"workers"`
	// DateField is the consolidated field used for the batch date span.
	DateField string `toml:"date_field"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shutter.
//
// Sections by subsystem:
//   - Paths: cache/history/log directories
//   - Forensics: entropy, pattern-scan, and embedded-scan policy
//   - ELA: error-level analysis policy
//   - Cache: TTL analysis-result cache
//   - History: SQLite analysis history
//   - Batch: multi-file worker pool
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Forensics Forensics `toml:"forensics"`
	ELA       ELA       `toml:"ela"`
	Cache     Cache     `toml:"cache"`
	History   History   `toml:"history"`
	Batch     Batch     `toml:"batch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shutter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shutter.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories history and cache features need.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	}
	if c.History.Enabled {
		dirs = append(dirs, c.Paths.HistoryDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
