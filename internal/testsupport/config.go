// Package testsupport provides shared helpers for tests: temp-directory
// configurations and synthetic image buffers.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"shutter/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
// Cache and history are enabled and pointed inside the temp tree.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.HistoryDir = filepath.Join(base, "history")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(base, "cache", "analysis_cache.json")
	cfg.History.Enabled = true
	cfg.Logging.Level = "error"

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WriteConfig serializes the fields commands read into a TOML file at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	content := fmt.Sprintf(`[paths]
cache_dir = %q
history_dir = %q
log_dir = %q

[cache]
enabled = %t
path = %q
ttl_minutes = %d

[history]
enabled = %t

[logging]
format = %q
level = %q
`,
		cfg.Paths.CacheDir,
		cfg.Paths.HistoryDir,
		cfg.Paths.LogDir,
		cfg.Cache.Enabled,
		cfg.Cache.Path,
		cfg.Cache.TTLMinutes,
		cfg.History.Enabled,
		cfg.Logging.Format,
		cfg.Logging.Level,
	)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
