// Package analysiscache is a TTL-bound cache of analysis reports keyed by
// file identity (name, size, modification time). It is a pure performance
// optimization: the analyzer never depends on its presence, and a cache
// with no configured path degrades to a no-op.
package analysiscache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"shutter/internal/analyzer"
	"shutter/internal/logging"
)

// DefaultTTL bounds how long an entry stays valid.
const DefaultTTL = 30 * time.Minute

// Key derives the cache key from file identity. Any change to name, size,
// or modification time yields a different key, so stale entries are never
// served for rewritten files.
func Key(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", name, size, modTime.UnixNano())
}

// Entry is one cached report.
type Entry struct {
	Key      string          `json:"key"`
	Report   analyzer.Report `json:"report"`
	CachedAt time.Time       `json:"cached_at"`
}

// Cache provides thread-safe access to the report cache. All entries
// persist as one JSON file, written atomically.
type Cache struct {
	path    string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates a cache backed by the given file. An empty path makes every
// operation a no-op. The file is created lazily on first Store.
func New(path string, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "analysiscache")
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		path:    path,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load analysis cache",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"))
	}

	return c
}

// Lookup returns the cached report for the key if present and unexpired.
// Expired entries are left in place for the next Sweep.
func (c *Cache) Lookup(key string) (analyzer.Report, bool) {
	if key == "" || c.path == "" {
		return analyzer.Report{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	if !found || c.expired(entry) {
		return analyzer.Report{}, false
	}
	return entry.Report, true
}

// Store adds or updates the report under key and persists to disk.
func (c *Cache) Store(key string, report analyzer.Report) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{Key: key, Report: report, CachedAt: c.now()}

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached analysis report",
		logging.String("key", key),
		logging.String(logging.FieldAnalysisID, report.ID))
	return nil
}

// Sweep removes every expired entry and persists the result. Expiry is
// explicit rather than piggybacked on lookups so callers control when disk
// writes happen.
func (c *Cache) Sweep() (int, error) {
	if c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := c.save(); err != nil {
		return removed, fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("swept expired cache entries", logging.Int("removed", removed))
	return removed, nil
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Count returns the number of entries, expired ones included.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// List returns all entries sorted by CachedAt descending.
func (c *Cache) List() []Entry {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries
}

func (c *Cache) expired(entry Entry) bool {
	return c.now().Sub(entry.CachedAt) > c.ttl
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if entry.Key != "" {
			c.entries[entry.Key] = entry
		}
	}

	c.logger.Debug("loaded analysis cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically via a temp file.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
