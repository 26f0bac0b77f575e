package main

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"shutter/internal/analysiscache"
	"shutter/internal/analyzer"
	"shutter/internal/config"
	"shutter/internal/entropy"
	"shutter/internal/logging"
	"shutter/internal/patterns"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from the logging config section.
// A broken logging config degrades to a nop logger rather than blocking
// the command.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// newAnalyzer wires an analyzer from the forensics config section.
func (c *commandContext) newAnalyzer() (*analyzer.Analyzer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.Options{
		Entropy: entropy.Options{
			ChunkSize:     cfg.Forensics.EntropyChunkSize,
			HighThreshold: cfg.Forensics.HighEntropyThreshold,
		},
		Patterns: patterns.Options{
			ZeroRunMin: cfg.Forensics.ZeroRunMin,
			FFRunMin:   cfg.Forensics.FFRunMin,
		},
		ScanWindow: cfg.Forensics.EmbeddedScanWindow,
		Digests:    cfg.Forensics.DigestAlgorithms,
		Logger:     c.ensureLogger(),
	}), nil
}

// openCache returns the configured analysis cache, or a no-op cache when
// caching is disabled.
func (c *commandContext) openCache() (*analysiscache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path := ""
	if cfg.Cache.Enabled {
		path = cfg.Cache.Path
	}
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	return analysiscache.New(path, ttl, c.ensureLogger()), nil
}

func (c *commandContext) batchWorkers() int {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Batch.Workers <= 0 {
		return runtime.NumCPU()
	}
	return cfg.Batch.Workers
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
