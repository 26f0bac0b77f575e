package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateForensics(); err != nil {
		return err
	}
	if err := c.validateELA(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Batch.Workers < 0 {
		return errors.New("batch.workers must not be negative")
	}
	return nil
}

func (c *Config) validateForensics() error {
	if c.Forensics.HighEntropyThreshold > 8.0 {
		return errors.New("forensics.high_entropy_threshold cannot exceed 8.0 bits per byte")
	}
	if c.Forensics.EntropyChunkSize < 16 {
		return errors.New("forensics.entropy_chunk_size must be at least 16")
	}
	for _, alg := range c.Forensics.DigestAlgorithms {
		switch strings.ToLower(strings.TrimSpace(alg)) {
		case "md5", "sha1", "sha256", "sha512":
		default:
			return fmt.Errorf("forensics.digest_algorithms: unsupported algorithm %q", alg)
		}
	}
	return nil
}

func (c *Config) validateELA() error {
	if c.ELA.Quality < 10 || c.ELA.Quality > 100 {
		return errors.New("ela.quality must be between 10 and 100")
	}
	if c.ELA.Threshold < 0 || c.ELA.Threshold > 255 {
		return errors.New("ela.threshold must be between 0 and 255")
	}
	if c.ELA.BlockSize < 8 {
		return errors.New("ela.block_size must be at least 8")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("cache.path must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
