package config

import "strings"

// normalize expands path fields and fills zero-valued knobs with defaults so
// a partially specified config file behaves predictably.
func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.CacheDir, &c.Paths.HistoryDir, &c.Paths.LogDir, &c.Cache.Path} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Forensics.EntropyChunkSize <= 0 {
		c.Forensics.EntropyChunkSize = defaultEntropyChunkSize
	}
	if c.Forensics.HighEntropyThreshold <= 0 {
		c.Forensics.HighEntropyThreshold = defaultHighEntropyThreshold
	}
	if c.Forensics.EmbeddedScanWindow <= 0 {
		c.Forensics.EmbeddedScanWindow = defaultEmbeddedScanWindow
	}
	if c.Forensics.ZeroRunMin <= 0 {
		c.Forensics.ZeroRunMin = defaultZeroRunMin
	}
	if c.Forensics.FFRunMin <= 0 {
		c.Forensics.FFRunMin = defaultFFRunMin
	}
	if c.Forensics.HexDumpLimit <= 0 {
		c.Forensics.HexDumpLimit = defaultHexDumpLimit
	}
	if len(c.Forensics.DigestAlgorithms) == 0 {
		c.Forensics.DigestAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}
	}

	if c.ELA.Quality == 0 {
		c.ELA.Quality = defaultELAQuality
	}
	if c.ELA.Threshold == 0 {
		c.ELA.Threshold = defaultELAThreshold
	}
	if c.ELA.BlockSize == 0 {
		c.ELA.BlockSize = defaultELABlockSize
	}

	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = defaultCacheTTLMinutes
	}
	if strings.TrimSpace(c.Batch.DateField) == "" {
		c.Batch.DateField = defaultBatchDateField
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}
