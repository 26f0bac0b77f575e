package config

const (
	defaultCacheDir   = "~/.cache/shutter"
	defaultHistoryDir = "~/.local/share/shutter"
	defaultLogDir     = "~/.local/share/shutter/logs"

	defaultEntropyChunkSize     = 256
	defaultHighEntropyThreshold = 7.5
	defaultEmbeddedScanWindow   = 10000
	defaultZeroRunMin           = 20
	defaultFFRunMin             = 10
	defaultHexDumpLimit         = 4096

	defaultELAQuality   = 90
	defaultELAThreshold = 15.0
	defaultELABlockSize = 32

	defaultCachePath       = "~/.cache/shutter/analysis_cache.json"
	defaultCacheTTLMinutes = 30

	defaultBatchDateField = "DateTimeOriginal"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:   defaultCacheDir,
			HistoryDir: defaultHistoryDir,
			LogDir:     defaultLogDir,
		},
		Forensics: Forensics{
			EntropyChunkSize:     defaultEntropyChunkSize,
			HighEntropyThreshold: defaultHighEntropyThreshold,
			EmbeddedScanWindow:   defaultEmbeddedScanWindow,
			ZeroRunMin:           defaultZeroRunMin,
			FFRunMin:             defaultFFRunMin,
			HexDumpLimit:         defaultHexDumpLimit,
			DigestAlgorithms:     []string{"md5", "sha1", "sha256", "sha512"},
		},
		ELA: ELA{
			Quality:   defaultELAQuality,
			Threshold: defaultELAThreshold,
			BlockSize: defaultELABlockSize,
		},
		Cache: Cache{
			Path:       defaultCachePath,
			TTLMinutes: defaultCacheTTLMinutes,
		},
		History: History{},
		Batch: Batch{
			DateField: defaultBatchDateField,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
