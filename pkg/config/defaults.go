package config

import (
	"strings"

	"github.com/marmos91/chunkstream/internal/bytesize"
)

// DefaultChunkSize is the default fixed chunk size (1Mi).
const DefaultChunkSize = bytesize.ByteSize(1 * 1024 * 1024)

// DefaultMaxConcurrent is the default bound on concurrent chunk reads.
const DefaultMaxConcurrent = 3

// GetDefaultConfig returns a complete configuration with all defaults applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyChunkDefaults(&cfg.Chunk)
	applyAdmissionDefaults(&cfg.Admission)
	applySourceDefaults(&cfg.Source)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyChunkDefaults(cfg *ChunkConfig) {
	if cfg.Size == 0 {
		cfg.Size = DefaultChunkSize
	}
	// CacheLimit defaults to 0 (unbounded)
}

func applyAdmissionDefaults(cfg *AdmissionConfig) {
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
}

func applySourceDefaults(cfg *SourceConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "fs"
	}
	if cfg.Backend == "fs" && cfg.FS.Path == "" {
		cfg.FS.Path = "."
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}
