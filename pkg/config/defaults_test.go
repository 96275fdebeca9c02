package config

import "testing"

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected INFO, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected text, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected stdout, got %s", cfg.Logging.Output)
	}
	if cfg.Chunk.Size != DefaultChunkSize {
		t.Errorf("Expected %d, got %d", DefaultChunkSize, cfg.Chunk.Size)
	}
	if cfg.Chunk.CacheLimit != 0 {
		t.Errorf("Expected unbounded cache, got %d", cfg.Chunk.CacheLimit)
	}
	if cfg.Admission.MaxConcurrent != DefaultMaxConcurrent {
		t.Errorf("Expected %d, got %d", DefaultMaxConcurrent, cfg.Admission.MaxConcurrent)
	}
	if cfg.Source.Backend != "fs" {
		t.Errorf("Expected fs, got %s", cfg.Source.Backend)
	}
	if cfg.Source.FS.Path != "." {
		t.Errorf("Expected ., got %s", cfg.Source.FS.Path)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Admission.MaxConcurrent = 16
	cfg.Chunk.Size = 4096

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %s", cfg.Logging.Level)
	}
	if cfg.Admission.MaxConcurrent != 16 {
		t.Errorf("Expected 16, got %d", cfg.Admission.MaxConcurrent)
	}
	if cfg.Chunk.Size != 4096 {
		t.Errorf("Expected 4096, got %d", cfg.Chunk.Size)
	}
}

func TestApplyDefaults_MetricsPortOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no port when disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected 9090, got %d", cfg.Metrics.Port)
	}
}
