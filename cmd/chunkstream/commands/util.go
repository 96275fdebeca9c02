package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/chunkstream/internal/logger"
	"github.com/marmos91/chunkstream/pkg/admission"
	"github.com/marmos91/chunkstream/pkg/config"
	"github.com/marmos91/chunkstream/pkg/engine"
	"github.com/marmos91/chunkstream/pkg/metrics"
	"github.com/marmos91/chunkstream/pkg/source"
	"github.com/marmos91/chunkstream/pkg/source/fs"
	"github.com/marmos91/chunkstream/pkg/source/memory"
	"github.com/marmos91/chunkstream/pkg/source/s3"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newSource builds the byte source selected by the configuration.
func newSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Backend {
	case "fs":
		return fs.New(fs.Config{BasePath: cfg.Source.FS.Path})
	case "memory":
		return memory.New(), nil
	case "s3":
		return s3.NewFromConfig(ctx, s3.Config{
			Bucket:         cfg.Source.S3.Bucket,
			Region:         cfg.Source.S3.Region,
			Endpoint:       cfg.Source.S3.Endpoint,
			KeyPrefix:      cfg.Source.S3.KeyPrefix,
			ForcePathStyle: cfg.Source.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown source backend: %s", cfg.Source.Backend)
	}
}

// buildEngine wires the source, admission controller, and engine from
// configuration. The returned cleanup stops the controller.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, func(), error) {
	src, err := newSource(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source: %w", err)
	}

	var (
		admissionMetrics admission.Metrics
		engineMetrics    engine.Metrics
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		admissionMetrics = metrics.NewAdmissionMetrics(registry)
		engineMetrics = metrics.NewEngineMetrics(registry)
		startMetricsServer(registry, cfg.Metrics.Port)
	}

	ctrl, err := admission.New(admission.Config{
		MaxConcurrent: cfg.Admission.MaxConcurrent,
	}, admissionMetrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create admission controller: %w", err)
	}

	eng, err := engine.New(src, ctrl, engine.Config{
		ChunkSize:  cfg.Chunk.Size.Int64(),
		CacheLimit: cfg.Chunk.CacheLimit.Int64(),
	}, engineMetrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}

	ctrl.Start()

	return eng, ctrl.Stop, nil
}

// startMetricsServer exposes the Prometheus registry over HTTP.
func startMetricsServer(registry *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("Metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
}

// loadConfig loads and validates configuration, then initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
