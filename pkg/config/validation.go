package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for invalid or inconsistent values.
// Struct tags cover field-level rules; backend-specific requirements are
// checked explicitly.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return err
	}

	switch cfg.Source.Backend {
	case "fs":
		if cfg.Source.FS.Path == "" {
			return fmt.Errorf("source.fs.path is required for the fs backend")
		}
	case "s3":
		if cfg.Source.S3.Bucket == "" {
			return fmt.Errorf("source.s3.bucket is required for the s3 backend")
		}
		if cfg.Source.S3.Region == "" && cfg.Source.S3.Endpoint == "" {
			return fmt.Errorf("source.s3.region or source.s3.endpoint is required for the s3 backend")
		}
	}

	return nil
}
