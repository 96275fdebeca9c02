// Package s3 provides an S3-backed byte source. File identities are object
// keys; reads use ranged GetObject so only the requested chunk travels.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/chunkstream/pkg/source"
)

// Config holds configuration for the S3 source.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Region is the AWS region (optional, SDK default if empty).
	Region string

	// Endpoint is the S3 endpoint URL (optional, for S3-compatibles).
	Endpoint string

	// KeyPrefix is prepended to all file identities (e.g. "files/").
	// Should end with "/" if non-empty.
	KeyPrefix string

	// ForcePathStyle forces path-style addressing (Localstack/MinIO).
	ForcePathStyle bool
}

// Source is an S3-backed implementation of source.Source.
type Source struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
	closed    bool
	mu        sync.RWMutex
}

// New creates an S3 source with an existing client.
func New(client *awss3.Client, cfg Config) *Source {
	return &Source{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}
}

// NewFromConfig creates an S3 source by building a client from the AWS
// default config chain plus the given options.
func NewFromConfig(ctx context.Context, cfg Config) (*Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return New(awss3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func (s *Source) fullKey(file string) string {
	return s.keyPrefix + file
}

// Size returns the object's content length via HeadObject.
func (s *Source) Size(ctx context.Context, file string) (int64, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, source.ErrSourceClosed
	}
	s.mu.RUnlock()

	resp, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(file)),
	})
	if err != nil {
		if isNotFoundError(err) {
			return 0, source.ErrNotFound
		}
		return 0, fmt.Errorf("s3 head object: %w", err)
	}
	if resp.ContentLength == nil {
		return 0, fmt.Errorf("s3 head object: missing content length")
	}
	return *resp.ContentLength, nil
}

// ReadAt fetches exactly length bytes at offset with a ranged GetObject.
func (s *Source) ReadAt(ctx context.Context, file string, offset int64, length int) ([]byte, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, source.ErrSourceClosed
	}
	s.mu.RUnlock()

	rangeHeader := fmt.Sprintf("bytes=%d-%d", offset, offset+int64(length)-1)
	resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(file)),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, source.ErrNotFound
		}
		if isInvalidRangeError(err) {
			return nil, source.ErrShortRead
		}
		return nil, fmt.Errorf("s3 get object range: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
	}
	// S3 truncates the range at the object's end instead of failing.
	if len(data) < length {
		return nil, source.ErrShortRead
	}
	return data, nil
}

// Close marks the source as closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (s *Source) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return source.ErrSourceClosed
	}
	s.mu.RUnlock()

	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

// isNotFoundError checks if an error is an S3 not-found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "404")
}

// isInvalidRangeError checks for a range starting past the object's end.
func isInvalidRangeError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "InvalidRange") ||
		strings.Contains(errStr, "416")
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)
