//go:build integration

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/chunkstream/pkg/source"
)

// localstackHelper manages the Localstack container for S3 integration tests.
type localstackHelper struct {
	container testcontainers.Container
	endpoint  string
	client    *awss3.Client
}

// newLocalstackHelper starts a Localstack container or connects to an existing one.
func newLocalstackHelper(t *testing.T) *localstackHelper {
	t.Helper()
	ctx := context.Background()

	// Check if external Localstack is configured via environment
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		helper := &localstackHelper{endpoint: endpoint}
		helper.createClient(t)
		return helper
	}

	req := testcontainers.ContainerRequest{
		Image:        "localstack/localstack:3.0",
		ExposedPorts: []string{"4566/tcp"},
		Env: map[string]string{
			"SERVICES":              "s3",
			"DEFAULT_REGION":        "us-east-1",
			"EAGER_SERVICE_LOADING": "1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4566/tcp"),
			wait.ForHTTP("/_localstack/health").
				WithPort("4566/tcp").
				WithStartupTimeout(60*time.Second),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start localstack container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get container port: %v", err)
	}

	helper := &localstackHelper{
		container: container,
		endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
	helper.createClient(t)

	return helper
}

// createClient creates an S3 client configured for Localstack.
func (lh *localstackHelper) createClient(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", "test", "",
		)),
	)
	if err != nil {
		t.Fatalf("failed to load AWS config: %v", err)
	}

	lh.client = awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.BaseEndpoint = &lh.endpoint
		o.UsePathStyle = true
	})
}

// createBucket creates a new S3 bucket.
func (lh *localstackHelper) createBucket(t *testing.T, bucketName string) {
	t.Helper()

	_, err := lh.client.CreateBucket(context.Background(), &awss3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		t.Fatalf("failed to create test bucket: %v", err)
	}
}

// putObject uploads an object directly through the client.
func (lh *localstackHelper) putObject(t *testing.T, bucket, key string, data []byte) {
	t.Helper()

	_, err := lh.client.PutObject(context.Background(), &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
}

// cleanup terminates the container if we started one.
func (lh *localstackHelper) cleanup() {
	if lh.container != nil {
		_ = lh.container.Terminate(context.Background())
	}
}

// newTestSource creates an S3 source backed by a fresh bucket.
func newTestSource(t *testing.T, helper *localstackHelper) (*Source, string) {
	t.Helper()

	bucketName := fmt.Sprintf("test-bucket-%d", time.Now().UnixNano())
	helper.createBucket(t, bucketName)

	src := New(helper.client, Config{
		Bucket:    bucketName,
		KeyPrefix: "files/",
	})

	return src, bucketName
}

func TestSource_Size(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, bucket := newTestSource(t, helper)
	defer src.Close()

	data := []byte("hello world")
	helper.putObject(t, bucket, "files/greeting.txt", data)

	size, err := src.Size(ctx, "greeting.txt")
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("Size returned %d, want %d", size, len(data))
	}
}

func TestSource_SizeNotFound(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, _ := newTestSource(t, helper)
	defer src.Close()

	_, err := src.Size(ctx, "nonexistent")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Size returned error %v, want %v", err, source.ErrNotFound)
	}
}

func TestSource_ReadAt(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, bucket := newTestSource(t, helper)
	defer src.Close()

	data := []byte("hello world")
	helper.putObject(t, bucket, "files/greeting.txt", data)

	read, err := src.ReadAt(ctx, "greeting.txt", 0, 5)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(read) != "hello" {
		t.Errorf("ReadAt returned %q, want %q", read, "hello")
	}

	read, err = src.ReadAt(ctx, "greeting.txt", 6, 5)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(read) != "world" {
		t.Errorf("ReadAt returned %q, want %q", read, "world")
	}
}

func TestSource_ReadAtPastEnd(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, bucket := newTestSource(t, helper)
	defer src.Close()

	helper.putObject(t, bucket, "files/small.txt", []byte("abc"))

	_, err := src.ReadAt(ctx, "small.txt", 100, 5)
	if !errors.Is(err, source.ErrShortRead) {
		t.Errorf("ReadAt returned error %v, want %v", err, source.ErrShortRead)
	}
}

func TestSource_ReadAtNotFound(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, _ := newTestSource(t, helper)
	defer src.Close()

	_, err := src.ReadAt(ctx, "nonexistent", 0, 5)
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("ReadAt returned error %v, want %v", err, source.ErrNotFound)
	}
}

func TestSource_HealthCheck(t *testing.T) {
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	ctx := context.Background()
	src, _ := newTestSource(t, helper)
	defer src.Close()

	if err := src.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
