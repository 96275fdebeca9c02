// Package fs provides a local-filesystem byte source. File identities are
// paths resolved against a base directory.
package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marmos91/chunkstream/pkg/source"
)

// Source reads files from a base directory on the local filesystem.
type Source struct {
	mu       sync.RWMutex
	basePath string
	closed   bool
}

// Config holds configuration for the filesystem source.
type Config struct {
	// BasePath is the directory file identities are resolved against.
	// Empty means identities are used as-is (absolute or cwd-relative).
	BasePath string
}

// New creates a filesystem source. When a base path is configured it must
// already exist and be a directory.
func New(cfg Config) (*Source, error) {
	if cfg.BasePath != "" {
		info, err := os.Stat(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, errors.New("base path is not a directory")
		}
	}
	return &Source{basePath: cfg.BasePath}, nil
}

// resolve maps a file identity to a path, refusing escapes from the base
// directory.
func (s *Source) resolve(file string) (string, error) {
	if s.basePath == "" {
		return file, nil
	}
	path := filepath.Join(s.basePath, filepath.Clean("/"+file))
	if !strings.HasPrefix(path, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", source.ErrNotFound
	}
	return path, nil
}

// Size returns the file's size via stat.
func (s *Source) Size(_ context.Context, file string) (int64, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, source.ErrSourceClosed
	}
	s.mu.RUnlock()

	path, err := s.resolve(file)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, source.ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// ReadAt opens the file and reads exactly length bytes at offset.
func (s *Source) ReadAt(ctx context.Context, file string, offset int64, length int) ([]byte, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, source.ErrSourceClosed
	}
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(file)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, source.ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil {
		if err == io.EOF && n < length {
			return nil, source.ErrShortRead
		}
		if err != io.EOF {
			return nil, err
		}
	}
	if n < length {
		return nil, source.ErrShortRead
	}
	return buf, nil
}

// Close marks the source as closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)
