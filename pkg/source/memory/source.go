// Package memory provides an in-memory byte source, used by tests and by
// embedders that already hold file contents in memory.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/chunkstream/pkg/source"
)

// Source holds file contents in a map keyed by identity.
type Source struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates an empty in-memory source.
func New() *Source {
	return &Source{files: make(map[string][]byte)}
}

// Put stores a file's contents. The data is copied.
func (s *Source) Put(file string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.files[file] = buf
	s.mu.Unlock()
}

// Delete removes a file.
func (s *Source) Delete(file string) {
	s.mu.Lock()
	delete(s.files, file)
	s.mu.Unlock()
}

// Size returns the stored file's size.
func (s *Source) Size(_ context.Context, file string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[file]
	if !ok {
		return 0, source.ErrNotFound
	}
	return int64(len(data)), nil
}

// ReadAt returns a copy of exactly length bytes at offset.
func (s *Source) ReadAt(_ context.Context, file string, offset int64, length int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[file]
	if !ok {
		return nil, source.ErrNotFound
	}
	if offset < 0 || offset+int64(length) > int64(len(data)) {
		return nil, source.ErrShortRead
	}

	buf := make([]byte, length)
	copy(buf, data[offset:offset+int64(length)])
	return buf, nil
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)
