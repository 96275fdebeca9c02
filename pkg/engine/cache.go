package engine

import (
	"slices"
	"sync"
	"time"
)

// chunkCache stores completed chunks grouped by file. Eviction is always
// explicit per file; when a byte limit is set, whole files are dropped in
// least-recently-used order to make room for new chunks.
type chunkCache struct {
	mu    sync.RWMutex
	files map[string]*fileEntry
	bytes int64
	limit int64
}

type fileEntry struct {
	chunks     map[uint32]*FileChunk
	bytes      int64
	lastAccess time.Time
}

func newChunkCache(limit int64) *chunkCache {
	return &chunkCache{
		files: make(map[string]*fileEntry),
		limit: limit,
	}
}

// get returns the cached chunk and refreshes the file's access time.
// The chunk itself is never written to; completed chunks are shared
// with callers and must stay read-only.
func (c *chunkCache) get(file string, index uint32) (*FileChunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.files[file]
	if !ok {
		return nil, false
	}

	fc, ok := entry.chunks[index]
	if !ok {
		return nil, false
	}

	entry.lastAccess = time.Now()

	return fc, true
}

// put stores a completed chunk, evicting least-recently-used files when
// the byte limit would be exceeded. The file being written to is never
// evicted to make room for its own chunk.
func (c *chunkCache) put(fc *FileChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.files[fc.File]
	if !ok {
		entry = &fileEntry{chunks: make(map[uint32]*FileChunk)}
		c.files[fc.File] = entry
	}

	if prev, ok := entry.chunks[fc.Index]; ok {
		entry.bytes -= int64(len(prev.Data))
		c.bytes -= int64(len(prev.Data))
	}

	size := int64(len(fc.Data))
	entry.chunks[fc.Index] = fc
	entry.bytes += size
	entry.lastAccess = time.Now()
	c.bytes += size

	if c.limit > 0 {
		c.makeRoom(fc.File)
	}
}

// makeRoom drops least-recently-used files until the cache fits its
// limit. Must be called with c.mu held.
func (c *chunkCache) makeRoom(current string) {
	for c.bytes > c.limit {
		oldest := ""
		var oldestAccess time.Time

		for file, entry := range c.files {
			if file == current {
				continue
			}
			if oldest == "" || entry.lastAccess.Before(oldestAccess) {
				oldest = file
				oldestAccess = entry.lastAccess
			}
		}

		if oldest == "" {
			return
		}

		c.bytes -= c.files[oldest].bytes
		delete(c.files, oldest)
	}
}

// evict removes cached chunks for a file. With an empty keep list the
// whole file is dropped; otherwise only indices outside the keep list
// are removed. Returns the number of chunks evicted.
func (c *chunkCache) evict(file string, keep []uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.files[file]
	if !ok {
		return 0
	}

	if len(keep) == 0 {
		count := len(entry.chunks)
		c.bytes -= entry.bytes
		delete(c.files, file)
		return count
	}

	count := 0
	for index, fc := range entry.chunks {
		if slices.Contains(keep, index) {
			continue
		}
		entry.bytes -= int64(len(fc.Data))
		c.bytes -= int64(len(fc.Data))
		delete(entry.chunks, index)
		count++
	}

	if len(entry.chunks) == 0 {
		delete(c.files, file)
	}

	return count
}

// stats reports the cache footprint.
func (c *chunkCache) stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		Files: len(c.files),
		Bytes: c.bytes,
	}
	for _, entry := range c.files {
		stats.Chunks += len(entry.chunks)
	}

	return stats
}

// CacheStats is a point-in-time snapshot of the chunk cache.
type CacheStats struct {
	Files  int
	Chunks int
	Bytes  int64
}
