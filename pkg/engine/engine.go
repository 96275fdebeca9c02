// Package engine implements chunked file transfer on top of a byte
// source and an admission controller. It plans fixed-size chunks,
// fetches them with bounded concurrency, caches completed chunks per
// file, and reassembles verified chunk sets back into files.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/chunkstream/internal/logger"
	"github.com/marmos91/chunkstream/pkg/admission"
	"github.com/marmos91/chunkstream/pkg/chunk"
	"github.com/marmos91/chunkstream/pkg/source"
)

// Config controls chunking and caching behavior.
type Config struct {
	// ChunkSize is the fixed chunk size in bytes.
	ChunkSize int64

	// CacheLimit bounds the chunk cache in bytes. Zero means unbounded.
	CacheLimit int64
}

// DefaultConfig returns a Config with 1 MiB chunks and an unbounded cache.
func DefaultConfig() Config {
	return Config{
		ChunkSize: chunk.DefaultSize,
	}
}

// Metrics receives engine events. Implementations must be safe for
// concurrent use. A nil Metrics disables instrumentation.
type Metrics interface {
	// ObserveCacheHit is called when a fetch is served from cache.
	ObserveCacheHit()

	// ObserveCacheMiss is called when a fetch has to read the source.
	ObserveCacheMiss()

	// ObserveFetch is called when a source read finishes.
	ObserveFetch(ok bool, bytes int, duration time.Duration)

	// ObserveVerifyFailure is called when a chunk fails verification.
	ObserveVerifyFailure()
}

type nopMetrics struct{}

func (nopMetrics) ObserveCacheHit()                      {}
func (nopMetrics) ObserveCacheMiss()                     {}
func (nopMetrics) ObserveFetch(bool, int, time.Duration) {}
func (nopMetrics) ObserveVerifyFailure()                 {}

// inflightCall is a fetch in progress. Concurrent requests for the same
// chunk attach to the same call and share its outcome.
type inflightCall struct {
	done  chan struct{}
	chunk *FileChunk
	err   error
}

// Engine fetches, caches, and reassembles file chunks. All methods are
// safe for concurrent use.
type Engine struct {
	cfg     Config
	src     source.Source
	ctrl    *admission.Controller
	metrics Metrics
	cache   *chunkCache

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

// New creates an Engine reading from src and dispatching work through
// ctrl. The controller's lifecycle belongs to the caller; it must be
// started before the first fetch.
func New(src source.Source, ctrl *admission.Controller, cfg Config, metrics Metrics) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("source is required")
	}
	if ctrl == nil {
		return nil, fmt.Errorf("admission controller is required")
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.CacheLimit < 0 {
		return nil, fmt.Errorf("cache limit cannot be negative, got %d", cfg.CacheLimit)
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Engine{
		cfg:      cfg,
		src:      src,
		ctrl:     ctrl,
		metrics:  metrics,
		cache:    newChunkCache(cfg.CacheLimit),
		inflight: make(map[string]*inflightCall),
	}, nil
}

// Plan returns the chunk layout for a file at its current size.
func (e *Engine) Plan(ctx context.Context, file string) ([]chunk.Spec, error) {
	size, err := e.src.Size(ctx, file)
	if err != nil {
		return nil, newTransferError("plan", file, 0, err)
	}

	return chunk.Plan(file, size, e.cfg.ChunkSize)
}

// FetchChunk returns a chunk of a file, reading it from the source when
// it is not cached. Concurrent fetches of the same chunk trigger a
// single source read and share its outcome. The context only bounds the
// wait; an admitted read runs to completion regardless.
func (e *Engine) FetchChunk(ctx context.Context, file string, index uint32, priority admission.Priority) (*FileChunk, error) {
	if fc, ok := e.cache.get(file, index); ok {
		e.metrics.ObserveCacheHit()
		return fc, nil
	}
	e.metrics.ObserveCacheMiss()

	call, _, err := e.startFetch(file, index, priority)
	if err != nil {
		return nil, err
	}

	select {
	case <-call.done:
		return call.chunk, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Preload schedules fetches for a range of chunk indices without
// waiting for them. Indices beyond the file's last chunk are ignored;
// chunks already cached or in flight are skipped. Returns the number of
// fetches scheduled.
func (e *Engine) Preload(ctx context.Context, file string, start, end uint32, priority admission.Priority) (int, error) {
	if start > end {
		return 0, fmt.Errorf("invalid preload range [%d, %d]", start, end)
	}

	size, err := e.src.Size(ctx, file)
	if err != nil {
		return 0, newTransferError("preload", file, start, err)
	}

	count := chunk.Count(size, e.cfg.ChunkSize)
	if count == 0 || start >= count {
		return 0, nil
	}
	if end >= count {
		end = count - 1
	}

	submitted := 0
	for index := start; index <= end; index++ {
		if _, ok := e.cache.get(file, index); ok {
			continue
		}

		_, started, err := e.startFetch(file, index, priority)
		if err != nil {
			return submitted, err
		}
		if started {
			submitted++
		}
	}

	logger.Debug("preload scheduled",
		"file", file,
		"start", start,
		"end", end,
		"submitted", submitted)

	return submitted, nil
}

// startFetch attaches to the in-flight fetch for a chunk, submitting a
// new one when none exists. started reports whether this call created
// the fetch.
func (e *Engine) startFetch(file string, index uint32, priority admission.Priority) (*inflightCall, bool, error) {
	key := Key(file, index)

	e.mu.Lock()
	if call, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		return call, false, nil
	}

	call := &inflightCall{done: make(chan struct{})}
	e.inflight[key] = call
	e.mu.Unlock()

	fc := &FileChunk{
		Spec:   chunk.Spec{File: file, Index: index},
		Status: StatusPending,
	}

	submitted := e.ctrl.Submit(key, priority, nil,
		func() error {
			return e.readChunk(fc, file, index)
		},
		func(res admission.Result) {
			if res.Err != nil {
				call.err = newTransferError("fetch", file, index, res.Err)
			} else {
				call.chunk = fc
			}

			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()

			close(call.done)
		})
	if !submitted {
		e.mu.Lock()
		delete(e.inflight, key)
		e.mu.Unlock()
		return nil, false, newTransferError("fetch", file, index, ErrEngineClosed)
	}

	return call, true, nil
}

// readChunk runs on an admission worker. It uses a background context
// because the read outlives any single caller once others have
// attached to it.
func (e *Engine) readChunk(fc *FileChunk, file string, index uint32) error {
	ctx := context.Background()
	start := time.Now()

	fc.Status = StatusProcessing

	size, err := e.src.Size(ctx, file)
	if err != nil {
		fc.Status = StatusError
		e.metrics.ObserveFetch(false, 0, time.Since(start))
		return err
	}

	if index >= chunk.Count(size, e.cfg.ChunkSize) {
		fc.Status = StatusError
		e.metrics.ObserveFetch(false, 0, time.Since(start))
		return ErrChunkOutOfRange
	}

	fc.Spec = chunk.At(file, index, size, e.cfg.ChunkSize)

	data, err := e.src.ReadAt(ctx, file, fc.Start, int(fc.Size()))
	if err != nil {
		fc.Status = StatusError
		e.metrics.ObserveFetch(false, 0, time.Since(start))
		return err
	}

	fc.Data = data
	fc.Checksum = Digest(data)
	fc.Timestamp = time.Now()
	fc.Status = StatusCompleted

	e.cache.put(fc)
	e.metrics.ObserveFetch(true, len(data), time.Since(start))

	logger.Debug("chunk fetched",
		"file", file,
		"index", index,
		"bytes", len(data),
		"duration", time.Since(start))

	return nil
}

// VerifyIntegrity reports whether a chunk's data matches its recorded
// size and checksum.
func (e *Engine) VerifyIntegrity(fc *FileChunk) bool {
	ok := fc != nil &&
		fc.Status == StatusCompleted &&
		int64(len(fc.Data)) == fc.Size() &&
		Digest(fc.Data) == fc.Checksum
	if !ok {
		e.metrics.ObserveVerifyFailure()
	}

	return ok
}

// Evict removes cached chunks for a file. With an empty keep list every
// chunk of the file is dropped; otherwise only indices outside keep are
// removed. Returns the number of chunks evicted.
func (e *Engine) Evict(file string, keep ...uint32) int {
	evicted := e.cache.evict(file, keep)
	if evicted > 0 {
		logger.Debug("chunks evicted", "file", file, "count", evicted)
	}

	return evicted
}

// CacheStats returns a snapshot of the chunk cache footprint.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}
