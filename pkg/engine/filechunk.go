package engine

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marmos91/chunkstream/pkg/chunk"
)

// Status tracks a chunk through its fetch lifecycle.
type Status int

const (
	// StatusPending means the chunk has been accepted but not started.
	StatusPending Status = iota

	// StatusProcessing means a worker is currently reading the chunk.
	StatusProcessing

	// StatusCompleted means the chunk holds verified data.
	StatusCompleted

	// StatusError means the fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FileChunk is a chunk of a file together with its fetched payload.
// Once Status is StatusCompleted the struct is treated as read only
// and is safe to share across goroutines.
type FileChunk struct {
	chunk.Spec

	// Status is the chunk's position in the fetch lifecycle.
	Status Status

	// Data holds the chunk payload once the fetch completes.
	Data []byte

	// Checksum is the xxhash64 digest of Data, computed at fetch time.
	Checksum uint64

	// Timestamp records when the fetch completed.
	Timestamp time.Time
}

// Key returns the cache and dispatch identity for a chunk of a file.
func Key(file string, index uint32) string {
	return fmt.Sprintf("%s#%d", file, index)
}

// Digest computes the checksum the engine stores for a chunk payload.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}
