// Package source defines the byte-addressable file source consumed by the
// chunk engine: stat size plus random-access reads. Backends live in the
// fs, memory, and s3 subpackages.
package source

import (
	"context"
	"errors"
)

// Standard source errors. Backends map their native failures onto these so
// the engine can classify them without backend knowledge.
var (
	// ErrNotFound indicates the file identity does not exist in the source.
	ErrNotFound = errors.New("file not found")

	// ErrShortRead indicates fewer bytes were available than requested.
	ErrShortRead = errors.New("short read")

	// ErrSourceClosed indicates the source has been closed.
	ErrSourceClosed = errors.New("source is closed")
)

// Source is a byte-addressable file store.
//
// Implementations must be safe for concurrent use; the engine issues reads
// from multiple workers at once.
type Source interface {
	// Size returns the file's total size in bytes.
	Size(ctx context.Context, file string) (int64, error)

	// ReadAt reads exactly length bytes starting at offset. It fails with
	// ErrShortRead if the file ends before offset+length, and ErrNotFound
	// if the file does not exist.
	ReadAt(ctx context.Context, file string, offset int64, length int) ([]byte, error)
}
