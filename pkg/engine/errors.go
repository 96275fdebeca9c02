package engine

import (
	"errors"
	"fmt"
)

// Standard engine errors. Callers should check these with errors.Is; the
// engine wraps them in TransferError for context.
var (
	// ErrChunkOutOfRange indicates a chunk index at or beyond the file's
	// chunk count.
	ErrChunkOutOfRange = errors.New("chunk index out of range")

	// ErrDiscontinuousChunks indicates a gap, overlap, or duplicate index
	// in a chunk set handed to Reassemble.
	ErrDiscontinuousChunks = errors.New("discontinuous chunks")

	// ErrIncompleteChunk indicates a chunk without data (not Completed)
	// handed to Reassemble.
	ErrIncompleteChunk = errors.New("incomplete chunk")

	// ErrSizeMismatch indicates the bytes written by Reassemble differ
	// from the sum of the chunk sizes.
	ErrSizeMismatch = errors.New("reassembled size mismatch")

	// ErrEngineClosed indicates the engine has been closed.
	ErrEngineClosed = errors.New("engine is closed")
)

// TransferError wraps sentinel and source errors with the operation and
// chunk that failed, without breaking errors.Is on the underlying error.
type TransferError struct {
	// Op is the operation that failed: "fetch", "preload", "reassemble".
	Op string

	// File is the identity of the affected file.
	File string

	// Index is the chunk index involved, when one applies.
	Index uint32

	// Err is the wrapped error.
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("chunk %s: %s (file=%s, index=%d)", e.Op, e.Err, e.File, e.Index)
}

func (e *TransferError) Unwrap() error { return e.Err }

func newTransferError(op, file string, index uint32, err error) *TransferError {
	return &TransferError{Op: op, File: file, Index: index, Err: err}
}
