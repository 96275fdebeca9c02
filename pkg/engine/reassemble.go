package engine

import (
	"io"
	"slices"

	"github.com/marmos91/chunkstream/internal/logger"
)

// Reassemble writes a set of chunks to dst in index order. The set is
// validated in full before any byte is written: every chunk must belong
// to the same file, be completed with data of its planned size, and the
// sorted chunks must form a contiguous byte run with no gaps or
// duplicates. The set does not have to start at index zero, so a
// contiguous slice of a file can be reassembled on its own. An empty set
// is the plan of an empty file and reassembles to nothing.
func (e *Engine) Reassemble(chunks []*FileChunk, dst io.Writer) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, fc := range chunks {
		if fc == nil {
			return newTransferError("reassemble", "", 0, ErrIncompleteChunk)
		}
	}

	sorted := slices.Clone(chunks)
	slices.SortFunc(sorted, func(a, b *FileChunk) int {
		return int(a.Index) - int(b.Index)
	})

	file := sorted[0].File
	var expected int64

	for i, fc := range sorted {
		if fc.File != file {
			return newTransferError("reassemble", file, fc.Index, ErrDiscontinuousChunks)
		}
		if fc.Status != StatusCompleted || fc.Data == nil {
			return newTransferError("reassemble", file, fc.Index, ErrIncompleteChunk)
		}
		if int64(len(fc.Data)) != fc.Size() {
			return newTransferError("reassemble", file, fc.Index, ErrIncompleteChunk)
		}
		if i > 0 {
			if fc.Index != sorted[i-1].Index+1 {
				return newTransferError("reassemble", file, fc.Index, ErrDiscontinuousChunks)
			}
			if fc.Start != sorted[i-1].End {
				return newTransferError("reassemble", file, fc.Index, ErrDiscontinuousChunks)
			}
		}
		expected += int64(len(fc.Data))
	}

	var written int64
	for _, fc := range sorted {
		n, err := dst.Write(fc.Data)
		written += int64(n)
		if err != nil {
			return newTransferError("reassemble", file, fc.Index, err)
		}
	}

	if written != expected {
		return newTransferError("reassemble", file, 0, ErrSizeMismatch)
	}

	logger.Debug("chunks reassembled",
		"file", file,
		"chunks", len(sorted),
		"bytes", written)

	return nil
}
