// Package chunk defines the geometry of fixed-size file chunks.
//
// A file of size S split with chunk size C yields ceil(S/C) chunks. Every
// chunk but the last has size C; the last has size S mod C (or C when S is
// an exact multiple). Chunks are contiguous and non-overlapping: chunk i
// covers the half-open byte range [i*C, min((i+1)*C, S)).
package chunk

import (
	"fmt"
	"sort"
)

// DefaultSize is the default chunk size (1MiB).
const DefaultSize = 1 * 1024 * 1024

// Spec describes one chunk's geometry within a file. It is derived purely
// from the file size and the chunk size; it carries no data.
type Spec struct {
	// File is the opaque identity of the source file (path or object key).
	File string

	// Index is the zero-based chunk ordinal.
	Index uint32

	// Start is the first byte covered by this chunk.
	Start int64

	// End is one past the last byte covered by this chunk.
	End int64
}

// Size returns the chunk's length in bytes.
func (s Spec) Size() int64 { return s.End - s.Start }

// String renders the spec for log output.
func (s Spec) String() string {
	return fmt.Sprintf("%s#%d[%d,%d)", s.File, s.Index, s.Start, s.End)
}

// Count returns the number of chunks a file of fileSize splits into.
func Count(fileSize, chunkSize int64) uint32 {
	if fileSize <= 0 {
		return 0
	}
	return uint32((fileSize + chunkSize - 1) / chunkSize)
}

// IndexForOffset returns the chunk index containing a file offset.
func IndexForOffset(offset, chunkSize int64) uint32 {
	return uint32(offset / chunkSize)
}

// At computes the Spec for a single chunk index. The index must be below
// Count(fileSize, chunkSize); At does not validate it.
func At(file string, index uint32, fileSize, chunkSize int64) Spec {
	start := int64(index) * chunkSize
	end := start + chunkSize
	if end > fileSize {
		end = fileSize
	}
	return Spec{File: file, Index: index, Start: start, End: end}
}

// Plan computes the full chunk sequence for a file, sorted by index.
//
// It returns an error for negative fileSize or non-positive chunkSize, and
// an empty sequence for an empty file.
func Plan(file string, fileSize, chunkSize int64) ([]Spec, error) {
	if fileSize < 0 {
		return nil, fmt.Errorf("plan chunks: negative file size %d", fileSize)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("plan chunks: chunk size must be positive, got %d", chunkSize)
	}

	n := Count(fileSize, chunkSize)
	specs := make([]Spec, 0, n)
	for i := uint32(0); i < n; i++ {
		specs = append(specs, At(file, i, fileSize, chunkSize))
	}
	return specs, nil
}

// Contiguous reports whether specs (assumed sorted by Index) cover a
// gapless, non-overlapping byte range with consecutive indices.
func Contiguous(specs []Spec) bool {
	for i := 1; i < len(specs); i++ {
		if specs[i].Index != specs[i-1].Index+1 {
			return false
		}
		if specs[i].Start != specs[i-1].End {
			return false
		}
	}
	return true
}

// SortByIndex sorts specs in place by ascending chunk index.
func SortByIndex(specs []Spec) {
	sort.Slice(specs, func(i, j int) bool { return specs[i].Index < specs[j].Index })
}
