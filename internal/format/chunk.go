package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Chunk describes one span of an arena.
//
// Off is the offset of the header, Size the total size including the header.
// Free reports membership in the free set; the arena bytes themselves do not
// record it.
type Chunk struct {
	Off  int  `json:"off"`
	Size int  `json:"size"`
	Free bool `json:"free"`
}

// End returns the offset one past the last byte of the chunk.
func (c Chunk) End() int { return c.Off + c.Size }

// PayloadOff returns the offset of the first payload byte.
func (c Chunk) PayloadOff() int { return c.Off + HeaderSize }

// PayloadSize returns the number of usable bytes after the header.
func (c Chunk) PayloadSize() int { return c.Size - HeaderSize }

// Adjacent reports whether next starts exactly where c ends.
func (c Chunk) Adjacent(next Chunk) bool { return c.End() == next.Off }

// NextChunk decodes the header at off and returns the chunk plus the offset
// of the chunk that follows it. The caller must ensure off points to the
// start of a chunk header. Free is left false: only the allocator knows.
func NextChunk(b []byte, off int) (Chunk, int, error) {
	if !buf.Has(b, off, HeaderSize) {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: %w", off, ErrTruncated)
	}
	size := ReadChunkSize(b, off)
	if size < HeaderSize {
		return Chunk{}, 0, fmt.Errorf("chunk at %d declares %d bytes: %w", off, size, ErrBadChunkSize)
	}
	next, ok := buf.AddOverflowSafe(off, size)
	if !ok || next > len(b) {
		return Chunk{}, 0, fmt.Errorf("chunk at %d runs past arena end: %w", off, ErrTruncated)
	}
	return Chunk{Off: off, Size: size}, next, nil
}

// WalkChunks decodes every header from offset 0 to the end of b, following
// the size chain. It stops at the first malformed header.
func WalkChunks(b []byte) ([]Chunk, error) {
	var chunks []Chunk
	for off := 0; off < len(b); {
		c, next, err := NextChunk(b, off)
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
		off = next
	}
	return chunks, nil
}
