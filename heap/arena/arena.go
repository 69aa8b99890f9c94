// Package arena owns the fixed-size byte buffer a heap allocator carves into
// chunks. It knows how to read and write chunk headers and how to move bytes
// around, but nothing about which chunks are free.
//
// An Arena is backed either by an ordinary Go slice or by an anonymous
// private memory mapping. The mapping keeps large arenas out of the Go heap
// (and away from the garbage collector) on platforms that support it;
// elsewhere Mmap silently falls back to a slice.
//
// Arena is NOT thread-safe. The allocator serializes all access.
package arena

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Backing selects where the arena bytes live.
type Backing uint8

const (
	// Heap backs the arena with a Go byte slice.
	Heap Backing = iota
	// Mmap backs the arena with an anonymous private mapping.
	Mmap
)

func (b Backing) String() string {
	switch b {
	case Heap:
		return "heap"
	case Mmap:
		return "mmap"
	default:
		return fmt.Sprintf("Backing(%d)", uint8(b))
	}
}

var (
	// ErrBadCapacity indicates a capacity that cannot hold a single chunk header.
	ErrBadCapacity = errors.New("arena: capacity must hold at least one chunk header")
	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// Arena is a contiguous, never-resized byte buffer.
type Arena struct {
	data    []byte
	backing Backing
	release func() error
}

// New allocates an arena of exactly capacity bytes and fills it with
// format.InitFill.
func New(capacity int, backing Backing) (*Arena, error) {
	if capacity < format.HeaderSize {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, capacity)
	}

	a := &Arena{backing: backing}
	switch backing {
	case Mmap:
		data, release, actual, err := mapAnon(capacity)
		if err != nil {
			return nil, fmt.Errorf("arena: map %d bytes: %w", capacity, err)
		}
		a.data, a.release, a.backing = data, release, actual
	default:
		a.data = make([]byte, capacity)
		a.backing = Heap
	}

	a.Fill(0, capacity, format.InitFill)
	return a, nil
}

// Bytes returns the live arena buffer. The slice is only valid until Close.
func (a *Arena) Bytes() []byte { return a.data }

// Len returns the arena capacity in bytes, or 0 once closed.
func (a *Arena) Len() int { return len(a.data) }

// Backing reports the backing actually in use, which may be Heap even when
// Mmap was requested on a platform without anonymous mappings.
func (a *Arena) Backing() Backing { return a.backing }

// ChunkSize decodes the chunk header at off.
func (a *Arena) ChunkSize(off int) int {
	return format.ReadChunkSize(a.data, off)
}

// SetChunkSize writes the chunk header at off.
func (a *Arena) SetChunkSize(off, size int) {
	format.PutChunkSize(a.data, off, size)
}

// Fill overwrites n bytes starting at off with pattern.
func (a *Arena) Fill(off, n int, pattern byte) {
	if n <= 0 {
		return
	}
	region := a.data[off : off+n]
	for i := range region {
		region[i] = pattern
	}
}

// Move copies n bytes from src to dst. Overlapping ranges are handled.
func (a *Arena) Move(dst, src, n int) {
	if n <= 0 || dst == src {
		return
	}
	copy(a.data[dst:dst+n], a.data[src:src+n])
}

// Close releases the arena memory. Closing twice is a no-op.
func (a *Arena) Close() error {
	if a.data == nil {
		return nil
	}
	var err error
	if a.release != nil {
		err = a.release()
	}
	a.data, a.release = nil, nil
	return err
}
