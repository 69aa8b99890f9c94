package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// chunkOf resolves p to its chunk. Caller must hold a.mu.
func (a *Allocator) chunkOf(p Ptr) (off, size int, err error) {
	if a.closed {
		return 0, 0, ErrClosed
	}
	off = int(p) - format.HeaderSize
	if p == Nil || off < 0 || !a.used.has(off) {
		return 0, 0, fmt.Errorf("%w: %#x", ErrBadPointer, int(p))
	}
	return off, a.arena.ChunkSize(off), nil
}

// Size returns the usable payload size of p. It may exceed the requested
// size when the chunk was handed out whole.
func (a *Allocator) Size(p Ptr) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, size, err := a.chunkOf(p)
	if err != nil {
		return 0, err
	}
	return size - format.HeaderSize, nil
}

// payloadRange returns the n payload bytes of p starting at off, plus their
// arena offset. Caller must hold a.mu.
func (a *Allocator) payloadRange(p Ptr, off, n int) ([]byte, int, error) {
	chunk, size, err := a.chunkOf(p)
	if err != nil {
		return nil, 0, err
	}
	payload := a.arena.Bytes()[chunk+format.HeaderSize : chunk+size]
	region, ok := buf.Slice(payload, off, n)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d bytes at %d of %d", ErrOutOfRange, n, off, len(payload))
	}
	return region, chunk + format.HeaderSize + off, nil
}

// ReadAt copies len(b) payload bytes of p starting at off into b.
func (a *Allocator) ReadAt(p Ptr, b []byte, off int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	region, _, err := a.payloadRange(p, off, len(b))
	if err != nil {
		return 0, err
	}
	return copy(b, region), nil
}

// WriteAt copies b into the payload of p starting at off.
func (a *Allocator) WriteAt(p Ptr, b []byte, off int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	region, start, err := a.payloadRange(p, off, len(b))
	if err != nil {
		return 0, err
	}
	n := copy(region, b)
	a.dt.Add(start, n)
	return n, nil
}
