package alloc

import "github.com/joshuapare/heapkit/internal/format"

// pick selects a free chunk for an n-byte request according to the
// allocator's strategy. It returns the chunk offset and total size.
// Caller must hold a.mu.
func (a *Allocator) pick(n int) (off, size int, ok bool) {
	switch a.strategy {
	case BestFit:
		return a.pickBest(n)
	case WorstFit:
		return a.pickWorst(n)
	default:
		return a.pickFirst(n)
	}
}

func (a *Allocator) fits(size, n int) bool {
	return size-format.HeaderSize >= n
}

func (a *Allocator) pickFirst(n int) (off, size int, ok bool) {
	a.free.ascend(func(o int) bool {
		s := a.arena.ChunkSize(o)
		if a.fits(s, n) {
			off, size, ok = o, s, true
			return false
		}
		return true
	})
	return off, size, ok
}

func (a *Allocator) pickBest(n int) (off, size int, ok bool) {
	a.free.ascend(func(o int) bool {
		s := a.arena.ChunkSize(o)
		if !a.fits(s, n) {
			return true
		}
		// strict comparison keeps the lowest address on ties
		if !ok || s < size {
			off, size, ok = o, s, true
		}
		// an exact fit cannot be beaten
		return s-format.HeaderSize != n
	})
	return off, size, ok
}

// pickWorst considers only the single largest free chunk. A request that it
// cannot satisfy fails even if some smaller chunk would fit.
func (a *Allocator) pickWorst(n int) (off, size int, ok bool) {
	a.free.ascend(func(o int) bool {
		s := a.arena.ChunkSize(o)
		if !ok || s > size {
			off, size, ok = o, s, true
		}
		return true
	})
	if !ok || !a.fits(size, n) {
		return 0, 0, false
	}
	return off, size, true
}
