package alloc

import "github.com/joshuapare/heapkit/internal/format"

// coalesce merges the free chunk at off with its free neighbors and returns
// the offset of the resulting chunk. The free set holds no adjacent pair
// before the call, so at most one merge in each direction is possible.
// Caller must hold a.mu.
func (a *Allocator) coalesce(off int) int {
	size := a.arena.ChunkSize(off)

	// Forward
	if next, ok := a.free.next(off); ok && next == off+size {
		nextSize := a.arena.ChunkSize(next)
		a.free.remove(next)
		size += nextSize
		a.merged(off, size, "forward")
	}

	// Backward
	if prev, ok := a.free.prev(off); ok {
		prevSize := a.arena.ChunkSize(prev)
		if prev+prevSize == off {
			a.free.remove(off)
			off = prev
			size += prevSize
			a.merged(off, size, "backward")
		}
	}

	return off
}

// merged rewrites the header of a freshly merged chunk and scrubs its
// payload.
func (a *Allocator) merged(off, size int, dir string) {
	a.arena.SetChunkSize(off, size)
	a.arena.Fill(off+format.HeaderSize, size-format.HeaderSize, format.FreedFill)
	a.dt.Add(off, size)
	a.counters.Coalesces++
	a.log.Debug("coalesce", "dir", dir, "off", off, "size", size)
}
