package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Compact slides every allocation, in address order, to the front of the
// arena and turns all remaining space into a single free chunk at the end.
//
// before[i] and after[i] are the old and new pointer of the i-th allocation
// in address order. compacted is the number of bytes, headers included,
// now occupied by allocations. Every pointer obtained before the call is
// invalid afterwards; callers must switch to the after pointers.
//
// When allocations fill the arena exactly there is no trailing free chunk.
func (a *Allocator) Compact() (before, after []Ptr, compacted int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, nil, 0, ErrClosed
	}

	offs := a.used.offsets()
	before = make([]Ptr, 0, len(offs))
	after = make([]Ptr, 0, len(offs))

	dst := 0
	moved := 0
	for _, src := range offs {
		size := a.arena.ChunkSize(src)
		if src != dst {
			// dst < src, so the copy never clobbers a chunk not yet moved
			a.arena.Move(dst, src, size)
			a.dt.Add(dst, size)
			a.counters.BytesMoved += int64(size)
			moved++
		}
		before = append(before, Ptr(src+format.HeaderSize))
		after = append(after, Ptr(dst+format.HeaderSize))
		dst += size
	}

	a.used.clear()
	for _, p := range after {
		a.used.insert(int(p) - format.HeaderSize)
	}

	a.free.clear()
	if tail := a.capacity - dst; tail > 0 {
		a.arena.SetChunkSize(dst, tail)
		a.arena.Fill(dst+format.HeaderSize, tail-format.HeaderSize, format.FreedFill)
		a.dt.Add(dst, tail)
		a.free.insert(dst)
	}

	a.counters.Compactions++
	a.log.Debug("compact",
		"allocations", len(offs),
		"moved", moved,
		"compacted", dst,
		"tail", a.capacity-dst)

	a.check("compact")
	return before, after, dst, nil
}
