package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats returns a snapshot of the arena. After Close it returns a zero
// snapshot and ErrClosed.
func (a *Allocator) Stats() (Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return Stats{}, ErrClosed
	}
	return a.stats(), nil
}

// stats aggregates both sets. Caller must hold a.mu.
func (a *Allocator) stats() Stats {
	var s Stats

	a.used.ascend(func(off int) bool {
		s.AllocatedSize += a.arena.ChunkSize(off) - format.HeaderSize
		s.AllocatedChunks++
		return true
	})

	a.free.ascend(func(off int) bool {
		payload := a.arena.ChunkSize(off) - format.HeaderSize
		if s.FreeChunks == 0 || payload < s.SmallestFreeChunkSize {
			s.SmallestFreeChunkSize = payload
		}
		if payload > s.LargestFreeChunkSize {
			s.LargestFreeChunkSize = payload
		}
		s.FreeSize += payload
		s.FreeChunks++
		return true
	})

	return s
}

// Available returns the number of free payload bytes, or 0 after Close.
func (a *Allocator) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0
	}
	return a.stats().FreeSize
}

// Counters returns the operation counts accumulated since New.
func (a *Allocator) Counters() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters
}

// Layout returns every chunk in address order, or nil after Close.
func (a *Allocator) Layout() []Chunk {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	return a.layout()
}

// layout merges the two sets into one address-ordered list, reading sizes
// from the headers. Caller must hold a.mu.
func (a *Allocator) layout() []Chunk {
	free := a.free.offsets()
	used := a.used.offsets()
	out := make([]Chunk, 0, len(free)+len(used))

	i, j := 0, 0
	for i < len(free) || j < len(used) {
		var c Chunk
		if j == len(used) || (i < len(free) && free[i] < used[j]) {
			c = Chunk{Off: free[i], Free: true}
			i++
		} else {
			c = Chunk{Off: used[j]}
			j++
		}
		c.Size = a.arena.ChunkSize(c.Off)
		out = append(out, c)
	}
	return out
}

// Snapshot returns a copy of the raw arena bytes, headers included, or nil
// after Close.
func (a *Allocator) Snapshot() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	return append([]byte(nil), a.arena.Bytes()...)
}

// PrintStats writes a human-readable summary of the statistics and counters
// to w.
func (a *Allocator) PrintStats(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		fmt.Fprintf(w, "allocator closed\n")
		return
	}

	s := a.stats()
	c := a.counters
	fmt.Fprintf(w, "\n=== ALLOCATOR STATISTICS ===\n")
	fmt.Fprintf(w, "Strategy:           %s\n", a.strategy)
	fmt.Fprintf(w, "Capacity:           %d bytes\n", a.capacity)
	fmt.Fprintf(w, "Allocated:          %d bytes in %d chunks\n", s.AllocatedSize, s.AllocatedChunks)
	fmt.Fprintf(w, "Free:               %d bytes in %d chunks\n", s.FreeSize, s.FreeChunks)
	fmt.Fprintf(w, "Free chunk range:   %d .. %d bytes\n", s.SmallestFreeChunkSize, s.LargestFreeChunkSize)
	fmt.Fprintf(
		w,
		"Alloc calls:        %d (failed: %d)\n",
		c.AllocCalls,
		c.AllocFailures,
	)
	fmt.Fprintf(w, "Free calls:         %d\n", c.FreeCalls)
	fmt.Fprintf(w, "Chunk splits:       %d\n", c.Splits)
	fmt.Fprintf(w, "Coalesces:          %d\n", c.Coalesces)
	fmt.Fprintf(w, "Compactions:        %d (%d bytes moved)\n", c.Compactions, c.BytesMoved)

	if s.FreeChunks > 1 && s.FreeSize > 0 {
		// share of free space unusable by a request the size of all free space
		frag := 100.0 * float64(s.FreeSize-s.LargestFreeChunkSize) / float64(s.FreeSize)
		fmt.Fprintf(w, "Fragmentation:      %.1f%%\n", frag)
	}
	fmt.Fprintf(w, "============================\n\n")
}
