package alloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

func readAll(t *testing.T, a *Allocator, p Ptr) []byte {
	t.Helper()

	n, err := a.Size(p)
	require.NoError(t, err)
	buf := make([]byte, n)
	_, err = a.ReadAt(p, buf, 0)
	require.NoError(t, err)
	return buf
}

// TestCompact_PreservesContents fills every allocation with a distinct
// pattern, punches holes, compacts, and checks each surviving payload by
// fingerprint at its new address.
func TestCompact_PreservesContents(t *testing.T) {
	a := newTestAllocator(t, 1024, BestFit, nil)

	var ptrs []Ptr
	for i := range 20 {
		p := mustAlloc(t, a, 8+i*3)
		_, err := a.WriteAt(p, []byte(fmt.Sprintf("block-%02d", i)), 0)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}

	want := make(map[Ptr]uint64)
	var live []Ptr
	for i, p := range ptrs {
		if i%3 == 0 {
			a.Free(p)
			continue
		}
		live = append(live, p)
		want[p] = verify.Fingerprint(readAll(t, a, p))
	}

	before, after, compacted, err := a.Compact()
	require.NoError(t, err)
	require.Equal(t, live, before, "before lists live allocations in address order")
	require.Len(t, after, len(before))
	assertInvariants(t, a)

	used := 0
	for i, p := range after {
		got := verify.Fingerprint(readAll(t, a, p))
		assert.Equal(t, want[before[i]], got, "allocation %d moved %#x -> %#x", i, before[i], p)
		size, err := a.Size(p)
		require.NoError(t, err)
		used += size + format.HeaderSize
	}
	assert.Equal(t, used, compacted)
	assert.Equal(t, Ptr(format.HeaderSize), after[0])
	for i := 1; i < len(after); i++ {
		prevSize, err := a.Size(after[i-1])
		require.NoError(t, err)
		assert.Equal(t, after[i-1]+Ptr(prevSize+format.HeaderSize), after[i], "allocations are contiguous")
	}

	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, s.FreeChunks)
	assert.Equal(t, a.Capacity()-compacted-format.HeaderSize, s.FreeSize)

	// Tail payload is scrubbed
	data := a.arena.Bytes()
	for i := compacted + format.HeaderSize; i < len(data); i++ {
		require.Equalf(t, format.FreedFill, data[i], "tail byte %d", i)
	}
}

// TestCompact_OldPointersInvalid tests that a moved allocation can only be
// freed through its new pointer.
func TestCompact_OldPointersInvalid(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	p0 := mustAlloc(t, a, 8)
	p1 := mustAlloc(t, a, 8)
	a.Free(p0)

	before, after, _, err := a.Compact()
	require.NoError(t, err)
	require.Equal(t, []Ptr{p1}, before)
	require.Equal(t, []Ptr{p0}, after, "sole allocation slides to the front")

	_, err = a.Size(p1)
	require.ErrorIs(t, err, ErrBadPointer)
	requireContractPanic(t, ErrBadPointer, func() { a.Free(p1) })

	a.Free(after[0])
	assertInvariants(t, a)
}

// TestCompact_FullArena tests compaction when allocations cover the whole
// arena: there is no trailing free chunk.
func TestCompact_FullArena(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 10, 8)
	require.Len(t, ptrs, 6)

	before, after, compacted, err := a.Compact()
	require.NoError(t, err)
	assert.Equal(t, ptrs, before)
	assert.Equal(t, ptrs, after, "nothing moves")
	assert.Equal(t, 100, compacted)
	assert.Equal(t, int64(0), a.Counters().BytesMoved)

	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, s.FreeChunks)
	assertInvariants(t, a)
}

// TestCompact_Empty tests compaction with no allocations.
func TestCompact_Empty(t *testing.T) {
	a := newTestAllocator(t, 100, WorstFit, nil)

	before, after, compacted, err := a.Compact()
	require.NoError(t, err)
	assert.Empty(t, before)
	assert.Empty(t, after)
	assert.Equal(t, 0, compacted)

	layout := a.Layout()
	require.Len(t, layout, 1)
	assert.Equal(t, Chunk{Off: 0, Size: 100, Free: true}, layout[0])
	assertInvariants(t, a)
}

func TestCompact_CountsBytesMoved(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	p0 := mustAlloc(t, a, 4)
	mustAlloc(t, a, 4)
	mustAlloc(t, a, 12)
	a.Free(p0)

	_, _, _, err := a.Compact()
	require.NoError(t, err)

	c := a.Counters()
	assert.Equal(t, 1, c.Compactions)
	assert.Equal(t, int64(12+20), c.BytesMoved)
}
