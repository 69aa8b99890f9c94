package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// threeBlocks allocates three 16-byte blocks at the front of a 100-byte
// arena, leaving a 28-byte free tail (payload 20).
func threeBlocks(t *testing.T) (*Allocator, [3]Ptr) {
	t.Helper()

	a := newTestAllocator(t, 100, FirstFit, nil)
	var ptrs [3]Ptr
	for i := range ptrs {
		ptrs[i] = mustAlloc(t, a, 16)
	}
	return a, ptrs
}

func TestCoalesce_Forward(t *testing.T) {
	a, ptrs := threeBlocks(t)

	// Block 2 touches the tail
	a.Free(ptrs[2])

	layout := a.Layout()
	require.Len(t, layout, 3)
	assert.Equal(t, Chunk{Off: 48, Size: 52, Free: true}, layout[2])
	assert.Equal(t, 1, a.Counters().Coalesces)
	assertInvariants(t, a)
}

func TestCoalesce_Backward(t *testing.T) {
	a, ptrs := threeBlocks(t)

	a.Free(ptrs[0])
	a.Free(ptrs[1])

	layout := a.Layout()
	require.Len(t, layout, 3)
	assert.Equal(t, Chunk{Off: 0, Size: 48, Free: true}, layout[0])
	assert.Equal(t, 1, a.Counters().Coalesces)
	assertInvariants(t, a)
}

func TestCoalesce_BothSides(t *testing.T) {
	a, ptrs := threeBlocks(t)

	a.Free(ptrs[0])
	a.Free(ptrs[2])
	require.Equal(t, 1, a.Counters().Coalesces, "block 2 merges with the tail")

	a.Free(ptrs[1])
	assert.Equal(t, 3, a.Counters().Coalesces)

	layout := a.Layout()
	require.Len(t, layout, 1)
	assert.Equal(t, Chunk{Off: 0, Size: 100, Free: true}, layout[0])
	assertInvariants(t, a)
}

func TestCoalesce_NoNeighbors(t *testing.T) {
	a, ptrs := threeBlocks(t)

	a.Free(ptrs[1])

	assert.Equal(t, 0, a.Counters().Coalesces)
	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, s.FreeChunks)
	assert.Equal(t, 16, s.SmallestFreeChunkSize)
	assert.Equal(t, 20, s.LargestFreeChunkSize)
	assertInvariants(t, a)
}

// TestCoalesce_FillsMergedPayload tests that a merged chunk's payload is
// scrubbed with the freed pattern, header excluded.
func TestCoalesce_FillsMergedPayload(t *testing.T) {
	a, ptrs := threeBlocks(t)

	for _, p := range ptrs {
		_, err := a.WriteAt(p, []byte("0123456789abcdef"), 0)
		require.NoError(t, err)
	}
	a.Free(ptrs[0])
	a.Free(ptrs[1])

	data := a.arena.Bytes()
	require.Equal(t, 48, format.ReadChunkSize(data, 0))
	for i := format.HeaderSize; i < 48; i++ {
		require.Equalf(t, format.FreedFill, data[i], "byte %d", i)
	}

	// Untouched neighbor keeps its contents
	buf := make([]byte, 16)
	_, err := a.ReadAt(ptrs[2], buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", string(buf))
}

// TestFree_UnmergedKeepsContents tests that a free chunk with no free
// neighbor is not scrubbed.
func TestFree_UnmergedKeepsContents(t *testing.T) {
	a, ptrs := threeBlocks(t)

	_, err := a.WriteAt(ptrs[1], []byte("payload"), 0)
	require.NoError(t, err)
	a.Free(ptrs[1])

	off := int(ptrs[1])
	assert.Equal(t, "payload", string(a.arena.Bytes()[off:off+7]))
}
