package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFirstFit_FillArena fills a 100-byte arena with 8-byte requests.
// Each allocation takes a 16-byte chunk until only 20 bytes remain, which is
// too small to split and is handed out whole.
func TestFirstFit_FillArena(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 10, 8)
	require.Len(t, ptrs, 6)
	for i, p := range ptrs {
		assert.Equal(t, Ptr(8+16*i), p, "allocation %d", i)
	}

	last, err := a.Size(ptrs[5])
	require.NoError(t, err)
	assert.Equal(t, 12, last, "final chunk absorbs the unsplittable tail")

	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{AllocatedSize: 52, AllocatedChunks: 6}, s)
	assertInvariants(t, a)
}

// TestFirstFit_FillArenaSmall uses 4-byte requests: 12-byte stride, and the
// eighth allocation absorbs a 16-byte chunk.
func TestFirstFit_FillArenaSmall(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 10, 4)
	require.Len(t, ptrs, 8)
	for i, p := range ptrs {
		assert.Equal(t, Ptr(8+12*i), p, "allocation %d", i)
	}

	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, s.FreeSize)
	assert.Equal(t, 0, s.FreeChunks)
	assertInvariants(t, a)
}

// TestFreeAll_RestoresSingleChunk frees every allocation and expects the
// arena to collapse back into one free chunk.
func TestFreeAll_RestoresSingleChunk(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 10, 8)
	for _, p := range ptrs {
		a.Free(p)
		assertInvariants(t, a)
	}

	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{
		FreeSize:              92,
		FreeChunks:            1,
		SmallestFreeChunkSize: 92,
		LargestFreeChunkSize:  92,
	}, s)
}

// holePattern allocates ten 4-byte blocks and frees indexes 0, 2 and 3,
// leaving a 12-byte hole at the front and a 24-byte hole after it.
func holePattern(t *testing.T, strategy Strategy) (*Allocator, []Ptr) {
	t.Helper()

	a := newTestAllocator(t, 100, strategy, nil)
	ptrs := allocUntilFull(t, a, 10, 4)
	require.Len(t, ptrs, 8)

	a.Free(ptrs[0])
	a.Free(ptrs[2])
	a.Free(ptrs[3])
	assertInvariants(t, a)
	return a, ptrs
}

// TestBestFit_PicksSmallest tests that best-fit takes the exact-fit hole.
func TestBestFit_PicksSmallest(t *testing.T) {
	a, ptrs := holePattern(t, BestFit)

	p := mustAlloc(t, a, 4)
	assert.Equal(t, ptrs[0], p)
	assertInvariants(t, a)
}

// TestWorstFit_PicksLargest tests that worst-fit takes the 24-byte hole.
func TestWorstFit_PicksLargest(t *testing.T) {
	a, ptrs := holePattern(t, WorstFit)

	p := mustAlloc(t, a, 4)
	assert.Equal(t, ptrs[2], p)
	assertInvariants(t, a)
}

// TestCompact_MakesRoomForLargerRequest tests that two 4-byte holes cannot
// serve an 8-byte request until compaction merges them with the tail.
func TestCompact_MakesRoomForLargerRequest(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 8, 4)
	require.Len(t, ptrs, 8)
	a.Free(ptrs[1])
	a.Free(ptrs[3])

	_, err := a.Alloc(8)
	require.ErrorIs(t, err, ErrNoSpace)

	before, after, compacted, err := a.Compact()
	require.NoError(t, err)
	require.Len(t, before, 6)
	require.Len(t, after, 6)
	assert.Equal(t, 76, compacted)
	assertInvariants(t, a)

	p := mustAlloc(t, a, 8)
	assert.Equal(t, Ptr(76+8), p)
	assertInvariants(t, a)
}

// TestFirstFit_ReusesHolesInOrder frees three separated blocks and checks
// that small requests refill them lowest address first.
func TestFirstFit_ReusesHolesInOrder(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	ptrs := allocUntilFull(t, a, 10, 4)
	a.Free(ptrs[1])
	a.Free(ptrs[3])
	a.Free(ptrs[5])

	assert.Equal(t, ptrs[1], mustAlloc(t, a, 3))
	assert.Equal(t, ptrs[3], mustAlloc(t, a, 3))
	assert.Equal(t, ptrs[5], mustAlloc(t, a, 3))
	assertInvariants(t, a)
}

// TestConcurrentAllocFree races ten allocations of 5 bytes against a
// 100-byte arena, then frees three of the winners concurrently.
func TestConcurrentAllocFree(t *testing.T) {
	a := newTestAllocator(t, 100, FirstFit, nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ptrs []Ptr
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Alloc(5)
			if err != nil {
				return
			}
			mu.Lock()
			ptrs = append(ptrs, p)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, ptrs, 7)
	s, err := a.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{
		AllocatedSize:         35,
		AllocatedChunks:       7,
		FreeSize:              1,
		FreeChunks:            1,
		SmallestFreeChunkSize: 1,
		LargestFreeChunkSize:  1,
	}, s)

	for _, p := range ptrs[:3] {
		wg.Add(1)
		go func(p Ptr) {
			defer wg.Done()
			a.Free(p)
		}(p)
	}
	wg.Wait()

	s, err = a.Stats()
	require.NoError(t, err)
	assert.Equal(t, 20, s.AllocatedSize)
	assert.Equal(t, 4, s.AllocatedChunks)
	assertInvariants(t, a)
}
