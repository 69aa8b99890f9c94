package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// newTestAllocator creates an allocator that is closed when the test ends.
func newTestAllocator(tb testing.TB, capacity int, strategy Strategy, opts *Options) *Allocator {
	tb.Helper()

	a, err := New(capacity, strategy, opts)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = a.Close() })
	return a
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(tb testing.TB, a *Allocator, n int) Ptr {
	tb.Helper()

	p, err := a.Alloc(n)
	require.NoError(tb, err, "Alloc(%d)", n)
	require.NotEqual(tb, Nil, p)
	return p
}

// allocUntilFull issues count Alloc(n) calls and returns the pointers of the
// ones that succeeded. Failures must be ErrNoSpace.
func allocUntilFull(tb testing.TB, a *Allocator, count, n int) []Ptr {
	tb.Helper()

	var ptrs []Ptr
	for range count {
		p, err := a.Alloc(n)
		if err != nil {
			require.ErrorIs(tb, err, ErrNoSpace)
			continue
		}
		ptrs = append(ptrs, p)
	}
	return ptrs
}

// assertInvariants runs every structural validator plus the statistics
// accounting identity.
func assertInvariants(tb testing.TB, a *Allocator) {
	tb.Helper()

	layout := a.Layout()
	require.NoError(tb, verify.AllInvariants(a.arena.Bytes(), layout))

	s, err := a.Stats()
	require.NoError(tb, err)
	total := s.AllocatedSize + s.FreeSize +
		format.HeaderSize*(s.AllocatedChunks+s.FreeChunks)
	require.Equal(tb, a.Capacity(), total, "conservation: %+v", s)
	require.Equal(tb, len(layout), s.AllocatedChunks+s.FreeChunks)
}

// requireContractPanic asserts that fn panics with a *ContractError wrapping
// target.
func requireContractPanic(tb testing.TB, target error, fn func()) {
	tb.Helper()

	defer func() {
		tb.Helper()
		r := recover()
		require.NotNil(tb, r, "expected panic")

		err, ok := r.(error)
		require.True(tb, ok, "panic value %T is not an error", r)

		var ce *ContractError
		require.True(tb, errors.As(err, &ce), "panic value %T is not a *ContractError", r)
		require.ErrorIs(tb, err, target)
	}()
	fn()
}
