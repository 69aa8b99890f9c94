package alloc

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator manages one fixed-size arena.
//
// The free set and the allocated set together hold exactly one offset per
// chunk, and the chunks tile the arena with no gaps. A chunk changes status
// only by moving between the two sets.
type Allocator struct {
	mu sync.Mutex

	arena    *arena.Arena
	capacity int
	strategy Strategy

	free *chunkSet // offsets of free chunks
	used *chunkSet // offsets of allocated chunks

	dt        dirty.DirtyTracker
	log       *slog.Logger
	selfCheck bool
	closed    bool

	counters Counters
}

// New creates an allocator over a fresh arena of capacity bytes, carved into
// a single free chunk.
func New(capacity int, strategy Strategy, opts *Options) (*Allocator, error) {
	if capacity < format.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadCapacity, capacity)
	}
	if !strategy.valid() {
		return nil, fmt.Errorf("%w: %v", ErrBadStrategy, strategy)
	}

	backing := arena.Heap
	if opts != nil {
		backing = opts.Backing
	}
	ar, err := arena.New(capacity, backing)
	if err != nil {
		return nil, fmt.Errorf("alloc: create arena: %w", err)
	}

	a := &Allocator{
		arena:     ar,
		capacity:  capacity,
		strategy:  strategy,
		free:      newChunkSet(),
		used:      newChunkSet(),
		dt:        opts.tracker(),
		log:       opts.logger(),
		selfCheck: opts != nil && opts.SelfCheck,
	}

	a.arena.SetChunkSize(0, capacity)
	a.dt.Add(0, capacity)
	a.free.insert(0)

	a.log.Info("allocator ready",
		"capacity", capacity,
		"strategy", strategy.String(),
		"backing", ar.Backing().String())
	a.check("new")
	return a, nil
}

// Close releases the arena. Outstanding pointers become invalid without any
// bookkeeping. Closing twice is a no-op.
func (a *Allocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.free.clear()
	a.used.clear()
	a.log.Info("allocator closed", "capacity", a.capacity)
	return a.arena.Close()
}

// Alloc reserves at least n payload bytes and returns a pointer to them.
// It returns ErrNoSpace when no free chunk fits, leaving the arena untouched.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return Nil, ErrClosed
	}
	a.counters.AllocCalls++

	if n <= 0 {
		a.counters.AllocFailures++
		return Nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}

	off, size, ok := a.pick(n)
	if !ok {
		a.counters.AllocFailures++
		a.log.Debug("alloc exhausted", "need", n, "strategy", a.strategy.String())
		return Nil, fmt.Errorf("%w: need %d bytes", ErrNoSpace, n)
	}

	a.free.remove(off)
	if size-format.HeaderSize-n >= format.MinChunkSize {
		a.split(off, size, format.HeaderSize+n)
	}
	a.used.insert(off)

	a.check("alloc")
	return Ptr(off + format.HeaderSize), nil
}

// split shrinks the free chunk at off to keep bytes and returns the
// remainder to the free set.
func (a *Allocator) split(off, size, keep int) {
	rem := off + keep
	a.arena.SetChunkSize(off, keep)
	a.arena.SetChunkSize(rem, size-keep)
	a.dt.Add(off, format.HeaderSize)
	a.dt.Add(rem, format.HeaderSize)
	a.free.insert(rem)
	a.counters.Splits++

	a.log.Debug("split",
		"off", off,
		"size", size,
		"keep", keep,
		"remainder", size-keep)
}

// Free returns an allocation to the free set and merges it with any free
// neighbors.
//
// Free panics with a *ContractError if p is not a live allocation: a
// double free, a pointer this allocator never returned, or any call after
// Close. The allocator is left unchanged in that case.
func (a *Allocator) Free(p Ptr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		panic(&ContractError{Op: "free", Ptr: p, Err: ErrClosed})
	}
	off := int(p) - format.HeaderSize
	if p == Nil || off < 0 || !a.used.has(off) {
		panic(&ContractError{Op: "free", Ptr: p, Err: ErrBadPointer})
	}

	a.counters.FreeCalls++
	a.used.remove(off)
	a.free.insert(off)
	a.coalesce(off)

	a.check("free")
}

// check runs the structural validators when self-checking is enabled.
// Caller must hold a.mu.
func (a *Allocator) check(op string) {
	if !a.selfCheck {
		return
	}
	if err := verify.AllInvariants(a.arena.Bytes(), a.layout()); err != nil {
		panic(&ContractError{Op: op, Err: fmt.Errorf("%w: %w", ErrCorrupt, err)})
	}
}

// Strategy returns the placement strategy chosen at New.
func (a *Allocator) Strategy() Strategy { return a.strategy }

// Capacity returns the arena size in bytes.
func (a *Allocator) Capacity() int { return a.capacity }
