package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCapacity indicates an arena too small to hold a single chunk header.
	ErrBadCapacity = errors.New("alloc: capacity must hold at least one chunk header")

	// ErrBadStrategy indicates an unknown placement strategy.
	ErrBadStrategy = errors.New("alloc: unknown strategy")

	// ErrBadSize indicates a non-positive allocation size.
	ErrBadSize = errors.New("alloc: size must be positive")

	// ErrNoSpace indicates that no free chunk can satisfy the request.
	ErrNoSpace = errors.New("alloc: no free chunk large enough")

	// ErrBadPointer indicates a pointer that is not a live allocation.
	ErrBadPointer = errors.New("alloc: bad pointer")

	// ErrOutOfRange indicates a read or write past the end of a payload.
	ErrOutOfRange = errors.New("alloc: access outside payload")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: allocator closed")

	// ErrCorrupt indicates that a structural invariant no longer holds.
	ErrCorrupt = errors.New("alloc: arena corrupt")
)

// ContractError is the panic value raised when a caller breaks the
// allocator's contract, such as freeing a pointer twice.
type ContractError struct {
	Op  string
	Ptr Ptr
	Err error
}

func (e *ContractError) Error() string {
	if e.Ptr != Nil {
		return fmt.Sprintf("alloc: %s(%#x): %v", e.Op, int(e.Ptr), e.Err)
	}
	return fmt.Sprintf("alloc: %s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }
