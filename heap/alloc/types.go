package alloc

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is an opaque handle to an allocation: the arena offset of its first
// payload byte.
type Ptr int

// Nil is the null pointer. No payload can start at offset 0 because every
// chunk starts with its header.
const Nil Ptr = 0

// Chunk describes one span of the arena as reported by Layout.
type Chunk = format.Chunk

// Strategy selects which free chunk satisfies an allocation.
type Strategy uint8

const (
	// FirstFit takes the first free chunk in address order that fits.
	FirstFit Strategy = iota
	// BestFit takes the fitting chunk with the smallest leftover.
	BestFit
	// WorstFit takes the largest free chunk if it fits.
	WorstFit
)

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	case WorstFit:
		return "worst-fit"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

func (s Strategy) valid() bool { return s <= WorstFit }

// ParseStrategy parses "first-fit", "best-fit" or "worst-fit" (the short
// forms "first", "best" and "worst" are accepted too).
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "first-fit", "first", "firstfit":
		return FirstFit, nil
	case "best-fit", "best", "bestfit":
		return BestFit, nil
	case "worst-fit", "worst", "worstfit":
		return WorstFit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadStrategy, name)
}

// Stats is a point-in-time summary of the arena. All sizes are payload
// bytes; headers are not counted.
type Stats struct {
	AllocatedSize         int `json:"allocated_size"`
	AllocatedChunks       int `json:"allocated_chunks"`
	FreeSize              int `json:"free_size"`
	FreeChunks            int `json:"free_chunks"`
	SmallestFreeChunkSize int `json:"smallest_free_chunk_size"`
	LargestFreeChunkSize  int `json:"largest_free_chunk_size"`
}

// Counters holds monotonically increasing operation counts.
type Counters struct {
	AllocCalls    int   `json:"alloc_calls"`    // Alloc calls, failed ones included
	AllocFailures int   `json:"alloc_failures"` // Alloc calls that returned an error
	FreeCalls     int   `json:"free_calls"`     // successful Free calls
	Splits        int   `json:"splits"`         // chunks split on allocation
	Coalesces     int   `json:"coalesces"`      // pairwise merges of free chunks
	Compactions   int   `json:"compactions"`    // Compact calls
	BytesMoved    int64 `json:"bytes_moved"`    // bytes relocated by Compact
}
