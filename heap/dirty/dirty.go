package dirty

import "sort"

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	// This reduces allocations during typical workloads.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Offset in arena
	Len int64 // Length in bytes
}

// End returns the offset one past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and coalesces them on demand.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges   []Range // raw ranges, coalesced lazily
	pageSize int64
}

// NewTracker creates a tracker using the OS page size.
func NewTracker() *Tracker {
	return NewTrackerWithPageSize(osPageSize())
}

// NewTrackerWithPageSize creates a tracker with an explicit page size.
// Non-positive sizes fall back to 4096.
func NewTrackerWithPageSize(pageSize int) *Tracker {
	if pageSize <= 0 {
		pageSize = standardPageSize
	}
	return &Tracker{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(pageSize),
	}
}

// Add records a dirty range. Empty ranges are ignored.
//
// This only appends to a slice; alignment and merging happen in Coalesced.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// PageSize returns the page granularity used by Coalesced.
func (t *Tracker) PageSize() int64 { return t.pageSize }

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns a copy of the raw, uncoalesced ranges in insertion order.
func (t *Tracker) Ranges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// Bytes returns the number of bytes reported, counting overlaps repeatedly.
func (t *Tracker) Bytes() int64 {
	var n int64
	for _, r := range t.ranges {
		n += r.Len
	}
	return n
}

// Pages returns the number of distinct pages covered by the tracked ranges.
func (t *Tracker) Pages() int {
	var n int64
	for _, r := range t.Coalesced() {
		n += r.Len / t.pageSize
	}
	return int(n)
}

// Coalesced page-aligns all ranges, sorts them, and merges
// overlapping/adjacent ranges.
//
// Returns a new slice of non-overlapping, sorted ranges.
func (t *Tracker) Coalesced() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	// Page-align all ranges
	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.End()
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}

	return append(merged, current)
}
