// Package dirty provides page-level dirty tracking for heap arenas.
//
// # Overview
//
// The allocator reports every byte range it rewrites: chunk headers on split
// and coalesce, diagnostic fills, and whole-chunk relocations during
// compaction. The tracker records those ranges cheaply and, on demand,
// rounds them to page boundaries and merges them, which answers questions
// like "how many pages did this compaction touch?".
//
// # Usage
//
//	tr := dirty.NewTracker()
//	a, err := alloc.New(1<<20, alloc.BestFit, &alloc.Options{Tracker: tr})
//	...
//	tr.Reset()
//	a.Compact()
//	fmt.Println(tr.Pages(), "pages rewritten")
//
// # Page-Level Granularity
//
//   - Ranges are rounded to the OS page size (unix.Getpagesize where
//     available, 4096 otherwise)
//   - A 1-byte change marks the entire page dirty
//   - Adjacent and overlapping pages are merged
//
// # Thread Safety
//
// Tracker is NOT thread-safe. The allocator only calls it while holding its
// own lock; readers must not race with allocator operations.
package dirty
