// Package alloc implements a heap allocator over a single fixed-size arena.
//
// # Overview
//
// An Allocator owns one contiguous arena of fixed capacity and carves it
// into chunks. Every chunk begins with an 8-byte little-endian header that
// records the chunk's total size, header included. The header is the only
// per-chunk metadata stored in the arena; whether a chunk is free or
// allocated is tracked out of band in two address-ordered sets of chunk
// offsets (B-trees from github.com/google/btree).
//
// Callers receive a Ptr, an opaque offset of the first payload byte. Payload
// bytes are reached through ReadAt and WriteAt; the allocator never hands out
// raw slices into the arena.
//
// # Placement Strategies
//
//   - FirstFit: the lowest-addressed free chunk that fits
//   - BestFit: the free chunk that leaves the least slack; ties go to the
//     lowest address
//   - WorstFit: the largest free chunk, and only that one; if it does not
//     fit the request fails even when a smaller chunk would
//
// A chosen chunk is split when the remainder can hold at least a header.
// Otherwise the caller receives the whole chunk and the slack becomes
// internal fragmentation (visible through Size).
//
// # Coalescing and Compaction
//
// Free merges the released chunk with its free neighbors immediately, so no
// two free chunks are ever adjacent. Merged payloads are overwritten with
// 0x11; a fresh arena is filled with 0xCC.
//
// Compact slides every allocation, in address order, to the front of the
// arena and leaves all free space as one trailing chunk. It returns the old
// and new pointer of every allocation; old pointers are invalid afterwards.
//
// # Errors
//
// Recoverable failures are reported with the sentinel errors in errors.go
// and can be checked with errors.Is. Freeing a pointer that is not a live
// allocation (double free, foreign pointer, use after Close) is a caller bug
// and panics with a *ContractError.
//
// # Thread Safety
//
// Every method serializes on a single mutex held for the whole operation.
// Allocators are independent of one another.
//
// # Logging
//
// Debug records for splits, merges, exhaustion and compaction go to
// Options.Logger. Without one, records are discarded unless the
// HEAPKIT_LOG_ALLOC environment variable is set, in which case they are
// written to stderr.
package alloc
