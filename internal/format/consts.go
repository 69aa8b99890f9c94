// Package format houses the low-level layout of a heap arena: the chunk
// header width, the diagnostic fill patterns and the helpers that encode and
// decode chunk headers. It is independent from the allocator so validators
// and tools can walk an arena without going through the public API.
package format

const (
	// HeaderSize is the width of the in-arena chunk header.
	// Layout (little-endian):
	//
	//	Offset  Size  Description
	//	0x00    8     Total chunk size in bytes, header included.
	//	0x08    ...   Payload.
	HeaderSize = 8

	// MinChunkSize is the smallest chunk that may exist in an arena: a bare
	// header with an empty payload. A split never leaves a remainder smaller
	// than this.
	MinChunkSize = HeaderSize
)

const (
	// InitFill is written over the whole arena when it is created.
	InitFill byte = 0xCC

	// FreedFill is written over the payload of a chunk produced by
	// coalescing or by compaction. A payload still carrying this pattern
	// after being handed out usually means a use-after-free.
	FreedFill byte = 0x11
)
