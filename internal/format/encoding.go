package format

import "encoding/binary"

// Binary encoding utilities for little-endian integers.
//
// Implementation: Uses encoding/binary.LittleEndian. The compiler inlines
// these calls, so there is nothing to gain from unsafe pointer casts here.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutChunkSize writes a chunk header at off.
func PutChunkSize(b []byte, off, size int) {
	PutU64(b, off, uint64(size))
}

// ReadChunkSize decodes the chunk header at off.
func ReadChunkSize(b []byte, off int) int {
	return int(ReadU64(b, off))
}
