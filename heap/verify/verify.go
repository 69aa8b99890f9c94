package verify

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes a violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all arena invariants in one call.
// chunks must be the allocator's view of the arena in address order.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte, chunks []format.Chunk) error {
	if err := Partition(len(data), chunks); err != nil {
		return err
	}
	if err := Headers(data, chunks); err != nil {
		return err
	}
	if err := NoAdjacentFree(chunks); err != nil {
		return err
	}
	payload := 0
	for _, c := range chunks {
		payload += c.PayloadSize()
	}
	return Conservation(len(data), payload, len(chunks))
}

// Partition validates that chunks tile [0, capacity) exactly.
func Partition(capacity int, chunks []format.Chunk) error {
	if len(chunks) == 0 {
		if capacity == 0 {
			return nil
		}
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("no chunks describe a %d-byte arena", capacity),
			Offset:  -1,
		}
	}

	pos := 0
	for _, c := range chunks {
		if c.Size < format.MinChunkSize {
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("chunk smaller than a header: %d bytes", c.Size),
				Offset:  c.Off,
			}
		}
		switch {
		case c.Off > pos:
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("gap of %d bytes before chunk", c.Off-pos),
				Offset:  pos,
			}
		case c.Off < pos:
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("chunk overlaps its predecessor by %d bytes", pos-c.Off),
				Offset:  c.Off,
			}
		}
		pos = c.End()
	}

	if pos != capacity {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("chunks cover %d bytes, arena holds %d", pos, capacity),
			Offset:  -1,
			Details: map[string]interface{}{
				"covered":  pos,
				"capacity": capacity,
			},
		}
	}
	return nil
}

// Headers validates that every descriptor agrees with its in-arena header
// and that the header chain starting at offset 0 visits exactly the
// descriptors, in order.
func Headers(data []byte, chunks []format.Chunk) error {
	off := 0
	for i, c := range chunks {
		if c.Off != off {
			return &ValidationError{
				Type:    "Headers",
				Message: fmt.Sprintf("header chain reached 0x%X, descriptor %d starts at 0x%X", off, i, c.Off),
				Offset:  off,
			}
		}
		decoded, next, err := format.NextChunk(data, off)
		if err != nil {
			return &ValidationError{
				Type:    "Headers",
				Message: err.Error(),
				Offset:  off,
			}
		}
		if decoded.Size != c.Size {
			return &ValidationError{
				Type:    "Headers",
				Message: fmt.Sprintf("header says %d bytes, descriptor says %d", decoded.Size, c.Size),
				Offset:  c.Off,
				Details: map[string]interface{}{
					"header":     decoded.Size,
					"descriptor": c.Size,
				},
			}
		}
		off = next
	}
	return nil
}

// NoAdjacentFree validates that no two free chunks are address-adjacent.
func NoAdjacentFree(chunks []format.Chunk) error {
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if prev.Free && cur.Free && prev.Adjacent(cur) {
			return &ValidationError{
				Type:    "NoAdjacentFree",
				Message: fmt.Sprintf("free chunk at 0x%X touches free chunk at 0x%X", prev.Off, cur.Off),
				Offset:  cur.Off,
			}
		}
	}
	return nil
}

// Conservation validates that payload bytes plus one header per chunk add
// up to the arena capacity.
func Conservation(capacity, payloadBytes, chunkCount int) error {
	total := payloadBytes + format.HeaderSize*chunkCount
	if total != capacity {
		return &ValidationError{
			Type: "Conservation",
			Message: fmt.Sprintf(
				"payload %d + %d headers accounts for %d bytes, capacity is %d",
				payloadBytes, chunkCount, total, capacity,
			),
			Offset: -1,
			Details: map[string]interface{}{
				"payload":  payloadBytes,
				"chunks":   chunkCount,
				"capacity": capacity,
			},
		}
	}
	return nil
}

// Fingerprint returns the XXH3 hash of b.
func Fingerprint(b []byte) uint64 {
	return xxh3.Hash(b)
}
