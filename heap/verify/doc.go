// Package verify provides validation functions for heap arena structures.
//
// # Overview
//
// The checks here encode the structural invariants every allocator state
// must satisfy. Tests run them after each step; the allocator runs them
// after every mutation when self-checking is enabled.
//
// Validation categories:
//   - Partition: chunks are address-ordered and cover [0, capacity) with no
//     gap and no overlap
//   - Headers: the in-arena header of every chunk matches its descriptor,
//     and following the header chain from offset 0 visits exactly the
//     descriptors
//   - NoAdjacentFree: no two free chunks touch
//   - Conservation: payload bytes plus one header per chunk add up to the
//     capacity
//
// # Quick Start
//
//	if err := verify.AllInvariants(data, chunks); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// All failures are *ValidationError values carrying the check name, a
// message and, where one applies, the arena offset of the offending chunk
// (-1 otherwise):
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.Type, verr.Offset)
//	}
//
// # Fingerprints
//
// Fingerprint hashes payload bytes with XXH3 so callers can confirm that
// content survived a relocation without keeping copies around.
package verify
