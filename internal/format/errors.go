package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadChunkSize indicates a header declared a size smaller than the header itself.
	ErrBadChunkSize = errors.New("format: chunk size smaller than header")
)
