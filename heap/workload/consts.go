package workload

// Script syntax.
const (
	CommentPrefix = "#"

	KeywordAlloc   = "alloc"
	KeywordFree    = "free"
	KeywordWrite   = "write"
	KeywordCompact = "compact"
	KeywordStats   = "stats"
)

// Scanner buffer sizes. Write lines may carry long payloads.
const (
	ScannerInitialBufferSize = 64 * 1024
	ScannerMaxLineSize       = 1024 * 1024
)
