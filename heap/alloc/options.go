package alloc

import (
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

var packageLogger = newPackageLogger(logAlloc)

func newPackageLogger(enabled bool) *slog.Logger {
	if !enabled {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})).With("component", "alloc")
}

// Options configures an Allocator. A nil *Options selects the defaults.
type Options struct {
	// Logger receives lifecycle and debug records. Nil selects the package
	// logger, which is silent unless HEAPKIT_LOG_ALLOC is set.
	Logger *slog.Logger

	// Tracker, if set, is told about every arena range the allocator
	// rewrites. It is only called with the allocator lock held.
	Tracker dirty.DirtyTracker

	// Backing selects where the arena lives. The zero value is arena.Heap.
	Backing arena.Backing

	// SelfCheck validates every structural invariant after each mutation
	// and panics with a *ContractError wrapping ErrCorrupt on failure.
	// Expensive: every check walks the whole arena.
	SelfCheck bool
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return packageLogger
	}
	return o.Logger
}

func (o *Options) tracker() dirty.DirtyTracker {
	if o == nil || o.Tracker == nil {
		return noopTracker{}
	}
	return o.Tracker
}

type noopTracker struct{}

func (noopTracker) Add(int, int) {}
