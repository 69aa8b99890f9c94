package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/workload"
)

// newAllocator builds an allocator from the global flags. tracker may be nil.
func newAllocator(tracker dirty.DirtyTracker) (*alloc.Allocator, error) {
	strategy, err := alloc.ParseStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	opts := &alloc.Options{
		Logger:    logger,
		SelfCheck: selfCheck,
	}
	if tracker != nil {
		opts.Tracker = tracker
	}
	if useMmap {
		opts.Backing = arena.Mmap
	}

	a, err := alloc.New(capacity, strategy, opts)
	if err != nil {
		return nil, err
	}
	printVerbose("Arena: %s (%s bytes), strategy %s\n",
		formatBytes(int64(capacity)), formatNumber(int64(capacity)), strategy)
	return a, nil
}

// loadScript parses a workload script from path, or from stdin when path is "-".
func loadScript(path string) ([]workload.Op, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	printVerbose("Parsing script: %s\n", path)
	ops, err := workload.Parse(r)
	if err != nil {
		return nil, err
	}
	printVerbose("Parsed %d operations\n", len(ops))
	return ops, nil
}

// replay loads path and runs it against a fresh allocator.
func replay(path string, tracker dirty.DirtyTracker) (*alloc.Allocator, *workload.Result, error) {
	ops, err := loadScript(path)
	if err != nil {
		return nil, nil, err
	}

	a, err := newAllocator(tracker)
	if err != nil {
		return nil, nil, err
	}

	res, err := workload.Run(a, ops)
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}
	return a, res, nil
}

// printStatsBlock prints a statistics snapshot.
func printStatsBlock(s alloc.Stats) {
	printInfo("  Allocated: %s in %d chunks\n", formatBytes(int64(s.AllocatedSize)), s.AllocatedChunks)
	printInfo("  Free: %s in %d chunks\n", formatBytes(int64(s.FreeSize)), s.FreeChunks)
	printInfo("  Free chunk sizes: smallest %s, largest %s\n",
		formatBytes(int64(s.SmallestFreeChunkSize)), formatBytes(int64(s.LargestFreeChunkSize)))
}
