package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/verify"
)

func init() {
	rootCmd.AddCommand(newCompactCmd())
}

func newCompactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <script>",
		Short: "Replay a script, then compact the arena",
		Long: `The compact command replays a workload script, then slides every live
allocation to the front of the arena. It reports how many allocations
moved, how many bytes were copied, how many pages were dirtied and whether
every payload still matches its pre-compaction fingerprint.

Example:
  heapctl compact fragment.heap
  heapctl compact fragment.heap --capacity 100 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(args)
		},
	}
	return cmd
}

type compactReport struct {
	Script      string      `json:"script"`
	Allocations int         `json:"allocations"`
	Moved       int         `json:"moved"`
	BytesMoved  int64       `json:"bytes_moved"`
	Compacted   int         `json:"compacted"`
	DirtyPages  int         `json:"dirty_pages"`
	DirtyBytes  int64       `json:"dirty_bytes"`
	Verified    bool        `json:"verified"`
	Before      alloc.Stats `json:"before"`
	After       alloc.Stats `json:"after"`
}

func runCompact(args []string) error {
	tracker := dirty.NewTracker()
	a, res, err := replay(args[0], tracker)
	if err != nil {
		return err
	}
	defer a.Close()

	// Fingerprint every live payload before anything moves
	fingerprints := make(map[alloc.Ptr]uint64, len(res.Bindings))
	for _, p := range res.Bindings {
		fp, err := payloadFingerprint(a, p)
		if err != nil {
			return err
		}
		fingerprints[p] = fp
	}

	movedBefore := a.Counters().BytesMoved
	tracker.Reset()

	before, after, compacted, err := a.Compact()
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}

	report := compactReport{
		Script:      args[0],
		Allocations: len(before),
		BytesMoved:  a.Counters().BytesMoved - movedBefore,
		Compacted:   compacted,
		DirtyPages:  tracker.Pages(),
		DirtyBytes:  tracker.Bytes(),
		Verified:    true,
		Before:      res.Final,
	}

	for i, old := range before {
		if old != after[i] {
			report.Moved++
		}
		want, ok := fingerprints[old]
		if !ok {
			continue
		}
		got, err := payloadFingerprint(a, after[i])
		if err != nil {
			return err
		}
		if got != want {
			report.Verified = false
			printVerbose("Payload mismatch: 0x%X -> 0x%X\n", int(old), int(after[i]))
		}
	}

	report.After, err = a.Stats()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nCompaction: %s\n", args[0])
	printInfo("%s\n\n", strings.Repeat("═", 40))
	printInfo("  Allocations: %d (%d moved)\n", report.Allocations, report.Moved)
	printInfo("  Bytes moved: %s\n", formatBytes(report.BytesMoved))
	printInfo("  Compacted region: %s\n", formatBytes(int64(report.Compacted)))
	printInfo("  Dirty pages: %d (%s reported)\n", report.DirtyPages, formatBytes(report.DirtyBytes))
	printInfo("  Contents verified: %t\n\n", report.Verified)
	printInfo("Before:\n")
	printStatsBlock(report.Before)
	printInfo("After:\n")
	printStatsBlock(report.After)
	printInfo("\n")

	if !report.Verified {
		return fmt.Errorf("compaction changed payload contents")
	}
	return nil
}

func payloadFingerprint(a *alloc.Allocator, p alloc.Ptr) (uint64, error) {
	n, err := a.Size(p)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, n)
	if _, err := a.ReadAt(p, buf, 0); err != nil {
		return 0, err
	}
	return verify.Fingerprint(buf), nil
}
