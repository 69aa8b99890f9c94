package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/workload"
)

var (
	benchWorkers int
	benchOps     int
	benchMaxSize int
	benchSeed    int64
	benchEmit    bool
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchWorkers, "workers", 4, "Concurrent workers sharing the arena")
	cmd.Flags().IntVar(&benchOps, "ops", 10000, "Operations per worker")
	cmd.Flags().IntVar(&benchMaxSize, "max-size", 256, "Largest allocation request in bytes")
	cmd.Flags().Int64Var(&benchSeed, "seed", 1, "Random seed (worker i uses seed+i)")
	cmd.Flags().BoolVar(&benchEmit, "emit", false, "Print the first worker's script instead of running")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run concurrent random workloads against one arena",
		Long: `The bench command starts several workers that replay random alloc, write
and free scripts against a single shared allocator, then compacts the arena
and reports operation counters and fragmentation.

Example:
  heapctl bench --workers 8 --ops 50000 --capacity 1048576
  heapctl bench --strategy worst-fit --json
  heapctl bench --emit --ops 20 > sample.heap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
	return cmd
}

type benchReport struct {
	Strategy string         `json:"strategy"`
	Capacity int            `json:"capacity"`
	Workers  int            `json:"workers"`
	Ops      int            `json:"ops"`
	Failures int            `json:"failures"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
	Counters alloc.Counters `json:"counters"`
	Before   alloc.Stats    `json:"before_compact"`
	After    alloc.Stats    `json:"after_compact"`
}

func runBench() error {
	if benchWorkers < 1 || benchOps < 1 || benchMaxSize < 1 {
		return fmt.Errorf("--workers, --ops and --max-size must be positive")
	}

	scripts := make([][]workload.Op, benchWorkers)
	for i := range scripts {
		rng := rand.New(rand.NewSource(benchSeed + int64(i)))
		scripts[i] = workload.Random(rng, fmt.Sprintf("w%d-", i), benchOps, benchMaxSize)
	}

	if benchEmit {
		fmt.Print(workload.Script(scripts[0]))
		return nil
	}

	a, err := newAllocator(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	results := make([]*workload.Result, benchWorkers)
	start := time.Now()

	var g errgroup.Group
	for i, ops := range scripts {
		g.Go(func() error {
			res, err := workload.Run(a, ops)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report := benchReport{
		Strategy: a.Strategy().String(),
		Capacity: a.Capacity(),
		Workers:  benchWorkers,
		Ops:      benchWorkers * benchOps,
		Elapsed:  elapsed,
	}
	for _, res := range results {
		report.Failures += len(res.Failures)
	}

	if report.Before, err = a.Stats(); err != nil {
		return err
	}
	if _, _, _, err := a.Compact(); err != nil {
		return err
	}
	if report.After, err = a.Stats(); err != nil {
		return err
	}
	report.Counters = a.Counters()

	if jsonOut {
		return printJSON(report)
	}

	c := report.Counters
	printInfo("\nBenchmark: %d workers x %s ops (%s, %s arena)\n",
		report.Workers, formatNumber(int64(benchOps)), report.Strategy, formatBytes(int64(report.Capacity)))
	printInfo("%s\n\n", strings.Repeat("═", 40))
	printInfo("  Elapsed: %s (%s ops/s)\n", elapsed.Round(time.Microsecond),
		formatNumber(int64(float64(report.Ops)/elapsed.Seconds())))
	printInfo("  Alloc calls: %s (%s failed)\n", formatNumber(int64(c.AllocCalls)), formatNumber(int64(c.AllocFailures)))
	printInfo("  Free calls: %s\n", formatNumber(int64(c.FreeCalls)))
	printInfo("  Splits: %s, coalesces: %s\n", formatNumber(int64(c.Splits)), formatNumber(int64(c.Coalesces)))
	printInfo("  Compaction moved: %s\n\n", formatBytes(c.BytesMoved))
	printInfo("Before compaction:\n")
	printStatsBlock(report.Before)
	printInfo("After compaction:\n")
	printStatsBlock(report.After)
	printInfo("\n")
	return nil
}
