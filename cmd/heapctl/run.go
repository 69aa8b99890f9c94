package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/workload"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay a workload script and report statistics",
		Long: `The run command replays an allocation script against a fresh arena and
prints the final statistics, every allocation that ran out of space and
every statistics snapshot the script asked for.

Script lines:
  alloc <name> <size>
  free <name>
  write <name> <text>
  compact
  stats

Example:
  heapctl run fragment.heap
  heapctl run fragment.heap --strategy best-fit --capacity 100
  heapctl run - --json < fragment.heap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

type runReport struct {
	Script   string           `json:"script"`
	Strategy string           `json:"strategy"`
	Capacity int              `json:"capacity"`
	Result   *workload.Result `json:"result"`
	Counters alloc.Counters   `json:"counters"`
}

func runRun(args []string) error {
	a, res, err := replay(args[0], nil)
	if err != nil {
		return err
	}
	defer a.Close()

	report := runReport{
		Script:   args[0],
		Strategy: a.Strategy().String(),
		Capacity: a.Capacity(),
		Result:   res,
		Counters: a.Counters(),
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nWorkload: %s\n", args[0])
	printInfo("%s\n\n", strings.Repeat("═", 40))

	for i, s := range res.Snapshots {
		printInfo("Snapshot %d:\n", i+1)
		printStatsBlock(s)
		printInfo("\n")
	}

	printInfo("Final (%s, %s arena):\n", report.Strategy, formatBytes(int64(report.Capacity)))
	printStatsBlock(res.Final)
	printInfo("  Live names: %d\n", len(res.Bindings))
	if len(res.Relocations) > 0 || res.Verified > 0 {
		printInfo("  Relocations: %d (contents verified: %d)\n", len(res.Relocations), res.Verified)
	}
	printInfo("\n")

	if len(res.Failures) > 0 {
		printInfo("Failed allocations: %d\n", len(res.Failures))
		for _, f := range res.Failures {
			printInfo("  line %d: %s (%s)\n", f.Line, f.Name, formatBytes(int64(f.Size)))
		}
		printInfo("\n")
	}

	if verbose && !quiet {
		a.PrintStats(os.Stdout)
	}
	return nil
}
