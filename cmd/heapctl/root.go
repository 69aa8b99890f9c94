package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string

	// Allocator flags
	capacity     int
	strategyName string
	useMmap      bool
	selfCheck    bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay and inspect fixed-arena heap allocations",
	Long: `heapctl drives a heap allocator over a single fixed-size arena.
It replays allocation scripts under first-fit, best-fit or worst-fit placement,
dumps the resulting chunk layout, measures compaction and runs concurrent
allocation benchmarks.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Allocator log level (debug, info, warn, error); logs go to stderr")

	// Allocator flags
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", 4096, "Arena capacity in bytes")
	rootCmd.PersistentFlags().
		StringVar(&strategyName, "strategy", "first-fit", "Placement strategy: first-fit, best-fit or worst-fit")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the arena with an anonymous memory mapping")
	rootCmd.PersistentFlags().
		BoolVar(&selfCheck, "self-check", false, "Validate arena invariants after every operation")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatBytes renders a byte count the way humans read sizes
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// formatNumber adds thousands separators
func formatNumber(n int64) string {
	return humanize.Comma(n)
}
