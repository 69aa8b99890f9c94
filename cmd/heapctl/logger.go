package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// logger is handed to every allocator the CLI creates. It discards output
// until initLogger runs.
var logger = slog.New(slog.DiscardHandler)

// initLogger configures logger from --log-level and --verbose.
// Without either, allocator records are discarded.
func initLogger() error {
	name := logLevel
	if name == "" && verbose {
		name = "info"
	}
	if name == "" {
		logger = slog.New(slog.DiscardHandler)
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", name, err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}
