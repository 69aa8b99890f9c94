package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

// fragmentScript allocates eight 4-byte blocks in a 100-byte arena and
// frees two of them, so an 8-byte request only fits after compaction.
const fragmentScript = `# two 4-byte holes
alloc b0 4
alloc b1 4
alloc b2 4
alloc b3 4
alloc b4 4
alloc b5 4
alloc b6 4
alloc b7 4
write b2 "two"
free b1
free b3
stats
alloc big 8
`

// writeScript stores a workload script in a temp dir and returns its path
func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.heap")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// resetFlags restores every global flag to its default
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logLevel = ""
	capacity = 100
	strategyName = "first-fit"
	useMmap = false
	selfCheck = true
	dumpLayoutOnly = false
	benchWorkers = 4
	benchOps = 200
	benchMaxSize = 32
	benchSeed = 1
	benchEmit = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// decodeJSON unmarshals command output into v
func decodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}
