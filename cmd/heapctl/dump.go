package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/workload"
)

const dumpRowWidth = 16

var (
	dumpLayoutOnly bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpLayoutOnly, "layout-only", false, "Print the chunk table without the hex dump")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <script>",
		Short: "Replay a script and dump the arena",
		Long: `The dump command replays a workload script, then prints every chunk in
address order followed by a hex dump of the arena. Bytes are rendered as
code page 437 glyphs so the fill patterns stand out: untouched memory (0xCC)
shows as ╠ and scrubbed free memory (0x11) as a dot.

Example:
  heapctl dump fragment.heap --capacity 100
  heapctl dump fragment.heap --layout-only --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

type dumpChunk struct {
	alloc.Chunk
	Name string `json:"name,omitempty"`
}

func runDump(args []string) error {
	a, res, err := replay(args[0], nil)
	if err != nil {
		return err
	}
	defer a.Close()

	chunks := namedLayout(a.Layout(), res)

	if jsonOut {
		return printJSON(map[string]interface{}{
			"script": args[0],
			"chunks": chunks,
			"final":  res.Final,
		})
	}

	printInfo("\nArena layout: %s (%s)\n", args[0], a.Strategy())
	printInfo("%s\n", strings.Repeat("═", 40))
	printInfo("%-10s %-10s %-6s %s\n", "OFFSET", "SIZE", "STATE", "NAME")
	for _, c := range chunks {
		state := "used"
		if c.Free {
			state = "free"
		}
		printInfo("0x%08X %-10d %-6s %s\n", c.Off, c.Size, state, c.Name)
	}
	printInfo("\n")

	if dumpLayoutOnly {
		return nil
	}

	for _, line := range hexDump(a.Snapshot()) {
		printInfo("%s\n", line)
	}
	return nil
}

// namedLayout attaches script names to allocated chunks.
func namedLayout(layout []alloc.Chunk, res *workload.Result) []dumpChunk {
	byPtr := make(map[int]string, len(res.Bindings))
	for name, p := range res.Bindings {
		byPtr[int(p)] = name
	}

	out := make([]dumpChunk, len(layout))
	for i, c := range layout {
		out[i] = dumpChunk{Chunk: c}
		if !c.Free {
			out[i].Name = byPtr[c.PayloadOff()]
		}
	}
	return out
}

// hexDump formats data as offset, hex and glyph columns.
func hexDump(data []byte) []string {
	lines := make([]string, 0, (len(data)+dumpRowWidth-1)/dumpRowWidth)
	for off := 0; off < len(data); off += dumpRowWidth {
		end := min(off+dumpRowWidth, len(data))
		row := data[off:end]

		var b strings.Builder
		fmt.Fprintf(&b, "%08X  ", off)
		for i := range dumpRowWidth {
			if i < len(row) {
				fmt.Fprintf(&b, "%02X ", row[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" |")
		for _, c := range row {
			b.WriteRune(glyph(c))
		}
		b.WriteString("|")
		lines = append(lines, b.String())
	}
	return lines
}

// glyph renders a byte as its code page 437 character; control bytes become dots.
func glyph(c byte) rune {
	if c < 0x20 || c == 0x7F {
		return '.'
	}
	return charmap.CodePage437.DecodeByte(c)
}
