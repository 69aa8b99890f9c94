// Package workload replays line-oriented allocation scripts against an
// allocator.
//
// A script names its allocations so later lines can refer to them:
//
//	# comment
//	alloc <name> <size>
//	free <name>
//	write <name> <text>
//	compact
//	stats
//
// The text of a write may be a Go quoted string ("a\x00b") or the raw rest
// of the line.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OpKind identifies a script operation.
type OpKind uint8

const (
	OpAlloc OpKind = iota
	OpFree
	OpWrite
	OpCompact
	OpStats
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return KeywordAlloc
	case OpFree:
		return KeywordFree
	case OpWrite:
		return KeywordWrite
	case OpCompact:
		return KeywordCompact
	case OpStats:
		return KeywordStats
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// Op is one parsed script line.
type Op struct {
	Kind OpKind
	Name string // alloc, free, write
	Size int    // alloc
	Data []byte // write
	Line int    // 1-based source line
}

// ParseError reports a malformed script line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("workload: line %d: %s", e.Line, e.Msg)
}

// Parse reads a script. Blank lines and comments are skipped.
func Parse(r io.Reader) ([]Op, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		op, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		op.Line = lineNo
		ops = append(ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning workload: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	keyword, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(keyword) {
	case KeywordAlloc:
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("usage: %s <name> <size>", KeywordAlloc)
		}
		size, err := strconv.Atoi(fields[1])
		if err != nil {
			return Op{}, fmt.Errorf("bad size %q", fields[1])
		}
		return Op{Kind: OpAlloc, Name: fields[0], Size: size}, nil

	case KeywordFree:
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return Op{}, fmt.Errorf("usage: %s <name>", KeywordFree)
		}
		return Op{Kind: OpFree, Name: fields[0]}, nil

	case KeywordWrite:
		name, text, ok := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		if !ok || name == "" || text == "" {
			return Op{}, fmt.Errorf("usage: %s <name> <text>", KeywordWrite)
		}
		data, err := parseText(text)
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpWrite, Name: name, Data: data}, nil

	case KeywordCompact, KeywordStats:
		if rest != "" {
			return Op{}, fmt.Errorf("%s takes no arguments", keyword)
		}
		if strings.EqualFold(keyword, KeywordCompact) {
			return Op{Kind: OpCompact}, nil
		}
		return Op{Kind: OpStats}, nil
	}

	return Op{}, fmt.Errorf("unknown operation %q", keyword)
}

func parseText(text string) ([]byte, error) {
	if !strings.HasPrefix(text, `"`) {
		return []byte(text), nil
	}
	s, err := strconv.Unquote(text)
	if err != nil {
		return nil, fmt.Errorf("bad quoted text %s", text)
	}
	return []byte(s), nil
}
