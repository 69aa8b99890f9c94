package workload

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	// ErrUnknownName indicates a reference to a name with no live allocation.
	ErrUnknownName = errors.New("workload: unknown allocation name")

	// ErrNameInUse indicates an alloc line reusing a live name.
	ErrNameInUse = errors.New("workload: name already allocated")

	// ErrContentMismatch indicates written bytes that did not survive compaction.
	ErrContentMismatch = errors.New("workload: content changed across compaction")
)

// Failure records an allocation the allocator refused for lack of space.
type Failure struct {
	Line int    `json:"line"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Relocation records an allocation moved by a compact line.
type Relocation struct {
	Line int       `json:"line"`
	Name string    `json:"name"`
	From alloc.Ptr `json:"from"`
	To   alloc.Ptr `json:"to"`
}

// Result summarizes a replay.
type Result struct {
	Snapshots   []alloc.Stats        `json:"snapshots"` // one per stats line
	Failures    []Failure            `json:"failures"`
	Relocations []Relocation         `json:"relocations"`
	Verified    int                  `json:"verified"` // content checks passed after compaction
	Bindings    map[string]alloc.Ptr `json:"bindings"` // live names at the end
	Final       alloc.Stats          `json:"final"`
}

// Names returns the live names sorted by pointer.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Bindings))
	for n := range r.Bindings {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.Bindings[names[i]] < r.Bindings[names[j]]
	})
	return names
}

type written struct {
	n  int
	fp uint64
}

type runner struct {
	a        *alloc.Allocator
	res      *Result
	contents map[string]written
	failed   map[string]bool // names whose last alloc ran out of space
}

// Run replays ops against a. Allocation failures for lack of space are
// recorded in the result, and later free or write lines for such a name are
// skipped. Every other problem stops the replay with an error naming the
// script line.
func Run(a *alloc.Allocator, ops []Op) (*Result, error) {
	r := &runner{
		a:        a,
		res:      &Result{Bindings: make(map[string]alloc.Ptr)},
		contents: make(map[string]written),
		failed:   make(map[string]bool),
	}

	for _, op := range ops {
		if err := r.step(op); err != nil {
			return r.res, fmt.Errorf("workload: line %d: %s: %w", op.Line, op.Kind, err)
		}
	}

	final, err := a.Stats()
	if err != nil {
		return r.res, err
	}
	r.res.Final = final
	return r.res, nil
}

func (r *runner) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		if _, ok := r.res.Bindings[op.Name]; ok {
			return fmt.Errorf("%w: %s", ErrNameInUse, op.Name)
		}
		p, err := r.a.Alloc(op.Size)
		if errors.Is(err, alloc.ErrNoSpace) {
			r.res.Failures = append(r.res.Failures, Failure{Line: op.Line, Name: op.Name, Size: op.Size})
			r.failed[op.Name] = true
			return nil
		}
		if err != nil {
			return err
		}
		r.res.Bindings[op.Name] = p
		delete(r.failed, op.Name)

	case OpFree:
		if r.failed[op.Name] {
			delete(r.failed, op.Name)
			return nil
		}
		p, err := r.lookup(op.Name)
		if err != nil {
			return err
		}
		r.a.Free(p)
		delete(r.res.Bindings, op.Name)
		delete(r.contents, op.Name)

	case OpWrite:
		if r.failed[op.Name] {
			return nil
		}
		p, err := r.lookup(op.Name)
		if err != nil {
			return err
		}
		if _, err := r.a.WriteAt(p, op.Data, 0); err != nil {
			return err
		}
		r.contents[op.Name] = written{n: len(op.Data), fp: verify.Fingerprint(op.Data)}

	case OpCompact:
		return r.compact(op.Line)

	case OpStats:
		s, err := r.a.Stats()
		if err != nil {
			return err
		}
		r.res.Snapshots = append(r.res.Snapshots, s)

	default:
		return fmt.Errorf("unsupported operation %v", op.Kind)
	}
	return nil
}

func (r *runner) lookup(name string) (alloc.Ptr, error) {
	p, ok := r.res.Bindings[name]
	if !ok {
		return alloc.Nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return p, nil
}

// compact runs a compaction, rebinds every name to its new pointer and
// checks written contents by fingerprint.
func (r *runner) compact(line int) error {
	before, after, _, err := r.a.Compact()
	if err != nil {
		return err
	}

	byPtr := make(map[alloc.Ptr]string, len(r.res.Bindings))
	for name, p := range r.res.Bindings {
		byPtr[p] = name
	}
	for i, old := range before {
		name, ok := byPtr[old]
		if !ok {
			continue
		}
		r.res.Bindings[name] = after[i]
		if old != after[i] {
			r.res.Relocations = append(r.res.Relocations, Relocation{
				Line: line, Name: name, From: old, To: after[i],
			})
		}
	}

	for name, w := range r.contents {
		buf := make([]byte, w.n)
		if _, err := r.a.ReadAt(r.res.Bindings[name], buf, 0); err != nil {
			return err
		}
		if verify.Fingerprint(buf) != w.fp {
			return fmt.Errorf("%w: %s", ErrContentMismatch, name)
		}
		r.res.Verified++
	}
	return nil
}

// Script renders ops back into script text.
func Script(ops []Op) string {
	var b bytes.Buffer
	for _, op := range ops {
		switch op.Kind {
		case OpAlloc:
			fmt.Fprintf(&b, "%s %s %d\n", op.Kind, op.Name, op.Size)
		case OpFree:
			fmt.Fprintf(&b, "%s %s\n", op.Kind, op.Name)
		case OpWrite:
			fmt.Fprintf(&b, "%s %s %q\n", op.Kind, op.Name, op.Data)
		default:
			fmt.Fprintf(&b, "%s\n", op.Kind)
		}
	}
	return b.String()
}
