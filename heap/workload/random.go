package workload

import (
	"fmt"
	"math/rand"
)

// Random generates a script of n alloc, write and free lines with sizes in
// [1, maxSize]. Every free and write refers to a name allocated earlier in
// the script. Names carry prefix so scripts from several generators can
// share one allocator. Random never emits compact: compaction moves other
// scripts' allocations out from under them.
func Random(rng *rand.Rand, prefix string, n, maxSize int) []Op {
	ops := make([]Op, 0, n)
	var live []string
	next := 0

	for len(ops) < n {
		line := len(ops) + 1
		roll := rng.Intn(100)

		switch {
		case len(live) == 0 || roll < 50:
			name := fmt.Sprintf("%s%d", prefix, next)
			next++
			live = append(live, name)
			ops = append(ops, Op{Kind: OpAlloc, Name: name, Size: 1 + rng.Intn(maxSize), Line: line})

		case roll < 65:
			name := live[rng.Intn(len(live))]
			// one byte always fits
			ops = append(ops, Op{Kind: OpWrite, Name: name, Data: []byte{byte('a' + rng.Intn(26))}, Line: line})

		default:
			i := rng.Intn(len(live))
			name := live[i]
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			ops = append(ops, Op{Kind: OpFree, Name: name, Line: line})
		}
	}
	return ops
}
