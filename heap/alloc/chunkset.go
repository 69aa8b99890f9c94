package alloc

import "github.com/google/btree"

// btreeDegree is the B-tree branching factor for chunk sets.
const btreeDegree = 16

// chunkSet is an address-ordered set of chunk offsets. Sizes live in the
// arena headers, so the set stores nothing else.
type chunkSet struct {
	t *btree.BTreeG[int]
}

func newChunkSet() *chunkSet {
	return &chunkSet{t: btree.NewOrderedG[int](btreeDegree)}
}

func (s *chunkSet) insert(off int) { s.t.ReplaceOrInsert(off) }

func (s *chunkSet) remove(off int) bool {
	_, ok := s.t.Delete(off)
	return ok
}

func (s *chunkSet) has(off int) bool { return s.t.Has(off) }

func (s *chunkSet) len() int { return s.t.Len() }

// ascend visits offsets in address order until fn returns false.
func (s *chunkSet) ascend(fn func(off int) bool) { s.t.Ascend(fn) }

// prev returns the greatest offset strictly below off.
func (s *chunkSet) prev(off int) (int, bool) {
	found, ok := 0, false
	s.t.DescendLessOrEqual(off-1, func(o int) bool {
		found, ok = o, true
		return false
	})
	return found, ok
}

// next returns the smallest offset strictly above off.
func (s *chunkSet) next(off int) (int, bool) {
	found, ok := 0, false
	s.t.AscendGreaterOrEqual(off+1, func(o int) bool {
		found, ok = o, true
		return false
	})
	return found, ok
}

func (s *chunkSet) offsets() []int {
	out := make([]int, 0, s.t.Len())
	s.t.Ascend(func(o int) bool {
		out = append(out, o)
		return true
	})
	return out
}

func (s *chunkSet) clear() { s.t.Clear(false) }
