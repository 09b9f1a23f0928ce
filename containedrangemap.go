// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

// crNode is one stored interval of a ContainedRangeMap: the bound value,
// plus the disjoint RangeMap of intervals nested strictly inside it.
type crNode[K Unsigned, V any] struct {
	value    V
	children RangeMap[K, *crNode[K, V]]
}

// ContainedRangeMap stores intervals that may nest but must not partially
// overlap: two stored intervals are either disjoint or one strictly
// contains the other. RetrieveRange walks down through containing
// intervals and returns the value of the deepest one that still contains
// the query address.
//
// The children of any node, and the top-level intervals, each form a
// RangeMap: the disjoint-or-contained invariant is what StoreRange
// enforces at every level, and RangeMap's own disjointness check is what
// does the enforcing.
type ContainedRangeMap[K Unsigned, V any] struct {
	root RangeMap[K, *crNode[K, V]]
}

// StoreRange inserts value under [base, base+size). It returns false if
// size is zero, if base+size overflows K, if the new interval is an exact
// duplicate of one already stored, or if it partially overlaps a stored
// interval without fully containing or being contained by it.
func (m *ContainedRangeMap[K, V]) StoreRange(base, size K, value V) bool {
	return storeAt(&m.root, base, size, value)
}

// RetrieveRange returns the value of the innermost stored interval
// containing addr, or the zero value and false if none does.
func (m *ContainedRangeMap[K, V]) RetrieveRange(addr K) (V, bool) {
	level := &m.root
	var best V
	found := false
	for {
		idx, ok := level.locate(addr)
		if !ok {
			break
		}
		node := level.entries[idx].value
		best = node.value
		found = true
		level = &node.children
	}
	return best, found
}

func storeAt[K Unsigned, V any](level *RangeMap[K, *crNode[K, V]], base, size K, value V) bool {
	high, ok := highEnd(base, size)
	if !ok {
		return false
	}

	lo, hi := level.overlapping(base, high)
	switch hi - lo {
	case 0:
		// Disjoint from every peer at this level: a new leaf.
		level.insertAt(lo, rangeEntry[K, *crNode[K, V]]{
			base: base, high: high, value: &crNode[K, V]{value: value},
		})
		return true

	case 1:
		cand := level.entries[lo]
		switch {
		case cand.base == base && cand.high == high:
			return false // exact duplicate

		case cand.base <= base && high <= cand.high:
			// Contained inside the existing peer: recurse into its children.
			return storeAt(&cand.value.children, base, size, value)

		case base <= cand.base && cand.high <= high:
			// Strictly contains the existing peer: it becomes a child.
			removed := level.removeRange(lo, hi)
			node := &crNode[K, V]{value: value}
			node.children.entries = removed
			level.insertAt(lo, rangeEntry[K, *crNode[K, V]]{base: base, high: high, value: node})
			return true

		default:
			return false // partial overlap
		}

	default:
		// Contains several peers: every one of them must be fully
		// enclosed, or this is a partial overlap against at least one.
		for i := lo; i < hi; i++ {
			c := level.entries[i]
			if !(base <= c.base && c.high <= high) {
				return false
			}
		}
		removed := level.removeRange(lo, hi)
		node := &crNode[K, V]{value: value}
		node.children.entries = removed
		level.insertAt(lo, rangeEntry[K, *crNode[K, V]]{base: base, high: high, value: node})
		return true
	}
}
