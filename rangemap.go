// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import "sort"

// rangeEntry is one stored interval [base, base+size), recorded as
// [base, high] with an inclusive high end (base+size-1), bound to a value.
type rangeEntry[K Unsigned, V any] struct {
	base  K
	high  K
	value V
}

// RangeMap stores a set of disjoint, half-open intervals [base, base+size)
// keyed by K and bound to a value V. Stored intervals never overlap; a
// StoreRange call that would overlap an existing interval is rejected.
//
// Entries are kept as a slice sorted by the interval's high end, so a point
// lookup is a single binary search rather than a scan: RetrieveRange finds
// the first interval whose high end is at or past addr, then checks whether
// that interval's base is at or before addr. No rebalancing, merging, or
// splitting ever happens. RangeMap's exported methods only insert; the
// unexported removeRange is used by ContainedRangeMap to move intervals
// under a new enclosing node.
type RangeMap[K Unsigned, V any] struct {
	entries []rangeEntry[K, V]
}

// StoreRange inserts value under [base, base+size). It returns false,
// leaving the map unchanged, if size is zero, if base+size overflows K, or
// if the new interval intersects any interval already stored.
func (m *RangeMap[K, V]) StoreRange(base, size K, value V) bool {
	high, ok := highEnd(base, size)
	if !ok {
		return false
	}
	lo, hi := m.overlapping(base, high)
	if lo != hi {
		return false
	}
	m.insertAt(lo, rangeEntry[K, V]{base: base, high: high, value: value})
	return true
}

// RetrieveRange returns the value of the unique interval containing addr,
// or the zero value and false if no stored interval contains it.
func (m *RangeMap[K, V]) RetrieveRange(addr K) (V, bool) {
	idx, ok := m.locate(addr)
	if !ok {
		var zero V
		return zero, false
	}
	return m.entries[idx].value, true
}

// Len reports the number of intervals currently stored.
func (m *RangeMap[K, V]) Len() int {
	return len(m.entries)
}

// highEnd computes base+size-1, reporting false on overflow or a zero size.
func highEnd[K Unsigned](base, size K) (K, bool) {
	if size == 0 {
		return 0, false
	}
	sum := base + size
	if sum < base {
		return 0, false
	}
	return sum - 1, true
}

// locate returns the index of the interval containing addr, if any.
func (m *RangeMap[K, V]) locate(addr K) (int, bool) {
	idx := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].high >= addr
	})
	if idx == len(m.entries) || m.entries[idx].base > addr {
		return 0, false
	}
	return idx, true
}

// overlapping returns the half-open index range [lo, hi) of entries whose
// interval intersects [base, high]. Because entries are pairwise disjoint
// and sorted by high end, this range is contiguous.
func (m *RangeMap[K, V]) overlapping(base, high K) (lo, hi int) {
	lo = sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].high >= base
	})
	hi = lo
	for hi < len(m.entries) && m.entries[hi].base <= high {
		hi++
	}
	return lo, hi
}

// insertAt inserts e at position idx, shifting later entries right.
func (m *RangeMap[K, V]) insertAt(idx int, e rangeEntry[K, V]) {
	m.entries = append(m.entries, rangeEntry[K, V]{})
	copy(m.entries[idx+1:], m.entries[idx:])
	m.entries[idx] = e
}

// removeRange deletes entries [lo, hi) and returns them, still in
// high-end-sorted order.
func (m *RangeMap[K, V]) removeRange(lo, hi int) []rangeEntry[K, V] {
	removed := make([]rangeEntry[K, V], hi-lo)
	copy(removed, m.entries[lo:hi])
	m.entries = append(m.entries[:lo], m.entries[hi:]...)
	return removed
}
