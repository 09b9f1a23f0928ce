// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeMapStoreAndRetrieve(t *testing.T) {
	var m RangeMap[Addr, string]

	require.True(t, m.StoreRange(0x1000, 0x100, "foo"))
	require.True(t, m.StoreRange(0x2000, 0x50, "bar"))

	v, ok := m.RetrieveRange(0x1005)
	require.True(t, ok)
	assert.Equal(t, "foo", v)

	v, ok = m.RetrieveRange(0x2049)
	require.True(t, ok)
	assert.Equal(t, "bar", v)

	_, ok = m.RetrieveRange(0x1999)
	assert.False(t, ok)
}

func TestRangeMapBoundaries(t *testing.T) {
	var m RangeMap[Addr, string]
	require.True(t, m.StoreRange(0x1000, 0x100, "foo"))

	for _, addr := range []Addr{0x1000, 0x10ff} {
		_, ok := m.RetrieveRange(addr)
		assert.Truef(t, ok, "addr %#x should hit", addr)
	}
	for _, addr := range []Addr{0xfff, 0x1100} {
		_, ok := m.RetrieveRange(addr)
		assert.Falsef(t, ok, "addr %#x should miss", addr)
	}
}

func TestRangeMapRejectsOverlap(t *testing.T) {
	var m RangeMap[Addr, string]
	require.True(t, m.StoreRange(0x1000, 0x100, "a"))

	// Fully contained: [0x1050,0x1060) is inside [0x1000,0x1100).
	assert.False(t, m.StoreRange(0x1050, 0x10, "b"))
	// Partial overlap.
	assert.False(t, m.StoreRange(0x1080, 0x100, "c"))
	assert.Equal(t, 1, m.Len())
}

func TestRangeMapRejectsZeroSizeAndOverflow(t *testing.T) {
	var m RangeMap[Addr, string]
	assert.False(t, m.StoreRange(0x1000, 0, "x"))
	assert.False(t, m.StoreRange(^Addr(0)-1, 10, "x"))
	assert.Equal(t, 0, m.Len())
}

func TestRangeMapDisjointInsertOrder(t *testing.T) {
	var m RangeMap[Addr, int]
	// Insert out of order; StoreRange must keep entries sorted internally
	// so later lookups and overlap checks stay correct.
	require.True(t, m.StoreRange(0x3000, 0x10, 3))
	require.True(t, m.StoreRange(0x1000, 0x10, 1))
	require.True(t, m.StoreRange(0x2000, 0x10, 2))

	for base, want := range map[Addr]int{0x1000: 1, 0x2000: 2, 0x3000: 3} {
		v, ok := m.RetrieveRange(base)
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}
