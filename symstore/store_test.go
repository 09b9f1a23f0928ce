// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package symstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferwall/crashsym/symcache"
)

type fakeSource struct {
	calls int
	body  []byte
	err   error
}

func (f *fakeSource) Fetch(_ context.Context, debugFile, debugID string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func TestStorePrefersCacheOverSource(t *testing.T) {
	cache, err := symcache.Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Put("app.pdb", "id1", []byte("cached body")))

	src := &fakeSource{body: []byte("should not be used")}
	st := New(cache, src)

	body, err := st.Fetch(context.Background(), "app.pdb", "id1")
	require.NoError(t, err)
	assert.Equal(t, "cached body", string(body))
	assert.Equal(t, 0, src.calls, "cache hit must not call the source")
}

func TestStoreFallsBackToSourceAndPopulatesCache(t *testing.T) {
	cache, err := symcache.Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer cache.Close()

	src := &fakeSource{body: []byte("fetched body")}
	st := New(cache, src)

	body, err := st.Fetch(context.Background(), "app.pdb", "id2")
	require.NoError(t, err)
	if diff := cmp.Diff("fetched body", string(body)); diff != "" {
		t.Fatalf("unexpected body (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, src.calls)

	cached, ok := cache.Get("app.pdb", "id2")
	require.True(t, ok)
	assert.Equal(t, "fetched body", string(cached))
}

func TestStoreDecompressesGzipPayload(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("FUNC 1000 10 foo\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	src := &fakeSource{body: buf.Bytes()}
	st := New(nil, src)

	body, err := st.Fetch(context.Background(), "app.pdb", "id3")
	require.NoError(t, err)
	assert.Equal(t, "FUNC 1000 10 foo\n", string(body))
}

func TestStoreReturnsNotFoundWhenNoSourceHasIt(t *testing.T) {
	src := &fakeSource{err: ErrSymbolNotFound}
	st := New(nil, src)

	_, err := st.Fetch(context.Background(), "app.pdb", "missing")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}
