// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package symstore locates and fetches a module's symbol file, by debug
// file name and debug ID, from a local directory or an S3-compatible
// bucket. It hands callers raw bytes; wiring those bytes into a Resolver
// is the caller's job, keeping the core resolver package free of any
// network or filesystem-layout concerns of its own.
package symstore

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/saferwall/crashsym/symcache"
)

// ErrSymbolNotFound is returned when no configured source has a symbol
// file for the requested descriptor. It is never retried.
var ErrSymbolNotFound = errors.New("symstore: symbol file not found")

// Source fetches the raw (possibly gzip-compressed) bytes of a symbol
// file for (debugFile, debugID). Implementations report ErrSymbolNotFound
// for a definite miss, distinct from a transient error worth retrying.
type Source interface {
	Fetch(ctx context.Context, debugFile, debugID string) ([]byte, error)
}

// Store fetches a module's symbol file, preferring a local Cache over any
// configured remote Source, and populates the Cache on a remote hit so
// later calls for the same descriptor skip the network entirely.
type Store struct {
	cache   *symcache.Cache
	sources []Source
}

// New returns a Store that consults cache first, then each source in
// order, stopping at the first hit. cache may be nil to disable caching.
func New(cache *symcache.Cache, sources ...Source) *Store {
	return &Store{cache: cache, sources: sources}
}

// Fetch returns the decompressed symbol-file bytes for (debugFile,
// debugID), or ErrSymbolNotFound if no source has them.
func (s *Store) Fetch(ctx context.Context, debugFile, debugID string) ([]byte, error) {
	if s.cache != nil {
		if body, ok := s.cache.Get(debugFile, debugID); ok {
			return body, nil
		}
	}

	var lastErr error
	for _, src := range s.sources {
		body, err := src.Fetch(ctx, debugFile, debugID)
		if err != nil {
			if stderrors.Is(err, ErrSymbolNotFound) {
				lastErr = err
				continue
			}
			return nil, err
		}
		body, err = maybeGunzip(body)
		if err != nil {
			return nil, errors.Wrapf(err, "decompressing symbol file for %s/%s", debugFile, debugID)
		}
		if s.cache != nil {
			if err := s.cache.Put(debugFile, debugID, body); err != nil {
				return body, errors.Wrap(err, "caching fetched symbol file")
			}
		}
		return body, nil
	}
	if lastErr == nil {
		lastErr = ErrSymbolNotFound
	}
	return nil, lastErr
}

func maybeGunzip(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
