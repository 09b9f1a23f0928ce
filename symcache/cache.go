// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package symcache is a disk-backed, checksum-verified cache of fetched
// symbol-file bytes, keyed by a module's debug file name and debug ID.
// It sits between symstore and the resolver: a hit here means the caller
// never touches the network or the local symbol-server layout for a
// module it has already resolved once.
package symcache

import (
	"encoding/binary"
	"io"
	"path/filepath"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
	"modernc.org/kv"

	crashsymlog "github.com/saferwall/crashsym/log"
)

var order = binary.BigEndian

// Cache is an embedded key-value store of cached symbol file bodies. The
// zero value is not usable; construct one with Open.
type Cache struct {
	db     *kv.DB
	logger *crashsymlog.Helper
}

// Open opens (creating if necessary) the cache database at dir/symcache.db.
func Open(dir string, logger crashsymlog.Logger) (*Cache, error) {
	if logger == nil {
		logger = crashsymlog.NewFilter(crashsymlog.NewStdLogger(io.Discard), crashsymlog.FilterLevel(crashsymlog.LevelError))
	}

	path := filepath.Join(dir, "symcache.db")
	db, err := kv.Open(path, &kv.Options{})
	if err != nil {
		db, err = kv.Create(path, &kv.Options{})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening symcache at %s", path)
	}
	return &Cache{db: db, logger: crashsymlog.NewHelper(logger)}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for (debugFile, debugID). A stored checksum
// that no longer matches the body it guards is treated as a miss, not an
// error: local corruption should fall back to refetching, not fail the
// caller outright.
func (c *Cache) Get(debugFile, debugID string) ([]byte, bool) {
	raw, err := c.db.Get(nil, key(debugFile, debugID))
	if err != nil || raw == nil || len(raw) < 8 {
		return nil, false
	}
	wantSum := order.Uint64(raw[:8])
	body := raw[8:]
	if farm.Hash64(body) != wantSum {
		c.logger.Debugf("symcache: checksum mismatch for %s/%s, treating as miss", debugFile, debugID)
		return nil, false
	}
	return body, true
}

// Put stores body under (debugFile, debugID) along with its checksum.
func (c *Cache) Put(debugFile, debugID string, body []byte) error {
	sum := farm.Hash64(body)
	raw := make([]byte, 8+len(body))
	order.PutUint64(raw[:8], sum)
	copy(raw[8:], body)
	if err := c.db.Set(key(debugFile, debugID), raw); err != nil {
		return errors.Wrapf(err, "storing symcache entry for %s/%s", debugFile, debugID)
	}
	return nil
}

func key(debugFile, debugID string) []byte {
	return []byte(debugFile + "/" + debugID)
}
