// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package symstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalStore is a Source backed by a directory laid out
// <root>/<debugFile>/<debugID>/<debugFile>.sym[.gz], the on-disk
// convention used by Breakpad-family symbol servers.
type LocalStore struct {
	Root string
}

// Fetch implements Source.
func (l LocalStore) Fetch(_ context.Context, debugFile, debugID string) ([]byte, error) {
	dir := filepath.Join(l.Root, debugFile, debugID)
	for _, name := range []string{debugFile + ".sym", debugFile + ".sym.gz"} {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return body, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
	}
	return nil, ErrSymbolNotFound
}
