// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	crashsymlog "github.com/saferwall/crashsym/log"
	"github.com/saferwall/crashsym/symcache"
	"github.com/saferwall/crashsym/symstore"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var store string
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "fetch <debug_file> <debug_id>",
		Short: "Populate the local symbol cache from a symbol store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), store, cacheDir, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "local-dir or s3://bucket symbol store")
	cmd.Flags().StringVar(&cacheDir, "cache", ".", "directory holding the local symbol cache")
	cmd.MarkFlagRequired("store")

	return cmd
}

func runFetch(ctx context.Context, store, cacheDir, debugFile, debugID string) error {
	logger := crashsymlog.NewFilter(crashsymlog.NewStdLogger(os.Stderr), crashsymlog.FilterLevel(crashsymlog.LevelInfo))

	cache, err := symcache.Open(cacheDir, logger)
	if err != nil {
		return fmt.Errorf("opening symbol cache: %w", err)
	}
	defer cache.Close()

	var src symstore.Source
	if bucket, ok := strings.CutPrefix(store, "s3://"); ok {
		s3store, err := symstore.NewS3Store(bucket, logger)
		if err != nil {
			return fmt.Errorf("configuring s3 store: %w", err)
		}
		src = s3store
	} else {
		src = symstore.LocalStore{Root: store}
	}

	st := symstore.New(cache, src)
	body, err := st.Fetch(ctx, debugFile, debugID)
	if err != nil {
		return fmt.Errorf("fetching %s/%s: %w", debugFile, debugID, err)
	}

	fmt.Printf("cached %d bytes for %s/%s\n", len(body), debugFile, debugID)
	return nil
}
