// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import "errors"

// Errors returned while loading a symbol file or a module.
var (
	// ErrModuleExists names a module that is already present in the
	// resolver. Resolver.LoadModule reports that case by returning false;
	// it does not return this error.
	ErrModuleExists = errors.New("crashsym: module already loaded")

	// ErrOrphanLine is returned when a LINE record appears before any FUNC
	// record, or when the symbol file contains a blank line. A LINE record
	// after a discarded FUNC is dropped instead.
	ErrOrphanLine = errors.New("crashsym: LINE record with no current FUNC")

	// ErrMalformedRecord names a record with a mandatory numeric field that
	// cannot be parsed, or a LINE record with a non-positive line number.
	// The parser drops such records and keeps going; it does not return
	// this error.
	ErrMalformedRecord = errors.New("crashsym: malformed record")

	// ErrLineTooLong is returned when a single record exceeds the parser's
	// line length cap.
	ErrLineTooLong = errors.New("crashsym: record exceeds maximum line length")
)
