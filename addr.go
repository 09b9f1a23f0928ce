// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package crashsym resolves module-relative addresses recorded in a crash
// dump frame against a textual symbol file, returning the function, source
// file and line, and platform unwind descriptor that apply.
package crashsym

// Addr is a module-relative virtual address (RVA), or an absolute
// instruction pointer before a module base is subtracted from it.
type Addr uint64

// Unsigned is the family of integer kinds RangeMap and ContainedRangeMap
// can key on. crashsym only ever instantiates them with Addr, but the
// bound is kept generic so the two map types stay reusable on their own.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}
