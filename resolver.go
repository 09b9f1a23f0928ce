// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"bytes"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	crashsymlog "github.com/saferwall/crashsym/log"
)

// Frame is the collaborator-supplied input for one stack frame: the
// minidump reader's module_name/module_base/instruction triple.
type Frame struct {
	ModuleName  string
	ModuleBase  Addr
	Instruction Addr
}

// Resolver owns a set of Modules keyed by name and routes frame queries to
// the right one. A Resolver is a plain value: there is no global state,
// and dropping it releases every Module and all of their interior range
// maps transitively.
//
// LoadModule mutates the name→module mapping and must not race with
// HasModule/FillFrame or another LoadModule; once loading is done,
// concurrent readers against HasModule/FillFrame are safe.
type Resolver struct {
	modules map[string]*Module
	logger  crashsymlog.Logger
}

// NewResolver returns an empty Resolver whose Modules use NewModule's
// default stderr logger, which drops the debug-level entries that report
// tolerable parse anomalies.
func NewResolver() *Resolver {
	return NewResolverWithLogger(nil)
}

// NewResolverWithLogger returns an empty Resolver whose Modules log
// through logger. A nil logger falls back to Module's own stderr default.
func NewResolverWithLogger(logger crashsymlog.Logger) *Resolver {
	return &Resolver{modules: make(map[string]*Module), logger: logger}
}

// LoadModule parses a symbol file from r and installs it under name. It
// returns false, leaving any existing module under name untouched, if a
// module of that name is already present or if the file fails to parse.
func (res *Resolver) LoadModule(name string, r io.Reader) bool {
	if _, exists := res.modules[name]; exists {
		return false
	}
	m := NewModule(name, res.logger)
	if !m.LoadFromReader(r) {
		return false
	}
	res.modules[name] = m
	return true
}

// LoadModuleFile memory-maps the symbol file at path and loads it under
// name. The mapping is released once parsing completes; Module copies out
// every string it keeps, so nothing references the mapping afterward.
func (res *Resolver) LoadModuleFile(name, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return false, err
	}
	defer data.Unmap()

	return res.LoadModule(name, bytes.NewReader(data)), nil
}

// HasModule reports whether a module named name is currently loaded.
func (res *Resolver) HasModule(name string) bool {
	_, ok := res.modules[name]
	return ok
}

// FillFrame resolves frame against the module it names, computing the RVA
// by subtracting the module base from the absolute instruction pointer.
// If the named module isn't loaded, both outputs are zero and found is
// false; this is a query miss, not an error.
func (res *Resolver) FillFrame(frame Frame) (sym FrameSymbol, unwind UnwindInfo, found bool) {
	m, ok := res.modules[frame.ModuleName]
	if !ok {
		return sym, unwind, false
	}
	rva := frame.Instruction - frame.ModuleBase
	sym, unwind, unwindOK := m.Lookup(rva)
	return sym, unwind, unwindOK || sym.FunctionName != nil
}
