// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"io"
	"os"

	crashsymlog "github.com/saferwall/crashsym/log"
)

// FrameSymbol is the resolved function/file/line for one RVA. A field is
// nil when Module.Lookup could not find the corresponding record; this is
// not an error, it is how callers detect a partial or total miss.
type FrameSymbol struct {
	FunctionName *string
	SourceFile   *string
	SourceLine   *int
}

// Module holds one loaded binary's worth of symbolic data: its file table,
// its functions (each carrying its own line ranges), and its unwind
// records. A Module is mutated only inside LoadFromReader; once that call
// returns true it is effectively immutable, and any number of goroutines
// may call Lookup on it concurrently without further synchronization.
type Module struct {
	Name string

	files     map[int]string
	functions RangeMap[Addr, *Function]
	unwind    [numUnwindTypes]ContainedRangeMap[Addr, UnwindInfo]

	loaded bool
	logger *crashsymlog.Helper
}

// NewModule returns an empty, unloaded Module named name. Tolerable parse
// anomalies are logged at debug level to logger. A nil logger is replaced
// by a stderr logger filtered at warn level, which drops those entries.
func NewModule(name string, logger crashsymlog.Logger) *Module {
	if logger == nil {
		logger = crashsymlog.NewFilter(crashsymlog.NewStdLogger(os.Stderr), crashsymlog.FilterLevel(crashsymlog.LevelWarn))
	}
	return &Module{
		Name:   name,
		files:  make(map[int]string),
		logger: crashsymlog.NewHelper(logger),
	}
}

// LoadFromReader parses a symbol file from r into this Module. It returns
// false, leaving the Module's exported state unpopulated, if the file is
// malformed in a way the format treats as fatal (a blank line, an orphan
// LINE record before any FUNC has appeared). LoadFromReader must not be
// called more than once on the same Module, and must not race with Lookup.
func (m *Module) LoadFromReader(r io.Reader) bool {
	if m.loaded {
		return false
	}
	err := newSymbolFileParser(m).parse(r)
	m.loaded = err == nil
	return m.loaded
}

// Lookup resolves rva against this Module's functions, lines, and unwind
// records. The unwind record is filled first, independently of whether a
// containing function is found, per the resolver's contract of returning
// unwind data even when symbolization otherwise misses.
//
// unwindOK reports whether an unwind record was found; at most one of
// unwind[FRAME_DATA], unwind[FPO], unwind[STANDARD] is ever returned, in
// that preference order.
func (m *Module) Lookup(rva Addr) (sym FrameSymbol, unwind UnwindInfo, unwindOK bool) {
	unwind, unwindOK = m.lookupUnwind(rva)

	fn, ok := m.functions.RetrieveRange(rva)
	if !ok {
		return sym, unwind, unwindOK
	}
	name := fn.Name
	sym.FunctionName = &name

	line, ok := fn.Lines.RetrieveRange(rva)
	if !ok {
		return sym, unwind, unwindOK
	}
	lineNo := line.LineNo
	sym.SourceLine = &lineNo
	if file, ok := m.files[line.FileID]; ok {
		sym.SourceFile = &file
	}

	return sym, unwind, unwindOK
}

// lookupUnwind tries FRAME_DATA, then FPO, then STANDARD, returning the
// first match.
func (m *Module) lookupUnwind(rva Addr) (UnwindInfo, bool) {
	for _, t := range [...]int{UnwindFrameData, UnwindFPO, UnwindStandard} {
		if info, ok := m.unwind[t].RetrieveRange(rva); ok {
			return info, true
		}
	}
	return UnwindInfo{}, false
}
