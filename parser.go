// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// maxRecordLength bounds a single symbol-file line. Real producers never
// approach it; it exists to keep a corrupt or non-symbol file from making
// the scanner buffer unboundedly.
const maxRecordLength = 1024

// symbolFileParser reads a line-oriented symbol file into the Module it is
// bound to. It is the single use, single Module component backing
// Module.LoadFromReader; callers never see it directly.
type symbolFileParser struct {
	m *Module

	curFunc        *Function
	haveFuncRecord bool
}

func newSymbolFileParser(m *Module) *symbolFileParser {
	return &symbolFileParser{m: m}
}

// parse reads r to completion, dispatching each line to the record parser
// named by its first whitespace-delimited token. It returns the first
// fatal error encountered; tolerable anomalies (malformed or colliding
// records) are dropped in place and do not stop the scan.
func (p *symbolFileParser) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxRecordLength), maxRecordLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			return errors.Wrapf(ErrOrphanLine, "line %d: blank line", lineNo)
		}
		if err := p.parseRecord(line); err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return errors.Wrapf(ErrLineTooLong, "line %d", lineNo+1)
		}
		return errors.Wrap(err, "reading symbol file")
	}
	return nil
}

func (p *symbolFileParser) parseRecord(line string) error {
	switch firstWord(line) {
	case "FILE":
		return p.parseFileRecord(line)
	case "FUNC":
		return p.parseFuncRecord(line)
	case "STACK":
		return p.parseStackRecord(line)
	default:
		return p.parseLineRecord(line)
	}
}

// firstWord returns the run of non-separator bytes at the start of line.
func firstWord(line string) string {
	i := 0
	for i < len(line) && !isFieldSep(line[i]) {
		i++
	}
	return line[:i]
}

// parseFileRecord handles "FILE <id> <path>".
func (p *symbolFileParser) parseFileRecord(line string) error {
	tokens, ok := Tokenize(line, 3)
	if !ok {
		return nil // malformed shape: drop the record
	}
	id, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return nil // unparsable id: drop the record
	}
	if _, dup := p.m.files[int(id)]; dup {
		p.m.logger.Debugf("FILE id %d redefined, overwriting previous path", id)
	}
	p.m.files[int(id)] = tokens[2]
	return nil
}

// parseFuncRecord handles "FUNC <addr-hex> <size-hex> <name>".
//
// A FUNC record that cannot be parsed, or whose range collides with one
// already stored, does not install a current function: it is discarded,
// and any plain LINE records up to the next FUNC are discarded with it.
func (p *symbolFileParser) parseFuncRecord(line string) error {
	p.haveFuncRecord = true
	p.curFunc = nil

	tokens, ok := Tokenize(line, 4)
	if !ok {
		return nil
	}
	base, err1 := strconv.ParseUint(tokens[1], 16, 64)
	size, err2 := strconv.ParseUint(tokens[2], 16, 64)
	if err1 != nil || err2 != nil {
		return nil
	}

	fn := &Function{Name: tokens[3], Base: Addr(base), Size: Addr(size)}
	if !p.m.functions.StoreRange(Addr(base), Addr(size), fn) {
		p.m.logger.Debugf("discarding FUNC %s [%x,%x): overlaps an existing function", fn.Name, base, base+size)
		return nil
	}
	p.curFunc = fn
	return nil
}

// parseLineRecord handles the prefix-less "<addr-hex> <size-hex> <line-dec>
// <file-id-dec>" record, which must follow a FUNC.
func (p *symbolFileParser) parseLineRecord(line string) error {
	if p.curFunc == nil {
		if !p.haveFuncRecord {
			return ErrOrphanLine
		}
		return nil // still inside a discarded FUNC's line run
	}

	tokens, ok := Tokenize(line, 4)
	if !ok {
		return nil
	}
	base, err1 := strconv.ParseUint(tokens[0], 16, 64)
	size, err2 := strconv.ParseUint(tokens[1], 16, 64)
	lineNo, err3 := strconv.ParseInt(tokens[2], 10, 64)
	fileID, err4 := strconv.ParseInt(tokens[3], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	if lineNo <= 0 {
		return nil
	}

	p.curFunc.Lines.StoreRange(Addr(base), Addr(size), Line{
		Base:   Addr(base),
		Size:   Addr(size),
		FileID: int(fileID),
		LineNo: int(lineNo),
	})
	return nil
}

// parseStackRecord handles "STACK WIN <type-hex> <rva-hex> <code_size-hex>
// <prolog-hex> <epilog-hex> <params-hex> <saved-hex> <locals-hex>
// <max_stack-hex> <program-string>". Only the WIN platform is recognized;
// any other tag makes this a silent skip, matching real MSVC producers
// that occasionally emit other platform tags alongside WIN records.
func (p *symbolFileParser) parseStackRecord(line string) error {
	tokens, ok := Tokenize(line, 12)
	if !ok {
		return nil
	}
	if tokens[1] != "WIN" {
		p.m.logger.Debugf("skipping STACK record for unsupported platform %q", tokens[1])
		return nil
	}

	typ, err := strconv.ParseUint(tokens[2], 16, 32)
	rva, err2 := strconv.ParseUint(tokens[3], 16, 64)
	codeSize, err3 := strconv.ParseUint(tokens[4], 16, 64)
	prolog, err4 := strconv.ParseUint(tokens[5], 16, 32)
	epilog, err5 := strconv.ParseUint(tokens[6], 16, 32)
	params, err6 := strconv.ParseUint(tokens[7], 16, 32)
	saved, err7 := strconv.ParseUint(tokens[8], 16, 32)
	locals, err8 := strconv.ParseUint(tokens[9], 16, 32)
	maxStack, err9 := strconv.ParseUint(tokens[10], 16, 32)
	if anyErr(err, err2, err3, err4, err5, err6, err7, err8, err9) {
		return nil
	}
	if !isValidUnwindType(int(typ)) {
		p.m.logger.Debugf("skipping STACK record with out-of-range type %#x", typ)
		return nil
	}

	info := UnwindInfo{
		PrologSize:        uint32(prolog),
		EpilogSize:        uint32(epilog),
		ParameterSize:     uint32(params),
		SavedRegisterSize: uint32(saved),
		LocalSize:         uint32(locals),
		MaxStackSize:      uint32(maxStack),
		ProgramString:     tokens[11],
		Valid:             true,
	}

	// A rejected StoreRange here means a containment violation in the
	// producer's own output; we drop it rather than try to re-base it.
	if !p.m.unwind[typ].StoreRange(Addr(rva), Addr(codeSize), info) {
		p.m.logger.Debugf("discarding STACK record [%x,%x): partially overlaps an existing one", rva, rva+codeSize)
	}
	return nil
}

func anyErr(errs ...error) bool {
	for _, err := range errs {
		if err != nil {
			return true
		}
	}
	return false
}
