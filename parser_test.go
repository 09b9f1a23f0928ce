// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, body string) *Module {
	t.Helper()
	m := NewModule("test", nil)
	require.True(t, m.LoadFromReader(strings.NewReader(body)), "expected symbol file to load")
	return m
}

func TestParserResolvesFunctionFileAndLine(t *testing.T) {
	m := mustLoad(t, "FILE 1 /src/foo.c\nFUNC 1000 100 foo\n1000 20 42 1\n")

	sym, _, _ := m.Lookup(0x1005)
	require.NotNil(t, sym.FunctionName)
	assert.Equal(t, "foo", *sym.FunctionName)
	require.NotNil(t, sym.SourceFile)
	assert.Equal(t, "/src/foo.c", *sym.SourceFile)
	require.NotNil(t, sym.SourceLine)
	assert.Equal(t, 42, *sym.SourceLine)
}

func TestParserLineWithMissingFileIsStillReported(t *testing.T) {
	m := mustLoad(t, "FUNC 2000 50 bar\n2000 10 7 9\n")

	sym, _, _ := m.Lookup(0x2001)
	require.NotNil(t, sym.FunctionName)
	assert.Equal(t, "bar", *sym.FunctionName)
	assert.Nil(t, sym.SourceFile)
	require.NotNil(t, sym.SourceLine)
	assert.Equal(t, 7, *sym.SourceLine)
}

func TestParserOverlappingFuncIsDiscarded(t *testing.T) {
	m := mustLoad(t, "FUNC 1000 100 a\nFUNC 1050 10 b\n")

	sym, _, _ := m.Lookup(0x1000)
	require.NotNil(t, sym.FunctionName)
	assert.Equal(t, "a", *sym.FunctionName)

	// "b" was rejected: the range still belongs to "a".
	sym, _, _ = m.Lookup(0x1055)
	require.NotNil(t, sym.FunctionName)
	assert.Equal(t, "a", *sym.FunctionName)
}

func TestParserDiscardsLinesAfterRejectedFunc(t *testing.T) {
	// The LINE record following the rejected FUNC must not attach to "a".
	m := mustLoad(t, "FUNC 1000 100 a\nFUNC 1050 10 b\n1050 5 99 1\nFUNC 2000 10 c\n2000 5 5 1\n")

	sym, _, _ := m.Lookup(0x1052)
	assert.Nil(t, sym.SourceLine)

	sym, _, _ = m.Lookup(0x2001)
	require.NotNil(t, sym.SourceLine)
	assert.Equal(t, 5, *sym.SourceLine)
}

func TestParserStackWinFrameData(t *testing.T) {
	m := mustLoad(t, "STACK WIN 4 1000 20 5 0 0 0 0 100 $eip\n")

	_, unwind, ok := m.Lookup(0x1003)
	require.True(t, ok)
	assert.EqualValues(t, 5, unwind.PrologSize)
	assert.EqualValues(t, 0x100, unwind.MaxStackSize)
	assert.Equal(t, "$eip", unwind.ProgramString)
	assert.True(t, unwind.Valid)
}

func TestParserStackWinNested(t *testing.T) {
	m := mustLoad(t, "STACK WIN 4 1000 100 0 0 0 0 0 0 outer\nSTACK WIN 4 1020 10 0 0 0 0 0 0 inner\n")

	_, unwind, ok := m.Lookup(0x1025)
	require.True(t, ok)
	assert.Equal(t, "inner", unwind.ProgramString)

	_, unwind, ok = m.Lookup(0x1050)
	require.True(t, ok)
	assert.Equal(t, "outer", unwind.ProgramString)
}

func TestParserStackWinPartialOverlapDropped(t *testing.T) {
	body := "STACK WIN 4 4242 1a 0a 0 0 0 0 0 first\nSTACK WIN 4 4243 2e 09 0 0 0 0 0 second\n"
	m := mustLoad(t, body)

	_, unwind, ok := m.Lookup(0x4245)
	require.True(t, ok)
	assert.Equal(t, "first", unwind.ProgramString)
}

func TestParserOrphanLineFailsLoad(t *testing.T) {
	m := NewModule("test", nil)
	assert.False(t, m.LoadFromReader(strings.NewReader("1000 20 42 1\n")))
}

func TestParserBlankLineFailsLoad(t *testing.T) {
	m := NewModule("test", nil)
	assert.False(t, m.LoadFromReader(strings.NewReader("FILE 1 /src/foo.c\n\nFUNC 1000 10 f\n")))
}

func TestParserNonPositiveLineIsDropped(t *testing.T) {
	m := mustLoad(t, "FUNC 1000 100 foo\n1000 10 0 1\n1010 10 5 1\n")

	sym, _, _ := m.Lookup(0x1002)
	assert.Nil(t, sym.SourceLine)

	sym, _, _ = m.Lookup(0x1012)
	require.NotNil(t, sym.SourceLine)
	assert.Equal(t, 5, *sym.SourceLine)
}

func TestParserDuplicateFileIDOverwrites(t *testing.T) {
	m := mustLoad(t, "FILE 1 /src/old.c\nFILE 1 /src/new.c\nFUNC 1000 10 foo\n1000 10 1 1\n")

	sym, _, _ := m.Lookup(0x1000)
	require.NotNil(t, sym.SourceFile)
	assert.Equal(t, "/src/new.c", *sym.SourceFile)
}

func TestParserUnrecognizedPlatformSkipped(t *testing.T) {
	m := mustLoad(t, "STACK LINUX 4 1000 20 5 0 0 0 0 100 prog\n")
	_, _, ok := m.Lookup(0x1003)
	assert.False(t, ok)
}

func TestParserOutOfRangeUnwindTypeSkipped(t *testing.T) {
	m := mustLoad(t, "STACK WIN 9 1000 20 5 0 0 0 0 100 prog\n")
	_, _, ok := m.Lookup(0x1003)
	assert.False(t, ok)
}
