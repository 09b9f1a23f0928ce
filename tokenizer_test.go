// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBasic(t *testing.T) {
	tokens, ok := Tokenize("FUNC 1000 20 main", 4)
	require.True(t, ok)
	assert.Equal(t, []string{"FUNC", "1000", "20", "main"}, tokens)
}

// TestTokenizeFinalFieldAbsorbsRemainder pins down the intended behavior
// for the last requested field: it must swallow the rest of the line,
// interior spaces included, rather than being split again. A prior
// off-by-logic (`!remaining > 0` parsing as `(!remaining) > 0`, always
// false) would have suppressed this and produced a short token list
// instead.
func TestTokenizeFinalFieldAbsorbsRemainder(t *testing.T) {
	tokens, ok := Tokenize("FUNC 1000 20 operator new(unsigned long)", 4)
	require.True(t, ok)
	require.Len(t, tokens, 4)
	assert.Equal(t, "operator new(unsigned long)", tokens[3])
}

func TestTokenizeStripsTrailingCRLF(t *testing.T) {
	tokens, ok := Tokenize("FILE 1 /src/foo.c\r\n", 3)
	require.True(t, ok)
	assert.Equal(t, "/src/foo.c", tokens[2])
}

func TestTokenizeTooFewFields(t *testing.T) {
	tokens, ok := Tokenize("FUNC 1000", 4)
	assert.False(t, ok)
	assert.Equal(t, []string{"FUNC", "1000"}, tokens)
}

func TestTokenizeCollapsesSeparatorRuns(t *testing.T) {
	tokens, ok := Tokenize("FUNC   1000\r\n20   main", 4)
	require.True(t, ok)
	assert.Equal(t, []string{"FUNC", "1000", "20", "main"}, tokens)
}
