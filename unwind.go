// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package crashsym

// Unwind type codes index a Module's per-type ContainedRangeMap. Only WIN
// platform STACK records are recognized; see parseStackRecord.
const (
	// UnwindFPO carries frame-pointer-omission data for pre-x64 code.
	UnwindFPO = iota

	// UnwindTrap is reserved. The parser stores records of this type,
	// but Module.Lookup never consults them.
	UnwindTrap

	// UnwindTSS is reserved. The parser stores records of this type,
	// but Module.Lookup never consults them.
	UnwindTSS

	// UnwindStandard carries the common x64 unwind-info form.
	UnwindStandard

	// UnwindFrameData carries the richest, compiler-derived unwind form
	// and is consulted first by Module.Lookup.
	UnwindFrameData

	numUnwindTypes
)

// isValidUnwindType reports whether t names one of the indices above.
func isValidUnwindType(t int) bool {
	return t >= 0 && t < numUnwindTypes
}

// UnwindInfo describes how to locate the caller's frame from some point
// within a code range: the prolog/epilog that bracket a function body, the
// stack space it consumes, and an optional platform-specific program
// string that replays the exact unwind steps.
type UnwindInfo struct {
	PrologSize        uint32
	EpilogSize        uint32
	ParameterSize     uint32
	SavedRegisterSize uint32
	LocalSize         uint32
	MaxStackSize      uint32
	ProgramString     string

	// Valid distinguishes a populated record (returned on a RetrieveRange
	// hit) from the zero value a caller might otherwise mistake for one.
	Valid bool
}
