package jcp

// ICFlag is the bitmask passed to an emitted kernel describing its role in
// a chain of calls splitting the IC dimension across several invocations
// (spec §6, §8 round-trip property).
type ICFlag uint8

const (
	// ICFlagFirst means this call initialises the accumulators (broadcast
	// bias, or zero them) instead of loading the in-progress output tile.
	ICFlagFirst ICFlag = 1 << 0
	// ICFlagLast means this call applies the epilogue (ReLU, if enabled)
	// before storing.
	ICFlagLast ICFlag = 1 << 1

	// ICFlagMiddle is the glossary's name for neither flag set: continue
	// an in-progress reduction without initialising or finalising it.
	ICFlagMiddle ICFlag = 0
	// ICFlagBoth is the glossary's name for a single call that both
	// initialises and finalises — the common case of an unsplit IC
	// dimension.
	ICFlagBoth = ICFlagFirst | ICFlagLast
)

// First reports whether the accumulator-initialisation bit is set.
func (f ICFlag) First() bool { return f&ICFlagFirst != 0 }

// Last reports whether the epilogue-application bit is set.
func (f ICFlag) Last() bool { return f&ICFlagLast != 0 }

// ArgRecord is the ABI between the outer driver and an emitted kernel: a
// dense record of pointer- and integer-sized fields. Offsets are computed
// by ArgOffset and burned into the generated prologue's
// `MOV reg, [param1+offset]` sequence at emit time (spec §6).
type ArgRecord struct {
	Src        uintptr // fwd: input; bwd-data: dsrc; bwd-weights: input
	Dst        uintptr // destination tile base
	Filt       uintptr // filter slice base
	Bias       uintptr // fwd only; unused otherwise
	KHPadding  int64   // effective K_H count after trimming top/bottom overflow
	ICFlagWord int64   // ICFlag, widened to a machine word
}

// argField names the ArgRecord fields in the declaration order ArgOffset indexes into;
// kept explicit (rather than relying on unsafe.Offsetof on the exported
// struct, which the emitter packages don't import from here) so the ABI
// contract is visible in one place and reviewable independent of struct
// layout/padding decisions.
type argField int

const (
	ArgSrc argField = iota
	ArgDst
	ArgFilt
	ArgBias
	ArgKHPadding
	ArgICFlag
)

// fieldWidth is the byte width of each ArgRecord field for the target's
// LP64 ABI (8-byte pointers and 8-byte widened integers).
const fieldWidth = 8

// ArgOffset returns the byte offset of field within ArgRecord, as the
// emitter's prologue would compute with consecutive 8-byte slots. This
// package defines the ABI; it does not lay out the Go struct itself to
// avoid coupling code-generation offsets to the Go compiler's struct
// layout, which is not guaranteed across versions.
func ArgOffset(field argField) int {
	return int(field) * fieldWidth
}
