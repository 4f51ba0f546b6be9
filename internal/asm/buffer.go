package asm

import (
	"encoding/binary"
	"fmt"
)

// pendingJump is a forward (or backward, doesn't matter) reference to a
// label that hasn't been resolved yet: the rel32 field at codeOffset needs
// patching once the label's address is known.
type pendingJump struct {
	label      string
	codeOffset int // offset of the 4-byte rel32 field
	instrEnd   int // offset immediately after the jump instruction (rel32 is relative to here)
}

// Relocation records a label reference the Buffer patched at Seal time,
// exposed so a caller building tooling around this package (e.g. the
// cmd/convjit "emit" inspector) can show where control flow crosses tile
// boundaries without re-disassembling the blob.
type Relocation struct {
	Label  string
	Offset int
}

// Buffer is the generator's private instruction stream: an owned,
// non-shared byte buffer plus a symbolic label table resolved at Seal
// time (spec §9's "symbolic-label table resolved at seal time" approach).
// It is not safe for concurrent use; exactly one Plan+emit call owns a
// Buffer (spec §5).
type Buffer struct {
	code     []byte
	labels   map[string]int
	pending  []pendingJump
	labelSeq int
}

// NewBuffer returns a Buffer with backing capacity sized for sizeHint
// bytes of machine code, drawn from the shared buffer pool.
func NewBuffer(sizeHint int) *Buffer {
	return &Buffer{
		code:   getCodeBuf(sizeHint),
		labels: make(map[string]int, 8),
	}
}

// Pos returns the current write offset.
func (b *Buffer) Pos() int { return len(b.code) }

func (b *Buffer) emitByte(x byte) { b.code = append(b.code, x) }

func (b *Buffer) emitBytes(xs ...byte) { b.code = append(b.code, xs...) }

func (b *Buffer) emitU32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.code = append(b.code, tmp[:]...)
}

func (b *Buffer) emitU64LE(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.code = append(b.code, tmp[:]...)
}

// NewLabelID returns a fresh label name scoped under the caller-supplied
// prefix (typically the emitter and block, e.g. "fwd.tile" or "bwdw.init") with
// a generator-owned sequence number suffixed, so sibling tiles never
// collide — the generalization of the original source's single-character
// pad_label suffix (spec §9, "label ownership explicit via a scope or a
// generator counter").
func (b *Buffer) NewLabelID(scope string) string {
	b.labelSeq++
	return fmt.Sprintf("%s#%d", scope, b.labelSeq)
}

// Label binds name to the current write position. Invariant-panics if
// name was already bound — every label is defined exactly once.
func (b *Buffer) Label(name string) {
	if _, exists := b.labels[name]; exists {
		Invariant(false, "label %q redefined", name)
	}
	b.labels[name] = b.Pos()
}

// JMP emits a near unconditional jump (opcode E9) to label, which may be
// defined later (forward reference) or already bound.
func (b *Buffer) JMP(label string) {
	b.emitByte(0xE9)
	b.recordPending(label)
	b.emitU32LE(0) // placeholder, patched at Seal
}

// JCC emits a near conditional jump (opcode 0F 8x) to label.
func (b *Buffer) JCC(cond Cond, label string) {
	b.emitBytes(0x0F, 0x80|byte(cond))
	b.recordPending(label)
	b.emitU32LE(0)
}

func (b *Buffer) recordPending(label string) {
	b.pending = append(b.pending, pendingJump{
		label:      label,
		codeOffset: b.Pos(),
		instrEnd:   b.Pos() + 4,
	})
}

// Seal resolves every pending label reference and returns the finished
// machine code together with the relocations applied. It is an
// Invariant-panic (a contract bug, not a planning failure) for a label to
// be referenced but never Label-defined.
func (b *Buffer) Seal() ([]byte, []Relocation) {
	relocs := make([]Relocation, 0, len(b.pending))
	for _, p := range b.pending {
		target, ok := b.labels[p.label]
		Invariant(ok, "unresolved label %q at seal time", p.label)
		rel := int32(target - p.instrEnd)
		binary.LittleEndian.PutUint32(b.code[p.codeOffset:p.codeOffset+4], uint32(rel))
		relocs = append(relocs, Relocation{Label: p.label, Offset: p.codeOffset})
	}
	out := make([]byte, len(b.code))
	copy(out, b.code)
	putCodeBuf(b.code)
	b.code = nil
	return out, relocs
}
