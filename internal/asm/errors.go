package asm

import (
	"errors"
	"fmt"
)

// ErrEmitterInvariant marks a contract bug in an emitter: a register-role
// collision, an unresolved label at seal time, or any other condition that
// should never arise for a ConvConf that passed planning (spec §7). It is
// raised as a panic at the point of detection and recovered exactly once,
// at the convjit.Emit call boundary, via Recover.
var ErrEmitterInvariant = errors.New("convjit: emitter invariant violated")

type invariantPanic struct{ err error }

// Invariant panics with ErrEmitterInvariant wrapping a formatted reason
// when cond is false. Emitters call this for conditions spec §7 calls
// "fatal assertions" — e.g. register-plan overflow — that the planner is
// supposed to have already ruled out.
func Invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(invariantPanic{fmt.Errorf("%w: %s", ErrEmitterInvariant, fmt.Sprintf(format, args...))})
}

// Recover turns an Invariant panic into an error assigned to *errp,
// leaving any other panic to propagate. Call via `defer asm.Recover(&err)`
// in the single function (convjit.Emit) that owns this boundary.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ip, ok := r.(invariantPanic); ok {
		*errp = ip.err
		return
	}
	panic(r)
}
