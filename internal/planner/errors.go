// Package planner turns a (direction, shape) request into a ConvConf the
// matching emitter can consume, or rejects it. Planning never partially
// fills a ConvConf: every init_conf-style check either rejects outright
// (wrapping ErrUnimplemented) or the returned config is complete and emit-
// ready.
package planner

import (
	"errors"
	"fmt"
)

// ErrUnimplemented is the sentinel every rejected shape wraps. Callers
// distinguish "this generator doesn't handle that shape" from a genuine
// programming error (a panic) by checking errors.Is(err, ErrUnimplemented).
var ErrUnimplemented = errors.New("convjit: unimplemented shape")

func unimplemented(reason string, args ...any) error {
	return fmt.Errorf("convjit: %s: %w", fmt.Sprintf(reason, args...), ErrUnimplemented)
}
