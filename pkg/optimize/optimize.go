// Package optimize wires the seven optimization passes into the
// fixed-point pipeline the rest of the compiler drives: each round
// runs constant-folding, copy-propagation, CSE, LICM, induction
// variable strength reduction, loop trip-count collapse, and
// dead-code elimination in turn, looping until a round changes
// nothing or a 32-round cap is hit.
//
// Grounded on original_source/Optimize/main.c's driver loop. That
// driver never actually calls lsr_run (see DESIGN.md); this port
// restores it to the sequence, between LICM and LoopReduce per the
// OPT_PASS enum's declared order. Loop-unrolling, left commented out
// in the original, is not ported (DESIGN.md).
package optimize

import (
	"github.com/mini-c/tacopt/pkg/constfold"
	"github.com/mini-c/tacopt/pkg/copyprop"
	"github.com/mini-c/tacopt/pkg/cse"
	"github.com/mini-c/tacopt/pkg/deadcode"
	"github.com/mini-c/tacopt/pkg/licm"
	"github.com/mini-c/tacopt/pkg/loopreduce"
	"github.com/mini-c/tacopt/pkg/lsr"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// MaxIterations is the fixed-point round cap, matching main.c's
// literal 32.
const MaxIterations = 32

// PassNames is the fixed pipeline order, used both to drive Run and to
// validate a caller-supplied subset in RunWithOptions.
var PassNames = []string{"constfold", "copyprop", "cse", "licm", "lsr", "loopreduce", "deadcode"}

// Run drives the pipeline to a fixed point (or MaxIterations, whichever
// comes first), then performs one final, unconditional dead-code sweep
// — matching the original's closing deadcode_run() call after its
// fixed-point loop exits. It returns the number of rounds executed.
func Run(ctx *tac.Context, syms *symtab.Table, l *optlog.Log) int {
	return RunWithOptions(ctx, syms, l, MaxIterations, PassNames)
}

// RunWithOptions is Run generalized over internal/config.Options: a
// caller-chosen iteration cap and an enabled-pass subset (in
// PassNames's fixed relative order — a subset never reorders the
// pipeline, it only skips members of it). This is what lets
// `tacopt --passes constfold,deadcode` isolate two passes under test,
// or a tacopt.yaml project file tighten the 32-round default.
//
// The final unconditional dead-code sweep only runs if "deadcode" is
// itself in the enabled set — disabling it entirely is a legitimate
// choice for isolating a single pass's effect on the TAC listing.
func RunWithOptions(ctx *tac.Context, syms *symtab.Table, l *optlog.Log, maxIterations int, enabled []string) int {
	if maxIterations <= 0 {
		maxIterations = MaxIterations
	}
	on := make(map[string]bool, len(enabled))
	for _, p := range enabled {
		on[p] = true
	}

	round := 0
	for ; round < maxIterations; round++ {
		changed := 0
		if on["constfold"] {
			changed += constfold.Run(ctx, syms, l)
		}
		if on["copyprop"] {
			changed += copyprop.Run(ctx, l)
		}
		if on["cse"] {
			changed += cse.Run(ctx, l)
		}
		if on["licm"] {
			changed += licm.Run(ctx, l)
		}
		if on["lsr"] {
			changed += lsr.Run(ctx, syms, l)
		}
		if on["loopreduce"] {
			changed += loopreduce.Run(ctx, l)
		}
		if on["deadcode"] {
			changed += deadcode.Run(ctx, l)
		}
		if changed == 0 {
			round++
			break
		}
	}
	if on["deadcode"] {
		deadcode.Run(ctx, l)
	}
	return round
}
