// Package deadcode implements dead-code elimination as two sweeps per
// round: a reachability sweep that drops instructions no successor
// edge can reach from the function's entry, then a backward liveness
// sweep over the resulting CFG that drops side-effect-free
// instructions whose result is never subsequently used. Both run to a
// fixed point, repeating until a round removes nothing.
//
// Grounded on original_source/Optimize/deadcode.cpp's deadcode_run.
// Unlike the original, which renders its own standalone report via
// deadcode_emit_report, results here are recorded through the shared
// pkg/optlog mechanism (see DESIGN.md).
package deadcode

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/tac"
)

// Run repeats the reachability and liveness sweeps until a round
// removes nothing, returning the total instructions removed.
func Run(ctx *tac.Context, l *optlog.Log) int {
	var lines []string
	total := 0

	for {
		removed := removeUnreachable(ctx, cfg.BuildAll(ctx), &lines)
		removed += removeDeadDefs(ctx, cfg.BuildAll(ctx), &lines)

		total += removed
		if removed == 0 {
			break
		}
	}

	l.Record(optlog.DeadCode, lines, total)
	return total
}

// removeUnreachable drops every instruction in a block that cannot be
// reached from the function's entry block by following Succ edges,
// except BEGINFUNC/ENDFUNC, which always survive regardless of
// reachability.
func removeUnreachable(ctx *tac.Context, all *cfg.All, lines *[]string) int {
	removed := 0

	for _, fn := range all.Functions {
		if len(fn.Blocks) == 0 {
			continue
		}
		reachable := map[*cfg.Block]bool{fn.Blocks[0]: true}
		queue := []*cfg.Block{fn.Blocks[0]}
		for len(queue) > 0 {
			blk := queue[0]
			queue = queue[1:]
			for _, s := range blk.Succ {
				if !reachable[s] {
					reachable[s] = true
					queue = append(queue, s)
				}
			}
		}

		for _, blk := range fn.Blocks {
			if reachable[blk] {
				continue
			}
			for _, in := range collectForward(blk) {
				if in.Op == tac.BEGINFUNC || in.Op == tac.ENDFUNC {
					continue
				}
				before := tac.Format(in)
				ctx.Detach(in)
				*lines = append(*lines, fmt.Sprintf("removed (unreachable): %s", before))
				removed++
			}
		}
	}

	return removed
}

// removeDeadDefs computes each block's live-in set as a fixed point
// over live_out[b] = ⋃ live_in[s] for s ∈ succ(b), then removes any
// side-effect-free, tracked definition that is never live at its
// point of definition.
func removeDeadDefs(ctx *tac.Context, all *cfg.All, lines *[]string) int {
	removed := 0

	for _, fn := range all.Functions {
		liveIn := make(map[*cfg.Block]dataflow.Set, len(fn.Blocks))
		liveOut := make(map[*cfg.Block]dataflow.Set, len(fn.Blocks))
		for _, blk := range fn.Blocks {
			liveIn[blk] = dataflow.NewSet()
			liveOut[blk] = dataflow.NewSet()
		}

		for changed := true; changed; {
			changed = false
			for bi := len(fn.Blocks) - 1; bi >= 0; bi-- {
				blk := fn.Blocks[bi]
				out := dataflow.NewSet()
				for _, s := range blk.Succ {
					out = out.Union(liveIn[s])
				}
				in := transferLiveness(blk, out)
				if !in.Equal(liveIn[blk]) {
					liveIn[blk] = in
					changed = true
				}
				liveOut[blk] = out
			}
		}

		// Second pass: walk each block backward from its converged
		// live-out set, actually detaching dead definitions. The
		// per-instruction decision matches transferLiveness exactly,
		// so removals here agree with the converged live sets above.
		for _, blk := range fn.Blocks {
			live := liveOut[blk].Clone()
			for _, in := range collectReverse(blk) {
				if isDead(in, live) {
					before := tac.Format(in)
					ctx.Detach(in)
					*lines = append(*lines, fmt.Sprintf("removed: %s", before))
					removed++
					continue
				}
				stepLiveness(in, live)
			}
		}
	}

	return removed
}

// transferLiveness computes a block's live-in set from a candidate
// live-out set by walking backward, without mutating the instruction
// list — used only by the fixed-point analysis above.
func transferLiveness(blk *cfg.Block, out dataflow.Set) dataflow.Set {
	live := out.Clone()
	for _, in := range collectReverse(blk) {
		if isDead(in, live) {
			continue
		}
		stepLiveness(in, live)
	}
	return live
}

// isDead reports whether in would be eligible for removal given the
// liveness state live at its program point (computed backward, so
// live already reflects everything after in).
func isDead(in *tac.Instr, live dataflow.Set) bool {
	d := dataflow.Def(in)
	return d != nil && dataflow.IsTracked(d) && !live.Contains(d) &&
		dataflow.IsSideEffectFree(in.Op) && in.Op != tac.VAR && in.Op != tac.FORMAL
}

// stepLiveness applies in's effect to live walking backward: its
// definition is no longer live above it, and its uses become live.
func stepLiveness(in *tac.Instr, live dataflow.Set) {
	if d := dataflow.Def(in); d != nil {
		live.Remove(d)
	}
	for _, u := range dataflow.Uses(in) {
		live.Add(u)
	}
}

func collectForward(blk *cfg.Block) []*tac.Instr {
	var out []*tac.Instr
	for in := blk.First; ; in = in.Next {
		out = append(out, in)
		if in == blk.Last {
			break
		}
	}
	return out
}

func collectReverse(blk *cfg.Block) []*tac.Instr {
	out := collectForward(blk)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
