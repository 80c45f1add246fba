// Package copyprop implements copy propagation: each COPY a = b lets
// later uses of a be rewritten to use b directly, so long as b isn't
// redefined in between.
//
// Grounded on original_source/Optimize/copyprop.cpp's copyprop_run,
// which builds a whole-function label_map/succ/pred graph and runs a
// real in/out reaching-copies fixed point over it (copyprop.cpp:134-
// 300) rather than scanning block-local — this port matches that
// scope: a per-function CFG-wide analysis via pkg/cfg, meeting at
// merge points by intersecting predecessors' out-sets.
package copyprop

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// copySet maps a copied-into symbol to the symbol it currently holds
// the value of.
type copySet map[*symtab.Symbol]*symtab.Symbol

func (s copySet) clone() copySet {
	out := make(copySet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// intersectCopies keeps only the copies present with the same source
// in both sets — the meet operator for a forward must-reach analysis.
func intersectCopies(a, b copySet) copySet {
	out := copySet{}
	for k, v := range a {
		if bv, ok := b[k]; ok && bv == v {
			out[k] = v
		}
	}
	return out
}

func equalCopies(a, b copySet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func killCopy(s copySet, d *symtab.Symbol) {
	if d == nil {
		return
	}
	for k, v := range s {
		if k == d || v == d {
			delete(s, k)
		}
	}
}

// transfer computes a block's outgoing copy set from an incoming one,
// without rewriting any operands — used only by the fixed-point
// analysis below.
func transfer(blk *cfg.Block, in copySet) copySet {
	out := in.clone()
	for inst := blk.First; ; inst = inst.Next {
		killCopy(out, dataflow.Def(inst))
		if inst.Op == tac.COPY && dataflow.IsTracked(inst.A) && dataflow.IsTracked(inst.B) {
			out[inst.A] = inst.B
		}
		if dataflow.IsGlobalSideEffect(inst) {
			out = copySet{}
		}
		if inst == blk.Last {
			break
		}
	}
	return out
}

// Run computes the whole-function reaching-copies fixed point for
// every function, then rewrites operands using each block's converged
// entry state, returning the number of operands rewritten.
func Run(ctx *tac.Context, l *optlog.Log) int {
	all := cfg.BuildAll(ctx)
	var lines []string
	count := 0

	for _, fn := range all.Functions {
		in := make(map[*cfg.Block]copySet, len(fn.Blocks))
		out := make(map[*cfg.Block]copySet, len(fn.Blocks))
		for _, blk := range fn.Blocks {
			out[blk] = copySet{}
		}

		for changed := true; changed; {
			changed = false
			for _, blk := range fn.Blocks {
				var meet copySet
				if len(blk.Pred) == 0 {
					meet = copySet{}
				} else {
					meet = out[blk.Pred[0]].clone()
					for _, p := range blk.Pred[1:] {
						meet = intersectCopies(meet, out[p])
					}
				}
				in[blk] = meet
				next := transfer(blk, meet)
				if !equalCopies(next, out[blk]) {
					out[blk] = next
					changed = true
				}
			}
		}

		for _, blk := range fn.Blocks {
			copies := in[blk].clone()
			for inst := blk.First; ; inst = inst.Next {
				rewriteOperand(inst, &inst.B, copies, &lines, &count)
				rewriteOperand(inst, &inst.C, copies, &lines, &count)

				killCopy(copies, dataflow.Def(inst))
				if inst.Op == tac.COPY && dataflow.IsTracked(inst.A) && dataflow.IsTracked(inst.B) {
					copies[inst.A] = inst.B
				}
				if dataflow.IsGlobalSideEffect(inst) {
					copies = copySet{}
				}

				if inst == blk.Last {
					break
				}
			}
		}
	}

	l.Record(optlog.CopyProp, lines, count)
	return count
}

func rewriteOperand(in *tac.Instr, slot **symtab.Symbol, copies copySet, lines *[]string, count *int) {
	s := *slot
	if !dataflow.IsTracked(s) {
		return
	}
	if src, ok := copies[s]; ok && src != s {
		before := tac.Format(in)
		*slot = src
		*lines = append(*lines, fmt.Sprintf("%s -> %s", before, tac.Format(in)))
		*count++
	}
}
