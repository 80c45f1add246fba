// Package cse implements common-subexpression elimination: when two
// arithmetic/comparison instructions compute the same operator over
// the same operands and neither operand (nor the prior result) has
// been redefined in between, the second is rewritten to a COPY of the
// first's result. Commutative operators (ADD, MUL, EQ, NE) are
// canonicalized by operand name so a+b and b+a are recognized as the
// same expression.
//
// Grounded on original_source/Optimize/cse.cpp's cse_run, which builds
// a whole-function label_map/succ/pred graph and runs a real
// available-expressions fixed point over it (cse.cpp:219-336),
// canonicalizing commutative keys via is_commutative/std::swap
// (cse.cpp:26, 99-101) — this port matches both: a per-function
// CFG-wide analysis via pkg/cfg, meeting at merge points by
// intersecting predecessors' out-sets, with the same commutative
// canonicalization.
package cse

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

func isCSECandidate(op tac.Op) bool {
	switch op {
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV,
		tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE, tac.NEG:
		return true
	default:
		return false
	}
}

func isCommutative(op tac.Op) bool {
	switch op {
	case tac.ADD, tac.MUL, tac.EQ, tac.NE:
		return true
	default:
		return false
	}
}

type key struct {
	op   tac.Op
	b, c *symtab.Symbol
}

// canonicalKey orders a commutative operator's operands by name so
// a+b and b+a produce the same key.
func canonicalKey(op tac.Op, b, c *symtab.Symbol) key {
	if isCommutative(op) && b != nil && c != nil && b.Name > c.Name {
		b, c = c, b
	}
	return key{op: op, b: b, c: c}
}

// availSet maps a canonical expression key to the symbol currently
// holding its value.
type availSet map[key]*symtab.Symbol

func (s availSet) clone() availSet {
	out := make(availSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// intersectAvail keeps only entries present with the same value in
// both sets — the meet operator for a forward must-be-available
// analysis.
func intersectAvail(a, b availSet) availSet {
	out := availSet{}
	for k, v := range a {
		if bv, ok := b[k]; ok && bv == v {
			out[k] = v
		}
	}
	return out
}

func equalAvail(a, b availSet) bool {
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

// killAvail purges every entry whose operands OR stored value equal
// d: an entry is no longer valid once either its inputs are
// redefined, or the variable holding its result is redefined to
// something else entirely.
func killAvail(s availSet, d *symtab.Symbol) {
	if d == nil {
		return
	}
	for k, v := range s {
		if k.b == d || k.c == d || v == d {
			delete(s, k)
		}
	}
}

// transfer computes a block's outgoing available-expression set from
// an incoming one, without rewriting any instruction — used only by
// the fixed-point analysis below.
func transfer(blk *cfg.Block, in availSet) availSet {
	out := in.clone()
	for inst := blk.First; ; inst = inst.Next {
		d := dataflow.Def(inst)
		// Kill before (re)recording this instruction's own expression:
		// killAvail also purges on a matching *value*, and this
		// instruction's own fresh entry stores a value equal to d, so
		// killing first keeps it from immediately deleting itself.
		killAvail(out, d)
		if isCSECandidate(inst.Op) {
			k := canonicalKey(inst.Op, inst.B, inst.C)
			if _, ok := out[k]; !ok {
				out[k] = inst.A
			}
		}
		if dataflow.IsGlobalSideEffect(inst) {
			out = availSet{}
		}
		if inst == blk.Last {
			break
		}
	}
	return out
}

// Run computes the whole-function available-expressions fixed point
// for every function, then rewrites redundant recomputations using
// each block's converged entry state, returning the number of
// instructions turned into copies.
func Run(ctx *tac.Context, l *optlog.Log) int {
	all := cfg.BuildAll(ctx)
	var lines []string
	count := 0

	for _, fn := range all.Functions {
		in := make(map[*cfg.Block]availSet, len(fn.Blocks))
		out := make(map[*cfg.Block]availSet, len(fn.Blocks))
		for _, blk := range fn.Blocks {
			out[blk] = availSet{}
		}

		for changed := true; changed; {
			changed = false
			for _, blk := range fn.Blocks {
				var meet availSet
				if len(blk.Pred) == 0 {
					meet = availSet{}
				} else {
					meet = out[blk.Pred[0]].clone()
					for _, p := range blk.Pred[1:] {
						meet = intersectAvail(meet, out[p])
					}
				}
				in[blk] = meet
				next := transfer(blk, meet)
				if !equalAvail(next, out[blk]) {
					out[blk] = next
					changed = true
				}
			}
		}

		for _, blk := range fn.Blocks {
			available := in[blk].clone()
			for inst := blk.First; ; inst = inst.Next {
				d := dataflow.Def(inst)
				killAvail(available, d)

				if isCSECandidate(inst.Op) {
					k := canonicalKey(inst.Op, inst.B, inst.C)
					if prior, ok := available[k]; ok {
						before := tac.Format(inst)
						inst.Op = tac.COPY
						inst.B = prior
						inst.C = nil
						lines = append(lines, fmt.Sprintf("%s -> %s", before, tac.Format(inst)))
						count++
					} else {
						available[k] = inst.A
					}
				}
				if dataflow.IsGlobalSideEffect(inst) {
					available = availSet{}
				}

				if inst == blk.Last {
					break
				}
			}
		}
	}

	l.Record(optlog.CSE, lines, count)
	return count
}
