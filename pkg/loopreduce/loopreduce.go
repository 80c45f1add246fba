// Package loopreduce collapses a narrow but common loop shape — a
// single induction variable with a known constant initial value,
// constant step, and constant comparison bound, paired with a single
// accumulator updated by a constant step each iteration and touched
// nowhere else — into a direct closed-form computation, skipping the
// loop entirely.
//
// Grounded on original_source/Optimize/loopreduce.cpp's
// loopreduce_run, which performs the same trip-count-closed-form
// collapse; this port requires the narrower precondition that nothing
// but the induction and accumulator variables (and the header's
// comparison result) is defined inside the loop, which the original's own collapse guard also checks before
// acting (flagged as "be conservative" in loopreduce.cpp's comments).
package loopreduce

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

type candidate struct {
	blocks  []*cfg.Block
	header  *cfg.Block
	iv      *symtab.Symbol
	ivInit  int32
	ivStep  int32
	bound   int32
	cmpOp   tac.Op
	acc     *symtab.Symbol
	accStep int32
	accInit int32
}

// Run scans every function for the collapsible loop shape and, where
// found, replaces the loop with direct final assignments to the
// induction variable and accumulator, returning the number of loops
// collapsed.
func Run(ctx *tac.Context, l *optlog.Log) int {
	all := cfg.BuildAll(ctx)
	var lines []string
	count := 0

	for _, fn := range all.Functions {
		for _, blk := range fn.Blocks {
			term := blk.Last
			if term.Op != tac.IFZ {
				continue
			}
			// Only handle a loop whose header IS this IFZ block and
			// whose back edge is the first later block ending in an
			// unconditional GOTO to this header.
			back := findBackEdge(fn, blk)
			if back == nil {
				continue
			}
			loopBlocks := fn.Blocks[indexOf(fn, blk):indexOf(fn, back)+1]

			c, ok := analyze(loopBlocks, blk)
			if !ok {
				continue
			}

			trip := tripCount(c)
			if trip < 0 {
				continue
			}

			finalIV := c.ivInit + trip*c.ivStep
			finalAcc := syntheticAccInit(c) + trip*c.accStep

			endBlk := labelTarget(fn, term.A)
			if endBlk == nil {
				continue
			}

			// Replace the whole loop with two direct assignments,
			// spliced in before the header.
			header := loopBlocks[0].First
			setIV := &tac.Instr{Op: tac.COPY, A: c.iv, B: intSym(ctx, c, finalIV)}
			setAcc := &tac.Instr{Op: tac.COPY, A: c.acc, B: intSym(ctx, c, finalAcc)}
			ctx.InsertBefore(header, setIV)
			ctx.InsertBefore(header, setAcc)

			for _, b := range loopBlocks {
				for in := b.First; ; {
					next := in.Next
					ctx.Detach(in)
					if in == b.Last {
						break
					}
					in = next
				}
			}

			lines = append(lines, fmt.Sprintf("collapsed loop: %s -> %d, %s -> %d (trip count %d)",
				c.iv.Name, finalIV, c.acc.Name, finalAcc, trip))
			count++
		}
	}

	l.Record(optlog.LoopReduce, lines, count)
	return count
}

func intSym(ctx *tac.Context, c *candidate, v int32) *symtab.Symbol {
	_ = ctx
	return &symtab.Symbol{Name: fmt.Sprintf("%d", v), Kind: symtab.IntConst, IntValue: v}
}

func syntheticAccInit(c *candidate) int32 {
	return c.accInit
}

func findBackEdge(fn *cfg.Function, header *cfg.Block) *cfg.Block {
	hi := indexOf(fn, header)
	for i := hi + 1; i < len(fn.Blocks); i++ {
		b := fn.Blocks[i]
		if b.Last.Op == tac.GOTO && b.Last.A == header.Label {
			return b
		}
	}
	return nil
}

func indexOf(fn *cfg.Function, b *cfg.Block) int {
	for i, x := range fn.Blocks {
		if x == b {
			return i
		}
	}
	return -1
}

func labelTarget(fn *cfg.Function, lbl *symtab.Symbol) *cfg.Block {
	for _, b := range fn.Blocks {
		if b.Label == lbl {
			return b
		}
	}
	return nil
}

// analyze checks whether loopBlocks match the collapsible shape,
// returning the extracted induction/accumulator facts. This is
// deliberately conservative: any instruction it doesn't recognize, or
// any global side effect, aborts the match.
func analyze(blocks []*cfg.Block, header *cfg.Block) (*candidate, bool) {
	c := &candidate{blocks: blocks, header: header}

	cmp := header.Last.B
	cmpDef := findDef(blocks, cmp)
	if cmpDef == nil || !isComparison(cmpDef.Op) {
		return nil, false
	}
	iv, bound, ok := ivAndBound(cmpDef)
	if !ok {
		return nil, false
	}
	c.iv = iv
	c.bound = bound
	c.cmpOp = cmpDef.Op

	var ivStepFound, accFound bool
	for _, blk := range blocks {
		for in := blk.First; ; in = in.Next {
			if dataflow.IsGlobalSideEffect(in) || in.Op == tac.STORE || in.Op == tac.CALL {
				return nil, false
			}
			switch in.Op {
			case tac.OUTPUT, tac.ACTUAL, tac.RETURN:
				return nil, false
			case tac.IFZ:
				if in != header.Last {
					return nil, false
				}
			case tac.GOTO:
				if in != blocks[len(blocks)-1].Last {
					return nil, false
				}
			}
			if in.Op == tac.ADD && in.A == c.iv && in.B == c.iv && isConst(in.C) {
				c.ivStep = in.C.IntValue
				ivStepFound = true
			} else if in.Op == tac.ADD && in.A != c.iv && in.B == in.A && isConst(in.C) {
				if accFound && c.acc != in.A {
					return nil, false
				}
				c.acc = in.A
				c.accStep = in.C.IntValue
				accFound = true
			} else if dataflow.Def(in) != nil && in != cmpDef && in.Op != tac.LABEL {
				d := dataflow.Def(in)
				if d != c.iv && d != c.acc && !(in.Op == tac.ADD && d == c.acc) {
					return nil, false
				}
			}
			if in == blk.Last {
				break
			}
		}
	}
	if !ivStepFound || !accFound {
		return nil, false
	}

	ivInit, ok := findInitValue(header.First.Prev, c.iv)
	if !ok {
		return nil, false
	}
	c.ivInit = ivInit
	accInit, ok := findInitValue(header.First.Prev, c.acc)
	if !ok {
		return nil, false
	}
	c.accInit = accInit

	return c, true
}

// findInitValue scans backward from start looking for the nearest
// "target = <constant>" assignment, aborting (returning false) as soon
// as it crosses a block boundary (LABEL/BEGINFUNC) or a non-constant
// definition of target, so a stale value from an earlier, unrelated
// iteration can never be mistaken for the loop's entry value.
func findInitValue(start *tac.Instr, target *symtab.Symbol) (int32, bool) {
	for p := start; p != nil; p = p.Prev {
		if p.Op == tac.COPY && p.A == target && isConst(p.B) {
			return p.B.IntValue, true
		}
		if p.Op == tac.LABEL || p.Op == tac.BEGINFUNC {
			break
		}
		if dataflow.Def(p) == target {
			break
		}
	}
	return 0, false
}

func findDef(blocks []*cfg.Block, sym *symtab.Symbol) *tac.Instr {
	for _, blk := range blocks {
		for in := blk.First; ; in = in.Next {
			if dataflow.Def(in) == sym {
				return in
			}
			if in == blk.Last {
				break
			}
		}
	}
	return nil
}

func isComparison(op tac.Op) bool {
	switch op {
	case tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE:
		return true
	default:
		return false
	}
}

func isConst(s *symtab.Symbol) bool {
	return s != nil && (s.Kind == symtab.IntConst || s.Kind == symtab.CharConst)
}

func ivAndBound(cmp *tac.Instr) (*symtab.Symbol, int32, bool) {
	if dataflow.IsTracked(cmp.B) && isConst(cmp.C) {
		return cmp.B, cmp.C.IntValue, true
	}
	return nil, 0, false
}

// tripCount derives the number of times the loop body executes from
// the induction variable's constant initial value, constant step, and
// the comparison that guards the loop, matching loopreduce.cpp's
// eval_trip_count for the four monotonic comparison shapes it
// recognizes. A loop whose guard fails on entry returns 0 (for '<'
// this holds whatever the step). Any other shape (zero/wrong-signed
// step, a comparison direction inconsistent with the step's sign)
// returns -1, meaning "decline to collapse."
func tripCount(c *candidate) int32 {
	switch c.cmpOp {
	case tac.LT:
		if c.ivStep <= 0 || c.bound <= c.ivInit {
			if c.bound <= c.ivInit {
				return 0
			}
			return -1
		}
		return ceilDiv(c.bound-c.ivInit, c.ivStep)
	case tac.LE:
		if c.ivStep <= 0 {
			return -1
		}
		if c.bound < c.ivInit {
			return 0
		}
		return (c.bound-c.ivInit)/c.ivStep + 1
	case tac.GT:
		if c.ivStep >= 0 {
			return -1
		}
		if c.ivInit <= c.bound {
			return 0
		}
		return ceilDiv(c.ivInit-c.bound, -c.ivStep)
	case tac.GE:
		if c.ivStep >= 0 {
			return -1
		}
		if c.ivInit < c.bound {
			return 0
		}
		return (c.ivInit-c.bound)/(-c.ivStep) + 1
	default:
		return -1
	}
}

func ceilDiv(a, b int32) int32 {
	if b <= 0 {
		return -1
	}
	return (a + b - 1) / b
}
