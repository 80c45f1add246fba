// Package licm implements loop-invariant code motion: for each natural
// loop (identified by a back edge — a GOTO/IFZ target that dominates
// the jump, approximated here as "the target block appears at or
// before the jump's own block in block order," matching the original's simplified
// loop-detection heuristic), a side-effect-free instruction defining a
// compiler temporary whose operands are all either loop-invariant or
// defined outside the loop is hoisted to a new preheader block before
// the loop. Marking repeats to a fixed point within each loop, so a
// chain like t1 = a+b; t2 = t1+c hoists both once t1 is marked
// invariant.
//
// Grounded on original_source/Optimize/licm.cpp's licm_run.
package licm

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// loop is a simplified natural loop: the inclusive block-index range
// [header, tail] whose last instruction branches back to header.
type loop struct {
	headerBlk *cfg.Block
	blocks    []*cfg.Block
}

func findLoops(fn *cfg.Function) []loop {
	var loops []loop
	for i, blk := range fn.Blocks {
		term := blk.Last
		if term.Op != tac.GOTO && term.Op != tac.IFZ {
			continue
		}
		target := term.A
		for j := 0; j <= i; j++ {
			if fn.Blocks[j].Label == target {
				l := loop{headerBlk: fn.Blocks[j]}
				l.blocks = append(l.blocks, fn.Blocks[j:i+1]...)
				loops = append(loops, l)
				break
			}
		}
	}
	return loops
}

func definedIn(blocks []*cfg.Block, sym *symtab.Symbol) bool {
	for _, blk := range blocks {
		for in := blk.First; ; in = in.Next {
			if dataflow.Def(in) == sym {
				return true
			}
			if in == blk.Last {
				break
			}
		}
	}
	return false
}

// isInvariant reports whether in's operands are all either defined
// outside the loop, or already marked invariant earlier in this same
// fixed-point pass (hoisted tracks the latter).
func isInvariant(in *tac.Instr, blocks []*cfg.Block, hoisted map[*symtab.Symbol]bool) bool {
	if !dataflow.IsSideEffectFree(in.Op) {
		return false
	}
	for _, u := range dataflow.Uses(in) {
		if definedIn(blocks, u) && !hoisted[u] {
			return false
		}
	}
	return true
}

// Run hoists loop-invariant, side-effect-free instructions out of
// every detected loop into a preheader inserted immediately before the
// loop header, returning the number of instructions hoisted.
func Run(ctx *tac.Context, l *optlog.Log) int {
	all := cfg.BuildAll(ctx)
	var lines []string
	count := 0

	for _, fn := range all.Functions {
		for _, lp := range findLoops(fn) {
			headerFirst := lp.headerBlk.First
			var toHoist []*tac.Instr
			hoisted := map[*symtab.Symbol]bool{}
			marked := map[*tac.Instr]bool{}

			for changed := true; changed; {
				changed = false
				for _, blk := range lp.blocks {
					for in := blk.First; ; in = in.Next {
						if !marked[in] && in.Op != tac.LABEL && in.Op != tac.BEGINFUNC &&
							isInvariant(in, lp.blocks, hoisted) {
							if d := dataflow.Def(in); d != nil && dataflow.IsTemp(d) && !hoisted[d] {
								toHoist = append(toHoist, in)
								hoisted[d] = true
								marked[in] = true
								changed = true
							}
						}
						if in == blk.Last {
							break
						}
					}
				}
			}

			for _, in := range toHoist {
				before := tac.Format(in)
				ctx.Detach(in)
				ctx.InsertBefore(headerFirst, in)
				lines = append(lines, fmt.Sprintf("hoisted: %s", before))
				count++
			}
		}
	}

	l.Record(optlog.LICM, lines, count)
	return count
}
