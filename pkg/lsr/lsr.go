// Package lsr implements induction-variable strength reduction: inside
// a loop, a multiplication of a loop-incremented induction variable by
// a constant (i * c, where i is updated each iteration by i = i + step)
// is replaced by an additively-maintained temporary stepped by
// step*c — trading one MUL per iteration for one ADD.
//
// Grounded on original_source/Optimize/lsr.cpp's lsr_run. The original
// binary never actually calls this pass (see DESIGN.md) despite it
// being fully implemented and declared in the OPT_PASS enum; this
// port wires it into the fixed-point driver since the spec describes
// it as an active pass.
package lsr

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/dataflow"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

type induction struct {
	iv       *symtab.Symbol
	step     int32
	incInstr *tac.Instr
}

func findInductions(blocks []*cfg.Block) []induction {
	var out []induction
	for _, blk := range blocks {
		for in := blk.First; ; in = in.Next {
			if in.Op == tac.ADD && in.A == in.B && dataflow.IsTracked(in.A) {
				if in.C != nil && (in.C.Kind == symtab.IntConst || in.C.Kind == symtab.CharConst) {
					out = append(out, induction{iv: in.A, step: in.C.IntValue, incInstr: in})
				}
			}
			if in == blk.Last {
				break
			}
		}
	}
	return out
}

func findLoopBlocks(fn *cfg.Function) [][]*cfg.Block {
	var loops [][]*cfg.Block
	for i, blk := range fn.Blocks {
		term := blk.Last
		if term.Op != tac.GOTO && term.Op != tac.IFZ {
			continue
		}
		for j := 0; j <= i; j++ {
			if fn.Blocks[j].Label == term.A {
				loops = append(loops, fn.Blocks[j:i+1])
				break
			}
		}
	}
	return loops
}

// Run finds induction variables and strength-reduces their
// multiplications inside each loop, returning the number of
// reductions performed.
func Run(ctx *tac.Context, syms *symtab.Table, l *optlog.Log) int {
	all := cfg.BuildAll(ctx)
	var lines []string
	count := 0

	for _, fn := range all.Functions {
		for _, blocks := range findLoopBlocks(fn) {
			header := blocks[0]
			inductions := findInductions(blocks)

			for _, ind := range inductions {
				for _, blk := range blocks {
					for in := blk.First; ; in = in.Next {
						if in != ind.incInstr && in.Op == tac.MUL {
							var constOperand *symtab.Symbol
							if in.B == ind.iv && isConst(in.C) {
								constOperand = in.C
							} else if in.C == ind.iv && isConst(in.B) {
								constOperand = in.B
							}
							if constOperand != nil {
								before := tac.Format(in)
								t := newTemp(ctx, syms)

								preheaderInit := &tac.Instr{Op: tac.MUL, A: t, B: ind.iv, C: constOperand}
								ctx.InsertBefore(header.First, preheaderInit)

								stepConst := syms.MkIntConst(ind.step * constOperand.IntValue)
								stepInstr := &tac.Instr{Op: tac.ADD, A: t, B: t, C: stepConst}
								ctx.InsertAfter(ind.incInstr, stepInstr)

								in.Op = tac.COPY
								in.B = t
								in.C = nil
								lines = append(lines, fmt.Sprintf("%s -> %s (strength-reduced via %s)", before, tac.Format(in), t.Name))
								count++
							}
						}
						if in == blk.Last {
							break
						}
					}
				}
			}
		}
	}

	l.Record(optlog.LSR, lines, count)
	return count
}

func isConst(s *symtab.Symbol) bool {
	return s != nil && (s.Kind == symtab.IntConst || s.Kind == symtab.CharConst)
}

func newTemp(ctx *tac.Context, syms *symtab.Table) *symtab.Symbol {
	sym := &symtab.Symbol{Kind: symtab.Var}
	sym.Name = ctx.NewTempName()
	syms.InsertLocal(sym)
	return sym
}
