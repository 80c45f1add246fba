// Package constfold implements the constant-folding optimization pass:
// arithmetic/comparison instructions whose operands are both constants
// are replaced by a COPY of the computed constant, and a handful of
// algebraic identities (x+0, x*1, x*0, x-0) fold even when only one
// side is constant. An IFZ on a constant becomes a GOTO when the
// constant is zero and is removed otherwise.
//
// Grounded on original_source/Optimize/constfold.cpp's constfold_run.
package constfold

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

func constVal(s *symtab.Symbol) (int32, bool) {
	if s == nil {
		return 0, false
	}
	if s.Kind == symtab.IntConst || s.Kind == symtab.CharConst {
		return s.IntValue, true
	}
	return 0, false
}

func evalArith(op tac.Op, a, b int32) (int32, bool) {
	switch op {
	case tac.ADD:
		return a + b, true
	case tac.SUB:
		return a - b, true
	case tac.MUL:
		return a * b, true
	case tac.DIV:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case tac.EQ:
		return boolInt(a == b), true
	case tac.NE:
		return boolInt(a != b), true
	case tac.LT:
		return boolInt(a < b), true
	case tac.LE:
		return boolInt(a <= b), true
	case tac.GT:
		return boolInt(a > b), true
	case tac.GE:
		return boolInt(a >= b), true
	default:
		return 0, false
	}
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// Run performs one pass over ctx's instruction list, folding every
// constant-foldable instruction it finds, and logging each fold to l
// under optlog.ConstFold. It returns the number of folds performed —
// the fixed-point driver (pkg/optimize) keeps calling Run while this
// is nonzero.
func Run(ctx *tac.Context, syms *symtab.Table, l *optlog.Log) int {
	var lines []string
	count := 0

	var next *tac.Instr
	for in := ctx.Head; in != nil; in = next {
		next = in.Next
		switch in.Op {
		case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE:
			if folded := tryFold(syms, in); folded != "" {
				lines = append(lines, folded)
				count++
			}
		case tac.NEG:
			if v, ok := constVal(in.B); ok {
				before := tac.Format(in)
				newConst := syms.MkIntConst(-v)
				in.Op = tac.COPY
				in.B = newConst
				in.C = nil
				lines = append(lines, fmt.Sprintf("%s -> %s", before, tac.Format(in)))
				count++
			}
		case tac.IFZ:
			if v, ok := constVal(in.B); ok {
				before := tac.Format(in)
				if v == 0 {
					in.Op, in.B = tac.GOTO, nil
					lines = append(lines, fmt.Sprintf("%s -> %s", before, tac.Format(in)))
				} else {
					ctx.Detach(in)
					lines = append(lines, fmt.Sprintf("%s -> removed", before))
				}
				count++
			}
		}
	}

	l.Record(optlog.ConstFold, lines, count)
	return count
}

// tryFold attempts to fold one arithmetic/comparison instruction,
// either by full constant evaluation or by an algebraic identity
// (x+0 -> x, x*1 -> x, x*0 -> 0, x-0 -> x, 0+x -> x), returning the
// before->after rendering if a fold happened, or "" otherwise.
func tryFold(syms *symtab.Table, in *tac.Instr) string {
	bv, bok := constVal(in.B)
	cv, cok := constVal(in.C)
	before := tac.Format(in)

	if bok && cok {
		result, ok := evalArith(in.Op, bv, cv)
		if !ok {
			return ""
		}
		in.Op = tac.COPY
		in.B = syms.MkIntConst(result)
		in.C = nil
		return fmt.Sprintf("%s -> %s", before, tac.Format(in))
	}

	switch in.Op {
	case tac.ADD:
		if bok && bv == 0 {
			in.Op, in.B, in.C = tac.COPY, in.C, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
		if cok && cv == 0 {
			in.Op, in.C = tac.COPY, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
	case tac.SUB:
		if cok && cv == 0 {
			in.Op, in.C = tac.COPY, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
	case tac.MUL:
		if (bok && bv == 0) || (cok && cv == 0) {
			in.Op, in.B, in.C = tac.COPY, syms.MkIntConst(0), nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
		if bok && bv == 1 {
			in.Op, in.B, in.C = tac.COPY, in.C, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
		if cok && cv == 1 {
			in.Op, in.C = tac.COPY, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
	case tac.DIV:
		if cok && cv == 1 {
			in.Op, in.C = tac.COPY, nil
			return fmt.Sprintf("%s -> %s", before, tac.Format(in))
		}
	}
	return ""
}
