package lsr

import (
	"testing"

	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

func TestRunStrengthReducesInductionMultiply(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	i := &symtab.Symbol{Name: "i", Kind: symtab.Var}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	cond := &symtab.Symbol{Name: "cond", Kind: symtab.Var}
	ten := syms.MkIntConst(10)
	one := syms.MkIntConst(1)
	four := syms.MkIntConst(4)
	lheader := &symtab.Symbol{Name: "Lheader", Kind: symtab.Label}
	lend := &symtab.Symbol{Name: "Lend", Kind: symtab.Label}

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, i, nil, nil)
	ctx.Emit(tac.VAR, r, nil, nil)
	ctx.Emit(tac.COPY, i, syms.MkIntConst(0), nil)
	headerLabel := ctx.Emit(tac.LABEL, lheader, nil, nil)
	ctx.Emit(tac.LT, cond, i, ten)
	ctx.Emit(tac.IFZ, lend, cond, nil)
	mulInstr := ctx.Emit(tac.MUL, r, i, four)
	incInstr := ctx.Emit(tac.ADD, i, i, one)
	ctx.Emit(tac.GOTO, lheader, nil, nil)
	ctx.Emit(tac.LABEL, lend, nil, nil)
	ctx.Emit(tac.RETURN, r, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	count := Run(ctx, syms, optlog.New())

	if count != 1 {
		t.Fatalf("Run() = %d, want 1", count)
	}
	if mulInstr.Op != tac.COPY {
		t.Fatalf("expected the multiply rewritten to a copy, got %v", mulInstr.Op)
	}
	temp := mulInstr.B
	if temp == nil {
		t.Fatal("expected the copy's source to be the new additive temp")
	}

	preheaderInit := headerLabel.Prev
	if preheaderInit == nil || preheaderInit.Op != tac.MUL || preheaderInit.A != temp || preheaderInit.B != i || preheaderInit.C != four {
		t.Fatalf("expected a preheader init t = i * 4 immediately before the header, got %+v", preheaderInit)
	}

	stepInstr := incInstr.Next
	if stepInstr == nil || stepInstr.Op != tac.ADD || stepInstr.A != temp || stepInstr.B != temp {
		t.Fatalf("expected an additive step t = t + step*4 right after the induction increment, got %+v", stepInstr)
	}
	if stepInstr.C == nil || stepInstr.C.IntValue != 4 {
		t.Fatalf("expected the step constant to be step*4 = 4, got %v", stepInstr.C)
	}
}

func TestRunIgnoresNonInductionMultiply(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	i := &symtab.Symbol{Name: "i", Kind: symtab.Var}
	x := &symtab.Symbol{Name: "x", Kind: symtab.Var}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	cond := &symtab.Symbol{Name: "cond", Kind: symtab.Var}
	ten := syms.MkIntConst(10)
	one := syms.MkIntConst(1)
	lheader := &symtab.Symbol{Name: "Lheader", Kind: symtab.Label}
	lend := &symtab.Symbol{Name: "Lend", Kind: symtab.Label}

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, i, nil, nil)
	ctx.Emit(tac.VAR, x, nil, nil)
	ctx.Emit(tac.VAR, r, nil, nil)
	ctx.Emit(tac.LABEL, lheader, nil, nil)
	ctx.Emit(tac.LT, cond, i, ten)
	ctx.Emit(tac.IFZ, lend, cond, nil)
	mulInstr := ctx.Emit(tac.MUL, r, x, x) // no induction variable involved
	ctx.Emit(tac.ADD, i, i, one)
	ctx.Emit(tac.GOTO, lheader, nil, nil)
	ctx.Emit(tac.LABEL, lend, nil, nil)
	ctx.Emit(tac.RETURN, r, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	count := Run(ctx, syms, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0", count)
	}
	if mulInstr.Op != tac.MUL {
		t.Fatalf("expected MUL left unchanged, got %v", mulInstr.Op)
	}
}
