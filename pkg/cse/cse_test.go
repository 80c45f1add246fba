package cse

import (
	"testing"

	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

func buildSimpleFunc(ctx *tac.Context, syms *symtab.Table, name string, emit func()) {
	fn := &symtab.Symbol{Name: name, Kind: symtab.Func}
	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	emit()
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)
}

func TestRunEliminatesRedundantComputation(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r1 := &symtab.Symbol{Name: "r1", Kind: symtab.Var}
	r2 := &symtab.Symbol{Name: "r2", Kind: symtab.Var}
	var second *tac.Instr

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.ADD, r1, a, b)
		second = ctx.Emit(tac.ADD, r2, a, b)
		ctx.Emit(tac.RETURN, r2, nil, nil)
	})

	count := Run(ctx, optlog.New())

	if count != 1 {
		t.Fatalf("Run() = %d, want 1", count)
	}
	if second.Op != tac.COPY || second.B != r1 {
		t.Fatalf("expected second ADD rewritten to copy of r1, got op=%v B=%v", second.Op, second.B)
	}
}

func TestRunInvalidatedByRedefinedOperand(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r1 := &symtab.Symbol{Name: "r1", Kind: symtab.Var}
	r2 := &symtab.Symbol{Name: "r2", Kind: symtab.Var}
	var second *tac.Instr

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.ADD, r1, a, b)
		ctx.Emit(tac.COPY, a, syms.MkIntConst(1), nil) // redefines a
		second = ctx.Emit(tac.ADD, r2, a, b)
		ctx.Emit(tac.RETURN, r2, nil, nil)
	})

	count := Run(ctx, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0 (operand redefined between the two adds)", count)
	}
	if second.Op != tac.ADD {
		t.Fatalf("expected second instruction left as ADD, got %v", second.Op)
	}
}

func TestRunIgnoresDifferentOperators(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r1 := &symtab.Symbol{Name: "r1", Kind: symtab.Var}
	r2 := &symtab.Symbol{Name: "r2", Kind: symtab.Var}

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.ADD, r1, a, b)
		ctx.Emit(tac.SUB, r2, a, b)
		ctx.Emit(tac.RETURN, r2, nil, nil)
	})

	count := Run(ctx, optlog.New())
	if count != 0 {
		t.Fatalf("Run() = %d, want 0 (ADD and SUB are different keys)", count)
	}
}
