package copyprop

import (
	"testing"

	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// buildSimpleFunc lays out a single-block function body (LABEL,
// BEGINFUNC, ...emit..., RETURN, ENDFUNC) so cfg.BuildAll sees exactly
// one function with its statements in one basic block.
func buildSimpleFunc(ctx *tac.Context, syms *symtab.Table, name string, emit func()) {
	fn := &symtab.Symbol{Name: name, Kind: symtab.Func}
	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	emit()
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)
}

func TestRunPropagatesSimpleCopy(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	var addInstr *tac.Instr

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.COPY, a, syms.MkIntConst(5), nil)
		ctx.Emit(tac.COPY, b, a, nil)
		addInstr = ctx.Emit(tac.ADD, r, b, b)
		ctx.Emit(tac.RETURN, r, nil, nil)
	})

	count := Run(ctx, optlog.New())

	if count != 2 {
		t.Fatalf("Run() = %d, want 2 (both operands of r = b + b rewritten)", count)
	}
	if addInstr.B != a || addInstr.C != a {
		t.Fatalf("expected both operands rewritten to a, got B=%v C=%v", addInstr.B, addInstr.C)
	}
}

func TestRunStopsAtRedefinition(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	var useInstr *tac.Instr

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.COPY, b, a, nil)          // b = a
		ctx.Emit(tac.COPY, a, syms.MkIntConst(9), nil) // a redefined, kills b=a
		useInstr = ctx.Emit(tac.ADD, r, b, b)
		ctx.Emit(tac.RETURN, r, nil, nil)
	})

	count := Run(ctx, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0 (copy killed by redefinition of a)", count)
	}
	if useInstr.B != b || useInstr.C != b {
		t.Fatalf("expected operands left as b, got B=%v C=%v", useInstr.B, useInstr.C)
	}
}

func TestRunKillsCopiesOnCall(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	b := &symtab.Symbol{Name: "b", Kind: symtab.Var}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	fn := &symtab.Symbol{Name: "side_effect", Kind: symtab.Func}
	var useInstr *tac.Instr

	buildSimpleFunc(ctx, syms, "main", func() {
		ctx.Emit(tac.VAR, a, nil, nil)
		ctx.Emit(tac.VAR, b, nil, nil)
		ctx.Emit(tac.COPY, b, a, nil)
		ctx.Emit(tac.CALL, nil, fn, nil)
		useInstr = ctx.Emit(tac.COPY, r, b, nil)
		ctx.Emit(tac.RETURN, r, nil, nil)
	})

	count := Run(ctx, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0 (global side effect must clear copies)", count)
	}
	if useInstr.B != b {
		t.Fatalf("expected operand left as b, got %v", useInstr.B)
	}
}
