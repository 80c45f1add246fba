package deadcode

import (
	"testing"

	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

func TestRunRemovesDeadComputation(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	dead := &symtab.Symbol{Name: "dead", Kind: symtab.Var}
	one := syms.MkIntConst(1)
	two := syms.MkIntConst(2)

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, a, nil, nil)
	ctx.Emit(tac.VAR, dead, nil, nil)
	deadInstr := ctx.Emit(tac.ADD, dead, one, two) // never used afterward
	ctx.Emit(tac.COPY, a, one, nil)
	ctx.Emit(tac.RETURN, a, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	count := Run(ctx, optlog.New())

	if count != 1 {
		t.Fatalf("Run() = %d, want 1", count)
	}
	if deadInstr.Prev != nil || deadInstr.Next != nil {
		t.Fatal("expected the dead instruction to be detached from the list")
	}
}

func TestRunKeepsLiveComputation(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	a := &symtab.Symbol{Name: "a", Kind: symtab.Var}
	one := syms.MkIntConst(1)

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, a, nil, nil)
	liveInstr := ctx.Emit(tac.COPY, a, one, nil)
	ctx.Emit(tac.RETURN, a, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	count := Run(ctx, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0", count)
	}
	if liveInstr.Op != tac.COPY {
		t.Fatal("expected the live copy to survive")
	}
}

func TestRunNeverRemovesVarOrFormal(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	unused := &symtab.Symbol{Name: "unused", Kind: symtab.Var}

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	varInstr := ctx.Emit(tac.VAR, unused, nil, nil)
	ctx.Emit(tac.RETURN, nil, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	Run(ctx, optlog.New())

	found := false
	for in := ctx.Head; in != nil; in = in.Next {
		if in == varInstr {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected the VAR declaration to remain in the list even though unused")
	}
}

func TestRunKeepsInstructionsWithGlobalSideEffects(t *testing.T) {
	syms := symtab.New()
	ctx := tac.NewContext(syms)

	fn := &symtab.Symbol{Name: "main", Kind: symtab.Func}
	r := &symtab.Symbol{Name: "r", Kind: symtab.Var}
	callee := &symtab.Symbol{Name: "f", Kind: symtab.Func}

	ctx.Emit(tac.LABEL, fn, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, r, nil, nil)
	callInstr := ctx.Emit(tac.CALL, r, callee, nil) // result unused, but CALL is a side effect
	ctx.Emit(tac.RETURN, nil, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	count := Run(ctx, optlog.New())

	if count != 0 {
		t.Fatalf("Run() = %d, want 0 (CALL is never side-effect-free)", count)
	}
	if callInstr.Op != tac.CALL {
		t.Fatal("expected the call instruction to survive even with an unused result")
	}
}
