package cfg

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// buildIfProgram builds:
//
//	main:
//	beginfunc
//	var x
//	ifz x goto L_else
//	output x
//	goto L_end
//	L_else:
//	output x
//	L_end:
//	endfunc
func buildIfProgram(t *testing.T) *tac.Context {
	t.Helper()
	st := symtab.New()
	ctx := tac.NewContext(st)

	mainLbl := &symtab.Symbol{Name: "main", Kind: symtab.Label}
	x := &symtab.Symbol{Name: "x", Kind: symtab.Var}
	elseLbl := &symtab.Symbol{Name: "L_else", Kind: symtab.Label}
	endLbl := &symtab.Symbol{Name: "L_end", Kind: symtab.Label}

	ctx.Emit(tac.LABEL, mainLbl, nil, nil)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.VAR, x, nil, nil)
	ctx.Emit(tac.IFZ, elseLbl, x, nil)
	ctx.Emit(tac.OUTPUT, x, nil, nil)
	ctx.Emit(tac.GOTO, endLbl, nil, nil)
	ctx.Emit(tac.LABEL, elseLbl, nil, nil)
	ctx.Emit(tac.OUTPUT, x, nil, nil)
	ctx.Emit(tac.LABEL, endLbl, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	return ctx
}

func TestBuildAllFunctionName(t *testing.T) {
	ctx := buildIfProgram(t)
	all := BuildAll(ctx)

	if len(all.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(all.Functions))
	}
	if all.Functions[0].Name != "main" {
		t.Errorf("function name = %q, want main", all.Functions[0].Name)
	}
}

func TestBuildAllAnonymousWhenNoPrecedingLabel(t *testing.T) {
	st := symtab.New()
	ctx := tac.NewContext(st)
	ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	ctx.Emit(tac.RETURN, nil, nil, nil)
	ctx.Emit(tac.ENDFUNC, nil, nil, nil)

	all := BuildAll(ctx)
	if all.Functions[0].Name != "<anon>" {
		t.Errorf("expected <anon>, got %q", all.Functions[0].Name)
	}
}

func TestIfzBlockHasTwoSuccessors(t *testing.T) {
	ctx := buildIfProgram(t)
	all := BuildAll(ctx)
	fn := all.Functions[0]

	var ifzBlock *Block
	for _, b := range fn.Blocks {
		if b.Last.Op == tac.IFZ {
			ifzBlock = b
		}
	}
	if ifzBlock == nil {
		t.Fatal("no block ending in IFZ found")
	}
	if len(ifzBlock.Succ) != 2 {
		t.Fatalf("IFZ block should have 2 successors (label target + fallthrough), got %d", len(ifzBlock.Succ))
	}
}

func TestReturnAndEndfuncHaveNoSuccessors(t *testing.T) {
	ctx := buildIfProgram(t)
	all := BuildAll(ctx)
	fn := all.Functions[0]

	last := fn.Blocks[len(fn.Blocks)-1]
	if last.Last.Op != tac.ENDFUNC {
		t.Fatalf("expected last block to end in ENDFUNC, got %v", last.Last.Op)
	}
	if len(last.Succ) != 0 {
		t.Errorf("ENDFUNC block should have no successors, got %d", len(last.Succ))
	}
}

func TestPredecessorsBuiltInLockstep(t *testing.T) {
	ctx := buildIfProgram(t)
	all := BuildAll(ctx)
	fn := all.Functions[0]

	for _, b := range fn.Blocks {
		for _, s := range b.Succ {
			found := false
			for _, p := range s.Pred {
				if p == b {
					found = true
				}
			}
			if !found {
				t.Errorf("block %d -> %d edge missing matching predecessor link", b.ID, s.ID)
			}
		}
	}
}

func TestPrintAllFormat(t *testing.T) {
	ctx := buildIfProgram(t)
	all := BuildAll(ctx)

	var sb strings.Builder
	PrintAll(&sb, all, func(w io.Writer, in *tac.Instr) {
		fmt.Fprint(w, tac.Format(in))
	})
	out := sb.String()

	if !strings.HasPrefix(out, "# cfg\n") {
		t.Errorf("expected leading '# cfg' header, got %q", out[:20])
	}
	if !strings.Contains(out, "## Function main\n") {
		t.Errorf("missing function header, got %q", out)
	}
	if !strings.Contains(out, "B0:\n") && !strings.Contains(out, "B0 [") {
		t.Errorf("missing block 0 header, got %q", out)
	}
	if !strings.Contains(out, "succ:") {
		t.Errorf("missing successor line, got %q", out)
	}
}
