package symtab

import (
	"testing"

	"github.com/mini-c/tacopt/pkg/ctypes"
)

func TestLookupPrefersLocalOverGlobal(t *testing.T) {
	tab := New()
	g := &Symbol{Name: "x", Kind: Var, Type: ctypes.Int()}
	tab.InsertGlobal(g)

	l := &Symbol{Name: "x", Kind: Var, Type: ctypes.Char()}
	tab.InsertLocal(l)

	got := tab.Lookup("x")
	if got != l {
		t.Fatalf("Lookup(x) = %v, want local symbol %v", got, l)
	}
}

func TestLookupFallsBackToGlobal(t *testing.T) {
	tab := New()
	g := &Symbol{Name: "y", Kind: Var, Type: ctypes.Int()}
	tab.InsertGlobal(g)

	if got := tab.Lookup("y"); got != g {
		t.Fatalf("Lookup(y) = %v, want %v", got, g)
	}
}

func TestClearLocalDropsOnlyLocalChain(t *testing.T) {
	tab := New()
	g := &Symbol{Name: "x", Kind: Var}
	tab.InsertGlobal(g)
	tab.InsertLocal(&Symbol{Name: "tmp", Kind: Var})

	tab.ClearLocal()

	if tab.LookupLocal("tmp") != nil {
		t.Fatal("expected local chain cleared")
	}
	if tab.Lookup("x") != g {
		t.Fatal("expected global chain to survive ClearLocal")
	}
}

func TestMkIntConstCanonicalizes(t *testing.T) {
	tab := New()
	a := tab.MkIntConst(42)
	b := tab.MkIntConst(42)
	c := tab.MkIntConst(7)

	if a != b {
		t.Error("MkIntConst(42) called twice should return the same symbol")
	}
	if a == c {
		t.Error("MkIntConst with different values should return different symbols")
	}
	if a.Kind != IntConst || a.IntValue != 42 {
		t.Errorf("unexpected symbol %+v", a)
	}
}

func TestMkCharConstCanonicalizes(t *testing.T) {
	tab := New()
	a := tab.MkCharConst('a')
	b := tab.MkCharConst('a')
	if a != b {
		t.Error("MkCharConst('a') called twice should return the same symbol")
	}
}

func TestMkTextCanonicalizesByRawText(t *testing.T) {
	tab := New()
	a := tab.MkText("hello")
	b := tab.MkText("hello")
	c := tab.MkText("world")
	if a != b {
		t.Error("identical text literals should share a symbol")
	}
	if a == c {
		t.Error("distinct text literals should not share a symbol")
	}
}
