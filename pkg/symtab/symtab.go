// Package symtab implements the mini-C symbol table: two singly-linked
// symbol chains (global and local-to-the-current-function), insert at
// head, linear-search lookup — matching
// original_source/Function/tac.c's insert_sym/lookup_sym exactly, with
// the teacher's map-based environment idiom (pkg/cminorgen's VarEnv)
// replaced by the chain structure the distilled spec calls for.
package symtab

import "github.com/mini-c/tacopt/pkg/ctypes"

// Kind classifies what a Symbol denotes.
type Kind int

const (
	Undef Kind = iota
	Var
	IntConst
	CharConst
	TextLiteral
	Func
	Label
)

func (k Kind) String() string {
	switch k {
	case Var:
		return "var"
	case IntConst:
		return "int-const"
	case CharConst:
		return "char-const"
	case TextLiteral:
		return "text-literal"
	case Func:
		return "func"
	case Label:
		return "label"
	default:
		return "undef"
	}
}

// Symbol is one entry in the symbol table: a variable, a canonicalized
// constant, a function, or a label.
type Symbol struct {
	Name string
	Kind Kind
	Type ctypes.Type

	// IntValue holds the constant's value for IntConst/CharConst.
	IntValue int32
	// Text holds the raw literal text for TextLiteral symbols.
	Text string

	// NumParams is set for Func symbols (used by the call-site arity
	// check the IR builder performs in do_call).
	NumParams int
}

type node struct {
	sym  *Symbol
	next *node
}

// Table is the symbol table: a global chain plus one local chain that
// is cleared at the start of each function, mirroring tac.c's two
// module-global chains (it carries no concurrency guarantees, per
// spec's single-threaded process-global model).
type Table struct {
	global *node
	local  *node

	intConsts  map[int32]*Symbol
	charConsts map[int32]*Symbol
	texts      map[string]*Symbol
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{
		intConsts:  make(map[int32]*Symbol),
		charConsts: make(map[int32]*Symbol),
		texts:      make(map[string]*Symbol),
	}
}

// InsertGlobal inserts sym at the head of the global chain.
func (t *Table) InsertGlobal(sym *Symbol) {
	t.global = &node{sym: sym, next: t.global}
}

// InsertLocal inserts sym at the head of the local (current-function)
// chain.
func (t *Table) InsertLocal(sym *Symbol) {
	t.local = &node{sym: sym, next: t.local}
}

// ClearLocal drops the entire local chain, called when a function's
// body finishes being built so the next function starts with an empty
// scope (mini-C has no nested block scoping beyond function scope).
func (t *Table) ClearLocal() {
	t.local = nil
}

// Lookup searches the local chain, then the global chain, returning
// the first match by name — exactly lookup_sym's scope order.
func (t *Table) Lookup(name string) *Symbol {
	for n := t.local; n != nil; n = n.next {
		if n.sym.Name == name {
			return n.sym
		}
	}
	for n := t.global; n != nil; n = n.next {
		if n.sym.Name == name {
			return n.sym
		}
	}
	return nil
}

// LookupLocal searches only the local chain — used to detect
// redeclaration of a variable within the current function, without
// masking a same-named global.
func (t *Table) LookupLocal(name string) *Symbol {
	for n := t.local; n != nil; n = n.next {
		if n.sym.Name == name {
			return n.sym
		}
	}
	return nil
}

// MkIntConst returns the canonical Symbol for an int constant, reusing
// a previously-minted symbol with the same value — matching tac.c's
// mk_int_const canonicalization by value.
func (t *Table) MkIntConst(value int32) *Symbol {
	if s, ok := t.intConsts[value]; ok {
		return s
	}
	s := &Symbol{Kind: IntConst, Type: ctypes.Int(), IntValue: value}
	s.Name = intConstName(value)
	t.intConsts[value] = s
	t.InsertGlobal(s)
	return s
}

// MkCharConst returns the canonical Symbol for a char constant.
func (t *Table) MkCharConst(value int32) *Symbol {
	if s, ok := t.charConsts[value]; ok {
		return s
	}
	s := &Symbol{Kind: CharConst, Type: ctypes.Char(), IntValue: value}
	s.Name = charConstName(value)
	t.charConsts[value] = s
	t.InsertGlobal(s)
	return s
}

// MkText returns the canonical Symbol for a string literal, keyed by
// its raw text (two identical string literals share one symbol).
func (t *Table) MkText(raw string) *Symbol {
	if s, ok := t.texts[raw]; ok {
		return s
	}
	s := &Symbol{Kind: TextLiteral, Type: ctypes.Pointer(ctypes.Char()), Text: raw}
	s.Name = raw
	t.texts[raw] = s
	t.InsertGlobal(s)
	return s
}

func intConstName(v int32) string {
	return itoa(v)
}

func charConstName(v int32) string {
	return "'" + string(rune(v)) + "'"
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
