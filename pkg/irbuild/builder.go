// Package irbuild is the IR builder: it turns declarations and
// expression/statement trees into TAC instructions, using symbol-table
// lookups and the type model for layout decisions. The access-path
// engine (accesspath.go) is the part of the builder responsible for
// linearizing field/index chains (a.b[i].c) into address arithmetic.
//
// Grounded throughout on original_source/Function/tac.c's
// do_assign/do_bin/do_cmp/do_un/do_addr/do_deref/do_store/
// do_array_address/do_call/do_if/do_while/mk_tmp, generalized per
// spec §9's redesign notes: state threads through a *Builder value
// instead of process globals, and temporaries/labels are allocated
// through tac.Context rather than raw pointer arithmetic.
package irbuild

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/ctypes"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// Builder accumulates TAC for one translation unit.
type Builder struct {
	Ctx  *tac.Context
	Syms *symtab.Table

	structs map[string]*ctypes.StructBuilder
	finals  map[string]ctypes.Tstruct

	curFunc *symtab.Symbol
}

// New returns a Builder over a fresh instruction list and symbol
// table.
func New() *Builder {
	syms := symtab.New()
	return &Builder{
		Ctx:     tac.NewContext(syms),
		Syms:    syms,
		structs: make(map[string]*ctypes.StructBuilder),
		finals:  make(map[string]ctypes.Tstruct),
	}
}

// DeclError reports a user-facing declaration problem (redeclaration,
// unknown type, etc.) — the CLI's outermost layer turns this into a
// fatal exit per spec §7; nothing internal to the builder panics or
// os.Exits directly (spec §9's result-style-errors redesign note).
type DeclError struct {
	Message string
}

func (e *DeclError) Error() string { return e.Message }

// BeginStruct registers (or reopens) a struct name for incremental
// field declaration, matching type_struct_begin's forward-declare
// support (needed for self-referential pointer fields).
func (b *Builder) BeginStruct(name string) *ctypes.StructBuilder {
	if sb, ok := b.structs[name]; ok {
		return sb
	}
	sb := ctypes.NewStructBuilder(name)
	b.structs[name] = sb
	return sb
}

// FinishStruct freezes a struct's layout and makes it resolvable by
// name for subsequent variable declarations.
func (b *Builder) FinishStruct(name string) ctypes.Tstruct {
	sb := b.structs[name]
	t := sb.Finalize()
	b.finals[name] = t
	return t
}

// LookupStruct resolves a previously finished struct type by name.
func (b *Builder) LookupStruct(name string) (ctypes.Tstruct, bool) {
	t, ok := b.finals[name]
	return t, ok
}

// DeclareVar declares a local variable, erroring on redeclaration
// within the current function (the chain-insert-at-head lookup only
// needs to check the local chain, matching mk_var_with_type's
// scope-aware redeclaration check), and emits its VAR instruction.
func (b *Builder) DeclareVar(nm string, t ctypes.Type) (*symtab.Symbol, error) {
	if b.Syms.LookupLocal(nm) != nil {
		return nil, &DeclError{Message: fmt.Sprintf("redeclaration of %q", nm)}
	}
	sym := &symtab.Symbol{Name: nm, Kind: symtab.Var, Type: t}
	b.Syms.InsertLocal(sym)
	b.Ctx.Emit(tac.VAR, sym, nil, nil)
	return sym, nil
}

// DeclareGlobalVar declares a file-scope variable (no VAR instruction
// is emitted for globals — mini-C's back-end contract reserves static
// storage for them directly, matching the original's handling of
// top-level declarations outside any function).
func (b *Builder) DeclareGlobalVar(nm string, t ctypes.Type) (*symtab.Symbol, error) {
	if b.Syms.Lookup(nm) != nil {
		return nil, &DeclError{Message: fmt.Sprintf("redeclaration of %q", nm)}
	}
	sym := &symtab.Symbol{Name: nm, Kind: symtab.Var, Type: t}
	b.Syms.InsertGlobal(sym)
	return sym, nil
}

// DeclareFunc registers a function symbol (redeclaring with a
// different arity is an error, matching declare_func's reuse/conflict
// handling).
func (b *Builder) DeclareFunc(nm string, numParams int, ret ctypes.Type) (*symtab.Symbol, error) {
	if existing := b.Syms.Lookup(nm); existing != nil {
		if existing.Kind != symtab.Func {
			return nil, &DeclError{Message: fmt.Sprintf("%q redeclared as a different kind of symbol", nm)}
		}
		if existing.NumParams != numParams {
			return nil, &DeclError{Message: fmt.Sprintf("conflicting declaration of %q", nm)}
		}
		return existing, nil
	}
	sym := &symtab.Symbol{Name: nm, Kind: symtab.Func, Type: ret, NumParams: numParams}
	b.Syms.InsertGlobal(sym)
	return sym, nil
}

// BeginFunction emits the LABEL+BEGINFUNC pair and clears the local
// symbol chain for a fresh function scope.
func (b *Builder) BeginFunction(fn *symtab.Symbol) {
	b.Syms.ClearLocal()
	b.Ctx.Emit(tac.LABEL, fn, nil, nil)
	b.Ctx.Emit(tac.BEGINFUNC, nil, nil, nil)
	b.curFunc = fn
}

// DeclareFormal declares a parameter as a local variable and emits its
// FORMAL instruction.
func (b *Builder) DeclareFormal(nm string, t ctypes.Type) (*symtab.Symbol, error) {
	if b.Syms.LookupLocal(nm) != nil {
		return nil, &DeclError{Message: fmt.Sprintf("redeclaration of parameter %q", nm)}
	}
	sym := &symtab.Symbol{Name: nm, Kind: symtab.Var, Type: t}
	b.Syms.InsertLocal(sym)
	b.Ctx.Emit(tac.FORMAL, sym, nil, nil)
	return sym, nil
}

// EndFunction emits ENDFUNC.
func (b *Builder) EndFunction() {
	b.Ctx.Emit(tac.ENDFUNC, nil, nil, nil)
	b.curFunc = nil
}

// NewTemp allocates a fresh "t<N>" compiler temporary of type t,
// declares it (emitting its VAR instruction like any other local),
// and returns its symbol.
func (b *Builder) NewTemp(t ctypes.Type) *symtab.Symbol {
	sym := &symtab.Symbol{Kind: symtab.Var, Type: t}
	sym.Name = b.Ctx.NewTempName()
	b.Syms.InsertLocal(sym)
	b.Ctx.Emit(tac.VAR, sym, nil, nil)
	return sym
}

// GetVar resolves a name to its declared variable/function symbol.
func (b *Builder) GetVar(nm string) (*symtab.Symbol, error) {
	s := b.Syms.Lookup(nm)
	if s == nil {
		return nil, &DeclError{Message: fmt.Sprintf("undeclared identifier %q", nm)}
	}
	return s, nil
}

// isComparison reports whether a binary TAC opcode is a comparison
// (result type is always int, the truth-value convention) rather than
// arithmetic.
func isComparison(op tac.Op) bool {
	switch op {
	case tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE:
		return true
	default:
		return false
	}
}

// BinOp emits a binary arithmetic or comparison instruction, matching
// do_bin/do_cmp: a fresh temp holds the result, typed int for
// comparisons and for arithmetic (mini-C's only arithmetic type once
// chars are promoted).
//
// Unlike tac.c's do_bin, no inline constant folding happens here — the
// original leaves its own constant-fold shortcut commented out and
// defers all folding to the constfold pass (spec §4.4), and this
// builder follows the same split of concerns.
func (b *Builder) BinOp(op tac.Op, lhs, rhs *symtab.Symbol) *symtab.Symbol {
	result := b.NewTemp(ctypes.Int())
	b.Ctx.Emit(op, result, lhs, rhs)
	return result
}

// UnOp emits NEG.
func (b *Builder) UnOp(op tac.Op, operand *symtab.Symbol) *symtab.Symbol {
	result := b.NewTemp(ctypes.Int())
	b.Ctx.Emit(op, result, operand, nil)
	return result
}

// Input/Output emit the INPUT/OUTPUT statements.
func (b *Builder) Input(dst *symtab.Symbol) {
	b.Ctx.Emit(tac.INPUT, dst, nil, nil)
}

func (b *Builder) Output(v *symtab.Symbol) {
	b.Ctx.Emit(tac.OUTPUT, v, nil, nil)
}

// Call emits one ACTUAL per argument followed by CALL, matching
// do_call/do_call_ret. Unlike the original (which smuggles the callee
// name through an unsafe cast into the TAC's SYM* slot, flagged in
// spec §9 as needing a proper symbol reference), CALL's B operand here
// is simply the callee's *symtab.Symbol directly.
func (b *Builder) Call(fn *symtab.Symbol, args []*symtab.Symbol, voidCall bool) *symtab.Symbol {
	var result *symtab.Symbol
	if !voidCall {
		result = b.NewTemp(fn.Type)
	}
	for _, a := range args {
		b.Ctx.Emit(tac.ACTUAL, a, nil, nil)
	}
	b.Ctx.Emit(tac.CALL, result, fn, nil)
	return result
}

// Return emits RETURN, with or without a value.
func (b *Builder) Return(v *symtab.Symbol) {
	b.Ctx.Emit(tac.RETURN, v, nil, nil)
}

// NewLabel allocates and returns a fresh label symbol (mk_lstr's
// "L<id>" naming).
func (b *Builder) NewLabel() *symtab.Symbol {
	return &symtab.Symbol{Name: b.Ctx.NewLabelName(), Kind: symtab.Label}
}

// EmitLabel places a label at the current position.
func (b *Builder) EmitLabel(l *symtab.Symbol) {
	b.Ctx.Emit(tac.LABEL, l, nil, nil)
}

// EmitGoto emits an unconditional jump.
func (b *Builder) EmitGoto(l *symtab.Symbol) {
	b.Ctx.Emit(tac.GOTO, l, nil, nil)
}

// EmitIfz emits "ifz cond goto l" (do_test's condition-driven branch).
func (b *Builder) EmitIfz(cond *symtab.Symbol, l *symtab.Symbol) {
	b.Ctx.Emit(tac.IFZ, l, cond, nil)
}

