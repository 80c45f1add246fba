// Package dataflow holds the per-instruction helpers every
// optimization pass needs — which symbol an instruction defines, which
// it uses, and whether a symbol participates in dataflow at all — plus
// a Set abstraction for the bitset-shaped reaching/liveness lattices.
//
// original_source/Optimize/{copyprop,cse,licm,lsr,loopreduce,deadcode}.cpp
// each carry their own copy of is_tracked_symbol/tac_def_symbol/
// collect_uses with small, accidental drift between copies (spec §9
// explicitly calls this out and asks for one shared version instead).
// This package is that one shared version.
package dataflow

import (
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// IsTracked reports whether sym participates in dataflow analysis.
// Constants, text literals, functions, and labels carry no mutable
// value to track; only variables and compiler temporaries do.
//
// The original's is_tracked_symbol switch excludes SYM_INT/SYM_TEXT/
// SYM_FUNC/SYM_LABEL but falls through to "tracked" for SYM_CHAR,
// which looks like an oversight: every other description of dataflow
// in the spec groups "constants" together without carving out char
// constants, and a char constant is exactly as immutable as an int
// constant. This implementation excludes CharConst too.
func IsTracked(sym *symtab.Symbol) bool {
	if sym == nil {
		return false
	}
	switch sym.Kind {
	case symtab.IntConst, symtab.CharConst, symtab.TextLiteral, symtab.Func, symtab.Label:
		return false
	default:
		return true
	}
}

// IsTemp reports whether sym is a compiler-generated temporary (name
// starts with 't'), the LICM/LSR hoisting eligibility test.
func IsTemp(sym *symtab.Symbol) bool {
	return sym != nil && len(sym.Name) > 0 && sym.Name[0] == 't'
}

// Def returns the symbol an instruction defines, or nil if it defines
// none.
func Def(in *tac.Instr) *symtab.Symbol {
	if in == nil {
		return nil
	}
	switch in.Op {
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV,
		tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE,
		tac.NEG, tac.COPY, tac.INPUT, tac.CALL, tac.VAR, tac.FORMAL,
		tac.ADDR, tac.LOAD:
		return in.A
	default:
		return nil
	}
}

// Uses returns the symbols an instruction reads, tracked operands
// only. Order matches operand order (B before C) for deterministic
// logging.
func Uses(in *tac.Instr) []*symtab.Symbol {
	if in == nil {
		return nil
	}
	var out []*symtab.Symbol
	add := func(s *symtab.Symbol) {
		if IsTracked(s) {
			out = append(out, s)
		}
	}
	switch in.Op {
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV,
		tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE:
		add(in.B)
		add(in.C)
	case tac.NEG, tac.COPY, tac.LOAD:
		add(in.B)
	case tac.IFZ:
		add(in.B)
	case tac.ACTUAL, tac.RETURN, tac.OUTPUT:
		add(in.A)
	case tac.STORE:
		add(in.A)
		add(in.B)
	}
	return out
}

// IsSideEffectFree reports whether removing in (when its def is not
// live) has no observable effect beyond the value it computes — the
// basis for both LICM candidacy and dead-code elimination.
func IsSideEffectFree(op tac.Op) bool {
	switch op {
	case tac.ADD, tac.SUB, tac.MUL, tac.DIV,
		tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE,
		tac.NEG, tac.COPY:
		return true
	default:
		return false
	}
}

// IsGlobalSideEffect reports whether in can affect memory/state
// outside the tracked symbol set (a call or a read from outside the
// program), which forces a dataflow fact to be killed outright.
func IsGlobalSideEffect(in *tac.Instr) bool {
	if in == nil {
		return false
	}
	switch in.Op {
	case tac.CALL, tac.INPUT:
		return true
	default:
		return false
	}
}

// Set is a symbol-keyed set, the bitset abstraction every reaching/
// liveness lattice in this module is built on — adapted from
// pkg/regalloc's RegSet (NewRegSet/Add/Contains/Union/Minus), rekeyed
// from physical registers to tracked *symtab.Symbol.
type Set map[*symtab.Symbol]struct{}

// NewSet returns an empty Set.
func NewSet() Set { return make(Set) }

// Add inserts sym into the set.
func (s Set) Add(sym *symtab.Symbol) { s[sym] = struct{}{} }

// Remove deletes sym from the set.
func (s Set) Remove(sym *symtab.Symbol) { delete(s, sym) }

// Contains reports whether sym is in the set.
func (s Set) Contains(sym *symtab.Symbol) bool {
	_, ok := s[sym]
	return ok
}

// Union returns a new set containing every element of s and other.
func (s Set) Union(other Set) Set {
	out := NewSet()
	for k := range s {
		out.Add(k)
	}
	for k := range other {
		out.Add(k)
	}
	return out
}

// Minus returns a new set containing s's elements not in other.
func (s Set) Minus(other Set) Set {
	out := NewSet()
	for k := range s {
		if !other.Contains(k) {
			out.Add(k)
		}
	}
	return out
}

// Equal reports whether s and other contain exactly the same symbols
// — used to detect a real fixpoint change rather than flipping on
// every iteration regardless of content (matches the original's
// assign_set "set-equality-aware assignment").
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
