package irbuild

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/ctypes"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// Path describes an lvalue as a chain of field/index steps rooted at
// either a plain variable or an already-computed address (the latter
// is how dereferencing an arbitrary pointer expression — *(p+1) — is
// represented: there is no source variable to root the chain at, only
// a pointer value). Grounded on original_source/Function/tac.c's
// access_path_eval_internal, which walks exactly this shape one field
// or subscript at a time, folding zero-offset field accesses into a
// pure retype and only emitting address arithmetic once an offset is
// non-zero or an index is involved.
type Path struct {
	base     *symtab.Symbol
	baseType ctypes.Type
	// baseIsAddr is true when base already holds an address (the
	// dereference-of-an-expression case) rather than being the
	// variable itself.
	baseIsAddr bool
	steps      []step
}

type step struct {
	field string         // non-empty for a field-access step
	index *symtab.Symbol // non-nil for an index step
}

// NewPath roots an access path at a declared variable.
func NewPath(base *symtab.Symbol) *Path {
	return &Path{base: base, baseType: base.Type}
}

// FromAddress roots an access path at an already-computed address
// (e.g. the result of evaluating a pointer expression before
// dereferencing it), matching do_deref's handling of `*expr` where
// expr is not itself a variable.
func FromAddress(addr *symtab.Symbol, pointeeType ctypes.Type) *Path {
	return &Path{base: addr, baseType: pointeeType, baseIsAddr: true}
}

// Field appends a ".name" step.
func (p *Path) Field(name string) *Path {
	p.steps = append(p.steps, step{field: name})
	return p
}

// Index appends a "[idx]" step.
func (p *Path) Index(idx *symtab.Symbol) *Path {
	p.steps = append(p.steps, step{index: idx})
	return p
}

// PathError reports an access-path type error (indexing a non-array,
// taking a field of a non-struct, assigning to a struct/array value).
type PathError struct {
	Message string
}

func (e *PathError) Error() string { return e.Message }

// evalResult is the outcome of walking a Path: either a plain symbol
// holding the value directly (Direct == true, the no-steps-taken or
// all-zero-offset-field case) or a symbol holding the computed address
// of the location (Direct == false).
type evalResult struct {
	sym    *symtab.Symbol
	typ    ctypes.Type
	direct bool
}

// FieldType resolves a struct field's declared type by name — used by
// the front end to track an access path's running type across chained
// "." steps without needing to inspect the path's internal step list.
func (b *Builder) FieldType(t ctypes.Type, name string) (ctypes.Type, error) {
	f, err := b.lookupField(t, name)
	if err != nil {
		return nil, err
	}
	return f.Type, nil
}

// lookupField resolves a struct field by name via the builder's
// finalized-struct table.
func (b *Builder) lookupField(t ctypes.Type, name string) (ctypes.Field, error) {
	st, ok := t.(ctypes.Tstruct)
	if !ok {
		return ctypes.Field{}, &PathError{Message: fmt.Sprintf("field access %q on non-struct type %s", name, t)}
	}
	full, ok := b.finals[st.Name]
	if !ok {
		full = st
	}
	for _, f := range full.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return ctypes.Field{}, &PathError{Message: fmt.Sprintf("struct %s has no field %q", st.Name, name)}
}

// eval walks a Path's steps, materializing address arithmetic lazily:
// a run of zero-offset field steps costs no instructions at all (pure
// retyping of the same storage), and the first step that needs real
// offsetting triggers one ADDR to seed the address, after which every
// subsequent step is a single ADD against the running address symbol.
func (b *Builder) eval(p *Path) (*evalResult, error) {
	cur := p.base
	curType := p.baseType
	direct := !p.baseIsAddr
	addr := p.base // meaningful only once direct == false

	materializeAddr := func() {
		if !direct {
			return
		}
		a := b.NewTemp(ctypes.Pointer(curType))
		b.Ctx.Emit(tac.ADDR, a, cur, nil)
		addr = a
		direct = false
	}

	addOffset := func(offset *symtab.Symbol, resultType ctypes.Type) {
		materializeAddr()
		next := b.NewTemp(ctypes.Pointer(resultType))
		b.Ctx.Emit(tac.ADD, next, addr, offset)
		addr = next
	}

	for _, s := range p.steps {
		switch {
		case s.field != "":
			f, err := b.lookupField(curType, s.field)
			if err != nil {
				return nil, err
			}
			if f.Offset == 0 {
				// Pure retype: the field shares the struct's base
				// address, so no instruction is needed whether or not
				// an address has already been materialized.
				curType = f.Type
				continue
			}
			offSym := b.Syms.MkIntConst(f.Offset)
			addOffset(offSym, f.Type)
			curType = f.Type

		case s.index != nil:
			elemType := ctypes.ElemType(curType)
			if elemType == nil {
				return nil, &PathError{Message: fmt.Sprintf("indexing into non-array/pointer type %s", curType)}
			}
			stride := elemType.Size()
			var offSym *symtab.Symbol
			if stride == 1 {
				offSym = s.index
			} else {
				strideConst := b.Syms.MkIntConst(stride)
				offSym = b.NewTemp(ctypes.Int())
				b.Ctx.Emit(tac.MUL, offSym, s.index, strideConst)
			}
			// Pointers (unlike arrays) are themselves a stored value
			// that must be loaded before offsetting — p[i] means
			// *(p + i) where p's own value is an address, not a
			// struct-style embedded region.
			if _, isPtr := curType.(ctypes.Tpointer); isPtr && direct {
				loaded := b.NewTemp(curType)
				b.Ctx.Emit(tac.LOAD, loaded, cur, nil)
				addr = loaded
				direct = false
				next := b.NewTemp(ctypes.Pointer(elemType))
				b.Ctx.Emit(tac.ADD, next, addr, offSym)
				addr = next
			} else if _, isPtr := curType.(ctypes.Tpointer); isPtr {
				// Already holding the pointer's value as our running
				// address (e.g. chained p[i][j]); offset directly.
				next := b.NewTemp(ctypes.Pointer(elemType))
				b.Ctx.Emit(tac.ADD, next, addr, offSym)
				addr = next
			} else {
				addOffset(offSym, elemType)
			}
			curType = elemType
		}
	}

	if direct {
		return &evalResult{sym: cur, typ: curType, direct: true}, nil
	}
	return &evalResult{sym: addr, typ: curType, direct: false}, nil
}

// Load reads the value an access path denotes. A struct-typed result
// is always an error (mini-C has no struct-by-value operations beyond
// assignment of whole structs, which itself is out of scope — see
// SPEC_FULL.md's Non-goals); an array-typed result decays to a pointer
// to its first element without emitting LOAD, matching C's standard
// array-to-pointer decay and do_array_access's handling of a bare
// array name.
func (b *Builder) Load(p *Path) (*symtab.Symbol, ctypes.Type, error) {
	res, err := b.eval(p)
	if err != nil {
		return nil, nil, err
	}
	if _, isStruct := res.typ.(ctypes.Tstruct); isStruct {
		return nil, nil, &PathError{Message: "cannot load a struct value"}
	}
	if arr, isArr := res.typ.(ctypes.Tarray); isArr {
		decayed := ctypes.Pointer(arr.Elem)
		if res.direct {
			a := b.NewTemp(decayed)
			b.Ctx.Emit(tac.ADDR, a, res.sym, nil)
			return a, decayed, nil
		}
		return res.sym, decayed, nil
	}
	if res.direct {
		return res.sym, res.typ, nil
	}
	dst := b.NewTemp(res.typ)
	b.Ctx.Emit(tac.LOAD, dst, res.sym, nil)
	return dst, res.typ, nil
}

// Store writes value into the location an access path denotes.
func (b *Builder) Store(p *Path, value *symtab.Symbol) error {
	res, err := b.eval(p)
	if err != nil {
		return err
	}
	switch res.typ.(type) {
	case ctypes.Tstruct:
		return &PathError{Message: "cannot assign to a struct value"}
	case ctypes.Tarray:
		return &PathError{Message: "cannot assign to an array value"}
	}
	if res.direct {
		b.Ctx.Emit(tac.COPY, res.sym, value, nil)
		return nil
	}
	b.Ctx.Emit(tac.STORE, res.sym, value, nil)
	return nil
}

// Address computes "&path", matching do_addr: if the path's storage
// was reached directly (no offsetting needed), a fresh ADDR is emitted
// against the base symbol; otherwise the running address computed by
// eval already *is* the pointer value, so it's returned as-is.
func (b *Builder) Address(p *Path) (*symtab.Symbol, ctypes.Type, error) {
	res, err := b.eval(p)
	if err != nil {
		return nil, nil, err
	}
	ptrType := ctypes.Pointer(res.typ)
	if res.direct {
		a := b.NewTemp(ptrType)
		b.Ctx.Emit(tac.ADDR, a, res.sym, nil)
		return a, ptrType, nil
	}
	return res.sym, ptrType, nil
}
