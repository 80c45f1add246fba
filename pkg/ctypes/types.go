// Package ctypes defines the mini-C type system: int, char, pointers,
// fixed-size arrays, and structs. It mirrors CompCert's Ctypes.v in
// shape (a closed Type interface with one struct per variant) but is
// narrowed to the five kinds mini-C's front end can produce.
package ctypes

import "fmt"

// Type is the interface implemented by every mini-C type.
type Type interface {
	implType()
	String() string
	// Size returns the type's size in bytes, as laid out by the target.
	Size() int32
	// Align returns the type's required alignment in bytes.
	Align() int32
}

// Tint is the singleton 4-byte, 4-byte-aligned int type.
type Tint struct{}

// Tchar is the singleton 1-byte, 1-byte-aligned char type.
type Tchar struct{}

// Tpointer is a pointer to Elem. Size and alignment match Tint's,
// mini-C targets a 32-bit machine where pointers are machine words.
type Tpointer struct {
	Elem Type
}

// Tarray is a fixed-length array of Elem. Len is clamped to at least 1
// by NewArray (a declared array of length <= 0 is treated as length 1,
// matching original_source/Function/type.c's type_array).
type Tarray struct {
	Elem Type
	Len  int32
}

// Field is one member of a struct, with its byte offset from the
// struct's base already computed by StructBuilder.AddField.
type Field struct {
	Name   string
	Type   Type
	Offset int32
}

// Tstruct is a named struct type. Two Tstruct values are the same type
// iff their Name matches — mini-C has no anonymous/structural struct
// equality, only nominal, matching the original's struct registry.
type Tstruct struct {
	Name      string
	Fields    []Field
	size      int32
	alignment int32
}

func (Tint) implType()    {}
func (Tchar) implType()   {}
func (Tpointer) implType() {}
func (Tarray) implType()   {}
func (Tstruct) implType()  {}

func (Tint) String() string  { return "int" }
func (Tchar) String() string { return "char" }

func (t Tpointer) String() string {
	if t.Elem == nil {
		return "void *"
	}
	return t.Elem.String() + " *"
}

func (t Tarray) String() string {
	if t.Elem == nil {
		return fmt.Sprintf("?[%d]", t.Len)
	}
	return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Len)
}

func (t Tstruct) String() string {
	if t.Name == "" {
		return "struct <anonymous>"
	}
	return "struct " + t.Name
}

// Size/Align. Int and char are the base singletons; pointers are
// word-sized; arrays and structs compute from their elements/fields.

func (Tint) Size() int32  { return 4 }
func (Tint) Align() int32 { return 4 }

func (Tchar) Size() int32  { return 1 }
func (Tchar) Align() int32 { return 1 }

func (Tpointer) Size() int32  { return 4 }
func (Tpointer) Align() int32 { return 4 }

func (t Tarray) Size() int32 {
	if t.Elem == nil {
		return 0
	}
	// int64 intermediate, clamped to int32 max — matches type_array's
	// overflow clamp in the original (size_t * int can overflow on a
	// large declared array).
	total := int64(t.Elem.Size()) * int64(t.Len)
	if total > 0x7fffffff {
		return 0x7fffffff
	}
	return int32(total)
}

func (t Tarray) Align() int32 {
	if t.Elem == nil {
		return 1
	}
	return t.Elem.Align()
}

func (t Tstruct) Size() int32  { return t.size }
func (t Tstruct) Align() int32 { return t.alignment }

// Int and Char return the singleton int/char types.
func Int() Type  { return Tint{} }
func Char() Type { return Tchar{} }

// Pointer returns a pointer-to-elem type.
func Pointer(elem Type) Type { return Tpointer{Elem: elem} }

// NewArray returns an array type of elem with the given length, len
// clamped to >= 1 exactly as the original's type_array does (a mini-C
// array declarator can't express zero-length arrays).
func NewArray(elem Type, len int32) Type {
	if len <= 0 {
		len = 1
	}
	return Tarray{Elem: elem, Len: len}
}

// AlignTo rounds value up to the next multiple of align, mirroring
// original_source/Function/type.c's align_to.
func AlignTo(value, align int32) int32 {
	if align <= 1 {
		return value
	}
	return (value + align - 1) / align * align
}

// StructBuilder accumulates fields for a struct under construction,
// supporting the original's forward-declare/reopen pattern: a struct
// name can be registered with type_struct_begin before its fields are
// known (for self-referential pointers), fields added incrementally,
// then the layout is frozen by Finalize.
type StructBuilder struct {
	name   string
	fields []Field
	offset int32
	maxAlign int32
}

// NewStructBuilder begins a new, empty struct definition by name.
func NewStructBuilder(name string) *StructBuilder {
	return &StructBuilder{name: name, maxAlign: 1}
}

// AddField appends a field, computing its offset from the fields
// added so far via AlignTo, and widening the struct's overall
// alignment to the field's alignment if larger.
func (b *StructBuilder) AddField(name string, t Type) {
	align := t.Align()
	if align < 1 {
		align = 1
	}
	off := AlignTo(b.offset, align)
	b.fields = append(b.fields, Field{Name: name, Type: t, Offset: off})
	b.offset = off + t.Size()
	if align > b.maxAlign {
		b.maxAlign = align
	}
}

// Field looks up a previously added field by name.
func (b *StructBuilder) Field(name string) (Field, bool) {
	for _, f := range b.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Finalize rounds the running offset up to the struct's own max-field
// alignment (the struct's total size must be a multiple of its
// alignment so arrays of the struct lay out correctly) and returns the
// completed Tstruct.
func (b *StructBuilder) Finalize() Tstruct {
	size := AlignTo(b.offset, b.maxAlign)
	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)
	return Tstruct{Name: b.name, Fields: fields, size: size, alignment: b.maxAlign}
}

// Equal reports whether two types denote the same mini-C type. Structs
// compare nominally by name, matching the original's registry-by-name
// semantics.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tint:
		_, ok := b.(Tint)
		return ok
	case Tchar:
		_, ok := b.(Tchar)
		return ok
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Len == tb.Len && Equal(ta.Elem, tb.Elem)
	case Tstruct:
		tb, ok := b.(Tstruct)
		return ok && ta.Name == tb.Name
	}
	return false
}

// ElemType unwraps one level of array/pointer to return its element
// (or pointee) type, and nil for any other type, matching the
// original's type_elem_size traversal (used by the access-path engine when it needs the
// "pointee" of a pointer or the element of an array for stride
// computation).
func ElemType(t Type) Type {
	switch tt := t.(type) {
	case Tarray:
		return tt.Elem
	case Tpointer:
		return tt.Elem
	default:
		return nil
	}
}
