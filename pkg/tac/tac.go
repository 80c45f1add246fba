// Package tac implements the three-address-code instruction model: a
// fixed 27-opcode instruction, a doubly-linked whole-program
// instruction list, and the splice primitives (Detach/InsertBefore/
// InsertAfter) every optimization pass builds on.
//
// original_source/Function/tac.c builds this list by a "join by last
// instruction, walk prev, patch next in a final pass" convention
// forced by its yacc grammar's bottom-up action ordering. Go's
// recursive-descent front end (internal/frontend) produces statements
// in natural left-to-right order, so Context here simplifies that to
// direct tail-append — every Instr's Prev/Next are valid as soon as
// it's emitted, with no separate finalization pass. The resulting
// list has the same shape and order an equivalent original program
// would produce.
package tac

import "github.com/mini-c/tacopt/pkg/symtab"

// Op is a TAC opcode.
type Op int

const (
	UNDEF Op = iota
	ADD
	SUB
	MUL
	DIV
	NEG
	EQ
	NE
	LT
	LE
	GT
	GE
	COPY
	ADDR
	LOAD
	STORE
	GOTO
	IFZ
	LABEL
	ACTUAL
	FORMAL
	CALL
	RETURN
	BEGINFUNC
	ENDFUNC
	VAR
	INPUT
	OUTPUT
)

var opNames = map[Op]string{
	UNDEF: "UNDEF", ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", NEG: "NEG",
	EQ: "EQ", NE: "NE", LT: "LT", LE: "LE", GT: "GT", GE: "GE",
	COPY: "COPY", ADDR: "ADDR", LOAD: "LOAD", STORE: "STORE",
	GOTO: "GOTO", IFZ: "IFZ", LABEL: "LABEL",
	ACTUAL: "ACTUAL", FORMAL: "FORMAL", CALL: "CALL", RETURN: "RETURN",
	BEGINFUNC: "BEGINFUNC", ENDFUNC: "ENDFUNC",
	VAR: "VAR", INPUT: "INPUT", OUTPUT: "OUTPUT",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "?"
}

// Instr is one three-address-code instruction. A, B, C hold up to
// three symbol operands whose meaning is opcode-dependent (see
// Def/Uses in pkg/dataflow for the canonical per-opcode operand
// reading shared by every optimization pass).
type Instr struct {
	Op   Op
	A, B, C *symtab.Symbol

	Prev, Next *Instr
}

// Context threads the whole-program instruction list plus the
// counters/allocators the IR builder needs, replacing the original's
// process-global tac_first/tac_last/label counter/temp counter with a
// single value passed explicitly (spec §9's redesign note).
type Context struct {
	Head, Tail *Instr

	Syms *symtab.Table

	tempSeq  int
	labelSeq int
}

// NewContext returns an empty instruction list bound to the given
// symbol table.
func NewContext(syms *symtab.Table) *Context {
	return &Context{Syms: syms}
}

// Emit appends a new instruction to the tail of the list and returns
// it.
func (c *Context) Emit(op Op, a, b, cc *symtab.Symbol) *Instr {
	n := &Instr{Op: op, A: a, B: b, C: cc}
	c.Append(n)
	return n
}

// Append splices an already-built instruction onto the tail.
func (c *Context) Append(n *Instr) {
	n.Prev = c.Tail
	n.Next = nil
	if c.Tail != nil {
		c.Tail.Next = n
	} else {
		c.Head = n
	}
	c.Tail = n
}

// Detach unlinks node from the list, fixing up Head/Tail if node was
// an endpoint. Matches the detach_tac helper duplicated across
// constfold.cpp/licm.cpp/lsr.cpp/loopreduce.cpp/deadcode.cpp.
func (c *Context) Detach(node *Instr) {
	if node == nil {
		return
	}
	prev, next := node.Prev, node.Next
	if prev != nil {
		prev.Next = next
	} else {
		c.Head = next
	}
	if next != nil {
		next.Prev = prev
	} else {
		c.Tail = prev
	}
	node.Prev = nil
	node.Next = nil
}

// InsertBefore splices node into the list immediately before pos. If
// pos is nil, node is appended at the tail.
func (c *Context) InsertBefore(pos, node *Instr) {
	if node == nil {
		return
	}
	if pos == nil {
		c.Append(node)
		return
	}
	prev := pos.Prev
	node.Next = pos
	node.Prev = prev
	pos.Prev = node
	if prev != nil {
		prev.Next = node
	} else {
		c.Head = node
	}
}

// InsertAfter splices node into the list immediately after pos.
func (c *Context) InsertAfter(pos, node *Instr) {
	if node == nil {
		return
	}
	if pos == nil {
		prevHead := c.Head
		node.Next = prevHead
		node.Prev = nil
		if prevHead != nil {
			prevHead.Prev = node
		} else {
			c.Tail = node
		}
		c.Head = node
		return
	}
	next := pos.Next
	node.Prev = pos
	node.Next = next
	pos.Next = node
	if next != nil {
		next.Prev = node
	} else {
		c.Tail = node
	}
}

// NewTempName returns the next "t<N>" temporary name without declaring
// a symbol — pkg/irbuild.NewTemp calls this before inserting the
// resulting symbol into the table.
func (c *Context) NewTempName() string {
	c.tempSeq++
	return "t" + itoa(c.tempSeq)
}

// NewLabelName returns the next "L<N>" label name.
func (c *Context) NewLabelName() string {
	c.labelSeq++
	return "L" + itoa(c.labelSeq)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Walk returns the instructions from Head to Tail as a slice, the
// shape every pass's "rebuild the flat whole-program sequence" step
// needs.
func (c *Context) Walk() []*Instr {
	var out []*Instr
	for n := c.Head; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}
