// Package codegen is the thin back end spec §6 asks for: a single
// pass over the flat TAC list that turns each instruction into
// pseudo-assembly text, one stack slot per value, no register
// allocation.
//
// Grounded on original_source/Optimize/obj.c's traversal shape (one
// pass over tac_first..tac_last, a per-opcode dispatch) but not its
// SymRegInfo linear-scan-ish register allocator, which spec's back-end
// contract (§6, "thin dump/consume") puts out of scope — see
// SPEC_FULL.md's DOMAIN STACK section and DESIGN.md. Output framing
// (section headers, one function at a time, a trailing blank line
// between functions) follows raymyers/ralph-cc's pkg/asm.Printer.
package codegen

import (
	"fmt"
	"io"

	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// wordSize is mini-C's target word size — every slot (int, char,
// pointer) is stack-aligned to one word, matching ctypes.Tpointer's
// 32-bit-machine assumption (pkg/ctypes/types.go).
const wordSize = 4

// frame assigns each local/temp/formal a stack slot within one
// function, in first-seen order — the "every value lives in its own
// slot" simplification the thin back end is allowed (spec §6 doesn't
// require slot reuse or coalescing; that's register allocation's job,
// out of scope).
type frame struct {
	slots map[*symtab.Symbol]int
	next  int
}

func newFrame() *frame {
	return &frame{slots: make(map[*symtab.Symbol]int)}
}

// slot returns sym's stack offset, assigning the next free one on
// first use. Constants, labels, and functions never get a slot — they
// are emitted as immediates/labels directly.
func (f *frame) slot(sym *symtab.Symbol) (int, bool) {
	if sym == nil || sym.Kind != symtab.Var {
		return 0, false
	}
	if off, ok := f.slots[sym]; ok {
		return off, true
	}
	off := f.next
	f.slots[sym] = off
	f.next += wordSize
	return off, true
}

// operand renders a.A/B/C as either a stack reference or an immediate,
// matching the teacher's asm.Printer operand-formatting split between
// registers and immediates, generalized to slots and the mini-C
// constant/label kinds.
func (f *frame) operand(sym *symtab.Symbol) string {
	if sym == nil {
		return ""
	}
	switch sym.Kind {
	case symtab.IntConst, symtab.CharConst:
		return fmt.Sprintf("#%d", sym.IntValue)
	case symtab.Label, symtab.Func:
		return sym.Name
	default:
		if off, ok := f.slot(sym); ok {
			return fmt.Sprintf("[fp-%d]", off+wordSize)
		}
		return sym.Name
	}
}

// Emit walks the whole-program TAC list and writes one pseudo-assembly
// line per instruction, under a single .text section header (no .data
// section is written), with per-function prologue/epilogue markers.
func Emit(out io.Writer, ctx *tac.Context) {
	fmt.Fprintln(out, "\t.text")

	var fr *frame
	for in := ctx.Head; in != nil; in = in.Next {
		switch in.Op {
		case tac.LABEL:
			if in.A != nil && in.A.Kind == symtab.Func {
				fr = newFrame()
				fmt.Fprintf(out, "\n%s:\n", in.A.Name)
				continue
			}
			fmt.Fprintf(out, "%s:\n", name(in.A))

		case tac.BEGINFUNC:
			fmt.Fprintln(out, "\tpush\tfp")
			fmt.Fprintln(out, "\tmov\tfp, sp")
			fmt.Fprintln(out, "\tsub\tsp, sp, #FRAMESIZE")

		case tac.ENDFUNC:
			fmt.Fprintln(out, "\tmov\tsp, fp")
			fmt.Fprintln(out, "\tpop\tfp")
			fmt.Fprintln(out, "\tret")

		case tac.VAR, tac.FORMAL:
			// Slot assignment only; no code. fr.slot records the
			// symbol's place in the frame the first time any
			// instruction below references it, but VAR/FORMAL touch it
			// eagerly so declaration order determines slot order even
			// for a variable that's never read.
			fr.slot(in.A)

		default:
			fmt.Fprintf(out, "\t%s\n", emitOne(fr, in))
		}
	}
}

// emitOne renders one non-structural instruction as a stack-machine
// pseudo-op: one line naming the operands directly by their frame
// slots or immediates, with no scratch-register loads or stores and
// no attempt at keeping a value live in a register across
// instructions, since that's the allocator's job.
func emitOne(fr *frame, in *tac.Instr) string {
	a, b, c := fr.operand(in.A), fr.operand(in.B), fr.operand(in.C)
	switch in.Op {
	case tac.ADD:
		return fmt.Sprintf("add\t%s, %s, %s", a, b, c)
	case tac.SUB:
		return fmt.Sprintf("sub\t%s, %s, %s", a, b, c)
	case tac.MUL:
		return fmt.Sprintf("mul\t%s, %s, %s", a, b, c)
	case tac.DIV:
		return fmt.Sprintf("sdiv\t%s, %s, %s", a, b, c)
	case tac.NEG:
		return fmt.Sprintf("neg\t%s, %s", a, b)
	case tac.EQ:
		return fmt.Sprintf("cmp.eq\t%s, %s, %s", a, b, c)
	case tac.NE:
		return fmt.Sprintf("cmp.ne\t%s, %s, %s", a, b, c)
	case tac.LT:
		return fmt.Sprintf("cmp.lt\t%s, %s, %s", a, b, c)
	case tac.LE:
		return fmt.Sprintf("cmp.le\t%s, %s, %s", a, b, c)
	case tac.GT:
		return fmt.Sprintf("cmp.gt\t%s, %s, %s", a, b, c)
	case tac.GE:
		return fmt.Sprintf("cmp.ge\t%s, %s, %s", a, b, c)
	case tac.COPY:
		return fmt.Sprintf("mov\t%s, %s", a, b)
	case tac.ADDR:
		return fmt.Sprintf("lea\t%s, %s", a, b)
	case tac.LOAD:
		return fmt.Sprintf("ldr\t%s, [%s]", a, b)
	case tac.STORE:
		return fmt.Sprintf("str\t[%s], %s", a, b)
	case tac.GOTO:
		return fmt.Sprintf("b\t%s", a)
	case tac.IFZ:
		return fmt.Sprintf("cbz\t%s, %s", b, a)
	case tac.ACTUAL:
		return fmt.Sprintf("push\t%s", a)
	case tac.CALL:
		if in.A == nil {
			return fmt.Sprintf("bl\t%s", b)
		}
		return fmt.Sprintf("bl\t%s\t; -> %s", b, a)
	case tac.RETURN:
		if in.A == nil {
			return "ret"
		}
		return fmt.Sprintf("mov\tr0, %s", a)
	case tac.INPUT:
		return fmt.Sprintf("bl\t__mini_c_input\t; -> %s", a)
	case tac.OUTPUT:
		return fmt.Sprintf("bl\t__mini_c_output\t; %s", a)
	default:
		return "; ?"
	}
}

func name(s *symtab.Symbol) string {
	if s == nil {
		return "?"
	}
	return s.Name
}
