package tac

import (
	"fmt"
	"io"

	"github.com/mini-c/tacopt/pkg/symtab"
)

func name(s *symtab.Symbol) string {
	if s == nil {
		return "?"
	}
	return s.Name
}

var binOpSymbol = map[Op]string{
	ADD: "+", SUB: "-", MUL: "*", DIV: "/",
	EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
}

// Format renders one instruction in the teacher's TAC-listing style:
// assignment form "a = b <op> c" for computations, and bare
// control/declaration forms for everything else.
func Format(in *Instr) string {
	switch in.Op {
	case ADD, SUB, MUL, DIV, EQ, NE, LT, LE, GT, GE:
		return fmt.Sprintf("%s = %s %s %s", name(in.A), name(in.B), binOpSymbol[in.Op], name(in.C))
	case NEG:
		return fmt.Sprintf("%s = - %s", name(in.A), name(in.B))
	case COPY:
		return fmt.Sprintf("%s = %s", name(in.A), name(in.B))
	case ADDR:
		return fmt.Sprintf("%s = & %s", name(in.A), name(in.B))
	case LOAD:
		return fmt.Sprintf("%s = * %s", name(in.A), name(in.B))
	case STORE:
		return fmt.Sprintf("* %s = %s", name(in.A), name(in.B))
	case GOTO:
		return fmt.Sprintf("goto %s", name(in.A))
	case IFZ:
		return fmt.Sprintf("ifz %s goto %s", name(in.B), name(in.A))
	case LABEL:
		return fmt.Sprintf("%s:", name(in.A))
	case ACTUAL:
		return fmt.Sprintf("actual %s", name(in.A))
	case FORMAL:
		return fmt.Sprintf("formal %s", name(in.A))
	case CALL:
		if in.A == nil {
			return fmt.Sprintf("call %s", name(in.B))
		}
		return fmt.Sprintf("%s = call %s", name(in.A), name(in.B))
	case RETURN:
		if in.A == nil {
			return "return"
		}
		return fmt.Sprintf("return %s", name(in.A))
	case BEGINFUNC:
		return "beginfunc"
	case ENDFUNC:
		return "endfunc"
	case VAR:
		return fmt.Sprintf("var %s", name(in.A))
	case INPUT:
		return fmt.Sprintf("input %s", name(in.A))
	case OUTPUT:
		return fmt.Sprintf("output %s", name(in.A))
	default:
		return "?"
	}
}

// Print writes Format(in) to out with no trailing newline.
func Print(out io.Writer, in *Instr) {
	fmt.Fprint(out, Format(in))
}

// PrintList writes the "# tac list" dump: one line per instruction,
// matching main.c's tac_list().
func PrintList(out io.Writer, ctx *Context) {
	fmt.Fprintln(out, "\n# tac list")
	fmt.Fprintln(out)
	for in := ctx.Head; in != nil; in = in.Next {
		fmt.Fprintln(out, Format(in))
	}
}
