// Package cfg builds a per-function control-flow graph over the flat
// TAC instruction list: blocks are leader-to-leader partitions,
// successors follow the terminator's branch shape, and predecessors
// are built in lockstep with successor-edge creation rather than a
// separate reverse pass.
//
// Grounded on original_source/Optimize/cfg.cpp's build_cfg_for_func /
// cfg_build_all / cfg_print_all.
package cfg

import (
	"fmt"
	"io"

	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// Block is one basic block: a maximal run of instructions with a
// single entry (the leader) and no internal branches.
type Block struct {
	ID    int
	Label *symtab.Symbol // non-nil if the block starts with a LABEL
	First *tac.Instr
	Last  *tac.Instr

	Succ []*Block
	Pred []*Block
}

// Function is one function's CFG.
type Function struct {
	Name   string
	Blocks []*Block
}

// All is every function's CFG for one program.
type All struct {
	Functions []*Function
}

func isTerminator(op tac.Op) bool {
	switch op {
	case tac.GOTO, tac.IFZ, tac.RETURN, tac.ENDFUNC:
		return true
	default:
		return false
	}
}

// BuildAll scans the whole-program instruction list for BEGINFUNC
// markers and builds one Function CFG per function, skipping past
// each function's ENDFUNC to avoid reprocessing its body.
func BuildAll(ctx *tac.Context) *All {
	all := &All{}
	for cur := ctx.Head; cur != nil; {
		if cur.Op != tac.BEGINFUNC {
			cur = cur.Next
			continue
		}
		fn, end := buildFunction(cur)
		all.Functions = append(all.Functions, fn)
		if end != nil {
			cur = end.Next
		} else {
			cur = nil
		}
	}
	return all
}

// buildFunction builds one function's CFG starting at its BEGINFUNC
// instruction, returning the CFG and the ENDFUNC instruction (or nil
// if the function body runs off the end of the program, which
// shouldn't happen for well-formed input but is handled defensively).
func buildFunction(begin *tac.Instr) (*Function, *tac.Instr) {
	name := "<anon>"
	if begin.Prev != nil && begin.Prev.Op == tac.LABEL && begin.Prev.A != nil {
		name = begin.Prev.A.Name
	}

	// Collect this function's instructions (begin..end inclusive).
	var body []*tac.Instr
	var end *tac.Instr
	for cur := begin; cur != nil; cur = cur.Next {
		body = append(body, cur)
		if cur.Op == tac.ENDFUNC {
			end = cur
			break
		}
	}

	leaders := map[int]bool{0: true}
	for i, in := range body {
		switch {
		case in.Op == tac.LABEL:
			leaders[i] = true
		case i > 0 && isTerminator(body[i-1].Op):
			leaders[i] = true
		}
	}
	// The instruction right after BEGINFUNC is always a leader too
	// (index 1, if present) — BEGINFUNC itself starts block 0.
	if len(body) > 1 {
		leaders[1] = true
	}

	var starts []int
	for i := 0; i < len(body); i++ {
		if leaders[i] {
			starts = append(starts, i)
		}
	}

	fn := &Function{Name: name}
	labelToBlock := map[*symtab.Symbol]*Block{}

	for bi, startIdx := range starts {
		endIdx := len(body)
		if bi+1 < len(starts) {
			endIdx = starts[bi+1]
		}
		blk := &Block{ID: bi, First: body[startIdx], Last: body[endIdx-1]}
		if blk.First.Op == tac.LABEL {
			blk.Label = blk.First.A
			if blk.Label != nil {
				labelToBlock[blk.Label] = blk
			}
		}
		fn.Blocks = append(fn.Blocks, blk)
	}

	addEdge := func(from, to *Block) {
		if from == nil || to == nil {
			return
		}
		from.Succ = append(from.Succ, to)
		to.Pred = append(to.Pred, from)
	}

	for i, blk := range fn.Blocks {
		term := blk.Last
		switch term.Op {
		case tac.GOTO:
			addEdge(blk, labelToBlock[term.A])
		case tac.IFZ:
			addEdge(blk, labelToBlock[term.A])
			if i+1 < len(fn.Blocks) {
				addEdge(blk, fn.Blocks[i+1])
			}
		case tac.RETURN, tac.ENDFUNC:
			// no successors
		default:
			if i+1 < len(fn.Blocks) {
				addEdge(blk, fn.Blocks[i+1])
			}
		}
	}

	return fn, end
}

// PrintAll renders every function's CFG in the teacher's tac dump
// style: a "# cfg" header, one "## Function <name>" section per
// function, and within it one "B<id>[ [<label>]]:" block header
// followed by its 4-space-indented instructions and a successor line.
func PrintAll(out io.Writer, all *All, printInstr func(io.Writer, *tac.Instr)) {
	fmt.Fprintln(out, "# cfg")
	for _, fn := range all.Functions {
		fmt.Fprintf(out, "\n## Function %s\n", fn.Name)
		for _, blk := range fn.Blocks {
			if blk.Label != nil {
				fmt.Fprintf(out, "B%d [%s]:\n", blk.ID, blk.Label.Name)
			} else {
				fmt.Fprintf(out, "B%d:\n", blk.ID)
			}
			for in := blk.First; ; in = in.Next {
				fmt.Fprint(out, "    ")
				printInstr(out, in)
				fmt.Fprintln(out)
				if in == blk.Last {
					break
				}
			}
			fmt.Fprint(out, "    succ:")
			for i, s := range blk.Succ {
				if i > 0 {
					fmt.Fprint(out, ",")
				}
				fmt.Fprintf(out, " B%d", s.ID)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out)
		}
	}
}
