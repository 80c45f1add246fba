// Package optlog is the structured optimization change-log shared by
// every pass: each pass invocation records its lines of human-readable
// detail plus a delta count, and the whole log is rendered once, at
// the end of compilation, interleaved in recording order with a
// trailing per-pass-type totals block.
//
// Grounded on original_source/Optimize/optlog.cpp. One behavioral
// normalization: the original's deadcode.cpp bypasses this mechanism
// entirely with its own deadcode_emit_report, a second, separate
// report-writer never interleaved with the others. Spec §4.11
// describes the log as pass-agnostic, so this package's Deadcode pass
// records through Record like every other pass — see DESIGN.md.
package optlog

import (
	"fmt"
	"io"
)

// Pass identifies which optimization produced a log entry.
type Pass int

const (
	ConstFold Pass = iota
	CopyProp
	CSE
	LICM
	LSR
	LoopReduce
	DeadCode
	passCount
)

var passNames = [passCount]string{
	ConstFold:  "constant folding",
	CopyProp:   "copy propagation",
	CSE:        "common subexpression elimination",
	LICM:       "loop-invariant code motion",
	LSR:        "induction variable strength reduction",
	LoopReduce: "loop trip-count reduction",
	DeadCode:   "dead code elimination",
}

var metricNames = [passCount]string{
	ConstFold:  "folds",
	CopyProp:   "replacements",
	CSE:        "eliminations",
	LICM:       "hoists",
	LSR:        "reductions",
	LoopReduce: "collapses",
	DeadCode:   "removals",
}

type entry struct {
	pass         Pass
	perPassIndex int
	delta        int
	lines        []string
}

// Log accumulates entries across an entire compilation run.
type Log struct {
	entries    []entry
	passCounts [passCount]int
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Record appends one pass invocation's result. lines may be empty.
func (l *Log) Record(pass Pass, lines []string, delta int) {
	l.passCounts[pass]++
	l.entries = append(l.entries, entry{
		pass:         pass,
		perPassIndex: l.passCounts[pass],
		delta:        delta,
		lines:        lines,
	})
}

// Reset clears the log, called automatically after Emit.
func (l *Log) Reset() {
	l.entries = nil
	l.passCounts = [passCount]int{}
}

// Emit renders the accumulated entries to out in chronological order,
// followed by a per-pass-type totals block, then resets the log. A
// log with no entries emits nothing.
func (l *Log) Emit(out io.Writer) {
	if len(l.entries) == 0 {
		return
	}

	var totals [passCount]int

	for _, e := range l.entries {
		name := passNames[e.pass]
		if e.perPassIndex > 1 {
			fmt.Fprintf(out, "\n\t# %s pass (iteration %d)\n", name, e.perPassIndex)
		} else {
			fmt.Fprintf(out, "\n\t# %s pass\n", name)
		}

		if len(e.lines) == 0 {
			if e.delta == 0 {
				fmt.Fprintf(out, "\t#   no changes\n")
			}
		} else {
			for _, line := range e.lines {
				fmt.Fprintf(out, "\t#   %s\n", line)
			}
		}

		if e.delta > 0 {
			fmt.Fprintf(out, "\t#   %s this iteration: %d\n", metricNames[e.pass], e.delta)
		}

		totals[e.pass] += e.delta
	}

	fmt.Fprintln(out)

	for p := Pass(0); p < passCount; p++ {
		if totals[p] == 0 {
			continue
		}
		fmt.Fprintf(out, "\t# %s total %s: %d\n", passNames[p], metricNames[p], totals[p])
	}

	fmt.Fprintln(out)

	l.Reset()
}
