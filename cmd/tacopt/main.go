package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mini-c/tacopt/internal/codegen"
	"github.com/mini-c/tacopt/internal/config"
	"github.com/mini-c/tacopt/internal/errors"
	"github.com/mini-c/tacopt/internal/frontend"
	"github.com/mini-c/tacopt/pkg/cfg"
	"github.com/mini-c/tacopt/pkg/irbuild"
	"github.com/mini-c/tacopt/pkg/optimize"
	"github.com/mini-c/tacopt/pkg/optlog"
	"github.com/mini-c/tacopt/pkg/tac"
)

var version = "0.1.0"

// Debug flags for dumping intermediate output, matching the teacher's
// -dparse/-dasm naming and normalizeFlags single-dash convention,
// narrowed to spec §6's two dump points: the TAC/CFG/optlog listing
// and the stack-machine assembly.
var (
	dumpX bool // --dx: TAC listing + optimization log + CFG dump
	dumpS bool // --ds: stack-machine assembly
)

var (
	configPath    string
	maxIterations int
	passesFlag    string
)

// debugFlagNames lists flags that should also accept CompCert-style
// single-dash spelling (-dx instead of --dx), matching ralph-cc's
// normalizeFlags.
var debugFlagNames = []string{"dx", "ds"}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// normalizeFlags converts CompCert-style single-dash flags like -dx to
// --dx, exactly as ralph-cc/cmd/ralph-cc/main.go's normalizeFlags
// does for its own debug flags.
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tacopt [file]",
		Short: "tacopt is the TAC middle end for the mini-C compiler",
		Long: `tacopt parses a mini-C source file straight into three-address
code, runs the fixed-point optimization pipeline (constant folding,
copy propagation, CSE, loop-invariant code motion, strength reduction,
loop trip-count collapse, dead-code elimination), and emits a thin
stack-machine assembly listing.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return doCompile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dumpX, "dx", false, "Dump TAC listing, optimization log, and CFG to <stem>.x")
	rootCmd.Flags().BoolVar(&dumpS, "ds", false, "Dump stack-machine assembly to <stem>.s")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a tacopt.yaml project config")
	rootCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Override the fixed-point iteration cap")
	rootCmd.Flags().StringVar(&passesFlag, "passes", "", "Comma-separated pass subset to run (overrides tacopt.yaml)")

	return rootCmd
}

// loadOptions resolves the effective Options from tacopt.yaml (if
// --config was given) and flag overrides, flags winning on conflict
// per SPEC_FULL.md's CLARIFIED COMPONENTS section.
func loadOptions() (config.Options, error) {
	opts := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Options{}, err
		}
		opts = loaded
	}
	if maxIterations > 0 {
		opts.MaxIterations = maxIterations
	}
	if passesFlag != "" {
		opts.EnabledPasses = strings.Split(passesFlag, ",")
	}
	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

// doCompile reads filename, parses it into TAC, optimizes, and writes
// whichever of <stem>.x / <stem>.s the --dx/--ds flags asked for —
// matching ralph-cc's do<Stage>(filename, out, errOut) per-stage shape,
// narrowed to tacopt's two dump points instead of one per IR.
func doCompile(filename string, out, errOut io.Writer) error {
	opts, err := loadOptions()
	if err != nil {
		fmt.Fprintf(errOut, "tacopt: %v\n", err)
		return err
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "tacopt: error reading %s: %v\n", filename, err)
		return err
	}

	b := irbuild.New()
	p := frontend.New(string(src), b)
	p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			ce := errors.New(errors.StageParse, errors.SourceLocation{File: filename, Line: e.Line, Column: e.Column}, "%s", e.Message)
			fmt.Fprintln(errOut, ce.Error())
		}
		return fmt.Errorf("parsing failed with %d errors", len(p.Errors()))
	}

	log := optlog.New()
	rounds := runOptimize(b, opts, log)
	if opts.Verbose {
		fmt.Fprintf(errOut, "tacopt: %s: %d optimization rounds\n", filename, rounds)
	}

	if dumpX {
		if err := writeDump(xOutputFilename(filename), out, func(w io.Writer) {
			tac.PrintList(w, b.Ctx)
			log.Emit(w)
			cfg.PrintAll(w, cfg.BuildAll(b.Ctx), tac.Print)
		}); err != nil {
			fmt.Fprintf(errOut, "tacopt: %v\n", err)
			return err
		}
	}

	if dumpS {
		if err := writeDump(sOutputFilename(filename), out, func(w io.Writer) {
			codegen.Emit(w, b.Ctx)
		}); err != nil {
			fmt.Fprintf(errOut, "tacopt: %v\n", err)
			return err
		}
	}

	if !dumpX && !dumpS {
		fmt.Fprintf(errOut, "tacopt: compiled %s (%d rounds, no dump requested)\n", filename, rounds)
	}
	return nil
}

// runOptimize drives the fixed-point pipeline with the effective
// options' iteration cap and enabled-pass subset (SPEC_FULL.md's
// --max-iterations / --passes / tacopt.yaml contract).
func runOptimize(b *irbuild.Builder, opts config.Options, log *optlog.Log) int {
	return optimize.RunWithOptions(b.Ctx, b.Syms, log, opts.MaxIterations, opts.EnabledPasses)
}

func writeDump(outputFilename string, stdout io.Writer, render func(io.Writer)) error {
	f, err := os.Create(outputFilename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputFilename, err)
	}
	defer f.Close()

	var buf strings.Builder
	render(&buf)
	if _, err := io.WriteString(f, buf.String()); err != nil {
		return err
	}
	fmt.Fprint(stdout, buf.String())
	return nil
}

func xOutputFilename(filename string) string { return withExt(filename, ".x") }
func sOutputFilename(filename string) string { return withExt(filename, ".s") }

func withExt(filename, ext string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return filename[:idx] + ext
	}
	return filename + ext
}
