// Package errors defines the compiler's structured diagnostic type.
//
// Grounded on _examples/sentra-language-sentra/internal/errors/errors.go's
// SentraError/SourceLocation shape: a typed error carrying a source
// position and a human message, rather than ad hoc fmt.Errorf strings
// threaded up through every layer.
package errors

import "fmt"

// SourceLocation pinpoints where a diagnostic originates.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Stage identifies which compiler phase raised a CompileError.
type Stage string

const (
	StageParse    Stage = "parse"
	StageIRBuild  Stage = "irbuild"
	StageOptimize Stage = "optimize"
	StageCodegen  Stage = "codegen"
	StageConfig   Stage = "config"
)

// CompileError is a diagnostic rendered as "<file>:<line>:<col>:
// <stage>: <message>". The CLI builds one for each parse error; other
// stages return their own error types (such as irbuild's DeclError).
type CompileError struct {
	Loc     SourceLocation
	Stage   Stage
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Stage, e.Message)
}

// New constructs a CompileError at the given location.
func New(stage Stage, loc SourceLocation, format string, args ...interface{}) *CompileError {
	return &CompileError{Loc: loc, Stage: stage, Message: fmt.Sprintf(format, args...)}
}
