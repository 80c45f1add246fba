package errors

import "testing"

func TestSourceLocationStringWithFile(t *testing.T) {
	loc := SourceLocation{File: "foo.m", Line: 3, Column: 7}
	if got, want := loc.String(), "foo.m:3:7"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSourceLocationStringWithoutFile(t *testing.T) {
	loc := SourceLocation{Line: 3, Column: 7}
	if got, want := loc.String(), "3:7"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileErrorFormatting(t *testing.T) {
	err := New(StageParse, SourceLocation{File: "foo.m", Line: 1, Column: 1}, "unexpected token %q", "}")
	want := `foo.m:1:1: parse: unexpected token "}"`
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileErrorIsAnError(t *testing.T) {
	var err error = New(StageConfig, SourceLocation{}, "bad yaml")
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
}

func TestStageValues(t *testing.T) {
	stages := []Stage{StageParse, StageIRBuild, StageOptimize, StageCodegen, StageConfig}
	seen := map[Stage]bool{}
	for _, s := range stages {
		if seen[s] {
			t.Errorf("duplicate stage value %q", s)
		}
		seen[s] = true
	}
}
