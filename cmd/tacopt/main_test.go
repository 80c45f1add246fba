package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
}

func TestDumpFlagsExist(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)

	for _, flagName := range []string{"dx", "ds", "config", "max-iterations", "passes"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag --%s to exist", flagName)
		}
	}
}

func TestNormalizeFlagsSingleDash(t *testing.T) {
	got := normalizeFlags([]string{"-dx", "-ds", "file.m"})
	want := []string{"--dx", "--ds", "file.m"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalizeFlags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWithExt(t *testing.T) {
	tests := []struct{ in, ext, want string }{
		{"prog.m", ".x", "prog.x"},
		{"prog.m", ".s", "prog.s"},
		{"noext", ".x", "noext.x"},
	}
	for _, tt := range tests {
		if got := withExt(tt.in, tt.ext); got != tt.want {
			t.Errorf("withExt(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
		}
	}
}

func TestDoCompileProducesDumps(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.m")
	prog := "int main() { int x; x = 1 + 2; return x; }"
	if err := os.WriteFile(src, []byte(prog), 0o644); err != nil {
		t.Fatal(err)
	}

	dumpX, dumpS = true, true
	defer func() { dumpX, dumpS = false, false }()

	var out, errOut bytes.Buffer
	if err := doCompile(src, &out, &errOut); err != nil {
		t.Fatalf("doCompile: %v (stderr: %s)", err, errOut.String())
	}

	xPath := filepath.Join(dir, "prog.x")
	if _, err := os.Stat(xPath); err != nil {
		t.Errorf("expected %s to be created: %v", xPath, err)
	}
	sPath := filepath.Join(dir, "prog.s")
	if _, err := os.Stat(sPath); err != nil {
		t.Errorf("expected %s to be created: %v", sPath, err)
	}

	xContent, _ := os.ReadFile(xPath)
	if !strings.Contains(string(xContent), "tac list") {
		t.Errorf("prog.x missing TAC listing: %s", xContent)
	}
	sContent, _ := os.ReadFile(sPath)
	if !strings.Contains(string(sContent), "main:") {
		t.Errorf("prog.s missing function label: %s", sContent)
	}
}

func TestDoCompileParseErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.m")
	if err := os.WriteFile(src, []byte("int main( { return; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	err := doCompile(src, &out, &errOut)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(errOut.String(), "parse:") {
		t.Errorf("expected a parse-stage diagnostic, got: %s", errOut.String())
	}
}
