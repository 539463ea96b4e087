package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/compiler"
)

func TestRunCompileWritesProgram(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "fn main(): int { return 1 + 2 * 3; }")
	code, out, errOut := captureOutput(t, func() int {
		return runCompile(filename, "")
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s\nstdout:\n%s", code, errOut, out)
	}

	bin, err := os.ReadFile(strings.TrimSuffix(filename, ".bk") + ".bkc")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(bin, bytecode.Magic[:]) {
		t.Fatalf("output does not start with the magic number: % x", bin[:4])
	}
	entry, _, err := bytecode.ExtractHeader(bin)
	if err != nil || entry != "main" {
		t.Fatalf("ExtractHeader = %q, %v", entry, err)
	}
}

func TestRunCompileReportsErrors(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "fn f(c: bool): int { if (c) { return 1; } }")
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(filename, filepath.Join(t.TempDir(), "out.bkc"))
	})
	if code != 1 {
		t.Fatalf("runCompile exit=%d, want 1", code)
	}
	if !strings.Contains(errOut, "might not return") {
		t.Fatalf("stderr missing diagnostic:\n%s", errOut)
	}
}

func TestRunCompilePrintsWarnings(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "fn main() { let a = [int: 100000]; }")
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(filename, filepath.Join(t.TempDir(), "out.bkc"))
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "warning: statically allocating") {
		t.Fatalf("stderr missing warning:\n%s", errOut)
	}
}

func TestRunCompileWithInclude(t *testing.T) {
	dir := t.TempDir()
	dep := writeTempBriskFile(t, "geo.bk", "namespace geo; class Foo { x: int; }")
	depOut := filepath.Join(dir, "geo.bkc")
	if code, _, errOut := captureOutput(t, func() int { return runCompile(dep, depOut) }); code != 0 {
		t.Fatalf("compile dependency: exit=%d\n%s", code, errOut)
	}

	user := writeTempBriskFile(t, "user.bk", "using geo; fn f(a: Foo): int { return a.x; }")
	if code, _, _ := captureOutput(t, func() int { return runCompile(user, filepath.Join(dir, "a.bkc")) }); code == 0 {
		t.Fatal("compiled without the include")
	}

	includes = includeList{depOut}
	defer func() { includes = nil }()
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(user, filepath.Join(dir, "b.bkc"))
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s", code, errOut)
	}
}

func TestRunCompileMissingInclude(t *testing.T) {
	includes = includeList{filepath.Join(t.TempDir(), "missing.bkc")}
	defer func() { includes = nil }()

	filename := writeTempBriskFile(t, "input.bk", "fn main() {}")
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(filename, "")
	})
	if code != 1 || !strings.Contains(errOut, "include") {
		t.Fatalf("exit=%d stderr:\n%s", code, errOut)
	}
}

func TestRunEmitHeader(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "namespace geo; class Foo { x: int; } fn main() {}")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitHeader(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitHeader exit=%d\nstderr:\n%s", code, errOut)
	}
	h, err := bytecode.ParseHeader([]byte(strings.TrimSpace(out)))
	if err != nil {
		t.Fatalf("ParseHeader: %v\n%s", err, out)
	}
	if len(h.Classes) != 1 || h.Classes[0].Name != "geo.Foo" {
		t.Fatalf("classes = %+v", h.Classes)
	}
}

func TestRunEmitTokens(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "fn main() { return; }")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitTokens exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "POSITION") || !strings.Contains(out, `"main"`) {
		t.Fatalf("token output:\n%s", out)
	}
}

func TestRunEmitTokensLexError(t *testing.T) {
	filename := writeTempBriskFile(t, "input.bk", "fn main() { # }")
	code, out, _ := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})
	if code != 1 || !strings.Contains(out, "Errors:") {
		t.Fatalf("exit=%d output:\n%s", code, out)
	}
}

func TestCheck(t *testing.T) {
	conf := &compiler.Config{}
	if got := check("fn main() {}", conf); !strings.HasPrefix(got, "ok: ") {
		t.Errorf("check(valid) = %q", got)
	}
	if got := check("fn main(): int {}", conf); !strings.Contains(got, "might not return") {
		t.Errorf("check(invalid) = %q", got)
	}
}

func writeTempBriskFile(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return filename
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	outBytes, _ := io.ReadAll(rOut)
	errBytes, _ := io.ReadAll(rErr)
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
