package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/hir/hirtest"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/irio"
)

func saveUnit(t *testing.T, dir string, f *hir.File) string {
	t.Helper()
	data, err := irio.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, f.Name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func downToUnit() *hir.File {
	u := hirtest.New()
	b := u.B
	return u.File("down", u.PrintEach(u.Step(u.Range(intrinsics.IntrinsicDownTo, b.Int(10), b.Int(0)), b.Int(3))))
}

func brokenUnit() *hir.File {
	u := hirtest.New()
	c := u.PrintEach(u.Range(intrinsics.IntrinsicRangeTo, u.B.Int(0), u.B.Int(4)))
	return u.File("broken", c.Statements[0])
}

func execute(t *testing.T, sub string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), sub, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	down := saveUnit(t, dir, downToUnit())
	broken := saveUnit(t, dir, brokenUnit())

	tests := []struct {
		name   string
		sub    string
		args   []string
		code   int
		stdout []string
		stderr []string
	}{
		{name: "run lowered", sub: "run", args: []string{down}, stdout: []string{"10\n7\n4\n1\n"}},
		{name: "run iterator form", sub: "run", args: []string{"-lower=false", down}, stdout: []string{"10\n7\n4\n1\n"}},
		{name: "run missing function", sub: "run", args: []string{"-func", "other", down}, code: 1,
			stderr: []string{"NO_SUCH_FUNCTION"}},
		{name: "lower dump", sub: "lower", args: []string{"-dump", down},
			stdout: []string{"// down", "do {", "getProgressionLast"}},
		{name: "lower disabled", sub: "lower", args: []string{"-dump", "-disable", "forloops", down},
			stdout: []string{"while (tmp"}},
		{name: "lower unknown pass", sub: "lower", args: []string{"-disable", "inline", down}, code: 1,
			stderr: []string{"unknown pass"}},
		{name: "lower broken", sub: "lower", args: []string{"-dump", down, broken}, code: 1,
			stdout: []string{"// down"}, stderr: []string{"broken: forloops:", "never consumed"}},
		{name: "lower missing input", sub: "lower", code: 1, stderr: []string{"insufficient arguments"}},
		{name: "lower -o with many inputs", sub: "lower", args: []string{"-o", "x.json", down, broken}, code: 1,
			stderr: []string{"exactly one input"}},
		{name: "version", sub: "version", stdout: []string{"rangeloop v", "Unit Format: rangeloop-hir"}},
		{name: "version json", sub: "version", args: []string{"--json"}, stdout: []string{`"tool": "rangeloop"`}},
		{name: "unknown", sub: "frobnicate", code: 2, stderr: []string{"unknown subcommand: frobnicate"}},
		{name: "help", sub: "help", stdout: []string{"COMMANDS:", "lower"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.sub, tt.args...)
			if code != tt.code {
				t.Fatalf("exit %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.code, stdout, stderr)
			}
			for _, want := range tt.stdout {
				if !strings.Contains(stdout, want) {
					t.Errorf("stdout lacks %q:\n%s", want, stdout)
				}
			}
			for _, want := range tt.stderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr lacks %q:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestLowerWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := saveUnit(t, dir, downToUnit())
	out := filepath.Join(dir, "out.json")
	if code, _, stderr := execute(t, "lower", "-o", out, in); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	fh, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	f, err := irio.Decode(fh, intrinsics.Default())
	if err != nil {
		t.Fatalf("output is not a unit: %v", err)
	}
	if err := hir.Verify(f); err != nil {
		t.Errorf("Verify: %v", err)
	}
	// Lowering the output again is a no-op.
	code, stdout, _ := execute(t, "lower", "-dump", "-v", out)
	if code != 0 || strings.Count(stdout, "do {") != 1 {
		t.Errorf("exit %d:\n%s", code, stdout)
	}
}
