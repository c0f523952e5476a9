package asmfmt_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/brenns10/regex/internal/asmfmt"
	"github.com/brenns10/regex/internal/compiler"
	"github.com/brenns10/regex/internal/parser"
	"github.com/brenns10/regex/internal/vmprog"
)

func mustCompile(t *testing.T, pattern string) *vmprog.Program {
	t.Helper()
	tree, err := parser.Parse([]byte(pattern))
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	prog, err := compiler.Compile(tree)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return prog
}

func roundTrip(t *testing.T, prog *vmprog.Program) *vmprog.Program {
	t.Helper()
	var buf strings.Builder
	if err := asmfmt.Write(&buf, prog); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := asmfmt.Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v\nsource:\n%s", err, buf.String())
	}
	return got
}

func TestRoundTrip_literalConcat(t *testing.T) {
	prog := mustCompile(t, "ab")
	got := roundTrip(t, prog)
	if !reflect.DeepEqual(prog, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", prog, got)
	}
}

func TestRoundTrip_quantifiersAndGroups(t *testing.T) {
	prog := mustCompile(t, "(a+)(b+)")
	got := roundTrip(t, prog)
	if !reflect.DeepEqual(prog, got) {
		t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", prog, got)
	}
}

func TestRoundTrip_classes(t *testing.T) {
	prog := mustCompile(t, "[a-ce -]+")
	got := roundTrip(t, prog)
	if !reflect.DeepEqual(prog, got) {
		t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", prog, got)
	}
}

func TestRoundTrip_alternation(t *testing.T) {
	prog := mustCompile(t, "foo|bar")
	got := roundTrip(t, prog)
	if !reflect.DeepEqual(prog, got) {
		t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", prog, got)
	}
}

func TestWrite_labelsOnlyOnTargets(t *testing.T) {
	prog := mustCompile(t, "ab")
	var buf strings.Builder
	if err := asmfmt.Write(&buf, prog); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "L1") {
		t.Fatalf("non-branching program should have no labels:\n%s", buf.String())
	}
}

func TestRead_unknownLabel(t *testing.T) {
	src := "\tjump Lnope\n"
	if _, err := asmfmt.Read(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestRead_unknownOpcode(t *testing.T) {
	src := "\tfrobnicate\n"
	if _, err := asmfmt.Read(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for unknown opcode")
	}
}

func TestRead_wrongArity(t *testing.T) {
	src := "\tchar 'a' 'b'\n"
	if _, err := asmfmt.Read(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for wrong operand count")
	}
}

func TestRead_commentsAndBlankLines(t *testing.T) {
	src := "; a comment\n\n\tchar 'a' ; trailing comment\n\tmatch\n"
	prog, err := asmfmt.Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(prog.Code) != 2 || prog.Code[0].Op != vmprog.Char || prog.Code[0].C != 'a' {
		t.Fatalf("got %+v", prog.Code)
	}
}

func TestRead_forwardLabelReference(t *testing.T) {
	src := "\tjump L1\nL1:\n\tmatch\n"
	prog, err := asmfmt.Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if prog.Code[0].Op != vmprog.Jump || prog.Code[0].X != 1 {
		t.Fatalf("forward jump unresolved: %+v", prog.Code[0])
	}
}
