package parser_test

import (
	"testing"

	"github.com/brenns10/regex/internal/parser"
	"github.com/brenns10/regex/internal/parsetree"
)

func mustParse(t *testing.T, pattern string) *parsetree.Node {
	t.Helper()
	tree, err := parser.Parse([]byte(pattern))
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", pattern, err)
	}
	return tree
}

func TestParse_treeShapes(t *testing.T) {
	// (a+)(b+): REGEX/SUB(2) with two group TERMs.
	tree := mustParse(t, "(a+)(b+)")
	if tree.Kind != parsetree.Regex || tree.Tag != parsetree.TagRegexOne {
		t.Fatalf("top node = %v/%v, want REGEX/TagRegexOne", tree.Kind, tree.Tag)
	}
	sub := tree.Child(0)
	if sub.Kind != parsetree.Sub || sub.Tag != parsetree.TagSubCons {
		t.Fatalf("sub = %v/%v, want SUB/TagSubCons", sub.Kind, sub.Tag)
	}
	firstExpr := sub.Child(0)
	if firstExpr.Kind != parsetree.Expr || firstExpr.Tag != parsetree.TagBare {
		t.Fatalf("first expr = %v/%v, want EXPR/TagBare", firstExpr.Kind, firstExpr.Tag)
	}
	firstTerm := firstExpr.Child(0)
	if firstTerm.Kind != parsetree.Term || firstTerm.Tag != parsetree.TagGroup {
		t.Fatalf("first term = %v/%v, want TERM/TagGroup", firstTerm.Kind, firstTerm.Tag)
	}
	if firstTerm.NumChildren != 3 {
		t.Fatalf("group term has %d children, want 3", firstTerm.NumChildren)
	}
}

func TestParse_alternation(t *testing.T) {
	tree := mustParse(t, "foo|bar")
	if tree.Kind != parsetree.Regex || tree.Tag != parsetree.TagRegexAlt {
		t.Fatalf("top node = %v/%v, want REGEX/TagRegexAlt", tree.Kind, tree.Tag)
	}
	if tree.NumChildren != 3 {
		t.Fatalf("alt node has %d children, want 3", tree.NumChildren)
	}
}

func TestParse_nonGreedy(t *testing.T) {
	tree := mustParse(t, "a*?")
	sub := tree.Child(0)
	expr := sub.Child(0)
	if expr.Tag != parsetree.TagNonGreedy {
		t.Fatalf("tag = %v, want TagNonGreedy", expr.Tag)
	}
	if expr.NumChildren != 3 {
		t.Fatalf("non-greedy expr has %d children, want 3", expr.NumChildren)
	}
}

func TestParse_classDiscrimination(t *testing.T) {
	pos := mustParse(t, "[a-z]")
	posTerm := pos.Child(0).Child(0).Child(0)
	if posTerm.Tag != parsetree.TagPosClass {
		t.Fatalf("tag = %v, want TagPosClass", posTerm.Tag)
	}
	if posTerm.NumChildren != 3 || posTerm.Child(0).Tok.Kind.String() != "[" {
		t.Fatalf("positive class shape wrong: %+v", posTerm)
	}

	neg := mustParse(t, "[^a-z]")
	negTerm := neg.Child(0).Child(0).Child(0)
	if negTerm.Tag != parsetree.TagNegClass || negTerm.NumChildren != 4 {
		t.Fatalf("negative class shape wrong: %+v", negTerm)
	}

	group := mustParse(t, "(a)")
	groupTerm := group.Child(0).Child(0).Child(0)
	if groupTerm.Tag != parsetree.TagGroup || groupTerm.NumChildren != 3 {
		t.Fatalf("group shape wrong: %+v", groupTerm)
	}
}

func TestParse_classRangeAndDash(t *testing.T) {
	tree := mustParse(t, "[a-ce -]")
	class := tree.Child(0).Child(0).Child(0).Child(1)
	if class.Tag != parsetree.TagClassRangeCons {
		t.Fatalf("first class node tag = %v, want TagClassRangeCons", class.Tag)
	}
}

func TestParse_errors(t *testing.T) {
	cases := []string{
		"(a",       // missing ')'
		"[a-z",     // missing ']'
		"*",        // TERM cannot start with '*'
		"a|",       // the SUB after '|' needs a TERM; Eof cannot start one
	}
	for _, pattern := range cases {
		if _, err := parser.Parse([]byte(pattern)); err == nil {
			t.Errorf("Parse(%q): expected error, got none", pattern)
		}
	}
}
