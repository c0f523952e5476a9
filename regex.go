// Package regex implements a Thompson/Pike bytecode-VM regular
// expression engine: a pattern is lexed, parsed into a tree, and
// compiled into a flat instruction program that a linear-time VM
// executes against a subject string.
//
// The engine supports literal characters, `.`, alternation (`|`),
// grouping with captures (`(...)`, concatenation, and the `*`, `+`, `?`
// quantifiers with their non-greedy (`*?`, `+?`, `??`) forms, and
// positive/negative character classes (`[...]`, `[^...]`). It does not
// support anchors, backreferences, lookaround, bounded repetition, or
// Unicode beyond single bytes.
package regex

import (
	"fmt"
	"io"

	"github.com/brenns10/regex/internal/asmfmt"
	"github.com/brenns10/regex/internal/compiler"
	"github.com/brenns10/regex/internal/parser"
	"github.com/brenns10/regex/internal/pike"
	"github.com/brenns10/regex/internal/vmprog"
)

// Program is a compiled regular expression, safe for concurrent use by
// multiple goroutines: each call to a matching method allocates its own
// VM scratch state.
type Program struct {
	prog *vmprog.Program
}

// Compile parses and compiles pattern into a Program.
func Compile(pattern string) (*Program, error) {
	tree, err := parser.Parse([]byte(pattern))
	if err != nil {
		return nil, err
	}
	prog, err := compiler.Compile(tree)
	if err != nil {
		return nil, err
	}
	return &Program{prog: prog}, nil
}

// MustCompile is like Compile but panics on error, for use with
// pattern constants known to be valid at init time.
func MustCompile(pattern string) *Program {
	p, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("regex: MustCompile(%q): %v", pattern, err))
	}
	return p
}

// Match reports whether subject has a match anchored at its start.
func (p *Program) Match(subject []byte) bool {
	end, _ := pike.Execute(p.prog, subject)
	return end != pike.NoMatch
}

// FindSubmatchIndex runs p against subject and returns the capture
// slot array of the match: slot 0 is always [0, end) of the overall
// match, and slots 2k/2k+1 are the k-th group's bounds (or (-1, -1) if
// that group did not participate). It returns nil if there is no
// match.
func (p *Program) FindSubmatchIndex(subject []byte) []int {
	end, caps := pike.Execute(p.prog, subject)
	if end == pike.NoMatch {
		return nil
	}
	result := make([]int, len(caps)+2)
	result[0] = 0
	result[1] = end
	copy(result[2:], caps)
	return result
}

// NumSubexp returns the number of capturing groups in the compiled
// pattern.
func (p *Program) NumSubexp() int {
	return p.prog.NumSlots() / 2
}

// String renders the compiled program as an index-numbered instruction
// listing, one instruction per line with Jump/Split targets shown as
// indices. This is not the labelled form read by internal/asmfmt; use
// WriteAssembly for that.
func (p *Program) String() string {
	return p.prog.String()
}

// CompileProgram wraps a pre-built internal/vmprog.Program (e.g. one
// produced by asmfmt.Read) as a Program, so assembled-by-hand programs
// run through the same API as compiled patterns.
func CompileProgram(prog *vmprog.Program) *Program {
	return &Program{prog: prog}
}

// WriteAssembly writes p's compiled form to w in the textual assembly
// format implemented by internal/asmfmt.
func (p *Program) WriteAssembly(w io.Writer) error {
	return asmfmt.Write(w, p.prog)
}
