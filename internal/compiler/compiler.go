// Package compiler lowers a internal/parsetree.Node into a flat
// internal/vmprog.Program.
//
// Code generation walks the parse tree building small instruction
// fragments, each tagged with a fragment identifier, and resolves those
// identifiers into final instruction-array indices only once the whole
// tree has been visited.
package compiler

import (
	"fmt"

	"github.com/brenns10/regex/internal/parsetree"
	"github.com/brenns10/regex/internal/regexlog"
	"github.com/brenns10/regex/internal/token"
	"github.com/brenns10/regex/internal/vmprog"
	"go.uber.org/zap"
)

// ErrUnsupportedSpecial is returned when the pattern uses a backslash
// escape (e.g. \w, \s, \d) that this engine does not implement. Such
// constructs fail compilation cleanly rather than silently matching
// nothing.
type ErrUnsupportedSpecial struct {
	Letter byte
}

func (e *ErrUnsupportedSpecial) Error() string {
	return fmt.Sprintf("regex: unsupported escape \\%c", e.Letter)
}

// instNode is a code-generation fragment instruction. Its next field
// forward-links it to the instruction that follows once fragments are
// joined; Jump/Split operands hold fragment identifiers (n.id of some
// other instNode) until flatten rewrites them into final array indices.
type instNode struct {
	id    int
	ins   vmprog.Instruction
	pairs [][2]byte // Range/NRange only: raw byte-pair data, by-value until flatten
	next  *instNode
}

// fragment is a (head, tail) pair into an instNode chain. tail always
// points at the fragment's dangling Match, its natural continuation,
// until some join consumes it.
type fragment struct {
	head *instNode
	tail *instNode
}

// Compile lowers tree (a REGEX parse tree) into a flat bytecode program.
func Compile(tree *parsetree.Node) (*vmprog.Program, error) {
	g := &generator{}
	f, err := g.compileRegex(tree)
	if err != nil {
		regexlog.L().Debug("compile failed", zap.Error(err))
		return nil, err
	}
	prog := g.flatten(f)
	regexlog.L().Debug("compile succeeded",
		zap.Int("instructions", len(prog.Code)),
		zap.Int("capture_slots", prog.NumSlots()))
	return prog, nil
}

// generator holds the monotonic counters used while building fragments:
// one for fresh instNode identifiers, one for capturing-group numbering
// in left-to-right parse order.
type generator struct {
	nextID    int
	nextGroup int
}

func (g *generator) fresh() int {
	id := g.nextID
	g.nextID++
	return id
}

func (g *generator) node(ins vmprog.Instruction) *instNode {
	return &instNode{id: g.fresh(), ins: ins}
}

// join splices fragment list b onto the tail of a: a's trailing Match
// becomes the splice point. Any Jump/Split elsewhere
// in a that targets a's trailing Match is retargeted to b's first
// instruction, and the trailing Match itself is removed.
func join(a, b fragment) fragment {
	if a.head == nil {
		return b
	}
	matchID := a.tail.id

	for n := a.head; n != a.tail; n = n.next {
		switch n.ins.Op {
		case vmprog.Jump:
			if n.ins.X == matchID {
				n.ins.X = b.head.id
			}
		case vmprog.Split:
			if n.ins.X == matchID {
				n.ins.X = b.head.id
			}
			if n.ins.Y == matchID {
				n.ins.Y = b.head.id
			}
		}
	}

	if a.head == a.tail {
		// a was nothing but its own dangling Match: it vanishes entirely.
		return b
	}

	pred := a.head
	for pred.next != a.tail {
		pred = pred.next
	}
	pred.next = b.head
	return fragment{head: a.head, tail: b.tail}
}

// compileRegex implements REGEX → SUB | SUB '|' REGEX.
func (g *generator) compileRegex(n *parsetree.Node) (fragment, error) {
	switch n.Tag {
	case parsetree.TagRegexOne:
		return g.compileSub(n.Child(0))

	case parsetree.TagRegexAlt:
		sFrag, err := g.compileSub(n.Child(0))
		if err != nil {
			return fragment{}, err
		}
		rFrag, err := g.compileRegex(n.Child(2))
		if err != nil {
			return fragment{}, err
		}

		matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})
		jumpNode := g.node(vmprog.Instruction{Op: vmprog.Jump, X: matchNode.id})

		sJoined := join(sFrag, fragment{head: jumpNode, tail: jumpNode})
		rJoined := join(rFrag, fragment{head: matchNode, tail: matchNode})
		jumpNode.next = rJoined.head

		splitNode := g.node(vmprog.Instruction{Op: vmprog.Split, X: sJoined.head.id, Y: rJoined.head.id})
		splitNode.next = sJoined.head

		return fragment{head: splitNode, tail: rJoined.tail}, nil

	default:
		return fragment{}, fmt.Errorf("compiler: unexpected REGEX tag %v", n.Tag)
	}
}

// compileSub implements SUB → EXPR | EXPR SUB.
func (g *generator) compileSub(n *parsetree.Node) (fragment, error) {
	switch n.Tag {
	case parsetree.TagSubOne:
		return g.compileExpr(n.Child(0))

	case parsetree.TagSubCons:
		exprFrag, err := g.compileExpr(n.Child(0))
		if err != nil {
			return fragment{}, err
		}
		subFrag, err := g.compileSub(n.Child(1))
		if err != nil {
			return fragment{}, err
		}
		return join(exprFrag, subFrag), nil

	default:
		return fragment{}, fmt.Errorf("compiler: unexpected SUB tag %v", n.Tag)
	}
}

// compileExpr implements EXPR → TERM | TERM '+' '?'? | TERM '*' '?'? | TERM '?' '?'?.
func (g *generator) compileExpr(n *parsetree.Node) (fragment, error) {
	switch n.Tag {
	case parsetree.TagBare:
		return g.compileTerm(n.Child(0))

	case parsetree.TagGreedy:
		f, err := g.compileTerm(n.Child(0))
		if err != nil {
			return fragment{}, err
		}
		return g.quantify(f, n.Child(1).Tok.Kind, true)

	case parsetree.TagNonGreedy:
		f, err := g.compileTerm(n.Child(0))
		if err != nil {
			return fragment{}, err
		}
		return g.quantify(f, n.Child(1).Tok.Kind, false)

	default:
		return fragment{}, fmt.Errorf("compiler: unexpected EXPR tag %v", n.Tag)
	}
}

// quantify applies the Plus/Star/Question schema to f, swapping Split
// operands when greedy is false.
func (g *generator) quantify(f fragment, quant token.Kind, greedy bool) (fragment, error) {
	switch quant {
	case token.Plus:
		return g.plus(f, greedy), nil
	case token.Star:
		return g.star(f, greedy), nil
	case token.Question:
		return g.optional(f, greedy), nil
	default:
		return fragment{}, fmt.Errorf("compiler: unexpected quantifier %v", quant)
	}
}

// star implements EXPR → TERM '*':
//
//	L1: Split L2 L3
//	L2: <f>
//	    Jump L1
//	L3: Match
func (g *generator) star(f fragment, greedy bool) fragment {
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})
	splitNode := g.node(vmprog.Instruction{})

	// f's dangling Match becomes the back-edge to the split.
	f.tail.ins = vmprog.Instruction{Op: vmprog.Jump, X: splitNode.id}
	f.tail.next = matchNode

	if greedy {
		splitNode.ins = vmprog.Instruction{Op: vmprog.Split, X: f.head.id, Y: matchNode.id}
	} else {
		splitNode.ins = vmprog.Instruction{Op: vmprog.Split, X: matchNode.id, Y: f.head.id}
	}
	splitNode.next = f.head

	return fragment{head: splitNode, tail: matchNode}
}

// plus implements EXPR → TERM '+':
//
//	L1: <f>
//	    Split L1 L2
//	L2: Match
func (g *generator) plus(f fragment, greedy bool) fragment {
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})

	// f's dangling Match becomes the Split itself, in the same slot.
	if greedy {
		f.tail.ins = vmprog.Instruction{Op: vmprog.Split, X: f.head.id, Y: matchNode.id}
	} else {
		f.tail.ins = vmprog.Instruction{Op: vmprog.Split, X: matchNode.id, Y: f.head.id}
	}
	f.tail.next = matchNode

	return fragment{head: f.head, tail: matchNode}
}

// optional implements EXPR → TERM '?':
//
//	    Split L1 L2
//	L1: <f>
//	L2: Match
func (g *generator) optional(f fragment, greedy bool) fragment {
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})
	joined := join(f, fragment{head: matchNode, tail: matchNode})

	splitNode := g.node(vmprog.Instruction{})
	if greedy {
		splitNode.ins = vmprog.Instruction{Op: vmprog.Split, X: joined.head.id, Y: matchNode.id}
	} else {
		splitNode.ins = vmprog.Instruction{Op: vmprog.Split, X: matchNode.id, Y: joined.head.id}
	}
	splitNode.next = joined.head

	return fragment{head: splitNode, tail: matchNode}
}

// compileTerm implements the TERM productions.
func (g *generator) compileTerm(n *parsetree.Node) (fragment, error) {
	switch n.Tag {
	case parsetree.TagLiteral:
		tok := n.Child(0).Tok
		if tok.Kind == token.Dot {
			return g.charlike(vmprog.Instruction{Op: vmprog.Any}), nil
		}
		if tok.Kind == token.Special {
			return fragment{}, &ErrUnsupportedSpecial{Letter: tok.Val}
		}
		return g.charlike(vmprog.Instruction{Op: vmprog.Char, C: tok.Val}), nil

	case parsetree.TagGroup:
		k := g.nextGroup
		g.nextGroup++
		return g.group(k, n.Child(1))

	case parsetree.TagPosClass:
		ranges, err := g.classRanges(n.Child(1))
		if err != nil {
			return fragment{}, err
		}
		return g.class(ranges, false), nil

	case parsetree.TagNegClass:
		ranges, err := g.classRanges(n.Child(2))
		if err != nil {
			return fragment{}, err
		}
		return g.class(ranges, true), nil

	default:
		return fragment{}, fmt.Errorf("compiler: unexpected TERM tag %v", n.Tag)
	}
}

// charlike builds a "single instruction ; Match" fragment, the schema
// shared by Char and Any.
func (g *generator) charlike(ins vmprog.Instruction) fragment {
	body := g.node(ins)
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})
	body.next = matchNode
	return fragment{head: body, tail: matchNode}
}

// group implements TERM → '(' REGEX ')':
//
//	Save(2k) ; <code for R> ; Save(2k+1) ; Match
func (g *generator) group(k int, r *parsetree.Node) (fragment, error) {
	rFrag, err := g.compileRegex(r)
	if err != nil {
		return fragment{}, err
	}

	openNode := g.node(vmprog.Instruction{Op: vmprog.Save, S: 2 * k})
	closeNode := g.node(vmprog.Instruction{Op: vmprog.Save, S: 2*k + 1})
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})

	inner := join(rFrag, fragment{head: closeNode, tail: closeNode})
	openNode.next = inner.head
	closeNode.next = matchNode

	return fragment{head: openNode, tail: matchNode}, nil
}

// class builds the Range/NRange schema: the instruction's operand count
// equals the number of range pairs, inlined as raw byte data.
func (g *generator) class(ranges [][2]byte, negate bool) fragment {
	op := vmprog.Range
	if negate {
		op = vmprog.NRange
	}
	body := g.node(vmprog.Instruction{Op: op, S: len(ranges)})
	body.pairs = ranges
	matchNode := g.node(vmprog.Instruction{Op: vmprog.Match})
	body.next = matchNode
	return fragment{head: body, tail: matchNode}
}

// classRanges walks a CLASS parse tree's right-linear chain into the
// flat list of inclusive byte-pair ranges it describes. A bare character
// becomes [c,c]; a bare '-' becomes ['-','-'].
func (g *generator) classRanges(n *parsetree.Node) ([][2]byte, error) {
	switch n.Tag {
	case parsetree.TagClassRangeCons:
		lo, err := cclassByte(n.Child(0).Tok)
		if err != nil {
			return nil, err
		}
		hi, err := cclassByte(n.Child(1).Tok)
		if err != nil {
			return nil, err
		}
		rest, err := g.classRanges(n.Child(2))
		if err != nil {
			return nil, err
		}
		return append([][2]byte{{lo, hi}}, rest...), nil

	case parsetree.TagClassRangeOne:
		lo, err := cclassByte(n.Child(0).Tok)
		if err != nil {
			return nil, err
		}
		hi, err := cclassByte(n.Child(1).Tok)
		if err != nil {
			return nil, err
		}
		return [][2]byte{{lo, hi}}, nil

	case parsetree.TagClassCharCons:
		b, err := cclassByte(n.Child(0).Tok)
		if err != nil {
			return nil, err
		}
		rest, err := g.classRanges(n.Child(1))
		if err != nil {
			return nil, err
		}
		return append([][2]byte{{b, b}}, rest...), nil

	case parsetree.TagClassCharOne:
		b, err := cclassByte(n.Child(0).Tok)
		if err != nil {
			return nil, err
		}
		return [][2]byte{{b, b}}, nil

	case parsetree.TagClassDash:
		return [][2]byte{{'-', '-'}}, nil

	default:
		return nil, fmt.Errorf("compiler: unexpected CLASS tag %v", n.Tag)
	}
}

// cclassByte maps a CCHAR terminal to its literal byte value,
// reinterpreting meta-characters as literals per the grammar.
func cclassByte(tok token.Token) (byte, error) {
	switch tok.Kind {
	case token.Dot:
		return '.', nil
	case token.LParen:
		return '(', nil
	case token.RParen:
		return ')', nil
	case token.Plus:
		return '+', nil
	case token.Star:
		return '*', nil
	case token.Question:
		return '?', nil
	case token.Pipe:
		return '|', nil
	case token.Caret:
		return '^', nil
	case token.CharSym:
		return tok.Val, nil
	default:
		return 0, fmt.Errorf("compiler: token %v cannot appear in a character class", tok)
	}
}

// flatten assigns each instNode reachable from f.head a final array
// index, rewrites Jump/Split operands from identifiers to indices, and
// copies Range/NRange byte-pair data into the program's shared pool.
func (g *generator) flatten(f fragment) *vmprog.Program {
	var nodes []*instNode
	idx := make(map[int]int)
	for n := f.head; n != nil; n = n.next {
		idx[n.id] = len(nodes)
		nodes = append(nodes, n)
	}

	prog := &vmprog.Program{Code: make([]vmprog.Instruction, 0, len(nodes))}
	for _, n := range nodes {
		ins := n.ins
		switch ins.Op {
		case vmprog.Jump:
			ins.X = idx[ins.X]
		case vmprog.Split:
			ins.X = idx[ins.X]
			ins.Y = idx[ins.Y]
		case vmprog.Range, vmprog.NRange:
			ins.X = len(prog.Ranges)
			ins.S = len(n.pairs)
			prog.Ranges = append(prog.Ranges, n.pairs...)
		}
		prog.Code = append(prog.Code, ins)
	}
	return prog
}
