// Package parser implements a recursive-descent parser, turning a token
// stream from internal/lexer into a internal/parsetree.Node.
//
// The parser keeps a buffered one-token lookahead and a set of mutually
// recursive read methods, one per grammar production, each consuming
// exactly the tokens its production describes before returning.
package parser

import (
	"fmt"

	"github.com/brenns10/regex/internal/lexer"
	"github.com/brenns10/regex/internal/parsetree"
	"github.com/brenns10/regex/internal/regexlog"
	"github.com/brenns10/regex/internal/token"
	"go.uber.org/zap"
)

// SyntaxError reports a parse failure naming the expected and actual
// token kinds.
type SyntaxError struct {
	Msg      string
	Expected token.Kind
	Got      token.Token
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("regex: syntax error: %s (got %v)", e.Msg, e.Got)
	}
	return fmt.Sprintf("regex: syntax error: expected %v, got %v", e.Expected, e.Got)
}

// Parse lexes and parses pattern, returning the REGEX parse tree.
func Parse(pattern []byte) (*parsetree.Node, error) {
	p := &parser{lex: lexer.New(pattern)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	tree, err := p.parseRegex()
	if err != nil {
		regexlog.L().Debug("parse failed", zap.Int("pattern_len", len(pattern)), zap.Error(err))
		return nil, err
	}
	if p.cur.Kind != token.Eof {
		err := &SyntaxError{Msg: "trailing input after regex", Got: p.cur}
		regexlog.L().Debug("parse failed", zap.Int("pattern_len", len(pattern)), zap.Error(err))
		return nil, err
	}
	regexlog.L().Debug("parse succeeded", zap.Int("pattern_len", len(pattern)))
	return tree, nil
}

type parser struct {
	lex *lexer.Lexer
	cur token.Token
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, &SyntaxError{Expected: k, Got: p.cur}
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// parseRegex implements REGEX → SUB | SUB '|' REGEX.
func (p *parser) parseRegex() (*parsetree.Node, error) {
	sub, err := p.parseSub()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Pipe {
		return parsetree.New(parsetree.Regex, parsetree.TagRegexOne, sub), nil
	}
	pipeTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	rest, err := p.parseRegex()
	if err != nil {
		return nil, err
	}
	return parsetree.New(parsetree.Regex, parsetree.TagRegexAlt, sub, parsetree.Leaf(pipeTok), rest), nil
}

// parseSub implements SUB → EXPR | EXPR SUB, terminating the right-linear
// chain on Eof, RParen, or Pipe, and pruning any empty trailing SUB.
func (p *parser) parseSub() (*parsetree.Node, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.subEnds() {
		return parsetree.New(parsetree.Sub, parsetree.TagSubOne, expr), nil
	}
	rest, err := p.parseSub()
	if err != nil {
		return nil, err
	}
	return parsetree.New(parsetree.Sub, parsetree.TagSubCons, expr, rest), nil
}

func (p *parser) subEnds() bool {
	switch p.cur.Kind {
	case token.Eof, token.RParen, token.Pipe:
		return true
	default:
		return false
	}
}

// parseExpr implements EXPR → TERM | TERM '+' '?'? | TERM '*' '?'? | TERM '?' '?'?.
func (p *parser) parseExpr() (*parsetree.Node, error) {
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	switch p.cur.Kind {
	case token.Plus, token.Star, token.Question:
		quant := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Question {
			q := p.cur
			if err := p.advance(); err != nil {
				return nil, err
			}
			return parsetree.New(parsetree.Expr, parsetree.TagNonGreedy, term, parsetree.Leaf(quant), parsetree.Leaf(q)), nil
		}
		return parsetree.New(parsetree.Expr, parsetree.TagGreedy, term, parsetree.Leaf(quant)), nil
	default:
		return parsetree.New(parsetree.Expr, parsetree.TagBare, term), nil
	}
}

// parseTerm implements the TERM productions. The '-', '^', and '.'
// tokens reaching here are literal characters except '.', which code
// generation maps to Any.
func (p *parser) parseTerm() (*parsetree.Node, error) {
	tok := p.cur
	switch tok.Kind {
	case token.CharSym, token.Special, token.Dot, token.Minus, token.Caret:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parsetree.New(parsetree.Term, parsetree.TagLiteral, parsetree.Leaf(tok)), nil

	case token.LParen:
		open := tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseRegex()
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(token.RParen)
		if err != nil {
			return nil, err
		}
		return parsetree.New(parsetree.Term, parsetree.TagGroup, parsetree.Leaf(open), inner, parsetree.Leaf(closeTok)), nil

	case token.LBracket:
		open := tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Caret {
			caret := p.cur
			if err := p.advance(); err != nil {
				return nil, err
			}
			class, err := p.parseClass()
			if err != nil {
				return nil, err
			}
			closeTok, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			return parsetree.New(parsetree.Term, parsetree.TagNegClass, parsetree.Leaf(open), parsetree.Leaf(caret), class, parsetree.Leaf(closeTok)), nil
		}
		class, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(token.RBracket)
		if err != nil {
			return nil, err
		}
		return parsetree.New(parsetree.Term, parsetree.TagPosClass, parsetree.Leaf(open), class, parsetree.Leaf(closeTok)), nil

	default:
		return nil, &SyntaxError{Msg: "unexpected token in term", Got: tok}
	}
}

// cchar reports whether a token kind is a valid CCHAR: char, '.', '(',
// ')', '+', '*', '?', '|', '^'. Inside a class, these meta-characters are
// reinterpreted as literal bytes ('^' is special only directly after '[',
// where parseTerm consumes it before parseClass runs).
func cchar(k token.Kind) bool {
	switch k {
	case token.CharSym, token.Dot, token.LParen, token.RParen,
		token.Plus, token.Star, token.Question, token.Pipe, token.Caret:
		return true
	default:
		return false
	}
}

// parseClass implements the right-linear CLASS grammar, using one token
// of pushback to distinguish a range "c1-c3" from a bare "c1" followed
// by a trailing "-".
func (p *parser) parseClass() (*parsetree.Node, error) {
	switch {
	case cchar(p.cur.Kind):
		c1 := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Minus {
			minus := p.cur
			if err := p.advance(); err != nil {
				return nil, err
			}
			if cchar(p.cur.Kind) {
				c3 := p.cur
				if err := p.advance(); err != nil {
					return nil, err
				}
				if p.classContinues() {
					rest, err := p.parseClass()
					if err != nil {
						return nil, err
					}
					return parsetree.New(parsetree.Class, parsetree.TagClassRangeCons, parsetree.Leaf(c1), parsetree.Leaf(c3), rest), nil
				}
				return parsetree.New(parsetree.Class, parsetree.TagClassRangeOne, parsetree.Leaf(c1), parsetree.Leaf(c3)), nil
			}
			// Not a range: push the lookahead back behind the '-' and
			// reinstate '-' as the current token, then emit c1 alone.
			p.lex.Unget(p.cur)
			p.cur = minus
			return p.classCharThenContinue(c1)
		}
		return p.classCharThenContinue(c1)

	case p.cur.Kind == token.Minus:
		dash := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parsetree.New(parsetree.Class, parsetree.TagClassDash, parsetree.Leaf(dash)), nil

	default:
		return nil, &SyntaxError{Msg: "unexpected token in character class", Got: p.cur}
	}
}

func (p *parser) classCharThenContinue(c token.Token) (*parsetree.Node, error) {
	if p.classContinues() {
		rest, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		return parsetree.New(parsetree.Class, parsetree.TagClassCharCons, parsetree.Leaf(c), rest), nil
	}
	return parsetree.New(parsetree.Class, parsetree.TagClassCharOne, parsetree.Leaf(c)), nil
}

// classContinues reports whether another CLASS production follows,
// i.e. the lookahead is itself a CCHAR or a lone '-'.
func (p *parser) classContinues() bool {
	return cchar(p.cur.Kind) || p.cur.Kind == token.Minus
}
