// Package lexer tokenizes a regex pattern into the terminal vocabulary of
// internal/token.
//
// The fixed grammar keeps the lexer's shape simple: a byte cursor, the
// current and previous tokens, and a small pushback buffer the parser's
// class routine relies on. So the lexer is a plain struct with two
// methods, not a goroutine.
package lexer

import (
	"errors"

	"github.com/brenns10/regex/internal/token"
)

// ErrBadEscape is returned when a backslash appears as the final byte of
// the pattern, with nothing left to escape.
var ErrBadEscape = errors.New("lexer: trailing backslash at end of pattern")

// escapable is the set of meta-characters that retain their literal value
// when backslash-escaped.
const escapable = "()[]+-*?^"

// Lexer tokenizes a pattern one byte at a time.
type Lexer struct {
	src  []byte
	pos  int
	cur  token.Token
	prev token.Token
	push []token.Token
	eof  bool
}

// New returns a Lexer over pattern. The pattern need not be
// null-terminated; Next synthesizes the terminating Eof token.
func New(pattern []byte) *Lexer {
	return &Lexer{src: pattern}
}

// Prev returns the token most recently returned by Next, before the
// current one. It exists purely as a parser convenience.
func (l *Lexer) Prev() token.Token {
	return l.prev
}

// Unget pushes t back; the next call to Next returns t before consuming
// any further input. At least one token of pushback is guaranteed.
func (l *Lexer) Unget(t token.Token) {
	l.push = append(l.push, t)
}

// Next advances the lexer and returns the next token. Once an Eof token
// has been produced, subsequent calls keep returning Eof.
func (l *Lexer) Next() (token.Token, error) {
	l.prev = l.cur

	if n := len(l.push); n > 0 {
		t := l.push[n-1]
		l.push = l.push[:n-1]
		l.cur = t
		return t, nil
	}

	if l.eof {
		l.cur = token.Token{Kind: token.Eof}
		return l.cur, nil
	}

	if l.pos >= len(l.src) {
		l.eof = true
		l.cur = token.Token{Kind: token.Eof}
		return l.cur, nil
	}

	b := l.src[l.pos]
	l.pos++

	if b == '\\' {
		t, err := l.escape()
		if err != nil {
			return token.Token{}, err
		}
		l.cur = t
		return t, nil
	}

	t := l.unescaped(b)
	l.cur = t
	return t, nil
}

// escape lexes the byte following a backslash.
func (l *Lexer) escape() (token.Token, error) {
	if l.pos >= len(l.src) {
		return token.Token{}, ErrBadEscape
	}
	b := l.src[l.pos]
	l.pos++

	switch {
	case containsByte(escapable, b):
		return token.Token{Kind: token.CharSym, Val: b}, nil
	case b == 'n':
		return token.Token{Kind: token.CharSym, Val: '\n'}, nil
	case isLetter(b):
		return token.Token{Kind: token.Special, Val: b}, nil
	default:
		// Any other escaped byte stands for itself.
		return token.Token{Kind: token.CharSym, Val: b}, nil
	}
}

// unescaped dispatches a byte that was not preceded by a backslash.
func (l *Lexer) unescaped(b byte) token.Token {
	switch b {
	case '(':
		return token.Token{Kind: token.LParen, Val: b}
	case ')':
		return token.Token{Kind: token.RParen, Val: b}
	case '[':
		return token.Token{Kind: token.LBracket, Val: b}
	case ']':
		return token.Token{Kind: token.RBracket, Val: b}
	case '+':
		return token.Token{Kind: token.Plus, Val: b}
	case '-':
		return token.Token{Kind: token.Minus, Val: b}
	case '*':
		return token.Token{Kind: token.Star, Val: b}
	case '?':
		return token.Token{Kind: token.Question, Val: b}
	case '^':
		return token.Token{Kind: token.Caret, Val: b}
	case '|':
		return token.Token{Kind: token.Pipe, Val: b}
	case '.':
		return token.Token{Kind: token.Dot, Val: b}
	case 0:
		l.eof = true
		return token.Token{Kind: token.Eof}
	default:
		return token.Token{Kind: token.CharSym, Val: b}
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
