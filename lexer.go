/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package ucum

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	middleDot        = '·'
	superscriptMinus = '⁻'
)

// superscripts maps superscript digit glyphs to their values.
var superscripts = map[rune]int{
	'⁰': 0, '¹': 1, '²': 2, '³': 3, '⁴': 4,
	'⁵': 5, '⁶': 6, '⁷': 7, '⁸': 8, '⁹': 9,
}

// lexer produces tokens one at a time. It is a small value; copying it
// saves the cursor.
type lexer struct {
	src string
	pos int
}

// Scanner reads the tokens of a text one at a time. Nothing past the
// last token returned has been scanned.
type Scanner struct {
	l    lexer
	last Token
	done bool
}

// NewScanner returns a Scanner over text.
func NewScanner(text string) *Scanner {
	return &Scanner{l: lexer{src: text}}
}

// Next returns the next token. Once it has returned an EOF or Illegal
// token it returns that token again.
func (s *Scanner) Next() Token {
	if s.done {
		return s.last
	}
	s.last = s.l.next()
	s.done = s.last.Kind == EOF || s.last.Kind == Illegal
	return s.last
}

// Tokenize splits text into tokens, ending with an EOF token. It
// collects the tokens of a Scanner.
func Tokenize(text string) ([]Token, error) {
	s := NewScanner(text)
	var toks []Token
	for {
		t := s.Next()
		if t.Kind == Illegal {
			return toks, lexicalError(t)
		}
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks, nil
		}
	}
}

func (l *lexer) peek() (rune, int) {
	if l.pos >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) next() Token {
	space := false
	for {
		r, w := l.peek()
		if w == 0 || !unicode.IsSpace(r) {
			break
		}
		l.pos += w
		space = true
	}
	start := l.pos
	tok := func(k Kind) Token {
		return Token{Kind: k, Text: l.src[start:l.pos], Pos: start, Space: space}
	}
	r, w := l.peek()
	if w == 0 {
		return Token{Kind: EOF, Pos: start, Space: space}
	}
	switch {
	case r >= '0' && r <= '9':
		l.number()
		return tok(Factor)
	case r == '{':
		end := strings.IndexByte(l.src[start:], '}')
		if end < 0 {
			l.pos += w
			return tok(Illegal)
		}
		l.pos = start + end + 1
		t := tok(Annotation)
		t.Text = l.src[start+1 : l.pos-1]
		return t
	case isAtomStart(r):
		if bad, ok := l.atom(); !ok {
			return Token{Kind: Illegal, Text: "[", Pos: bad, Space: space}
		}
		return tok(Atom)
	case r == superscriptMinus || isSuperscript(r):
		l.pos += w
		for {
			r, w := l.peek()
			if !isSuperscript(r) {
				break
			}
			l.pos += w
		}
		return tok(Superscript)
	}
	l.pos += w
	switch r {
	case '+', '-':
		return tok(Sign)
	case '.', '*', middleDot:
		return tok(Dot)
	case '/':
		return tok(Solidus)
	case '^':
		return tok(Caret)
	case '(':
		return tok(LParen)
	case ')':
		return tok(RParen)
	case ';':
		return tok(Semicolon)
	}
	return tok(Illegal)
}

// number scans digits with an optional fraction and exponent. A '.'
// belongs to the number only when a digit follows it, so "2.m" is two
// multiplied terms.
func (l *lexer) number() {
	l.digits()
	if l.at(".") && l.digitAt(l.pos+1) {
		l.pos++
		l.digits()
	}
	if l.at("e") || l.at("E") {
		i := l.pos + 1
		if i < len(l.src) && (l.src[i] == '+' || l.src[i] == '-') {
			i++
		}
		if l.digitAt(i) {
			l.pos = i
			l.digits()
		}
	}
}

func (l *lexer) digits() {
	for l.digitAt(l.pos) {
		l.pos++
	}
}

func (l *lexer) digitAt(i int) bool {
	return i < len(l.src) && l.src[i] >= '0' && l.src[i] <= '9'
}

func (l *lexer) at(s string) bool { return strings.HasPrefix(l.src[l.pos:], s) }

// atom scans atom characters and bracketed segments. Digits may only
// appear inside brackets, so "m2" is an atom followed by an exponent.
// An unterminated bracket fails at the bracket's position.
func (l *lexer) atom() (int, bool) {
	for {
		r, w := l.peek()
		switch {
		case r == '[':
			end := strings.IndexByte(l.src[l.pos:], ']')
			if end < 0 {
				bad := l.pos
				l.pos += w
				return bad, false
			}
			l.pos += end + 1
		case w > 0 && isAtomChar(r):
			l.pos += w
		default:
			return 0, true
		}
	}
}

func isAtomStart(r rune) bool { return r == '[' || isAtomChar(r) }

func isAtomChar(r rune) bool {
	switch r {
	case '_', '%', '\'', '°':
		return true
	}
	return unicode.IsLetter(r)
}

func isSuperscript(r rune) bool {
	_, ok := superscripts[r]
	return ok
}
