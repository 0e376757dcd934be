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
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/spatialmodel/ucum/converter"
	"github.com/spatialmodel/ucum/measure"
	"github.com/spatialmodel/ucum/symbol"
)

const (
	maxDepth          = 32
	maxDigits         = 64
	maxExponentDigits = 3
	// maxExponent bounds the power and root of every factor of a unit,
	// and the exponent of a number written as m×10^e.
	maxExponent = 999
	// maxNumberBits bounds the size of the numbers of a unit. It is
	// above the largest number a literal can hold.
	maxNumberBits = 3600
)

// parser evaluates one expression. The grammar is
//
//	Expr      = [ Number Sign ] MulExpr [ Sign Number ]
//	MulExpr   = ( ExpExpr | '/' ExpExpr ) { ( '.' | '/' ) ExpExpr }
//	ExpExpr   = ( Integer | 'e' ) '^' AtomicExpr
//	          | ( 'log' [ Integer ] | 'ln' ) '(' Expr ')'
//	          | AtomicExpr [ Exponent ]
//	AtomicExpr = Number | Atom | '(' Expr ')' | Annotation
//	Exponent  = '^' [ '(' ] [ Sign ] Integer [ '/' [ Sign ] Integer ')' ]
//	          | Superscript | Integer | '-' Integer
//
// Annotations may follow any ExpExpr. A bare Integer or '-' Integer
// exponent must directly follow its operand.
type parser struct {
	table    *symbol.Table
	lex      lexer
	tok      Token
	expected map[int]Kind
	depth    int
}

type state struct {
	lex lexer
	tok Token
}

func newParser(t *symbol.Table, text string) *parser {
	p := &parser{table: t, lex: lexer{src: text}, expected: make(map[int]Kind)}
	p.next()
	return p
}

func (p *parser) mark() state   { return state{lex: p.lex, tok: p.tok} }
func (p *parser) reset(s state) { p.lex, p.tok = s.lex, s.tok }
func (p *parser) next()         { p.tok = p.lex.next() }

// at reports whether the current token is one of kinds, and records
// kinds as acceptable at this position.
func (p *parser) at(kinds Kind) bool {
	p.expected[p.tok.Pos] |= kinds
	return p.tok.Kind&kinds != 0
}

func (p *parser) fail() error {
	if p.tok.Kind == Illegal {
		return lexicalError(p.tok)
	}
	return &SyntaxError{Pos: p.tok.Pos, Found: p.tok, Expected: p.expected[p.tok.Pos]}
}

func (p *parser) errorf(t Token, format string, args ...interface{}) error {
	return &SyntaxError{Pos: t.Pos, Found: t, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() (*measure.Unit, error) {
	u, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.at(Semicolon) {
		return nil, &UnsupportedOperationError{Op: "compound unit", Pos: p.tok.Pos}
	}
	if !p.at(EOF) {
		return nil, p.fail()
	}
	return u, nil
}

func (p *parser) expr() (*measure.Unit, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(p.tok, "expression nested deeper than %d levels", maxDepth)
	}

	var (
		pre    *big.Rat
		preTok Token
	)
	if p.at(Factor) {
		s := p.mark()
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if p.at(Sign) {
			if p.tok.Text == "-" {
				n.Neg(n)
			}
			preTok = p.tok
			p.next()
			pre = n
		} else {
			p.reset(s)
		}
	}

	u, err := p.mulExpr()
	if err != nil {
		return nil, err
	}
	if pre != nil {
		if u, err = p.limit(preTok, u.Shift(pre)); err != nil {
			return nil, err
		}
	}
	if p.at(Sign) {
		t := p.tok
		neg := t.Text == "-"
		p.next()
		if !p.at(Factor) {
			return nil, p.fail()
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if neg {
			n.Neg(n)
		}
		return p.limit(t, u.Shift(n))
	}
	return u, nil
}

func (p *parser) mulExpr() (*measure.Unit, error) {
	u := measure.One
	if !p.at(Solidus) {
		var err error
		if u, err = p.expExpr(); err != nil {
			return nil, err
		}
	}
	for {
		switch {
		case p.at(Dot):
			t := p.tok
			p.next()
			v, err := p.expExpr()
			if err != nil {
				return nil, err
			}
			if u, err = p.limit(t, u.Multiply(v)); err != nil {
				return nil, err
			}
		case p.at(Solidus):
			t := p.tok
			p.next()
			v, err := p.expExpr()
			if err != nil {
				return nil, err
			}
			if u, err = p.limit(t, u.Divide(v)); err != nil {
				return nil, err
			}
		default:
			return u, nil
		}
	}
}

func (p *parser) expExpr() (*measure.Unit, error) {
	u, ok, err := p.logScale()
	if !ok {
		u, ok, err = p.logFunction()
	}
	if ok {
		if err != nil {
			return nil, err
		}
		p.annotations()
		return u, nil
	}

	if u, err = p.atomic(); err != nil {
		return nil, err
	}
	p.annotations()
	if u, err = p.exponent(u); err != nil {
		return nil, err
	}
	p.annotations()
	return u, nil
}

// annotations skips annotations, which do not change the unit.
func (p *parser) annotations() {
	for p.at(Annotation) {
		p.next()
	}
}

// logScale tries the form base^unit, where base is an integer or e.
// It commits only when the token after the caret cannot start a
// numeric exponent; otherwise the position is restored.
func (p *parser) logScale() (*measure.Unit, bool, error) {
	var base float64
	switch {
	case p.tok.Kind == Factor && isInteger(p.tok.Text) && len(p.tok.Text) <= maxExponentDigits:
		b, _ := strconv.Atoi(p.tok.Text)
		if b < 2 {
			return nil, false, nil
		}
		base = float64(b)
	case p.tok.Kind == Atom && p.table.Normalize(p.tok.Text) == p.table.Normalize("e"):
		base = math.E
	default:
		return nil, false, nil
	}
	s := p.mark()
	p.next()
	if !p.at(Caret) {
		p.reset(s)
		return nil, false, nil
	}
	p.next()
	if !p.logBody() {
		p.reset(s)
		return nil, false, nil
	}
	u, err := p.atomic()
	if err != nil {
		return nil, true, err
	}
	return u.Transform(converter.NewLog(base).Inverse()), true, nil
}

// logBody reports whether the current token, which follows a caret,
// starts a unit rather than a numeric exponent such as "2", "-1",
// "(2)" or "(2/3)". It does not move the parser.
func (p *parser) logBody() bool {
	if p.at(Atom) {
		return true
	}
	if !p.at(LParen) {
		return false
	}
	s := p.mark()
	defer p.reset(s)
	p.next()
	if p.tok.Kind == Sign {
		p.next()
	}
	if p.tok.Kind != Factor || !isInteger(p.tok.Text) {
		return true
	}
	p.next()
	return p.tok.Kind != RParen && p.tok.Kind != Solidus
}

// logFunction tries log(Expr), logN(Expr) and ln(Expr).
func (p *parser) logFunction() (*measure.Unit, bool, error) {
	if p.tok.Kind != Atom {
		return nil, false, nil
	}
	s := p.mark()
	var (
		base    = 10.0
		baseTok Token
	)
	switch p.table.Normalize(p.tok.Text) {
	case p.table.Normalize("ln"):
		base = math.E
		p.next()
	case p.table.Normalize("log"):
		p.next()
		if p.tok.Kind == Factor && !p.tok.Space && isInteger(p.tok.Text) {
			baseTok = p.tok
			p.next()
		}
	default:
		return nil, false, nil
	}
	if !p.at(LParen) {
		p.reset(s)
		return nil, false, nil
	}
	if baseTok.Kind == Factor {
		b, err := strconv.Atoi(baseTok.Text)
		if err != nil || len(baseTok.Text) > maxExponentDigits || b < 2 {
			return nil, true, p.errorf(baseTok, "invalid logarithm base %s", baseTok.Text)
		}
		base = float64(b)
	}
	p.next()
	u, err := p.expr()
	if err != nil {
		return nil, true, err
	}
	if !p.at(RParen) {
		return nil, true, p.fail()
	}
	p.next()
	return u.Transform(converter.NewLog(base)), true, nil
}

func (p *parser) atomic() (*measure.Unit, error) {
	switch {
	case p.at(Factor):
		t := p.tok
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if n.Sign() == 0 {
			return nil, p.errorf(t, "zero factor")
		}
		return p.limit(t, measure.One.Scale(n))
	case p.at(Atom):
		t := p.tok
		p.next()
		return p.resolve(t)
	case p.at(LParen):
		p.next()
		u, err := p.expr()
		if err != nil {
			return nil, err
		}
		if !p.at(RParen) {
			return nil, p.fail()
		}
		p.next()
		return u, nil
	case p.at(Annotation):
		p.next()
		return measure.One, nil
	}
	return nil, p.fail()
}

func (p *parser) exponent(u *measure.Unit) (*measure.Unit, error) {
	t := p.tok
	switch {
	case p.at(Superscript):
		n, err := p.superscript()
		if err != nil {
			return nil, err
		}
		return p.power(t, u, n, 1)
	case p.at(Caret):
		p.next()
		paren := p.at(LParen)
		if paren {
			p.next()
		}
		pow, err := p.integer()
		if err != nil {
			return nil, err
		}
		root := 1
		if paren {
			if p.at(Solidus) {
				p.next()
				rt := p.tok
				if root, err = p.integer(); err != nil {
					return nil, err
				}
				if root == 0 {
					return nil, p.errorf(rt, "zero root")
				}
			}
			if !p.at(RParen) {
				return nil, p.fail()
			}
			p.next()
		}
		return p.power(t, u, pow, root)
	case p.at(Factor) && !p.tok.Space && isInteger(p.tok.Text):
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return p.power(t, u, n, 1)
	case p.at(Sign) && p.tok.Text == "-" && !p.tok.Space:
		s := p.mark()
		p.next()
		if p.tok.Kind == Factor && !p.tok.Space && isInteger(p.tok.Text) {
			n, err := p.integer()
			if err != nil {
				return nil, err
			}
			return p.power(t, u, -n, 1)
		}
		p.reset(s)
	}
	return u, nil
}

// power returns u^(pow/root). Every factor of u is checked before the
// power is taken, so the work stays bounded.
func (p *parser) power(t Token, u *measure.Unit, pow, root int) (*measure.Unit, error) {
	if root < 0 {
		pow, root = -pow, -root
	}
	for _, f := range u.Factors() {
		if abs(f.Pow*pow) > maxExponent || f.Root*root > maxExponent {
			return nil, p.errorf(t, "exponent exceeds %d", maxExponent)
		}
		if r, ok := f.Unit.Scalar(); ok && ratBits(r)*abs(pow) > maxNumberBits {
			return nil, p.errorf(t, "number has more than %d digits", maxDigits)
		}
	}
	return p.limit(t, u.Pow(pow).Root(root))
}

// limit checks that the factors of u have bounded exponents and that
// its numbers and offset can be written back as literals.
func (p *parser) limit(t Token, u *measure.Unit) (*measure.Unit, error) {
	for _, f := range u.Factors() {
		if abs(f.Pow) > maxExponent || f.Root > maxExponent {
			return nil, p.errorf(t, "exponent exceeds %d", maxExponent)
		}
		if r, ok := f.Unit.Scalar(); ok && !fits(r) {
			return nil, p.errorf(t, "number has more than %d digits", maxDigits)
		}
	}
	if o, ok := offset(u); ok && !fits(o) {
		return nil, p.errorf(t, "offset has more than %d digits", maxDigits)
	}
	return u, nil
}

// offset returns the outermost shift of u.
func offset(u *measure.Unit) (*big.Rat, bool) {
	if u.Kind() != measure.Transformed {
		return nil, false
	}
	c := u.Op()
	if ch, ok := c.(converter.Chain); ok {
		c = ch[0]
	}
	if sh, ok := c.(converter.Shift); ok {
		return sh.Offset(), true
	}
	return nil, false
}

func ratBits(r *big.Rat) int {
	if n := r.Num().BitLen(); n > r.Denom().BitLen() {
		return n
	}
	return r.Denom().BitLen()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// integer consumes an optionally signed integer exponent.
func (p *parser) integer() (int, error) {
	neg := false
	if p.at(Sign) {
		neg = p.tok.Text == "-"
		p.next()
	}
	if !p.at(Factor) {
		return 0, p.fail()
	}
	t := p.tok
	if !isInteger(t.Text) {
		return 0, p.errorf(t, "exponent %s is not an integer", t.Text)
	}
	if len(t.Text) > maxExponentDigits {
		return 0, p.errorf(t, "exponent %s has more than %d digits", t.Text, maxExponentDigits)
	}
	n, _ := strconv.Atoi(t.Text)
	p.next()
	if neg {
		n = -n
	}
	return n, nil
}

func (p *parser) superscript() (int, error) {
	t := p.tok
	n, digits, neg := 0, 0, false
	for i, r := range t.Text {
		if i == 0 && r == superscriptMinus {
			neg = true
			continue
		}
		d, ok := superscripts[r]
		if !ok {
			return 0, p.errorf(t, "invalid superscript exponent %q", t.Text)
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, p.errorf(t, "invalid superscript exponent %q", t.Text)
	}
	if digits > maxExponentDigits {
		return 0, p.errorf(t, "exponent %s has more than %d digits", t.Text, maxExponentDigits)
	}
	p.next()
	if neg {
		n = -n
	}
	return n, nil
}

// number consumes a numeric literal.
func (p *parser) number() (*big.Rat, error) {
	t := p.tok
	mant, exp := t.Text, ""
	if i := strings.IndexAny(mant, "eE"); i >= 0 {
		mant, exp = mant[:i], strings.TrimLeft(mant[i+1:], "+-")
	}
	if len(mant)-strings.Count(mant, ".") > maxDigits {
		return nil, p.errorf(t, "number has more than %d digits", maxDigits)
	}
	if len(exp) > maxExponentDigits {
		return nil, p.errorf(t, "number exponent has more than %d digits", maxExponentDigits)
	}
	r, ok := new(big.Rat).SetString(t.Text)
	if !ok {
		return nil, p.errorf(t, "invalid number %s", t.Text)
	}
	p.next()
	return r, nil
}

// resolve looks up an atom, first as a unit and then as a prefix
// followed by a unit, trying the longest prefix first.
func (p *parser) resolve(t Token) (*measure.Unit, error) {
	if u, ok := p.table.Unit(t.Text); ok {
		return u, nil
	}
	text := p.table.Normalize(t.Text)
	for _, px := range p.table.Prefixes() {
		if len(text) > len(px.Symbol) && strings.HasPrefix(text, px.Symbol) {
			if u, ok := p.table.Unit(text[len(px.Symbol):]); ok {
				return u.Transform(px.Converter()), nil
			}
		}
	}
	return nil, &UnknownUnitError{Pos: t.Pos, Unit: t.Text}
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
