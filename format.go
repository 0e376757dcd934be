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

// Precedence of a rendered expression: how tightly it binds.
const (
	levelAtomic = iota // symbol, number or parenthesized
	levelExp           // symbol with an exponent
	levelMul           // product or quotient
	levelShift         // offset unit, e.g. "K + 273.15"
)

var superscriptDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

// Format renders u in the variant of f. Annotations are not kept.
// Prefixed units whose prefix has no symbol, or whose prefixed symbol
// would read back as another unit, are written with an explicit
// factor, e.g. "g.10000".
//
// Format panics if u holds a converter that no expression produces.
func (f *Format) Format(u *measure.Unit) string {
	s, _ := f.format(u)
	return s
}

func (f *Format) format(u *measure.Unit) (string, int) {
	switch u.Kind() {
	case measure.Atom:
		if s, ok := f.table.UnitSymbol(u); ok {
			return s, levelAtomic
		}
		return f.table.Normalize(u.Symbol()), levelAtomic
	case measure.Transformed:
		return f.transformed(u.Parent(), u.Op())
	}
	return f.product(u.Factors())
}

func (f *Format) dot() string {
	if f.table.Variant() == symbol.Print {
		return string(middleDot)
	}
	return "."
}

func (f *Format) product(fs []measure.Factor) (string, int) {
	if len(fs) == 0 {
		return "1", levelAtomic
	}
	var num, den []string
	lvl := levelAtomic
	for _, fc := range fs {
		if r, ok := fc.Unit.Scalar(); ok && fc.Pow == 1 && fc.Root == 1 &&
			r.Num().Cmp(big.NewInt(1)) == 0 {
			den = append(den, number(new(big.Rat).SetInt(r.Denom())))
			continue
		}
		if fc.Pow < 0 {
			fc.Pow = -fc.Pow
			den = append(den, f.factor(fc))
			continue
		}
		num = append(num, f.factor(fc))
		if fc.Pow != 1 || fc.Root != 1 {
			lvl = levelExp
		}
	}
	s := f.join(num)
	switch {
	case len(num) == 0:
		s = "1"
	case len(num) > 1:
		lvl = levelMul
	}
	if len(den) == 0 {
		return s, lvl
	}
	d := f.join(den)
	if len(den) > 1 {
		d = "(" + d + ")"
	}
	return s + "/" + d, levelMul
}

// join joins factors with the multiplication operator. A factor that
// starts with a digit is parenthesized after one that ends with a
// digit, since "2.5" would read as a decimal.
func (f *Format) join(fs []string) string {
	var b strings.Builder
	for i, s := range fs {
		if i > 0 {
			b.WriteString(f.dot())
			if endsInDigit(fs[i-1]) && startsWithDigit(s) {
				s = "(" + s + ")"
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

// readsAsExponent reports whether "(" + s + ")" after a caret would be
// read as a numeric exponent: an integer alone or followed by '/'.
func readsAsExponent(s string) bool {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n > 0 && (n == len(s) || s[n] == '/')
}

func startsWithDigit(s string) bool { return s != "" && s[0] >= '0' && s[0] <= '9' }
func endsInDigit(s string) bool     { return s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9' }

func (f *Format) factor(fc measure.Factor) string {
	s, lvl := f.format(fc.Unit)
	_, isNum := fc.Unit.Scalar()
	if fc.Pow == 1 && fc.Root == 1 {
		if lvl > levelExp {
			return "(" + s + ")"
		}
		return s
	}
	if lvl > levelAtomic || isNum {
		s = "(" + s + ")"
	}
	return s + f.exponent(fc.Pow, fc.Root)
}

func (f *Format) exponent(pow, root int) string {
	if root != 1 {
		return fmt.Sprintf("^(%d/%d)", pow, root)
	}
	if f.table.Variant() != symbol.Print {
		return strconv.Itoa(pow)
	}
	var b strings.Builder
	if pow < 0 {
		b.WriteRune(superscriptMinus)
		pow = -pow
	}
	for _, c := range strconv.Itoa(pow) {
		b.WriteRune(superscriptDigits[c-'0'])
	}
	return b.String()
}

// transformed renders parent followed by op. A chain's last converter
// is the closest to the parent, so it is applied first.
func (f *Format) transformed(parent *measure.Unit, op converter.Converter) (string, int) {
	ops := []converter.Converter{op}
	if ch, ok := op.(converter.Chain); ok {
		ops = ch
	}
	s, lvl := f.format(parent)
	for i := len(ops) - 1; i >= 0; i-- {
		s, lvl = f.apply(parent, i == len(ops)-1, s, lvl, ops[i])
	}
	return s, lvl
}

func (f *Format) apply(parent *measure.Unit, first bool, s string, lvl int, c converter.Converter) (string, int) {
	switch c := c.(type) {
	case converter.Power:
		if first && parent.Kind() == measure.Atom {
			if px, ok := f.table.PrefixSymbol(c.Base, c.Exponent); ok && f.readsAs(px+s, px, parent) {
				return px + s, levelAtomic
			}
		}
		return f.scaled(parent, s, lvl, c.Factor())
	case converter.Rational:
		return f.scaled(parent, s, lvl, c.Factor())
	case converter.Shift:
		// A leading number followed by a sign would read as the offset.
		if lvl > levelMul || startsWithDigit(s) {
			s = "(" + s + ")"
		}
		o := c.Offset()
		sign := " + "
		if o.Sign() < 0 {
			sign = " - "
			o.Neg(o)
		}
		return s + sign + number(o), levelShift
	case converter.Exp:
		base, ok := f.base(c.Base)
		if !ok {
			break
		}
		switch {
		case readsAsExponent(s):
			// "(2)" and "(1/3)" would read as exponents.
			s = "((" + s + "))"
		case lvl > levelAtomic || startsWithDigit(s):
			s = "(" + s + ")"
		}
		return base + "^" + s, levelExp
	case converter.Log:
		name := "log"
		switch c.Base {
		case 10:
		case math.E:
			name = "ln"
		default:
			b, ok := f.base(c.Base)
			if !ok {
				panic(fmt.Errorf("ucum: cannot format logarithm base %g", c.Base))
			}
			name += b
		}
		return f.table.Normalize(name) + "(" + s + ")", levelExp
	}
	panic(fmt.Errorf("ucum: cannot format converter %v", c))
}

// base renders the base of an exponential scale.
func (f *Format) base(b float64) (string, bool) {
	if b == math.E {
		return f.table.Normalize("e"), true
	}
	if b >= 2 && b == math.Trunc(b) && b < 1000 {
		return strconv.Itoa(int(b)), true
	}
	return "", false
}

// scaled renders s multiplied by r. A pure number renders as itself.
func (f *Format) scaled(parent *measure.Unit, s string, lvl int, r *big.Rat) (string, int) {
	if parent.IsOne() && s == "1" {
		if terminates(r) {
			return number(r), levelAtomic
		}
		return number(r), levelMul
	}
	if lvl > levelMul {
		s = "(" + s + ")"
	}
	if r.Num().Cmp(big.NewInt(1)) == 0 {
		return s + "/" + number(new(big.Rat).SetInt(r.Denom())), levelMul
	}
	if endsInDigit(s) {
		return f.join([]string{number(r), s}), levelMul
	}
	return f.join([]string{s, number(r)}), levelMul
}

// readsAs reports whether text parses back to prefix px on unit u.
func (f *Format) readsAs(text, px string, u *measure.Unit) bool {
	if _, ok := f.table.Unit(text); ok {
		return false
	}
	norm := f.table.Normalize(text)
	for _, p := range f.table.Prefixes() {
		if len(norm) > len(p.Symbol) && strings.HasPrefix(norm, p.Symbol) {
			if v, ok := f.table.Unit(norm[len(p.Symbol):]); ok {
				return p.Symbol == f.table.Normalize(px) && v == u
			}
		}
	}
	return false
}

// number renders r as an integer, a terminating decimal or a fraction.
// Values with more than maxDigits digits use exponential notation.
func number(r *big.Rat) string {
	s, _ := literal(r)
	return s
}

// literal renders r and reports whether every number in the text has
// at most maxDigits digits and an exponent the parser accepts.
func literal(r *big.Rat) (string, bool) {
	if terminates(r) {
		return decimal(r)
	}
	n, okn := decimal(new(big.Rat).SetInt(r.Num()))
	d, okd := decimal(new(big.Rat).SetInt(r.Denom()))
	return n + "/" + d, okn && okd
}

// fits reports whether r can be written as a number the parser reads.
func fits(r *big.Rat) bool {
	if r.Num().BitLen() > maxNumberBits || r.Denom().BitLen() > maxNumberBits {
		return false
	}
	_, ok := literal(r)
	return ok
}

// decimal renders the terminating decimal r, as m×10^e when plain
// digits would be too long.
func decimal(r *big.Rat) (string, bool) {
	if s := plain(r); digitCount(s) <= maxDigits {
		return s, true
	}
	m := new(big.Rat).Abs(r)
	k := -decimals(m.Denom())
	m.Mul(m, new(big.Rat).SetInt(pow10(-k)))
	n := new(big.Int).Set(m.Num())
	ten := big.NewInt(10)
	q, rem := new(big.Int), new(big.Int)
	for n.Sign() != 0 {
		q.QuoRem(n, ten, rem)
		if rem.Sign() != 0 {
			break
		}
		n.Set(q)
		k++
	}
	e := k
	switch {
	case e > maxExponent:
		e = maxExponent
	case e < -maxExponent:
		e = -maxExponent
	}
	mant := new(big.Rat).SetInt(n)
	if k > e {
		mant.Mul(mant, new(big.Rat).SetInt(pow10(k-e)))
	} else if k < e {
		mant.Quo(mant, new(big.Rat).SetInt(pow10(e-k)))
	}
	ms := plain(mant)
	s := ms + "e" + strconv.Itoa(e)
	if r.Sign() < 0 {
		s = "-" + s
	}
	return s, digitCount(ms) <= maxDigits
}

// plain renders a terminating decimal without an exponent.
func plain(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return strings.TrimRight(r.FloatString(decimals(r.Denom())), "0")
}

func digitCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// terminates reports whether r has a finite decimal expansion.
func terminates(r *big.Rat) bool {
	d := new(big.Int).Set(r.Denom())
	m := new(big.Int)
	for _, p := range []int64{2, 5} {
		bp := big.NewInt(p)
		for {
			q, rem := new(big.Int).QuoRem(d, bp, m)
			if rem.Sign() != 0 {
				break
			}
			d = q
		}
	}
	return d.Cmp(big.NewInt(1)) == 0
}

// decimals returns the number of decimal places of 1/d, where d only
// has the prime factors 2 and 5.
func decimals(d *big.Int) int {
	p := big.NewInt(1)
	ten := big.NewInt(10)
	m := new(big.Int)
	n := 0
	for m.Rem(p, d).Sign() != 0 {
		p.Mul(p, ten)
		n++
	}
	return n
}
