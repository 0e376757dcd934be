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

package converter

import (
	"fmt"
	"math/big"
)

// Concat composes converters in application order: cs[0] is applied first.
// The result is normalized. Identities vanish, runs of multiplicative
// converters collapse into one exact factor, adjacent shifts add up, and
// a logarithm directly followed by the matching exponential cancels out.
// Converters that do not commute are never reordered.
func Concat(cs ...Converter) Converter {
	var s stack
	for _, c := range cs {
		s.push(c)
	}
	var out []Converter
	for _, it := range s {
		if it.m != nil {
			out = append(out, it.m.converters()...)
		} else {
			out = append(out, it.c)
		}
	}
	switch len(out) {
	case 0:
		return Identity{}
	case 1:
		return out[0]
	}
	return Chain(out)
}

// Equal reports whether a and b convert every value identically, using
// exact arithmetic.
func Equal(a, b Converter) bool {
	return Concat(a, b.Inverse()).IsIdentity()
}

// Pow returns c applied n times. Only linear converters can be raised to a
// power.
func Pow(c Converter, n int) (Converter, error) {
	m, err := linearFactor(c)
	if err != nil {
		return nil, err
	}
	if err := m.pow(n); err != nil {
		return nil, err
	}
	return Concat(m.converters()...), nil
}

// Root returns the converter that, applied n times, equals c.
func Root(c Converter, n int) (Converter, error) {
	if n <= 0 {
		return nil, fmt.Errorf("converter: invalid root %d", n)
	}
	m, err := linearFactor(c)
	if err != nil {
		return nil, err
	}
	if err := m.root(n); err != nil {
		return nil, err
	}
	return Concat(m.converters()...), nil
}

func linearFactor(c Converter) (*multiplier, error) {
	c = Concat(c)
	if !c.IsLinear() {
		return nil, fmt.Errorf("converter: %v is not linear", c)
	}
	cs := []Converter{c}
	if ch, ok := c.(Chain); ok {
		cs = ch
	}
	m := newMultiplier()
	for _, cc := range cs {
		if !m.fits(cc) {
			return nil, fmt.Errorf("converter: factor of %v is too large", c)
		}
		m.mul(cc)
	}
	return m, nil
}

type item struct {
	c Converter
	m *multiplier
}

type stack []item

func (s *stack) push(c Converter) {
	switch cc := c.(type) {
	case nil, Identity:
		return
	case Chain:
		for _, x := range cc {
			s.push(x)
		}
		return
	}
	if c.IsIdentity() {
		return
	}
	n := len(*s)
	if isMultiplicative(c) {
		// Multiplicative converters commute, so c may join any
		// multiplier of the run on top of the stack.
		for i := n - 1; i >= 0 && (*s)[i].m != nil; i-- {
			m := (*s)[i].m
			if !m.fits(c) {
				continue
			}
			m.mul(c)
			if m.isIdentity() {
				*s = append((*s)[:i], (*s)[i+1:]...)
			}
			return
		}
		m := newMultiplier()
		m.mul(c)
		*s = append(*s, item{m: m})
		return
	}
	if n > 0 && (*s)[n-1].m == nil {
		if merged, ok := merge((*s)[n-1].c, c); ok {
			if merged == nil {
				*s = (*s)[:n-1]
			} else {
				(*s)[n-1].c = merged
			}
			return
		}
	}
	*s = append(*s, item{c: c})
}

// merge combines two adjacent non-multiplicative converters. A nil result
// with ok == true means the pair cancels.
func merge(a, b Converter) (Converter, bool) {
	switch a := a.(type) {
	case Shift:
		if b, ok := b.(Shift); ok {
			sum := new(big.Rat).Add(a.offset, b.offset)
			if sum.Sign() == 0 {
				return nil, true
			}
			return Shift{offset: sum}, true
		}
	case Log:
		if b, ok := b.(Exp); ok && a.Base == b.Base {
			return nil, true
		}
	case Exp:
		if b, ok := b.(Log); ok && a.Base == b.Base {
			return nil, true
		}
	}
	return nil, false
}

func isMultiplicative(c Converter) bool {
	switch c.(type) {
	case Rational, Power, Radical, Pi:
		return true
	}
	return false
}

// multiplier is the canonical form of a product of multiplicative
// converters: radicand^(1/index) · π^pi. While every contribution is a
// Power of the same base, pure is set and base^exp equals the radicand.
type multiplier struct {
	radicand *big.Rat
	index    int
	pi       *big.Rat

	pure bool
	base int64
	exp  int
}

func newMultiplier() *multiplier {
	return &multiplier{
		radicand: big.NewRat(1, 1),
		index:    1,
		pi:       new(big.Rat),
		pure:     true,
	}
}

// Limits on the exact factor of a multiplier. Concat keeps apart
// factors that would grow past them, and Pow and Root fail.
const (
	maxIndex       = 1 << 10
	maxBits        = 1 << 20
	maxRadicalBits = 1 << 13
)

// within reports whether a radicand of the given size under a root
// index is within the limits.
func within(bits, index int) bool {
	if index == 1 {
		return bits <= maxBits
	}
	return index <= maxIndex && bits <= maxRadicalBits
}

// size returns a bound on the bits of the radicand of c and its root
// index.
func size(c Converter) (bits, index int) {
	switch c := c.(type) {
	case Power:
		return abs(c.Exponent) * big.NewInt(c.Base).BitLen(), 1
	case Rational:
		return ratBits(c.rat()), 1
	case Radical:
		return ratBits(c.radicand), c.index
	}
	return 0, 1
}

// fits reports whether m can absorb c within the limits.
func (m *multiplier) fits(c Converter) bool {
	b, n := size(c)
	if n > maxIndex || m.index > maxIndex || b > maxBits {
		return false
	}
	l := lcm(m.index, n)
	return within(ratBits(m.radicand)*(l/m.index)+b*(l/n), l)
}

func ratBits(r *big.Rat) int { return r.Num().BitLen() + r.Denom().BitLen() }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (m *multiplier) isIdentity() bool {
	return m.index == 1 && m.radicand.Cmp(one) == 0 && m.pi.Sign() == 0
}

func (m *multiplier) mul(c Converter) {
	switch c := c.(type) {
	case Power:
		if m.pure && (m.base == 0 || m.base == c.Base) {
			m.base = c.Base
			m.exp += c.Exponent
		} else {
			m.pure = false
		}
		m.mulRoot(c.Factor(), 1)
	case Rational:
		if !c.IsIdentity() {
			m.pure = false
		}
		m.mulRoot(c.rat(), 1)
	case Radical:
		m.pure = false
		m.mulRoot(c.radicand, c.index)
	case Pi:
		if !c.IsIdentity() {
			m.pure = false
		}
		m.pi.Add(m.pi, c.exp)
	}
}

// mulRoot multiplies by r^(1/n).
func (m *multiplier) mulRoot(r *big.Rat, n int) {
	l := lcm(m.index, n)
	a := ratPow(m.radicand, l/m.index)
	b := ratPow(r, l/n)
	m.radicand = a.Mul(a, b)
	m.index = l
	m.reduce()
}

func (m *multiplier) pow(n int) error {
	if n > maxBits || n < -maxBits || !within(ratBits(m.radicand)*abs(n), m.index) {
		return fmt.Errorf("converter: power %d of %s is too large", n, m.radicand.RatString())
	}
	m.radicand = ratPow(m.radicand, n)
	m.pi.Mul(m.pi, new(big.Rat).SetInt64(int64(n)))
	m.exp *= n
	m.reduce()
	return nil
}

func (m *multiplier) root(n int) error {
	if n > maxIndex || m.index > maxIndex || !within(ratBits(m.radicand), m.index*n) {
		return fmt.Errorf("converter: root %d of %s is too large", n, m.radicand.RatString())
	}
	if m.radicand.Sign() < 0 && (m.index*n)%2 == 0 {
		return fmt.Errorf("converter: even root of negative factor %s", m.radicand.RatString())
	}
	m.index *= n
	m.pi.Quo(m.pi, new(big.Rat).SetInt64(int64(n)))
	if m.pure && m.exp%n == 0 {
		m.exp /= n
	} else {
		m.pure = false
	}
	m.reduce()
	return nil
}

// reduce lowers the root index while the radicand is a perfect power.
func (m *multiplier) reduce() {
	for p := 2; p <= m.index; p++ {
		for m.index%p == 0 {
			r, ok := ratRoot(m.radicand, p)
			if !ok {
				break
			}
			m.radicand = r
			m.index /= p
		}
	}
}

func (m *multiplier) converters() []Converter {
	var out []Converter
	switch {
	case m.index == 1 && m.radicand.Cmp(one) == 0:
	case m.pure && m.base != 0 && m.index == 1:
		out = append(out, Power{Base: m.base, Exponent: m.exp})
	case m.index == 1:
		out = append(out, Rational{r: new(big.Rat).Set(m.radicand)})
	default:
		out = append(out, Radical{radicand: new(big.Rat).Set(m.radicand), index: m.index})
	}
	if m.pi.Sign() != 0 {
		out = append(out, Pi{exp: new(big.Rat).Set(m.pi)})
	}
	return out
}

// ratPow returns r^n for any integer n. r must be non-zero when n < 0.
func ratPow(r *big.Rat, n int) *big.Rat {
	if n < 0 {
		return ratPow(new(big.Rat).Inv(r), -n)
	}
	k := big.NewInt(int64(n))
	num := new(big.Int).Exp(r.Num(), k, nil)
	den := new(big.Int).Exp(r.Denom(), k, nil)
	return new(big.Rat).SetFrac(num, den)
}

// ratRoot returns the exact k-th root of r if there is one.
func ratRoot(r *big.Rat, k int) (*big.Rat, bool) {
	num, ok := intRoot(r.Num(), k)
	if !ok {
		return nil, false
	}
	den, ok := intRoot(r.Denom(), k)
	if !ok {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

// intRoot returns the exact k-th root of n if there is one.
func intRoot(n *big.Int, k int) (*big.Int, bool) {
	if n.Sign() < 0 {
		if k%2 == 0 {
			return nil, false
		}
		r, ok := intRoot(new(big.Int).Neg(n), k)
		if !ok {
			return nil, false
		}
		return r.Neg(r), true
	}
	if n.Sign() == 0 || k == 1 {
		return new(big.Int).Set(n), true
	}
	kk := big.NewInt(int64(k))
	lo := big.NewInt(1)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/k+1))
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		v := new(big.Int).Exp(mid, kk, nil)
		switch v.Cmp(n) {
		case 0:
			return mid, true
		case -1:
			lo = new(big.Int).Add(mid, big.NewInt(1))
		default:
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		}
	}
	return nil, false
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int { return a / gcd(a, b) * b }
