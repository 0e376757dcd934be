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

// Package measure is a small unit algebra. A Unit is built from named
// atoms by multiplication, division, rational powers and converter
// transforms, and knows its dimension vector and the exact converter
// that maps its values onto the coherent system unit.
package measure

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/ucum/converter"
)

// Kind is the shape of a Unit.
type Kind int

const (
	// Atom is a named unit: a base unit or a unit defined in terms of others.
	Atom Kind = iota
	// Transformed is a parent unit combined with a converter to the parent.
	Transformed
	// Product is a product of units raised to rational powers.
	Product
)

func (k Kind) String() string {
	switch k {
	case Atom:
		return "atom"
	case Transformed:
		return "transformed"
	case Product:
		return "product"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Factor is one element of a product: Unit^(Pow/Root).
type Factor struct {
	Unit *Unit
	Pow  int
	Root int
}

// Unit is an immutable unit of measure.
type Unit struct {
	kind   Kind
	symbol string

	parent *Unit
	op     converter.Converter

	factors []Factor

	dims   Dimensions
	toBase converter.Converter
	err    error // set when toBase cannot be computed
}

// One is the dimensionless unit.
var One = &Unit{kind: Product, dims: Dimensions{}, toBase: converter.Identity{}}

// NewBase returns a base unit of dimension d.
func NewBase(symbol string, d unit.Dimension) *Unit {
	return &Unit{kind: Atom, symbol: symbol, dims: dimensionsOf(d), toBase: converter.Identity{}}
}

// Define returns an atom named symbol that is equal to u.
func Define(symbol string, u *Unit) *Unit {
	return DefineConverted(symbol, u, converter.Identity{})
}

// DefineConverted returns an atom named symbol whose values convert to
// values of parent through c.
func DefineConverted(symbol string, parent *Unit, c converter.Converter) *Unit {
	a := &Unit{kind: Atom, symbol: symbol, dims: parent.dims, err: parent.err}
	if parent.err == nil {
		a.toBase = converter.Concat(c, parent.toBase)
	}
	return a
}

// Kind returns the shape of u.
func (u *Unit) Kind() Kind { return u.kind }

// Symbol returns the name of an atom, or "" for other shapes.
func (u *Unit) Symbol() string { return u.symbol }

// Parent returns the unit a transformed unit is derived from.
func (u *Unit) Parent() *Unit { return u.parent }

// Op returns the converter from a transformed unit to its parent.
func (u *Unit) Op() converter.Converter { return u.op }

// Factors returns the elements of a product in the order they were
// multiplied. Atoms and transformed units are a single factor.
func (u *Unit) Factors() []Factor {
	if u.kind != Product {
		return []Factor{{Unit: u, Pow: 1, Root: 1}}
	}
	return append([]Factor(nil), u.factors...)
}

// Scalar returns the value of a pure number: One scaled by an exact
// factor.
func (u *Unit) Scalar() (*big.Rat, bool) {
	if u.kind != Transformed || !u.parent.IsOne() {
		return nil, false
	}
	switch c := u.op.(type) {
	case converter.Rational:
		return c.Factor(), true
	case converter.Power:
		return c.Factor(), true
	}
	return nil, false
}

// IsOne reports whether u is the dimensionless identity.
func (u *Unit) IsOne() bool { return u.kind == Product && len(u.factors) == 0 }

// Dimensions returns a copy of the dimension vector of u.
func (u *Unit) Dimensions() Dimensions {
	d := make(Dimensions, len(u.dims))
	d.add(u.dims, big.NewRat(1, 1))
	return d
}

// Multiply returns u·v.
func (u *Unit) Multiply(v *Unit) *Unit {
	return product(append(u.Factors(), v.Factors()...))
}

// Divide returns u/v.
func (u *Unit) Divide(v *Unit) *Unit {
	fs := u.Factors()
	for _, f := range v.Factors() {
		fs = append(fs, Factor{Unit: f.Unit, Pow: -f.Pow, Root: f.Root})
	}
	return product(fs)
}

// Pow returns u^n.
func (u *Unit) Pow(n int) *Unit {
	if n == 1 {
		return u
	}
	fs := u.Factors()
	for i := range fs {
		fs[i].Pow *= n
	}
	return product(fs)
}

// Root returns the n-th root of u. n must not be zero; a negative root
// is the root of the inverse.
func (u *Unit) Root(n int) *Unit {
	switch {
	case n == 0:
		panic("measure: zero root")
	case n < 0:
		return u.Pow(-1).Root(-n)
	case n == 1:
		return u
	}
	fs := u.Factors()
	for i := range fs {
		fs[i].Root *= n
	}
	return product(fs)
}

// Transform returns the unit whose values convert to values of u
// through c. Transforms of a transformed unit collapse onto its parent.
func (u *Unit) Transform(c converter.Converter) *Unit {
	parent := u
	if u.kind == Transformed {
		parent = u.parent
		c = converter.Concat(c, u.op)
	}
	if c.IsIdentity() {
		return parent
	}
	t := &Unit{kind: Transformed, parent: parent, op: c, dims: parent.dims, err: parent.err}
	if parent.err == nil {
		t.toBase = converter.Concat(c, parent.toBase)
	}
	return t
}

// Shift returns u offset by o: a value x of the result is x+o in u.
func (u *Unit) Shift(o *big.Rat) *Unit {
	return u.Transform(converter.NewShift(o))
}

// Scale returns u multiplied by the exact factor r.
func (u *Unit) Scale(r *big.Rat) *Unit {
	return u.Transform(converter.RationalOf(r))
}

// ConverterToBase returns the converter from u to the coherent unit of
// its dimensions. Products containing non-linear units, such as
// degrees Celsius, have none.
func (u *Unit) ConverterToBase() (converter.Converter, error) {
	return u.toBase, u.err
}

// IncommensurableError is returned when converting between units of
// different dimensions.
type IncommensurableError struct {
	From, To *Unit
}

func (e *IncommensurableError) Error() string {
	return fmt.Sprintf("measure: %v (%v) is not convertible to %v (%v)",
		e.From, e.From.dims, e.To, e.To.dims)
}

// ConverterTo returns the converter from u to v.
func (u *Unit) ConverterTo(v *Unit) (converter.Converter, error) {
	if !u.IsCompatible(v) {
		return nil, &IncommensurableError{From: u, To: v}
	}
	if u.err != nil {
		return nil, u.err
	}
	if v.err != nil {
		return nil, v.err
	}
	return converter.Concat(u.toBase, v.toBase.Inverse()), nil
}

// IsCompatible reports whether u and v have the same dimensions.
func (u *Unit) IsCompatible(v *Unit) bool { return u.dims.Matches(v.dims) }

// Equivalent reports whether u and v denote the same unit: the
// converter between them is the identity.
func (u *Unit) Equivalent(v *Unit) bool {
	c, err := u.ConverterTo(v)
	return err == nil && c.IsIdentity()
}

// Quantity returns v units of u as an SI quantity.
func (u *Unit) Quantity(v float64) (*unit.Unit, error) {
	if u.err != nil {
		return nil, u.err
	}
	d, err := u.dims.SI()
	if err != nil {
		return nil, err
	}
	return unit.New(u.toBase.Convert(v), d), nil
}

func (u *Unit) String() string {
	switch u.kind {
	case Atom:
		return u.symbol
	case Transformed:
		return fmt.Sprintf("(%v %v)", u.parent, u.op)
	}
	if len(u.factors) == 0 {
		return "1"
	}
	var b bytes.Buffer
	for i, f := range u.factors {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.Unit.String())
		switch {
		case f.Root != 1:
			fmt.Fprintf(&b, "^(%d/%d)", f.Pow, f.Root)
		case f.Pow != 1:
			fmt.Fprintf(&b, "%d", f.Pow)
		}
	}
	return b.String()
}

// same reports whether u and v are structurally identical.
func same(u, v *Unit) bool {
	if u == v {
		return true
	}
	if u.kind != v.kind {
		return false
	}
	switch u.kind {
	case Atom:
		return u.symbol == v.symbol && u.dims.Matches(v.dims)
	case Transformed:
		return same(u.parent, v.parent) && converter.Equal(u.op, v.op)
	}
	if len(u.factors) != len(v.factors) {
		return false
	}
	for i, f := range u.factors {
		g := v.factors[i]
		if f.Pow != g.Pow || f.Root != g.Root || !same(f.Unit, g.Unit) {
			return false
		}
	}
	return true
}

// product builds a normalized product: factors of the same unit merge
// in place of the first occurrence, zero powers vanish and a single
// plain factor is the unit itself.
func product(in []Factor) *Unit {
	var fs []Factor
	for _, f := range in {
		if f.Unit.IsOne() {
			continue
		}
		merged := false
		for i, g := range fs {
			if same(f.Unit, g.Unit) {
				fs[i].Pow = g.Pow*f.Root + f.Pow*g.Root
				fs[i].Root = g.Root * f.Root
				merged = true
				break
			}
		}
		if !merged {
			fs = append(fs, f)
		}
	}
	out := fs[:0]
	scalar, at := big.NewRat(1, 1), -1
	for _, f := range fs {
		if f.Pow == 0 {
			continue
		}
		if d := gcd(f.Pow, f.Root); d > 1 {
			f.Pow /= d
			f.Root /= d
		}
		if r, ok := f.Unit.Scalar(); ok && f.Root == 1 {
			scalar.Mul(scalar, ratPow(r, f.Pow))
			if at < 0 {
				at = len(out)
				out = append(out, f)
			}
			continue
		}
		out = append(out, f)
	}
	if at >= 0 {
		if scalar.Cmp(big.NewRat(1, 1)) == 0 {
			out = append(out[:at], out[at+1:]...)
		} else {
			out[at] = Factor{Unit: One.Scale(scalar), Pow: 1, Root: 1}
		}
	}
	switch {
	case len(out) == 0:
		return One
	case len(out) == 1 && out[0].Pow == 1 && out[0].Root == 1:
		return out[0].Unit
	}

	p := &Unit{kind: Product, factors: out, dims: Dimensions{}}
	var cs []converter.Converter
	for _, f := range out {
		p.dims.add(f.Unit.dims, big.NewRat(int64(f.Pow), int64(f.Root)))
		if p.err != nil {
			continue
		}
		if f.Unit.err != nil {
			p.err = f.Unit.err
			continue
		}
		c, err := converter.Pow(f.Unit.toBase, f.Pow)
		if err == nil {
			c, err = converter.Root(c, f.Root)
		}
		if err != nil {
			p.err = fmt.Errorf("measure: %v has no system converter inside a product: %v", f.Unit, err)
			continue
		}
		cs = append(cs, c)
	}
	if p.err == nil {
		p.toBase = converter.Concat(cs...)
	}
	return p
}

func ratPow(r *big.Rat, n int) *big.Rat {
	if n < 0 {
		r, n = new(big.Rat).Inv(r), -n
	}
	k := big.NewInt(int64(n))
	return new(big.Rat).SetFrac(
		new(big.Int).Exp(r.Num(), k, nil),
		new(big.Int).Exp(r.Denom(), k, nil))
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
