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
	"math"
	"math/big"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
)

const tol = 1.0e-12

func TestPrefixInverse(t *testing.T) {
	kilo := NewPower(10, 3)
	if c := Concat(kilo, kilo.Inverse()); !c.IsIdentity() {
		t.Errorf("kilo followed by its inverse should be the identity, have %v", c)
	}
	if _, ok := Concat(kilo, kilo.Inverse()).(Identity); !ok {
		t.Errorf("composition should normalize to Identity")
	}
	third := NewRational(1, 3)
	if c := Concat(third, NewRational(3, 1)); !c.IsIdentity() {
		t.Errorf("1/3 then 3 should be the identity, have %v", c)
	}
}

func TestSameBasePowers(t *testing.T) {
	yotta := NewPower(10, 24)
	zetta := NewPower(10, 21)
	c := Concat(yotta, zetta.Inverse())
	want := Power{Base: 10, Exponent: 3}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("have %#v, want %#v", c, want)
	}
	if !Equal(c, NewRational(1000, 1)) {
		t.Errorf("%v should equal ×1000", c)
	}
	if v := c.Convert(1); v != 1000 {
		t.Errorf("have %g, want 1000", v)
	}

	// Mixed bases fall back to one exact rational.
	mixed := Concat(NewPower(2, 10), NewPower(10, -3))
	r, ok := mixed.(Rational)
	if !ok {
		t.Fatalf("have %#v, want Rational", mixed)
	}
	if r.Factor().Cmp(big.NewRat(1024, 1000)) != 0 {
		t.Errorf("have %s, want 128/125", r.Factor().RatString())
	}
}

func TestShiftOrder(t *testing.T) {
	shift, err := ParseRational("273.15")
	if err != nil {
		t.Fatal(err)
	}
	s := NewShift(shift.Factor())
	double := NewRational(2, 1)

	a := Concat(s, double)
	b := Concat(double, s)
	if Equal(a, b) {
		t.Errorf("%v and %v should differ", a, b)
	}
	if v := a.Convert(1); !floats.EqualWithinAbsOrRel(v, 548.3, tol, tol) {
		t.Errorf("shift then double: have %g, want 548.3", v)
	}
	if v := b.Convert(1); !floats.EqualWithinAbsOrRel(v, 275.15, tol, tol) {
		t.Errorf("double then shift: have %g, want 275.15", v)
	}
	if c := Concat(a, a.Inverse()); !c.IsIdentity() {
		t.Errorf("a chain followed by its inverse should be the identity, have %v", c)
	}
	if c := Concat(s, NewShift(big.NewRat(-27315, 100))); !c.IsIdentity() {
		t.Errorf("opposite shifts should cancel, have %v", c)
	}
}

func TestLogExp(t *testing.T) {
	lg := NewLog(10)
	if c := Concat(lg, lg.Inverse()); !c.IsIdentity() {
		t.Errorf("log10 then exp10 should cancel, have %v", c)
	}
	if c := Concat(NewRational(2, 1), lg, lg.Inverse(), NewRational(1, 2)); !c.IsIdentity() {
		t.Errorf("have %v, want identity", c)
	}
	if c := Concat(NewLog(2), Exp{Base: 10}); c.IsIdentity() {
		t.Errorf("different bases should not cancel")
	}
	// Decibels: a tenth of the exponent of ten.
	db := Concat(NewPower(10, -1), lg.Inverse())
	if v := db.Convert(30); !floats.EqualWithinAbsOrRel(v, 1000, tol, tol) {
		t.Errorf("30 dB: have %g, want 1000", v)
	}
	if v := db.Inverse().Convert(1000); !floats.EqualWithinAbsOrRel(v, 30, tol, tol) {
		t.Errorf("inverse: have %g, want 30", v)
	}
	if v := NewLog(math.E).Convert(math.E); !floats.EqualWithinAbsOrRel(v, 1, tol, tol) {
		t.Errorf("ln(e): have %g", v)
	}
}

func TestPowRoot(t *testing.T) {
	tests := []struct {
		name string
		c    Converter
		pow  int
		root int
		want Converter
	}{
		{name: "cube of kilo", c: NewPower(10, 3), pow: 3, root: 1, want: Power{Base: 10, Exponent: 9}},
		{name: "root of mega", c: NewPower(10, 6), pow: 1, root: 3, want: Power{Base: 10, Exponent: 2}},
		{name: "root of four", c: NewRational(4, 9), pow: 1, root: 2, want: NewRational(2, 3)},
		{name: "inverse square", c: NewRational(3, 1), pow: -2, root: 1, want: NewRational(1, 9)},
		{name: "two thirds", c: NewPower(10, 3), pow: 2, root: 3, want: Power{Base: 10, Exponent: 2}},
		{name: "zero power", c: NewRational(7, 1), pow: 0, root: 1, want: Identity{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := Pow(test.c, test.pow)
			if err != nil {
				t.Fatal(err)
			}
			c, err = Root(c, test.root)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c, test.want) && !Equal(c, test.want) {
				t.Errorf("have %v, want %v", c, test.want)
			}
		})
	}
}

func TestRadical(t *testing.T) {
	c, err := Root(NewRational(2, 1), 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(Radical); !ok {
		t.Fatalf("have %#v, want a Radical", c)
	}
	if v := c.Convert(1); !floats.EqualWithinAbsOrRel(v, math.Sqrt2, tol, tol) {
		t.Errorf("have %g, want √2", v)
	}
	sq, err := Pow(c, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(sq, NewRational(2, 1)) {
		t.Errorf("(√2)² should be exactly 2, have %v", sq)
	}
	// 8^(1/6) is the same value as 2^(1/2).
	c6, err := Root(NewRational(8, 1), 6)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(c6, c) {
		t.Errorf("%v should equal %v", c6, c)
	}
	if _, err := Root(NewRational(-4, 1), 2); err == nil {
		t.Errorf("even root of a negative factor should fail")
	}
}

func TestFactorLimits(t *testing.T) {
	a, err := Root(NewPower(10, 3), 997)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Root(NewPower(10, 6), 991)
	if err != nil {
		t.Fatal(err)
	}
	c := Concat(a, b)
	if ch, ok := c.(Chain); !ok || len(ch) != 2 {
		t.Errorf("radicals with a large common index should stay apart, have %v", c)
	}
	want := math.Pow(10, 3.0/997+6.0/991)
	if have := c.Convert(1); !floats.EqualWithinAbsOrRel(have, want, tol, tol) {
		t.Errorf("have %g, want %g", have, want)
	}
	if !Equal(c, Concat(b, a)) {
		t.Errorf("%v should equal itself", c)
	}
	if _, err := Pow(NewPower(10, 24), 1<<16); err == nil {
		t.Errorf("a power of %d bits should fail", 80<<16)
	}
	if _, err := Root(NewRational(2, 1), 2000); err == nil {
		t.Errorf("a root index of 2000 should fail")
	}
	if _, err := Pow(c, 2); err == nil {
		t.Errorf("a power of separate radicals should fail")
	}
}

func TestPi(t *testing.T) {
	deg := Concat(NewRational(1, 180), NewPi(1, 1))
	if v := deg.Convert(180); !floats.EqualWithinAbsOrRel(v, math.Pi, tol, tol) {
		t.Errorf("have %g, want π", v)
	}
	if c := Concat(deg, NewPi(-1, 1), NewRational(180, 1)); !c.IsIdentity() {
		t.Errorf("have %v, want identity", c)
	}
}

func TestNonLinearPow(t *testing.T) {
	if _, err := Pow(NewShift(big.NewRat(1, 1)), 2); err == nil {
		t.Errorf("raising a shift to a power should fail")
	}
	if _, err := Root(NewLog(10), 2); err == nil {
		t.Errorf("taking the root of a logarithm should fail")
	}
}

func TestParseRational(t *testing.T) {
	for _, s := range []string{"x", "0", ""} {
		if _, err := ParseRational(s); err == nil {
			t.Errorf("%q should not parse", s)
		}
	}
	c, err := ParseRational("0.45359237")
	if err != nil {
		t.Fatal(err)
	}
	if c.Factor().Cmp(big.NewRat(45359237, 100000000)) != 0 {
		t.Errorf("have %s", c.Factor().RatString())
	}
}
