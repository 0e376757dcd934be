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

package symbol

import (
	"math/big"
	"testing"

	"github.com/spatialmodel/ucum/converter"
	"github.com/spatialmodel/ucum/measure"
	"gonum.org/v1/gonum/floats"
)

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{CaseSensitive, CaseInsensitive, Print} {
		have, err := ParseVariant(v.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != v {
			t.Errorf("have %v, want %v", have, v)
		}
	}
	if v, err := ParseVariant("Case-Insensitive"); err != nil || v != CaseInsensitive {
		t.Errorf("have %v, %v", v, err)
	}
	if _, err := ParseVariant("xml"); err == nil {
		t.Errorf("xml should not be a variant")
	}
}

func TestLookup(t *testing.T) {
	cs := MustNew(CaseSensitive)
	ci := MustNew(CaseInsensitive)

	if _, ok := cs.Unit("MIN"); ok {
		t.Errorf("MIN should not be a case-sensitive symbol")
	}
	minute, ok := cs.Unit("min")
	if !ok {
		t.Fatal("missing min")
	}
	for _, sym := range []string{"MIN", "min", "Min"} {
		u, ok := ci.Unit(sym)
		if !ok {
			t.Errorf("%s: not found", sym)
			continue
		}
		if u != minute {
			t.Errorf("%s: have %v, want min", sym, u)
		}
	}

	u, p := cs.Lookup("k")
	if u != nil || p == nil || p.Exponent != 3 {
		t.Errorf("k: have %v, %v", u, p)
	}
	u, p = cs.Lookup("Pa")
	if u == nil || p != nil {
		t.Errorf("Pa: have %v, %v", u, p)
	}
	// A unit and a prefix may share a symbol; the unit comes first.
	u, p = ci.Lookup("K")
	if u == nil || p != nil || u.Symbol() != "K" {
		t.Errorf("K: have %v, %v", u, p)
	}
	if u, p := cs.Lookup("XYZZY"); u != nil || p != nil {
		t.Errorf("XYZZY: have %v, %v", u, p)
	}
}

func TestPrefixes(t *testing.T) {
	ci := MustNew(CaseInsensitive)
	ps := ci.Prefixes()
	for i := 1; i < len(ps); i++ {
		if len(ps[i].Symbol) > len(ps[i-1].Symbol) {
			t.Errorf("%s is longer than %s but comes after it", ps[i].Symbol, ps[i-1].Symbol)
		}
	}
	if s, ok := ci.PrefixSymbol(10, -1); !ok || s != "D" {
		t.Errorf("deci: have %q", s)
	}
	if s, ok := MustNew(Print).PrefixSymbol(10, -6); !ok || s != "µ" {
		t.Errorf("micro: have %q", s)
	}
	if _, ok := ci.PrefixSymbol(10, 4); ok {
		t.Errorf("there is no prefix for 10^4")
	}
	p, _ := ci.Prefix("kib")
	if !converter.Equal(p.Converter(), converter.NewRational(1024, 1)) {
		t.Errorf("kibi: have %v", p.Converter())
	}
}

func TestUnitSymbol(t *testing.T) {
	cs := MustNew(CaseSensitive)
	hz, _ := cs.Unit("Hz")
	tests := []struct {
		v    Variant
		want string
	}{
		{v: CaseSensitive, want: "Hz"},
		{v: CaseInsensitive, want: "HZ"},
		{v: Print, want: "Hz"},
	}
	for _, test := range tests {
		t.Run(test.v.String(), func(t *testing.T) {
			s, ok := MustNew(test.v).UnitSymbol(hz)
			if !ok || s != test.want {
				t.Errorf("have %q, want %q", s, test.want)
			}
		})
	}
	ohm, _ := cs.Unit("Ohm")
	if s, _ := MustNew(Print).UnitSymbol(ohm); s != "Ω" {
		t.Errorf("have %q, want Ω", s)
	}
	if _, ok := cs.UnitSymbol(hz.Pow(2)); ok {
		t.Errorf("products have no symbol")
	}
}

func TestCatalog(t *testing.T) {
	cs := MustNew(CaseSensitive)
	get := func(s string) *measure.Unit {
		u, ok := cs.Unit(s)
		if !ok {
			t.Fatalf("missing %s", s)
		}
		return u
	}
	tests := []struct {
		from, to string
		in, want float64
	}{
		{from: "[ft_i]", to: "m", in: 1, want: 0.3048},
		{from: "Cel", to: "K", in: 25, want: 298.15},
		{from: "[degF]", to: "K", in: 32, want: 273.15},
		{from: "h", to: "s", in: 2, want: 7200},
		{from: "bar", to: "Pa", in: 1, want: 1e5},
		{from: "deg", to: "rad", in: 90, want: 1.5707963267948966},
		{from: "B", to: "%", in: 2, want: 10000},
		{from: "[lb_av]", to: "g", in: 1, want: 453.59237},
	}
	for _, test := range tests {
		t.Run(test.from, func(t *testing.T) {
			from, to := get(test.from), get(test.to)
			c, err := from.ConverterTo(to)
			if err != nil {
				t.Fatal(err)
			}
			if have := c.Convert(test.in); !floats.EqualWithinAbsOrRel(have, test.want, 1e-9, 1e-12) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
	if !get("l").Equivalent(get("L")) {
		t.Errorf("l and L should be the same unit")
	}
	if !get("N").Equivalent(get("J").Divide(get("m"))) {
		t.Errorf("N should equal J/m")
	}
}

func TestExtraDefinitions(t *testing.T) {
	cs := MustNew(CaseSensitive)
	ft, _ := cs.Unit("[ft_i]")
	c, err := converter.ParseRational("6")
	if err != nil {
		t.Fatal(err)
	}
	fath := measure.DefineConverted("[fth_i]", ft, c)
	d := Definition{Code: "[fth_i]", Print: "fth", Unit: fath}

	ci, err := New(CaseInsensitive, d)
	if err != nil {
		t.Fatal(err)
	}
	if u, ok := ci.Unit("[FTH_I]"); !ok || u != fath {
		t.Errorf("have %v", u)
	}

	if _, err := New(CaseSensitive, Definition{Code: "m", Unit: measure.DefineConverted("m", ft, c)}); err == nil {
		t.Errorf("redefining m should fail")
	}
	if _, err := New(CaseSensitive, Definition{Code: "x", Unit: ft.Scale(big.NewRat(2, 1))}); err == nil {
		t.Errorf("a definition must be an atom")
	}
}
