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
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/spatialmodel/ucum/converter"
	"github.com/spatialmodel/ucum/measure"
	"github.com/spatialmodel/ucum/symbol"
	"gonum.org/v1/gonum/floats"
)

var (
	cs = New(symbol.MustNew(symbol.CaseSensitive))
	ci = New(symbol.MustNew(symbol.CaseInsensitive))
	pr = New(symbol.MustNew(symbol.Print))
)

func TestParseEquivalent(t *testing.T) {
	m := cs.MustParse("m")
	tests := []struct {
		in   string
		want *measure.Unit
	}{
		{in: "m2", want: m.Pow(2)},
		{in: "m^2", want: m.Pow(2)},
		{in: "m²", want: m.Pow(2)},
		{in: "m^(2)", want: m.Pow(2)},
		{in: "m.m", want: m.Pow(2)},
		{in: "m^(2/3)", want: m.Pow(2).Root(3)},
		{in: "m^(-2/3)", want: m.Pow(-2).Root(3)},
		{in: "m^(1/-2)", want: m.Root(-2)},
		{in: "s-1", want: cs.MustParse("s").Pow(-1)},
		{in: "s⁻¹", want: cs.MustParse("s").Pow(-1)},
		{in: "s^-1", want: cs.MustParse("Hz")},
		{in: "/s", want: cs.MustParse("Hz")},
		{in: "m¹²", want: m.Pow(12)},
		{in: "1", want: measure.One},
		{in: "{rbc}", want: measure.One},
		{in: "m{length}", want: m},
		{in: "m2{area}/m", want: m},
		{in: "(m)", want: m},
		{in: "((m.s)/s)", want: m},
		{in: "km/1000", want: m},
		{in: "1000.mm", want: m},
		{in: "10^3.mm", want: m},
		{in: "10*3.mm", want: cs.MustParse("30.mm")},
		{in: "kg", want: cs.MustParse("g").Transform(converter.NewPower(10, 3))},
		{in: "N", want: cs.MustParse("kg.m/s2")},
		{in: "J/s", want: cs.MustParse("W")},
		{in: "l", want: cs.MustParse("dm3")},
		{in: "K + 273.15", want: cs.MustParse("Cel")},
		{in: "K+273.15", want: cs.MustParse("Cel")},
		{in: "K-273.15", want: cs.MustParse("Cel - 546.3")},
		{in: "273.15 + K", want: cs.MustParse("Cel")},
		{in: "log(m)", want: m.Transform(converter.NewLog(10))},
		{in: "ln(m)", want: m.Transform(converter.NewLog(math.E))},
		{in: "log2(m)", want: m.Transform(converter.NewLog(2))},
		{in: "10^m", want: m.Transform(converter.NewLog(10).Inverse())},
		{in: "e^(m/s)", want: cs.MustParse("m/s").Transform(converter.Exp{Base: math.E})},
		{in: "2^m", want: m.Transform(converter.Exp{Base: 2})},
		{in: "10^(2{x})", want: measure.One.Scale(big.NewRat(2, 1)).Transform(converter.Exp{Base: 10})},
		{in: "dB", want: cs.MustParse("B").Transform(converter.NewPower(10, -1))},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			have, err := cs.Parse(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if !have.Equivalent(test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	tests := []struct{ ci, cs string }{
		{ci: "MIN", cs: "min"},
		{ci: "min", cs: "min"},
		{ci: "DHZ", cs: "dHz"},
		{ci: "KG.M/S2", cs: "kg.m/s2"},
		{ci: "MM", cs: "mm"},
		{ci: "MAM", cs: "Mm"},
		{ci: "PAL", cs: "Pa"},
		{ci: "[IN_I]", cs: "[in_i]"},
		{ci: "CEL + 2", cs: "Cel + 2"},
		{ci: "LOG(M)", cs: "log(m)"},
		{ci: "E^M", cs: "e^m"},
	}
	for _, test := range tests {
		t.Run(test.ci, func(t *testing.T) {
			have, err := ci.Parse(test.ci)
			if err != nil {
				t.Fatal(err)
			}
			if want := cs.MustParse(test.cs); !have.Equivalent(want) {
				t.Errorf("have %v, want %v", have, want)
			}
		})
	}
}

func TestExactPrefixes(t *testing.T) {
	km, m, gm := cs.MustParse("km"), cs.MustParse("m"), cs.MustParse("Gm")
	c, err := km.ConverterTo(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, converter.Power{Base: 10, Exponent: 3}) {
		t.Errorf("km to m: have %#v", c)
	}
	if c.Convert(1) != 1000 {
		t.Errorf("km to m: have %g", c.Convert(1))
	}
	c, err = km.ConverterTo(gm)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, converter.Power{Base: 10, Exponent: -6}) {
		t.Errorf("km to Gm: have %#v", c)
	}
	c, err = cs.MustParse("Ym").ConverterTo(cs.MustParse("Zm"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, converter.Power{Base: 10, Exponent: 3}) {
		t.Errorf("Ym to Zm: have %#v", c)
	}
	c, err = cs.MustParse("dHz").ConverterTo(cs.MustParse("Hz"))
	if err != nil {
		t.Fatal(err)
	}
	if !converter.Equal(c, converter.NewRational(1, 10)) {
		t.Errorf("dHz to Hz: have %v", c)
	}
}

func TestConvertValues(t *testing.T) {
	tests := []struct {
		from, to string
		in, want float64
	}{
		{from: "[ft_i]", to: "m", in: 3, want: 0.9144},
		{from: "km/h", to: "m/s", in: 36, want: 10},
		{from: "Cel", to: "[degF]", in: 100, want: 212},
		{from: "mg/dl", to: "g/l", in: 100, want: 1},
		{from: "dB", to: "1", in: 20, want: 100},
		{from: "[pH]", to: "mol/l", in: 3, want: 1e-3},
		{from: "10^m", to: "m", in: 2, want: 100},
		{from: "log(m)", to: "m", in: 100, want: 2},
	}
	for _, test := range tests {
		t.Run(test.from+"→"+test.to, func(t *testing.T) {
			c, err := cs.MustParse(test.from).ConverterTo(cs.MustParse(test.to))
			if err != nil {
				t.Fatal(err)
			}
			if have := c.Convert(test.in); !floats.EqualWithinAbsOrRel(have, test.want, 1e-9, 1e-9) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		variant *Format
		in      string
		check   func(error) bool
	}{
		{cs, "3 ft 2 in", isSyntax},
		{cs, "XYZZY", isUnknown},
		{cs, "MIN", isUnknown},
		{cs, "m$", isLexical},
		{cs, "", isSyntax},
		{cs, "m/", isSyntax},
		{cs, "m^", isSyntax},
		{cs, "m^(1/0)", isSyntax},
		{cs, "m^2.5", isSyntax},
		{cs, "m^1000", isSyntax},
		{cs, "(m", isSyntax},
		{cs, "m)", isSyntax},
		{cs, "0.m", isSyntax},
		{cs, "K +", isSyntax},
		{cs, "log1(m)", isSyntax},
		{cs, "m⁻", isSyntax},
		{cs, "[ft_i];[in_i]", isUnsupported},
		{pr, "m", isUnsupported},
		{cs, strings.Repeat("(", 40) + "m" + strings.Repeat(")", 40), isSyntax},
		{cs, strings.Repeat("9", 65), isSyntax},
		{cs, "1e9999", isSyntax},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			u, err := test.variant.Parse(test.in)
			if err == nil {
				t.Fatalf("have %v, want an error", u)
			}
			if !test.check(err) {
				t.Errorf("wrong error type %T: %v", err, err)
			}
		})
	}
}

func isSyntax(err error) bool      { _, ok := err.(*SyntaxError); return ok }
func isUnknown(err error) bool     { _, ok := err.(*UnknownUnitError); return ok }
func isLexical(err error) bool     { _, ok := err.(*LexicalError); return ok }
func isUnsupported(err error) bool { _, ok := err.(*UnsupportedOperationError); return ok }

func TestSyntaxErrorDetail(t *testing.T) {
	_, err := cs.Parse("3 ft 2 in")
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("have %v", err)
	}
	if se.Pos != 2 || se.Found.Text != "ft" {
		t.Errorf("have %q at %d", se.Found.Text, se.Pos)
	}
	for _, k := range []Kind{Dot, Solidus, Sign, Caret, Annotation, EOF} {
		if se.Expected&k == 0 {
			t.Errorf("%v should be expected; have %v", k, se.Expected)
		}
	}

	_, err = cs.Parse("m/")
	se = err.(*SyntaxError)
	if want := Atom | Factor | LParen | Annotation; se.Expected&want != want {
		t.Errorf("have %v", se.Expected)
	}

	_, err = cs.Parse("XYZZY.m")
	if uu, ok := err.(*UnknownUnitError); !ok || uu.Unit != "XYZZY" || uu.Pos != 0 {
		t.Errorf("have %v", err)
	}

	_, err = cs.Parse("[ft_i];[in_i]")
	if uo, ok := err.(*UnsupportedOperationError); !ok || uo.Pos != 6 {
		t.Errorf("have %v", err)
	}
	if want := "ucum: compound unit is not supported at position 6"; err.Error() != want {
		t.Errorf("have %q, want %q", err, want)
	}
	_, err = pr.Parse("m")
	if want := "ucum: parsing the print variant is not supported"; err == nil || err.Error() != want {
		t.Errorf("have %v, want %q", err, want)
	}
}

func TestParseLimits(t *testing.T) {
	for _, in := range []string{
		"((((((m^999)^999)^999)^999)^999)^999)^999",
		"((km^999)^999)^9",
		"(m^(1/999))^(1/2)",
		"m999.m",
		"(m999)-2",
		"(1e999)2",
		"1e999.1e999",
		"1e-999/1e999",
		"((K + 1e999) + 1e-999)",
	} {
		t.Run(in, func(t *testing.T) {
			u, err := cs.Parse(in)
			if err == nil {
				t.Fatalf("have %v, want an error", u)
			}
			if !isSyntax(err) {
				t.Errorf("wrong error type %T: %v", err, err)
			}
		})
	}
	for _, in := range []string{
		"km^999", "m999.m-999", "m^(1/999)", "(m^(-999))", "1e999",
		"1e-999", "m.1e-70", "(K + 1e999)", "[in_i]999",
	} {
		t.Run(in, func(t *testing.T) {
			if _, err := cs.Parse(in); err != nil {
				t.Error(err)
			}
		})
	}
	if d := cs.MustParse("km^999").Dimensions().String(); d != "m^999" {
		t.Errorf("dimensions: have %q", d)
	}
}

// A Format is shared by goroutines without locking.
func TestParseConcurrent(t *testing.T) {
	exprs := []string{"kg.m/s2", "Cel", "10^(2.5)", "log2(m).s", "[in_i]2", "mg/dl", "um"}
	var wg sync.WaitGroup
	errs := make(chan error, 8*len(exprs))
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, in := range exprs {
				for _, f := range []*Format{cs, ci} {
					u, err := cs.Parse(in)
					if err != nil {
						errs <- err
						return
					}
					back, err := f.Parse(f.Format(u))
					if err != nil {
						errs <- err
						return
					}
					if _, err := u.ConverterToBase(); err == nil && !back.Equivalent(u) {
						errs <- fmt.Errorf("%s: %v is not %v", in, back, u)
						return
					}
					pr.Format(u)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
