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
	"math"
	"math/big"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/ucum/converter"
	"github.com/spatialmodel/ucum/measure"
)

type prefixDef struct {
	cs, ci, print string
	base          int64
	exp           int
}

func (p prefixDef) symbol(v Variant) string {
	switch v {
	case CaseInsensitive:
		return p.ci
	case Print:
		return p.print
	}
	return p.cs
}

var prefixes = []prefixDef{
	{"Y", "YA", "Y", 10, 24},
	{"Z", "ZA", "Z", 10, 21},
	{"E", "EX", "E", 10, 18},
	{"P", "PT", "P", 10, 15},
	{"T", "TR", "T", 10, 12},
	{"G", "GA", "G", 10, 9},
	{"M", "MA", "M", 10, 6},
	{"k", "K", "k", 10, 3},
	{"h", "H", "h", 10, 2},
	{"da", "DA", "da", 10, 1},
	{"d", "D", "d", 10, -1},
	{"c", "C", "c", 10, -2},
	{"m", "M", "m", 10, -3},
	{"u", "U", "µ", 10, -6},
	{"n", "N", "n", 10, -9},
	{"p", "P", "p", 10, -12},
	{"f", "F", "f", 10, -15},
	{"a", "A", "a", 10, -18},
	{"z", "ZO", "z", 10, -21},
	{"y", "YO", "y", 10, -24},

	{"Ki", "KIB", "Ki", 2, 10},
	{"Mi", "MIB", "Mi", 2, 20},
	{"Gi", "GIB", "Gi", 2, 30},
	{"Ti", "TIB", "Ti", 2, 40},
}

var defs []Definition

func catalog() []Definition { return defs }

// builder accumulates catalog definitions.
type builder struct {
	defs []Definition
}

func (b *builder) add(code, ci, print string, u *measure.Unit) *measure.Unit {
	b.defs = append(b.defs, Definition{Code: code, CICode: ci, Print: print, Unit: u})
	return u
}

func (b *builder) base(code, ci, print string, d unit.Dimension) *measure.Unit {
	return b.add(code, ci, print, measure.NewBase(code, d))
}

func (b *builder) def(code, ci, print string, u *measure.Unit) *measure.Unit {
	return b.add(code, ci, print, measure.Define(code, u))
}

// scaled defines code as factor times parent; factor is a decimal or
// fractional number.
func (b *builder) scaled(code, ci, print string, parent *measure.Unit, factor string) *measure.Unit {
	c, err := converter.ParseRational(factor)
	if err != nil {
		panic(err)
	}
	return b.add(code, ci, print, measure.DefineConverted(code, parent, c))
}

func (b *builder) conv(code, ci, print string, parent *measure.Unit, c ...converter.Converter) *measure.Unit {
	return b.add(code, ci, print, measure.DefineConverted(code, parent, converter.Concat(c...)))
}

func init() {
	b := new(builder)
	kilo := converter.NewPower(10, 3)
	one := measure.One

	// Base units.
	m := b.base("m", "M", "m", unit.LengthDim)
	s := b.base("s", "S", "s", unit.TimeDim)
	g := b.conv("g", "G", "g", measure.NewBase("kg", unit.MassDim), converter.NewPower(10, -3))
	kg := g.Transform(kilo)
	rad := b.base("rad", "RAD", "rad", unit.AngleDim)
	k := b.base("K", "K", "K", unit.TemperatureDim)
	cd := b.base("cd", "CD", "cd", unit.LuminousIntensityDim)
	a := b.base("A", "A", "A", unit.CurrentDim)

	// Dimensionless.
	b.conv("[pi]", "[PI]", "π", one, converter.NewPi(1, 1))
	b.scaled("%", "%", "%", one, "1/100")
	b.scaled("[ppth]", "[PPTH]", "ppth", one, "1/1000")
	b.scaled("[ppm]", "[PPM]", "ppm", one, "1e-6")
	b.scaled("[ppb]", "[PPB]", "ppb", one, "1e-9")
	mol := b.scaled("mol", "MOL", "mol", one, "6.0221367e23")

	// SI derived units.
	sr := b.def("sr", "SR", "sr", rad.Pow(2))
	b.def("Hz", "HZ", "Hz", s.Pow(-1))
	n := b.def("N", "N", "N", kg.Multiply(m).Divide(s.Pow(2)))
	pa := b.def("Pa", "PAL", "Pa", n.Divide(m.Pow(2)))
	j := b.def("J", "J", "J", n.Multiply(m))
	b.def("W", "W", "W", j.Divide(s))
	c := b.def("C", "C", "C", a.Multiply(s))
	v := b.def("V", "V", "V", j.Divide(c))
	b.def("F", "F", "F", c.Divide(v))
	ohm := b.def("Ohm", "OHM", "Ω", v.Divide(a))
	b.def("S", "SIE", "S", ohm.Pow(-1))
	wb := b.def("Wb", "WB", "Wb", v.Multiply(s))
	b.def("T", "T", "T", wb.Divide(m.Pow(2)))
	b.def("H", "H", "H", wb.Divide(a))
	lm := b.def("lm", "LM", "lm", cd.Multiply(sr))
	b.def("lx", "LX", "lx", lm.Divide(m.Pow(2)))
	b.def("Bq", "BQ", "Bq", s.Pow(-1))
	b.def("Gy", "GY", "Gy", j.Divide(kg))
	b.def("Sv", "SV", "Sv", j.Divide(kg))
	b.conv("Cel", "CEL", "°C", k, converter.NewShift(big.NewRat(27315, 100)))
	deg := b.conv("deg", "DEG", "°", rad, converter.NewRational(1, 180), converter.NewPi(1, 1))
	b.scaled("gon", "GON", "ᵍ", deg, "0.9")

	// Units used with SI.
	dm := m.Transform(converter.NewPower(10, -1))
	l := b.def("l", "L", "l", dm.Pow(3))
	b.def("L", "L", "L", dm.Pow(3))
	b.scaled("ar", "AR", "a", m.Pow(2), "100")
	minute := b.scaled("min", "MIN", "min", s, "60")
	hour := b.scaled("h", "HR", "h", minute, "60")
	day := b.scaled("d", "D", "d", hour, "24")
	b.scaled("wk", "WK", "wk", day, "7")
	aj := b.scaled("a_j", "ANN_J", "a", day, "365.25")
	b.def("a", "ANN", "a", aj)
	b.scaled("mo", "MO", "mo", aj, "1/12")
	b.conv("t", "TNE", "t", g, converter.NewPower(10, 6))
	b.scaled("bar", "BAR", "bar", pa, "1e5")
	b.scaled("u", "AMU", "u", g, "1.6605402e-24")
	b.scaled("eV", "EV", "eV", j, "1.60217733e-19")

	// Customary units.
	in := b.scaled("[in_i]", "[IN_I]", "in", m, "0.0254")
	ft := b.scaled("[ft_i]", "[FT_I]", "ft", in, "12")
	b.scaled("[yd_i]", "[YD_I]", "yd", ft, "3")
	b.scaled("[mi_i]", "[MI_I]", "mi", ft, "5280")
	lb := b.scaled("[lb_av]", "[LB_AV]", "lb", g, "453.59237")
	b.scaled("[oz_av]", "[OZ_AV]", "oz", lb, "1/16")
	b.conv("[degF]", "[DEGF]", "°F", k,
		converter.NewShift(big.NewRat(45967, 100)), converter.NewRational(5, 9))

	// Logarithmic units.
	b.conv("B", "B", "B", one, converter.NewLog(10).Inverse())
	b.conv("Np", "NEP", "Np", one, converter.NewLog(math.E).Inverse())
	b.conv("[pH]", "[PH]", "pH", mol.Divide(l),
		converter.NewRational(-1, 1), converter.NewLog(10).Inverse())

	defs = b.defs
}
