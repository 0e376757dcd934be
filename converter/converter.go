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

// Package converter holds the numeric converters that relate a unit to its
// system unit, and the rules for composing them.
//
// Multiplicative converters (Rational, Power, Radical and Pi) commute with
// one another and are composed with exact rational arithmetic. Shift, Log
// and Exp converters do not commute with anything else, so composition
// always keeps them in the order they were encountered.
package converter

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Converter converts a value expressed in one unit into another unit.
type Converter interface {
	// Convert converts x.
	Convert(x float64) float64

	// Inverse returns the converter that undoes this one.
	Inverse() Converter

	// IsIdentity reports whether the converter leaves every value unchanged.
	IsIdentity() bool

	// IsLinear reports whether the converter is a pure scaling, which is
	// required for it to be raised to a power.
	IsLinear() bool

	String() string
}

var one = big.NewRat(1, 1)

// Identity is the converter that does nothing.
type Identity struct{}

func (Identity) Convert(x float64) float64 { return x }
func (Identity) Inverse() Converter        { return Identity{} }
func (Identity) IsIdentity() bool          { return true }
func (Identity) IsLinear() bool            { return true }
func (Identity) String() string            { return "identity" }

// Rational multiplies values by an exact rational factor.
type Rational struct {
	r *big.Rat
}

// NewRational returns a converter that multiplies by num/den.
func NewRational(num, den int64) Rational {
	if num == 0 || den == 0 {
		panic(fmt.Errorf("converter: invalid rational factor %d/%d", num, den))
	}
	return Rational{r: big.NewRat(num, den)}
}

// RationalOf returns a converter that multiplies by r, which must be non-zero.
func RationalOf(r *big.Rat) Rational {
	if r.Sign() == 0 {
		panic("converter: zero rational factor")
	}
	return Rational{r: new(big.Rat).Set(r)}
}

// ParseRational returns a converter that multiplies by the decimal or
// fractional number in s, e.g. "0.3048" or "5/9".
func ParseRational(s string) (Rational, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rational{}, fmt.Errorf("converter: invalid factor %q", s)
	}
	if r.Sign() == 0 {
		return Rational{}, fmt.Errorf("converter: factor %q is zero", s)
	}
	return Rational{r: r}, nil
}

// Factor returns a copy of the exact factor.
func (c Rational) Factor() *big.Rat { return new(big.Rat).Set(c.rat()) }

func (c Rational) rat() *big.Rat {
	if c.r == nil {
		return one
	}
	return c.r
}

func (c Rational) Convert(x float64) float64 {
	f, _ := c.rat().Float64()
	return x * f
}

func (c Rational) Inverse() Converter { return Rational{r: new(big.Rat).Inv(c.rat())} }
func (c Rational) IsIdentity() bool   { return c.rat().Cmp(one) == 0 }
func (c Rational) IsLinear() bool     { return true }
func (c Rational) String() string     { return "×" + c.rat().RatString() }

// Power multiplies values by Base raised to Exponent. Metric and binary
// prefixes are Powers, which keeps conversions between two prefixes of the
// same base a single exact power ratio.
type Power struct {
	Base     int64
	Exponent int
}

// NewPower returns a converter that multiplies by base^exp.
func NewPower(base int64, exp int) Power {
	if base < 1 {
		panic(fmt.Errorf("converter: invalid power base %d", base))
	}
	return Power{Base: base, Exponent: exp}
}

// Factor returns the exact value of Base^Exponent.
func (c Power) Factor() *big.Rat {
	return ratPow(new(big.Rat).SetInt64(c.Base), c.Exponent)
}

func (c Power) Convert(x float64) float64 {
	f, _ := c.Factor().Float64()
	return x * f
}

func (c Power) Inverse() Converter { return Power{Base: c.Base, Exponent: -c.Exponent} }
func (c Power) IsIdentity() bool   { return c.Exponent == 0 || c.Base == 1 }
func (c Power) IsLinear() bool     { return true }
func (c Power) String() string     { return fmt.Sprintf("×%d^%d", c.Base, c.Exponent) }

// Radical multiplies values by the index-th root of a rational radicand.
// It is the result of taking roots of factors that are not perfect powers.
type Radical struct {
	radicand *big.Rat
	index    int
}

func (c Radical) Convert(x float64) float64 {
	f, _ := c.radicand.Float64()
	return x * math.Pow(f, 1/float64(c.index))
}

func (c Radical) Inverse() Converter {
	return Radical{radicand: new(big.Rat).Inv(c.radicand), index: c.index}
}
func (c Radical) IsIdentity() bool { return c.radicand.Cmp(one) == 0 }
func (c Radical) IsLinear() bool   { return true }
func (c Radical) String() string {
	return fmt.Sprintf("×(%s)^(1/%d)", c.radicand.RatString(), c.index)
}

// Pi multiplies values by π raised to a rational exponent.
type Pi struct {
	exp *big.Rat
}

// NewPi returns a converter that multiplies by π^(num/den).
func NewPi(num, den int64) Pi { return Pi{exp: big.NewRat(num, den)} }

func (c Pi) Convert(x float64) float64 {
	e, _ := c.exp.Float64()
	return x * math.Pow(math.Pi, e)
}

func (c Pi) Inverse() Converter { return Pi{exp: new(big.Rat).Neg(c.exp)} }
func (c Pi) IsIdentity() bool   { return c.exp.Sign() == 0 }
func (c Pi) IsLinear() bool     { return true }
func (c Pi) String() string     { return "×π^" + c.exp.RatString() }

// Shift adds an exact offset to values. It is the affine part of
// conversions such as degrees Celsius to kelvin.
type Shift struct {
	offset *big.Rat
}

// NewShift returns a converter that adds offset.
func NewShift(offset *big.Rat) Shift { return Shift{offset: new(big.Rat).Set(offset)} }

// Offset returns a copy of the exact offset.
func (c Shift) Offset() *big.Rat { return new(big.Rat).Set(c.offset) }

func (c Shift) Convert(x float64) float64 {
	f, _ := c.offset.Float64()
	return x + f
}

func (c Shift) Inverse() Converter { return Shift{offset: new(big.Rat).Neg(c.offset)} }
func (c Shift) IsIdentity() bool   { return c.offset.Sign() == 0 }
func (c Shift) IsLinear() bool     { return false }
func (c Shift) String() string {
	if c.offset.Sign() < 0 {
		return "-" + new(big.Rat).Neg(c.offset).RatString()
	}
	return "+" + c.offset.RatString()
}

// Log takes the logarithm of values in the given base.
type Log struct {
	Base float64
}

// NewLog returns a logarithmic converter.
func NewLog(base float64) Log {
	if !(base > 0) || base == 1 || math.IsInf(base, 0) {
		panic(fmt.Errorf("converter: invalid logarithm base %g", base))
	}
	return Log{Base: base}
}

func (c Log) Convert(x float64) float64 {
	switch c.Base {
	case 10:
		return math.Log10(x)
	case 2:
		return math.Log2(x)
	case math.E:
		return math.Log(x)
	}
	return math.Log(x) / math.Log(c.Base)
}

func (c Log) Inverse() Converter { return Exp{Base: c.Base} }
func (c Log) IsIdentity() bool   { return false }
func (c Log) IsLinear() bool     { return false }
func (c Log) String() string     { return "log" + baseString(c.Base) }

// Exp raises the base to the power of values. It is the inverse of Log.
type Exp struct {
	Base float64
}

func (c Exp) Convert(x float64) float64 {
	if c.Base == math.E {
		return math.Exp(x)
	}
	return math.Pow(c.Base, x)
}

func (c Exp) Inverse() Converter { return Log{Base: c.Base} }
func (c Exp) IsIdentity() bool   { return false }
func (c Exp) IsLinear() bool     { return false }
func (c Exp) String() string     { return "exp" + baseString(c.Base) }

func baseString(b float64) string {
	if b == math.E {
		return "e"
	}
	return fmt.Sprintf("%g", b)
}

// Chain applies its converters in order. Chains are built by Concat, which
// keeps them normalized.
type Chain []Converter

func (c Chain) Convert(x float64) float64 {
	for _, cc := range c {
		x = cc.Convert(x)
	}
	return x
}

func (c Chain) Inverse() Converter {
	o := make(Chain, len(c))
	for i, cc := range c {
		o[len(c)-1-i] = cc.Inverse()
	}
	return o
}

func (c Chain) IsIdentity() bool {
	_, ok := Concat([]Converter(c)...).(Identity)
	return ok
}

func (c Chain) IsLinear() bool {
	for _, cc := range c {
		if !cc.IsLinear() {
			return false
		}
	}
	return true
}

func (c Chain) String() string {
	s := make([]string, len(c))
	for i, cc := range c {
		s[i] = cc.String()
	}
	return strings.Join(s, " → ")
}
