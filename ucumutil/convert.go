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

package ucumutil

import (
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/ucum/symbol"
)

// Conversion is the result of converting a value between two units.
type Conversion struct {
	Value  float64 `json:"value"`
	From   string  `json:"from"`
	Result float64 `json:"result"`
	To     string  `json:"to"`

	// SI is the value expressed in coherent SI units, when the units
	// have SI dimensions.
	SI string `json:"si,omitempty"`
}

// Convert converts value from one unit expression to another, both
// read in variant v. value is an arithmetic expression such as "3*12".
func Convert(c *Cache, v symbol.Variant, value, from, to string) (*Conversion, error) {
	x, err := evaluate(value)
	if err != nil {
		return nil, err
	}
	fu, err := c.Parse(v, from)
	if err != nil {
		return nil, err
	}
	tu, err := c.Parse(v, to)
	if err != nil {
		return nil, err
	}
	conv, err := fu.ConverterTo(tu)
	if err != nil {
		return nil, fmt.Errorf("ucum: converting %s to %s: %v", from, to, err)
	}
	f := c.Formats()[v]
	r := &Conversion{
		Value:  x,
		From:   f.Format(fu),
		Result: conv.Convert(x),
		To:     f.Format(tu),
	}
	if q, err := fu.Quantity(x); err == nil {
		r.SI = fmt.Sprintf("%g", q)
	}
	return r, nil
}

// evaluate returns the value of a numeric expression.
func evaluate(s string) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, fmt.Errorf("ucum: invalid value %q: %v", s, err)
	}
	v, err := expr.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("ucum: evaluating value %q: %v", s, err)
	}
	x, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("ucum: value %q is not a number", s)
	}
	return x, nil
}
