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
	"fmt"

	"github.com/spatialmodel/ucum/converter"
)

// Prefix is a multiplicative scale written in front of a unit symbol,
// e.g. "k" for Base 10, Exponent 3.
type Prefix struct {
	Symbol   string
	Base     int64
	Exponent int
}

// Converter returns the converter from a prefixed unit to the
// unprefixed one.
func (p *Prefix) Converter() converter.Converter {
	return converter.NewPower(p.Base, p.Exponent)
}

func (p *Prefix) String() string {
	return fmt.Sprintf("%s (%d^%d)", p.Symbol, p.Base, p.Exponent)
}

type prefixKey struct {
	base int64
	exp  int
}
