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

package measure

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ctessum/unit"
)

// Dimensions is a dimension vector: the power of each base dimension.
// Powers are rational because units may be raised to fractional
// exponents. Missing keys have power zero.
type Dimensions map[unit.Dimension]*big.Rat

func dimensionsOf(d unit.Dimension) Dimensions {
	return Dimensions{d: big.NewRat(1, 1)}
}

// add adds o scaled by p to d.
func (d Dimensions) add(o Dimensions, p *big.Rat) {
	for k, v := range o {
		x := new(big.Rat).Mul(v, p)
		if cur, ok := d[k]; ok {
			x.Add(x, cur)
		}
		if x.Sign() == 0 {
			delete(d, k)
		} else {
			d[k] = x
		}
	}
}

// Matches reports whether d and o have the same powers.
func (d Dimensions) Matches(o Dimensions) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		w, ok := o[k]
		if !ok || v.Cmp(w) != 0 {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether every power is zero.
func (d Dimensions) IsDimensionless() bool { return len(d) == 0 }

// SI converts d to a ctessum/unit dimension set. It fails when a
// power is not an integer.
func (d Dimensions) SI() (unit.Dimensions, error) {
	o := make(unit.Dimensions, len(d))
	for k, v := range d {
		if !v.IsInt() {
			return nil, fmt.Errorf("measure: dimension %s has fractional power %s", k, v.RatString())
		}
		o[k] = int(v.Num().Int64())
	}
	return o, nil
}

func (d Dimensions) String() string {
	if si, err := d.SI(); err == nil {
		return si.String()
	}
	keys := make([]unit.Dimension, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := d[keys[i]].Sign() > 0, d[keys[j]].Sign() > 0
		if pi != pj {
			return pi
		}
		return keys[i].String() < keys[j].String()
	})
	var b bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.String())
		if v := d[k]; v.Cmp(big.NewRat(1, 1)) != 0 {
			fmt.Fprintf(&b, "^%s", v.RatString())
		}
	}
	return b.String()
}

var (
	dimMu  sync.Mutex
	custom = make(map[string]unit.Dimension)
)

// NewDimension returns the base dimension with the given symbol,
// registering it with unit.NewDimension the first time. Symbols of the
// built-in dimensions, such as "kg", are an error.
func NewDimension(symbol string) (d unit.Dimension, err error) {
	dimMu.Lock()
	defer dimMu.Unlock()
	if d, ok := custom[symbol]; ok {
		return d, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("measure: %v", r)
		}
	}()
	d = unit.NewDimension(symbol)
	custom[symbol] = d
	return d, nil
}
