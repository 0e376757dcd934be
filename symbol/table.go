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

// Package symbol holds the symbol tables that map unit and prefix
// symbols to units for each presentation variant.
package symbol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/ucum/measure"
)

// Definition names a unit in every variant. Unit must be an atom whose
// symbol is Code. Empty CICode and Print default to the upper case code
// and the code.
type Definition struct {
	Code, CICode, Print string
	Unit                *measure.Unit
}

// Table is an immutable symbol table for one variant. It is safe for
// concurrent use.
type Table struct {
	variant  Variant
	units    map[string]*measure.Unit
	prefixes map[string]*Prefix
	ordered  []*Prefix

	// symbols in this variant, keyed by case-sensitive code.
	unitSyms   map[string]string
	prefixSyms map[prefixKey]string
}

// New returns the table of variant v holding the built-in catalog and
// any extra definitions. Defining a symbol twice is an error unless
// both definitions are the same unit, in which case the first wins.
// Print symbols may repeat.
func New(v Variant, extra ...Definition) (*Table, error) {
	t := &Table{
		variant:    v,
		units:      make(map[string]*measure.Unit),
		prefixes:   make(map[string]*Prefix),
		unitSyms:   make(map[string]string),
		prefixSyms: make(map[prefixKey]string),
	}
	for _, p := range prefixes {
		sym := p.symbol(v)
		if _, ok := t.prefixes[sym]; ok {
			return nil, fmt.Errorf("symbol: prefix %q defined twice", sym)
		}
		px := &Prefix{Symbol: sym, Base: p.base, Exponent: p.exp}
		t.prefixes[sym] = px
		t.ordered = append(t.ordered, px)
		t.prefixSyms[prefixKey{p.base, p.exp}] = sym
	}
	sort.SliceStable(t.ordered, func(i, j int) bool {
		return len(t.ordered[i].Symbol) > len(t.ordered[j].Symbol)
	})
	for _, d := range append(catalog(), extra...) {
		if err := t.add(d); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(v Variant, extra ...Definition) *Table {
	t, err := New(v, extra...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(d Definition) error {
	if d.Code == "" || d.Unit == nil {
		return fmt.Errorf("symbol: incomplete definition %+v", d)
	}
	if d.Unit.Kind() != measure.Atom || d.Unit.Symbol() != d.Code {
		return fmt.Errorf("symbol: definition of %q must be an atom with the same symbol", d.Code)
	}
	sym := d.symbol(t.variant)
	if old, ok := t.units[sym]; ok {
		if t.variant != Print && !old.Equivalent(d.Unit) {
			return fmt.Errorf("symbol: unit %q defined twice", sym)
		}
	} else {
		t.units[sym] = d.Unit
	}
	if _, ok := t.unitSyms[d.Code]; !ok {
		t.unitSyms[d.Code] = sym
	}
	return nil
}

func (d Definition) symbol(v Variant) string {
	switch v {
	case CaseInsensitive:
		if d.CICode != "" {
			return d.CICode
		}
		return strings.ToUpper(d.Code)
	case Print:
		if d.Print != "" {
			return d.Print
		}
	}
	return d.Code
}

// Variant returns the variant of t.
func (t *Table) Variant() Variant { return t.variant }

// Normalize folds text to the form symbols are stored in.
func (t *Table) Normalize(text string) string {
	if t.variant == CaseInsensitive {
		return strings.ToUpper(text)
	}
	return text
}

// Unit returns the unit with symbol sym.
func (t *Table) Unit(sym string) (*measure.Unit, bool) {
	u, ok := t.units[t.Normalize(sym)]
	return u, ok
}

// Prefix returns the prefix with symbol sym.
func (t *Table) Prefix(sym string) (*Prefix, bool) {
	p, ok := t.prefixes[t.Normalize(sym)]
	return p, ok
}

// Prefixes returns every prefix, longest symbol first.
func (t *Table) Prefixes() []*Prefix {
	return append([]*Prefix(nil), t.ordered...)
}

// Lookup returns the unit or the prefix named sym, or neither.
func (t *Table) Lookup(sym string) (*measure.Unit, *Prefix) {
	if u, ok := t.Unit(sym); ok {
		return u, nil
	}
	if p, ok := t.Prefix(sym); ok {
		return nil, p
	}
	return nil, nil
}

// UnitSymbol returns the symbol of the atom u in this variant.
func (t *Table) UnitSymbol(u *measure.Unit) (string, bool) {
	if u.Kind() != measure.Atom {
		return "", false
	}
	s, ok := t.unitSyms[u.Symbol()]
	return s, ok
}

// PrefixSymbol returns the symbol of the prefix base^exp.
func (t *Table) PrefixSymbol(base int64, exp int) (string, bool) {
	s, ok := t.prefixSyms[prefixKey{base, exp}]
	return s, ok
}
