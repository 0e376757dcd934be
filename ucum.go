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

// Package ucum parses and formats unit-of-measure expressions such as
// "kg.m/s2", "m/(bar.s)" or "dHz".
//
// A Format binds a symbol table of one presentation variant. Parse
// builds a *measure.Unit directly while reading the expression, and
// Format renders a unit back into text. Expressions in the
// case-sensitive and case-insensitive variants round-trip; the print
// variant is for display only and cannot be parsed.
package ucum

import (
	"github.com/spatialmodel/ucum/measure"
	"github.com/spatialmodel/ucum/symbol"
)

// Version gives the version of this software.
const Version = "1.0.0"

// Format parses and formats unit expressions of one variant. It holds
// no mutable state and is safe for concurrent use.
type Format struct {
	table *symbol.Table
}

// New returns a Format that uses table t.
func New(t *symbol.Table) *Format {
	return &Format{table: t}
}

// Variant returns the presentation variant of f.
func (f *Format) Variant() symbol.Variant { return f.table.Variant() }

// Table returns the symbol table of f.
func (f *Format) Table() *symbol.Table { return f.table }

// Parse parses text into a unit. The returned error is a
// *LexicalError, *SyntaxError, *UnknownUnitError or
// *UnsupportedOperationError.
func (f *Format) Parse(text string) (*measure.Unit, error) {
	if f.table.Variant() == symbol.Print {
		return nil, &UnsupportedOperationError{Op: "parsing the print variant", Pos: -1}
	}
	return newParser(f.table, text).parse()
}

// MustParse is like Parse but panics on error.
func (f *Format) MustParse(text string) *measure.Unit {
	u, err := f.Parse(text)
	if err != nil {
		panic(err)
	}
	return u
}
