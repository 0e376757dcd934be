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
	"strings"
)

// Variant selects a presentation of unit expressions.
type Variant int

const (
	// CaseSensitive is the case-sensitive code, e.g. "kg.m/s2".
	CaseSensitive Variant = iota
	// CaseInsensitive is the case-insensitive code, e.g. "KG.M/S2".
	CaseInsensitive
	// Print is the human-readable form, e.g. "kg·m/s²". It cannot be parsed.
	Print
)

func (v Variant) String() string {
	switch v {
	case CaseSensitive:
		return "cs"
	case CaseInsensitive:
		return "ci"
	case Print:
		return "print"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant returns the variant named s.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cs", "casesensitive", "case-sensitive":
		return CaseSensitive, nil
	case "ci", "caseinsensitive", "case-insensitive":
		return CaseInsensitive, nil
	case "print":
		return Print, nil
	}
	return 0, fmt.Errorf("symbol: invalid variant %q; valid options are cs, ci and print", s)
}
