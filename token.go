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
	"strings"
)

// Kind is a token kind. Kinds are bit flags so that a Kind value can
// also hold a set of kinds.
type Kind uint32

const (
	// EOF is the end of the input.
	EOF Kind = 1 << iota
	// Illegal is a character no token can start with.
	Illegal
	// Atom is a unit symbol, which may contain bracketed segments.
	Atom
	// Annotation is braced free text.
	Annotation
	// Factor is a number: an integer or a decimal, optionally exponential.
	Factor
	// Sign is '+' or '-'.
	Sign
	// Dot is a multiplication operator: '.', '*' or '·'.
	Dot
	// Solidus is the division operator '/'.
	Solidus
	// Caret is the exponent operator '^'.
	Caret
	// Superscript is a run of superscript digits, e.g. "²" or "⁻¹".
	Superscript
	// LParen is '('.
	LParen
	// RParen is ')'.
	RParen
	// Semicolon separates the parts of a compound unit.
	Semicolon
)

var kindNames = []struct {
	k    Kind
	name string
}{
	{EOF, "end of input"},
	{Illegal, "illegal character"},
	{Atom, "unit symbol"},
	{Annotation, "annotation"},
	{Factor, "number"},
	{Sign, "sign"},
	{Dot, "'.'"},
	{Solidus, "'/'"},
	{Caret, "'^'"},
	{Superscript, "superscript"},
	{LParen, "'('"},
	{RParen, "')'"},
	{Semicolon, "';'"},
}

// Kinds splits a set into its kinds.
func (k Kind) Kinds() []Kind {
	var o []Kind
	for _, n := range kindNames {
		if k&n.k != 0 {
			o = append(o, n.k)
		}
	}
	return o
}

func (k Kind) String() string {
	var names []string
	for _, n := range kindNames {
		if k&n.k != 0 {
			names = append(names, n.name)
		}
	}
	switch len(names) {
	case 0:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// Token is a lexical token.
type Token struct {
	Kind Kind
	// Text is the token text. For annotations it excludes the braces.
	Text string
	// Pos is the byte offset of the token in the input.
	Pos int
	// Space is set when whitespace precedes the token.
	Space bool
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%v %q", t.Kind, t.Text)
}
