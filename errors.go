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
	"unicode/utf8"
)

// LexicalError reports a character that cannot start a token.
type LexicalError struct {
	Pos  int
	Char rune
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("ucum: unexpected character %q at position %d", e.Char, e.Pos)
}

func lexicalError(t Token) *LexicalError {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return &LexicalError{Pos: t.Pos, Char: r}
}

// SyntaxError reports an unexpected token. Expected holds every token
// kind that some grammar alternative would have accepted at Pos.
type SyntaxError struct {
	Pos      int
	Found    Token
	Expected Kind
	// Msg, when set, describes a limit or value error instead.
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("ucum: %s at position %d", e.Msg, e.Pos)
	}
	return fmt.Sprintf("ucum: unexpected %v at position %d; expected %v", e.Found, e.Pos, e.Expected)
}

// UnknownUnitError reports a symbol that is neither a unit nor a
// prefixed unit.
type UnknownUnitError struct {
	Pos  int
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("ucum: unknown unit %q at position %d", e.Unit, e.Pos)
}

// UnsupportedOperationError reports an operation that is not defined,
// such as parsing the print variant or a compound unit. Pos is -1 when
// the operation is not at a position of the text.
type UnsupportedOperationError struct {
	Op  string
	Pos int
}

func (e *UnsupportedOperationError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("ucum: %s is not supported", e.Op)
	}
	return fmt.Sprintf("ucum: %s is not supported at position %d", e.Op, e.Pos)
}
