// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdf

import "fmt"

// SyntaxError indicates that the lexer or parser encountered bytes it
// cannot interpret at all.
type SyntaxError struct {
	Position int64
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pdf: syntax error at byte %d: %s", e.Position, e.Message)
}

// UnexpectedToken indicates a structural mismatch where recovery is not
// permitted: the parser expected one kind of token or keyword and found
// another.
type UnexpectedToken struct {
	Position int64
	Expected string
	Found    string
}

func (e *UnexpectedToken) Error() string {
	return fmt.Sprintf("pdf: at byte %d: expected %s, found %s", e.Position, e.Expected, e.Found)
}

// MissingKey indicates that a required dictionary key is absent while
// parsing in strict mode.
type MissingKey struct {
	Key Name
}

func (e *MissingKey) Error() string {
	return fmt.Sprintf("pdf: missing required key %q", string(e.Key))
}

// ObjectNotFound indicates that a Reference could not be resolved against
// the Document's object table.
type ObjectNotFound struct {
	Ref Reference
}

func (e *ObjectNotFound) Error() string {
	return fmt.Sprintf("pdf: object %s not found", e.Ref)
}

// ProcessingError reports a failure from a downstream collaborator, e.g. an
// image decoder invoked by the page analyzer.
type ProcessingError struct {
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf: %s: %s", e.Message, e.Err)
	}
	return "pdf: " + e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// PageIndexOutOfRange indicates that Document.GetPage was called with an
// index outside [0, PageCount).
type PageIndexOutOfRange struct {
	Index int
	Count int
}

func (e *PageIndexOutOfRange) Error() string {
	return fmt.Sprintf("pdf: page index %d out of range (document has %d pages)", e.Index, e.Count)
}
