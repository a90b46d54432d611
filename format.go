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

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatReal prints x with up to six fractional digits, then trims
// trailing zeros and a trailing decimal point: 0.0 -> "0", 1.5 -> "1.5".
// Output is deliberately not a bit-exact round-trip of the float64.
func FormatReal(x float64) string {
	s := strconv.FormatFloat(x, 'f', 6, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}

// EscapeString formats a PDF string object as a literal "(...)" form,
// escaping '(', ')', '\' and control characters. Bytes outside this set,
// including arbitrary high-bit bytes, pass through unescaped: PDF strings
// are raw bytes, not text.
func EscapeString(s String) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, c := range []byte(s) {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte(')')
	return b.String()
}

// isNameRegular reports whether c may appear in a written PDF name without
// a #hh escape: anything but PDF's delimiter/whitespace set and bytes
// outside the printable ASCII range (ISO 32000-2 7.3.5).
func isNameRegular(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return false
	}
	return c > 0x20 && c < 0x7F
}

// EscapeName formats a PDF name object as "/..." with #hh hex escapes for
// delimiter, whitespace and non-printable bytes.
func EscapeName(n Name) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, c := range []byte(n) {
		if isNameRegular(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "#%02X", c)
		}
	}
	return b.String()
}
