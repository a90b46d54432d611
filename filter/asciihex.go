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

package filter

import "fmt"

// decodeASCIIHex decodes an ASCIIHexDecode stream: pairs of hex digits,
// whitespace ignored, terminated by ">". An odd trailing digit is padded
// with an implicit "0", per ISO 32000-2 7.4.2.
func decodeASCIIHex(data []byte) ([]byte, error) {
	var out []byte
	var hi byte
	haveHi := false

	for _, c := range data {
		if c == '>' {
			break
		}
		if isASCII85Space(c) {
			continue
		}
		v, ok := hexDigit(c)
		if !ok {
			return nil, fmt.Errorf("invalid hex digit %q in ASCIIHexDecode stream", c)
		}
		if !haveHi {
			hi = v
			haveHi = true
			continue
		}
		out = append(out, hi<<4|v)
		haveHi = false
	}
	if haveHi {
		out = append(out, hi<<4)
	}
	return out, nil
}

// EncodeASCIIHex encodes data as an ASCIIHexDecode stream.
func EncodeASCIIHex(data []byte) []byte {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 0, len(data)*2+1)
	for _, b := range data {
		out = append(out, hexDigits[b>>4], hexDigits[b&0xf])
	}
	return append(out, '>')
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
