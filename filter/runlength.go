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

import "errors"

// decodeRunLength decodes a RunLengthDecode stream (ISO 32000-2 7.4.5): a
// length byte 0-127 means copy the next length+1 literal bytes, a length
// byte 129-255 means repeat the single following byte 257-length times,
// and a length byte of 128 marks end-of-data.
func decodeRunLength(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		n := data[i]
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			count := int(n) + 1
			if i+count > len(data) {
				return nil, errors.New("runlength: literal run exceeds stream")
			}
			out = append(out, data[i:i+count]...)
			i += count
		default:
			if i >= len(data) {
				return nil, errors.New("runlength: repeat run missing byte")
			}
			count := 257 - int(n)
			b := data[i]
			i++
			for j := 0; j < count; j++ {
				out = append(out, b)
			}
		}
	}
	return out, nil
}
