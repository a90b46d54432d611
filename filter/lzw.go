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

import (
	"bytes"
	"errors"

	pdf "github.com/corefile/pdfcore"
)

// LZWDecode uses a variant of the TIFF/GIF LZW algorithm with an
// EarlyChange bit that stdlib compress/lzw has no knob for, so PDF streams
// need their own decoder rather than the standard library's. The code
// table always starts at 9 bits and grows to 12; codes 256 (clear) and 257
// (end-of-data) are reserved, matching ISO 32000-2 7.4.4.2.
const (
	lzwClearCode = 256
	lzwEODCode   = 257
	lzwFirstCode = 258
)

func decodeLZW(parms pdf.Dict, data []byte) ([]byte, error) {
	pp := predictorFromDict(parms)
	raw, err := lzwDecodeRaw(data, pp.EarlyChange)
	if err != nil {
		return nil, err
	}
	return applyPredictorDecode(pp, bytes.NewReader(raw))
}

type lzwBitReader struct {
	data []byte
	pos  int // bit position
}

func (r *lzwBitReader) readCode(width int) (int, bool) {
	if r.pos+width > len(r.data)*8 {
		return 0, false
	}
	code := 0
	for i := 0; i < width; i++ {
		byteIdx := (r.pos + i) / 8
		bitIdx := 7 - uint((r.pos+i)%8)
		bit := (r.data[byteIdx] >> bitIdx) & 1
		code = code<<1 | int(bit)
	}
	r.pos += width
	return code, true
}

// lzwDecodeRaw decodes a single PDF LZW stream into its uncompressed bytes.
func lzwDecodeRaw(data []byte, earlyChange bool) ([]byte, error) {
	br := &lzwBitReader{data: data}
	var out bytes.Buffer

	var table [][]byte
	resetTable := func() {
		table = make([][]byte, lzwFirstCode, 4096)
		for i := 0; i < 256; i++ {
			table[i] = []byte{byte(i)}
		}
	}
	resetTable()

	codeWidth := 9
	nextCodeLimit := func() int {
		limit := 1 << uint(codeWidth)
		if earlyChange {
			limit--
		}
		return limit
	}

	var prev []byte
	for {
		code, ok := br.readCode(codeWidth)
		if !ok {
			break
		}
		if code == lzwEODCode {
			break
		}
		if code == lzwClearCode {
			resetTable()
			codeWidth = 9
			prev = nil
			continue
		}

		var entry []byte
		switch {
		case code < len(table):
			entry = table[code]
		case code == len(table) && prev != nil:
			entry = append(append([]byte{}, prev...), prev[0])
		default:
			return nil, errors.New("lzw: invalid code sequence")
		}

		out.Write(entry)

		if prev != nil && len(table) < 4096 {
			newEntry := append(append([]byte{}, prev...), entry[0])
			table = append(table, newEntry)
		}
		prev = entry

		if len(table) >= nextCodeLimit() && codeWidth < 12 {
			codeWidth++
		}
	}
	return out.Bytes(), nil
}
