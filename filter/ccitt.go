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
	"io"

	"golang.org/x/image/ccitt"

	pdf "github.com/corefile/pdfcore"
)

// CCITTParams mirrors the handful of CCITTFaxDecode /DecodeParms entries
// the analyzer needs: image dimensions and the K parameter selecting the
// coding scheme (ISO 32000-2 7.4.6, Table 11).
type CCITTParams struct {
	Columns          int
	Rows             int
	K                int
	BlackIs1         bool
	EncodedByteAlign bool
}

func ccittParamsFromDict(parms pdf.Dict, rows int) CCITTParams {
	p := CCITTParams{Columns: 1728, Rows: rows, K: 0}
	if parms == nil {
		return p
	}
	if v, ok := parms["Columns"].(pdf.Integer); ok {
		p.Columns = int(v)
	}
	if v, ok := parms["Rows"].(pdf.Integer); ok && v > 0 {
		p.Rows = int(v)
	}
	if v, ok := parms["K"].(pdf.Integer); ok {
		p.K = int(v)
	}
	if v, ok := parms["BlackIs1"].(pdf.Boolean); ok {
		p.BlackIs1 = bool(v)
	}
	if v, ok := parms["EncodedByteAlign"].(pdf.Boolean); ok {
		p.EncodedByteAlign = bool(v)
	}
	return p
}

// DecodeCCITT decodes a CCITTFaxDecode stream into packed 1-bit-per-pixel
// rows (MSB first, 1 = white and 0 = black unless BlackIs1 inverts this),
// the layout PDF expects for
// an image's /Filter-decoded samples. rows is the image's /Height, used
// when the stream's own /Rows parameter is absent.
func DecodeCCITT(parms pdf.Dict, data []byte, rows int) ([]byte, int, int, error) {
	p := ccittParamsFromDict(parms, rows)

	mode := ccitt.Group3
	if p.K < 0 {
		mode = ccitt.Group4
	}

	h := p.Rows
	if h <= 0 {
		h = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{
		Invert: p.BlackIs1,
		Align:  p.EncodedByteAlign,
	}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, mode, p.Columns, h, opts)
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, err
	}
	return out, p.Columns, p.Rows, nil
}
