// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2020 Jochen Voss <voss@seehuhn.de>
//
// Some code here, e.g. the pngUpReader, is taken from
// https://pkg.go.dev/rsc.io/pdf .  Use of this source code is governed by a
// BSD-style license, which is reproduced here:
//
//     Copyright (c) 2009 The Go Authors. All rights reserved.
//
//     Redistribution and use in source and binary forms, with or without
//     modification, are permitted provided that the following conditions are
//     met:
//
//        * Redistributions of source code must retain the above copyright
//     notice, this list of conditions and the following disclaimer.
//        * Redistributions in binary form must reproduce the above
//     copyright notice, this list of conditions and the following disclaimer
//     in the documentation and/or other materials provided with the
//     distribution.
//        * Neither the name of Google Inc. nor the names of its
//     contributors may be used to endorse or promote products derived from
//     this software without specific prior written permission.
//
//     THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
//     "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
//     LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
//     A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
//     OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
//     SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
//     LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
//     DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
//     THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
//     (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
//     OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package filter

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strconv"

	pdf "github.com/corefile/pdfcore"
)

// predictorParams is the subset of /DecodeParms that controls the PNG/TIFF
// predictor layered on top of FlateDecode and LZWDecode.
type predictorParams struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	EarlyChange      bool
}

func predictorFromDict(parms pdf.Dict) predictorParams {
	res := predictorParams{
		Predictor:        1,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          1,
		EarlyChange:      true,
	}
	if parms == nil {
		return res
	}
	if val, ok := parms["Predictor"].(pdf.Integer); ok && val >= 1 && val <= 15 {
		res.Predictor = int(val)
	}
	if val, ok := parms["Colors"].(pdf.Integer); ok && val >= 1 {
		res.Colors = int(val)
	}
	if val, ok := parms["BitsPerComponent"].(pdf.Integer); ok &&
		(val == 1 || val == 2 || val == 4 || val == 8 || val == 16) {
		res.BitsPerComponent = int(val)
	}
	if val, ok := parms["Columns"].(pdf.Integer); ok && val >= 0 && res.Predictor > 1 {
		res.Columns = int(val)
	}
	if val, ok := parms["EarlyChange"].(pdf.Integer); ok {
		res.EarlyChange = (val != 0)
	}
	return res
}

// rowBytes reports how many bytes one predictor scanline occupies, not
// counting the leading filter-type byte.
func (pp predictorParams) rowBytes() int {
	bits := pp.Colors * pp.BitsPerComponent * pp.Columns
	return (bits + 7) / 8
}

func decodeFlate(parms pdf.Dict, data []byte) ([]byte, error) {
	pp := predictorFromDict(parms)

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return applyPredictorDecode(pp, zr)
}

func applyPredictorDecode(pp predictorParams, r io.Reader) ([]byte, error) {
	switch pp.Predictor {
	case 1:
		return io.ReadAll(r)
	case 2:
		return tiffPredictorDecode(pp, r)
	case 10, 11, 12, 13, 14, 15:
		return pngPredictorDecode(pp, r)
	default:
		return nil, errors.New("unsupported predictor " + strconv.Itoa(pp.Predictor))
	}
}

// EncodeFlate compresses data with zlib, undecorated by any predictor. This
// is what the writer's CompressStreams option uses for content streams it
// generates itself: plain FlateDecode, no /DecodeParms.
func EncodeFlate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngPredictorDecode removes a PNG (types 0-4) predictor from a decompressed
// stream, one scanline at a time. Each scanline carries a leading
// filter-type byte, per the PNG/PDF predictor rules (ISO 32000-2 7.4.4.4).
func pngPredictorDecode(pp predictorParams, r io.Reader) ([]byte, error) {
	row := pp.rowBytes()
	if row <= 0 {
		return nil, errors.New("predictor: non-positive row width")
	}
	bpp := (pp.Colors*pp.BitsPerComponent + 7) / 8
	if bpp < 1 {
		bpp = 1
	}

	prev := make([]byte, row)
	cur := make([]byte, row)
	tmp := make([]byte, row+1)
	var out bytes.Buffer

	for {
		_, err := io.ReadFull(r, tmp)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("predictor: %w", err)
		}
		filterType := tmp[0]
		copy(cur, tmp[1:])
		if err := unfilterRow(filterType, cur, prev, bpp); err != nil {
			return nil, err
		}
		out.Write(cur)
		prev, cur = cur, prev
	}
	return out.Bytes(), nil
}

func unfilterRow(filterType byte, cur, prev []byte, bpp int) error {
	switch filterType {
	case 0: // None
	case 1: // Sub
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] += left
		}
	case 2: // Up
		for i := range cur {
			cur[i] += prev[i]
		}
	case 3: // Average
		for i := range cur {
			var left int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] += byte((left + int(prev[i])) / 2)
		}
	case 4: // Paeth
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			cur[i] += paeth(left, prev[i], upLeft)
		}
	default:
		return fmt.Errorf("predictor: unknown PNG filter type %d", filterType)
	}
	return nil
}

func paeth(a, b, c byte) byte {
	pa := abs(int(b) - int(c))
	pb := abs(int(a) - int(c))
	pc := abs(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// pngUpEncode applies the PNG Up predictor (type 2) to data, the same
// choice most PDF writers make because it needs no per-row decision.
func pngUpEncode(data []byte, row int) ([]byte, error) {
	if row <= 0 {
		return nil, errors.New("predictor: non-positive row width")
	}
	prev := make([]byte, row)
	var out bytes.Buffer
	for off := 0; off < len(data); off += row {
		end := off + row
		if end > len(data) {
			end = len(data)
		}
		cur := make([]byte, row)
		copy(cur, data[off:end])
		out.WriteByte(2)
		for i := range cur {
			out.WriteByte(cur[i] - prev[i])
		}
		prev = cur
	}
	return out.Bytes(), nil
}

// tiffPredictorDecode reverses the TIFF horizontal-differencing predictor
// (Predictor 2). Only 8-bit samples are handled; wider samples are rare in
// the wild and are rejected rather than silently mishandled.
func tiffPredictorDecode(pp predictorParams, r io.Reader) ([]byte, error) {
	if pp.BitsPerComponent != 8 {
		return nil, errors.New("predictor: TIFF predictor only supported for 8-bit samples")
	}
	row := pp.rowBytes()
	if row <= 0 {
		return nil, errors.New("predictor: non-positive row width")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	for off := 0; off+row <= len(data); off += row {
		line := data[off : off+row]
		for i := pp.Colors; i < len(line); i++ {
			line[i] += line[i-pp.Colors]
		}
	}
	return data, nil
}
