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

package writer

import (
	"bytes"
	"fmt"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/filter"
)

// writeXRefStream emits a PDF 1.5+ cross-reference stream instead of a
// traditional table. The stream is itself an indirect object; its own entry is
// filled in with the offset it is about to be written at, a self
// reference that is safe because nothing is written to the underlying
// sink between capturing that offset and emitting the object there.
func (w *Writer) writeXRefStream() error {
	xrefRef := w.Alloc()
	selfOffset := w.out.n
	maxObj := xrefRef.Number

	byNumber := make(map[uint32]pdf.Reference, len(w.offsets))
	for ref := range w.offsets {
		byNumber[ref.Number] = ref
	}

	width2 := byteWidth(selfOffset)
	const width3 = 2

	var body bytes.Buffer
	writeXRefRow(&body, 0, 0, 65535, width2, width3)
	for i := uint32(1); i <= maxObj; i++ {
		if i == xrefRef.Number {
			writeXRefRow(&body, 1, uint64(selfOffset), 0, width2, width3)
			continue
		}
		ref, ok := byNumber[i]
		if !ok {
			writeXRefRow(&body, 0, 0, 0, width2, width3)
			continue
		}
		writeXRefRow(&body, 1, uint64(w.offsets[ref]), uint64(ref.Generation), width2, width3)
	}

	compressed, err := filter.EncodeFlate(body.Bytes())
	if err != nil {
		return err
	}

	dict := pdf.Dict{
		"Type":   pdf.Name("XRef"),
		"Size":   pdf.Integer(maxObj + 1),
		"W":      pdf.Array{pdf.Integer(1), pdf.Integer(width2), pdf.Integer(width3)},
		"Root":   w.catalogRef,
		"Filter": pdf.Name("FlateDecode"),
		"Length": pdf.Integer(len(compressed)),
	}
	if _, ok := w.offsets[w.infoRef]; ok {
		dict["Info"] = w.infoRef
	}

	if err := w.WriteObject(xrefRef, pdf.Stream{Dict: dict, Data: compressed}); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w.out, "startxref\n%d\n%%%%EOF\n", selfOffset)
	return err
}

// byteWidth returns the minimum number of bytes needed to hold n as an
// unsigned big-endian integer, at least 1.
func byteWidth(n int64) int {
	width := 1
	for n >= 1<<uint(8*width) {
		width++
	}
	return width
}

func writeXRefRow(buf *bytes.Buffer, typ byte, field2, field3 uint64, w2, w3 int) {
	buf.WriteByte(typ)
	writeBEField(buf, field2, w2)
	writeBEField(buf, field3, w3)
}

func writeBEField(buf *bytes.Buffer, v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		buf.WriteByte(byte(v >> uint(8*i)))
	}
}
