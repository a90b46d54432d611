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
	"fmt"
	"io"

	pdf "github.com/corefile/pdfcore"
)

// writeXRefTable emits a traditional cross-reference table and trailer.
func (w *Writer) writeXRefTable() error {
	xrefPosition := w.out.n

	if _, err := io.WriteString(w.out, "xref\n"); err != nil {
		return err
	}

	maxObj := w.maxObjectNumber()
	if _, err := fmt.Fprintf(w.out, "0 %d\n", maxObj+1); err != nil {
		return err
	}
	if _, err := io.WriteString(w.out, "0000000000 65535 f \n"); err != nil {
		return err
	}

	byNumber := make(map[uint32]pdf.Reference, len(w.offsets))
	for ref := range w.offsets {
		byNumber[ref.Number] = ref
	}

	for i := uint32(1); i <= maxObj; i++ {
		ref, ok := byNumber[i]
		if !ok {
			if _, err := io.WriteString(w.out, "0000000000 00000 f \n"); err != nil {
				return err
			}
			continue
		}
		offset := w.offsets[ref]
		// Each entry must be exactly 20 bytes including its terminator:
		// 10-digit offset, space, 5-digit generation, space, 'n', space,
		// '\n'.
		if _, err := fmt.Fprintf(w.out, "%010d %05d n \n", offset, ref.Generation); err != nil {
			return err
		}
	}

	trailer := pdf.Dict{
		"Size": pdf.Integer(maxObj + 1),
		"Root": w.catalogRef,
	}
	if _, ok := w.offsets[w.infoRef]; ok {
		trailer["Info"] = w.infoRef
	}

	if _, err := io.WriteString(w.out, "trailer\n"); err != nil {
		return err
	}
	if err := writeValue(w.out, trailer); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w.out, "\nstartxref\n%d\n%%%%EOF\n", xrefPosition)
	return err
}
