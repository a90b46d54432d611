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
	"sort"

	pdf "github.com/corefile/pdfcore"
)

// writeValue serializes obj to w using PDF's object grammar (ISO 32000-2
// clause 7.3). Dictionary keys are sorted so that two writer runs over the same
// Document byte-for-byte agree, which is what makes the round-trip tests
// useful.
func writeValue(w io.Writer, obj pdf.Object) error {
	switch x := obj.(type) {
	case nil, pdf.Null:
		_, err := io.WriteString(w, "null")
		return err
	case pdf.Boolean:
		if x {
			_, err := io.WriteString(w, "true")
			return err
		}
		_, err := io.WriteString(w, "false")
		return err
	case pdf.Integer:
		_, err := fmt.Fprintf(w, "%d", int64(x))
		return err
	case pdf.Real:
		_, err := io.WriteString(w, pdf.FormatReal(float64(x)))
		return err
	case pdf.String:
		_, err := io.WriteString(w, pdf.EscapeString(x))
		return err
	case pdf.Name:
		_, err := io.WriteString(w, pdf.EscapeName(x))
		return err
	case pdf.Array:
		return writeArray(w, x)
	case pdf.Dict:
		return writeDict(w, x)
	case pdf.Stream:
		return writeStreamValue(w, x)
	case pdf.Reference:
		_, err := fmt.Fprintf(w, "%d %d R", x.Number, x.Generation)
		return err
	default:
		return fmt.Errorf("writer: unknown object type %T", obj)
	}
}

func writeArray(w io.Writer, arr pdf.Array) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, elem := range arr {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := writeValue(w, elem); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeDict(w io.Writer, dict pdf.Dict) error {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, pdf.EscapeName(pdf.Name(k))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := writeValue(w, dict[pdf.Name(k)]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n>>")
	return err
}

func writeStreamValue(w io.Writer, stm pdf.Stream) error {
	if err := writeDict(w, stm.Dict); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(stm.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}
