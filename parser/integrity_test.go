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

package parser

import (
	"bytes"
	"testing"
)

func TestQuickCheckWellFormed(t *testing.T) {
	data := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n" +
		"xref\n0 2\n0000000000 65535 f \n0000000009 00000 n \n" +
		"trailer\n<< /Root 1 0 R /Size 2 >>\nstartxref\n46\n%%EOF\n")
	r := bytes.NewReader(data)
	report := QuickCheck(r, int64(len(data)))
	if !report.HasValidHeader {
		t.Error("expected header to be found")
	}
	if !report.HasStartXRef {
		t.Error("expected startxref to be found")
	}
	if !report.HasXRefMarker {
		t.Error("expected xref marker to be found")
	}
	if !report.HasTrailer {
		t.Error("expected trailer to be found")
	}
	if !report.HasEOFMarker {
		t.Errorf("expected %%%%EOF to be found")
	}
	if !report.Valid() {
		t.Error("expected well-formed file to be reported Valid")
	}
}

func TestQuickCheckTruncatedFile(t *testing.T) {
	data := []byte("this is not a PDF at all, just some junk bytes")
	r := bytes.NewReader(data)
	report := QuickCheck(r, int64(len(data)))
	if report.HasValidHeader {
		t.Error("did not expect a header to be found")
	}
	if report.Valid() {
		t.Error("did not expect junk data to be reported Valid")
	}
	if len(report.Issues) == 0 {
		t.Error("expected issues to be recorded")
	}
}

func TestQuickCheckTooSmall(t *testing.T) {
	data := []byte("tiny")
	report := QuickCheck(bytes.NewReader(data), int64(len(data)))
	if report.Valid() {
		t.Error("a file this small can never be valid")
	}
}
