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
	"strings"
	"testing"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/model"
	"github.com/corefile/pdfcore/parser"
)

func TestWriteAllEmptyDocumentRoundTrip(t *testing.T) {
	doc := model.New(parser.Options{})
	var buf bytes.Buffer
	w := New(doc, &buf, DefaultOptions())
	doc.BuildPageTree(w.PagesRef(), nil)
	doc.BuildCatalog(w.CatalogRef(), w.PagesRef())

	if err := w.WriteAll(); err != nil {
		t.Fatal(err)
	}

	readBack, err := model.Read(bytes.NewReader(buf.Bytes()), parser.Options{})
	if err != nil {
		t.Fatalf("could not read back the written document: %v", err)
	}
	n, err := readBack.PageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("PageCount() = %d, want 0", n)
	}
}

func TestWriteAllFivePageDocumentRoundTrip(t *testing.T) {
	doc := model.New(parser.Options{})
	var buf bytes.Buffer
	w := New(doc, &buf, DefaultOptions())

	var pageRefs []pdf.Reference
	for i := 0; i < 5; i++ {
		pageRef := w.Alloc()
		doc.NewPage(pageRef, w.PagesRef(), 612, 792)
		contentRef := w.Alloc()
		doc.Set(contentRef, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("BT /F1 12 Tf (hello) Tj ET")})
		doc.SetPageContents(pageRef, contentRef)
		pageRefs = append(pageRefs, pageRef)
	}
	doc.BuildPageTree(w.PagesRef(), pageRefs)
	doc.BuildCatalog(w.CatalogRef(), w.PagesRef())
	doc.BuildInfo(w.InfoRef(), map[string]string{"Producer": "pdfcore"})

	if err := w.WriteAll(); err != nil {
		t.Fatal(err)
	}

	readBack, err := model.Read(bytes.NewReader(buf.Bytes()), parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	n, err := readBack.PageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("PageCount() = %d, want 5", n)
	}
	for i := 0; i < 5; i++ {
		page, err := readBack.GetPage(i)
		if err != nil {
			t.Fatal(err)
		}
		streams, err := readBack.GetPageContentStreams(page)
		if err != nil {
			t.Fatal(err)
		}
		if len(streams) != 1 || string(streams[0]) != "BT /F1 12 Tf (hello) Tj ET" {
			t.Errorf("page %d content = %v", i, streams)
		}
	}
}

func TestIndirectReferenceRoundTrip(t *testing.T) {
	doc := model.New(parser.Options{})
	var buf bytes.Buffer
	w := New(doc, &buf, DefaultOptions())

	fontRef := w.Alloc()
	doc.Set(fontRef, pdf.Dict{"Type": pdf.Name("Font"), "BaseFont": pdf.Name("Helvetica"), "Subtype": pdf.Name("Type1")})

	pageRef := w.Alloc()
	doc.NewPage(pageRef, w.PagesRef(), 612, 792)
	pageObj, _ := doc.Resolve(pageRef)
	pageObj.(pdf.Dict)["Resources"] = pdf.Dict{"Font": pdf.Dict{"F1": fontRef}}

	doc.BuildPageTree(w.PagesRef(), []pdf.Reference{pageRef})
	doc.BuildCatalog(w.CatalogRef(), w.PagesRef())

	if err := w.WriteAll(); err != nil {
		t.Fatal(err)
	}

	readBack, err := model.Read(bytes.NewReader(buf.Bytes()), parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	page, err := readBack.GetPage(0)
	if err != nil {
		t.Fatal(err)
	}
	res := readBack.GetPageResources(page)
	fonts, ok := res["Font"].(pdf.Dict)
	if !ok {
		t.Fatalf("Font resources missing after round trip: %#v", res)
	}
	fontObj, err := readBack.Resolve(fonts["F1"])
	if err != nil {
		t.Fatal(err)
	}
	fontDict := fontObj.(pdf.Dict)
	if fontDict["BaseFont"] != pdf.Name("Helvetica") {
		t.Errorf("BaseFont = %v, want Helvetica", fontDict["BaseFont"])
	}
}

func TestXRefTableInvariants(t *testing.T) {
	doc := model.New(parser.Options{})
	var buf bytes.Buffer
	w := New(doc, &buf, DefaultOptions())
	doc.BuildPageTree(w.PagesRef(), nil)
	doc.BuildCatalog(w.CatalogRef(), w.PagesRef())
	if err := w.WriteAll(); err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Errorf("file does not end in %%%%EOF\\n: last bytes %q", out[len(out)-10:])
	}
	if bytes.Contains(out, []byte("\r\n")) {
		t.Error("writer must not emit CRLF pairs")
	}

	text := string(out)
	xrefIdx := strings.Index(text, "\nxref\n")
	if xrefIdx < 0 {
		t.Fatal("no xref section found")
	}
	headerLineStart := xrefIdx + len("\nxref\n")
	var n0, count int
	if _, err := fmt.Sscanf(text[headerLineStart:], "%d %d\n", &n0, &count); err != nil {
		t.Fatalf("could not parse xref subsection header: %v", err)
	}
	if n0 != 0 {
		t.Errorf("xref subsection must start at object 0, got %d", n0)
	}

	// Every entry line (after the "0 N\n" header) must be exactly 20 bytes.
	lines := strings.Split(text[headerLineStart:], "\n")
	entryLines := lines[1 : 1+count]
	for i, line := range entryLines {
		if len(line)+1 != 20 {
			t.Errorf("entry %d has length %d+1, want 20", i, len(line)+1)
		}
	}

	trailerIdx := strings.Index(text, "trailer\n")
	if trailerIdx < 0 {
		t.Fatal("no trailer found")
	}
}
