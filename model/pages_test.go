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

package model

import (
	"io"
	"testing"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/parser"
)

func TestGetPageMediaBoxInheritance(t *testing.T) {
	doc := New(parser.Options{})
	pagesRef := pdf.Reference{Number: 1}
	pageRef := pdf.Reference{Number: 2}
	catalogRef := pdf.Reference{Number: 3}

	doc.Set(pagesRef, pdf.Dict{
		"Type":     pdf.Name("Pages"),
		"Kids":     pdf.Array{pageRef},
		"Count":    pdf.Integer(1),
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(400), pdf.Integer(600)},
	})
	doc.Set(pageRef, pdf.Dict{"Type": pdf.Name("Page"), "Parent": pagesRef})
	doc.BuildCatalog(catalogRef, pagesRef)

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width != 400 || page.Height != 600 {
		t.Errorf("got %vx%v, want 400x600 (inherited from /Pages)", page.Width, page.Height)
	}
}

func TestGetPageMediaBoxDefaultFallback(t *testing.T) {
	doc := New(parser.Options{})
	pagesRef := pdf.Reference{Number: 1}
	pageRef := pdf.Reference{Number: 2}
	catalogRef := pdf.Reference{Number: 3}

	doc.Set(pagesRef, pdf.Dict{"Type": pdf.Name("Pages"), "Kids": pdf.Array{pageRef}, "Count": pdf.Integer(1)})
	doc.Set(pageRef, pdf.Dict{"Type": pdf.Name("Page"), "Parent": pagesRef})
	doc.BuildCatalog(catalogRef, pagesRef)

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width != 612 || page.Height != 792 {
		t.Errorf("got %vx%v, want the US Letter default 612x792", page.Width, page.Height)
	}
}

func TestGetPageOutOfRange(t *testing.T) {
	doc := New(parser.Options{})
	pagesRef := pdf.Reference{Number: 1}
	catalogRef := pdf.Reference{Number: 2}
	doc.Set(pagesRef, pdf.Dict{"Type": pdf.Name("Pages"), "Kids": pdf.Array{}, "Count": pdf.Integer(0)})
	doc.BuildCatalog(catalogRef, pagesRef)

	_, err := doc.GetPage(0)
	if _, ok := err.(*pdf.PageIndexOutOfRange); !ok {
		t.Fatalf("got %T, want *pdf.PageIndexOutOfRange", err)
	}
}

func TestResourcesInheritedFromParent(t *testing.T) {
	doc := New(parser.Options{})
	pagesRef := pdf.Reference{Number: 1}
	pageRef := pdf.Reference{Number: 2}
	fontRef := pdf.Reference{Number: 3}

	doc.Set(pagesRef, pdf.Dict{
		"Type":      pdf.Name("Pages"),
		"Resources": pdf.Dict{"Font": pdf.Dict{"F1": fontRef}},
	})
	page := pdf.Dict{"Type": pdf.Name("Page"), "Parent": pagesRef}

	res := doc.Resources(page)
	fonts, ok := res["Font"].(pdf.Dict)
	if !ok || fonts["F1"] != fontRef {
		t.Errorf("Resources() did not inherit /Font from /Parent: %#v", res)
	}
}

func TestResourcesFallsBackToEmptyOnBrokenParentChain(t *testing.T) {
	doc := New(parser.Options{})
	// /Parent points at an object that doesn't exist.
	page := pdf.Dict{"Type": pdf.Name("Page"), "Parent": pdf.Reference{Number: 99}}
	res := doc.Resources(page)
	if len(res) != 0 {
		t.Errorf("Resources() = %#v, want an empty dict on a broken /Parent chain", res)
	}
}

func TestContentStreamsConcatenatesWithNewline(t *testing.T) {
	doc := New(parser.Options{})
	s1 := pdf.Reference{Number: 1}
	s2 := pdf.Reference{Number: 2}
	doc.Set(s1, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("first")})
	doc.Set(s2, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("second")})

	page := pdf.Dict{"Contents": pdf.Array{s1, s2}}
	r, err := doc.ContentStreams(page)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond" {
		t.Errorf("got %q, want %q", data, "first\nsecond")
	}
}

func TestContentStreamsSkipsUnresolvableEntries(t *testing.T) {
	doc := New(parser.Options{})
	s1 := pdf.Reference{Number: 1}
	doc.Set(s1, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("ok")})

	page := pdf.Dict{"Contents": pdf.Array{s1, pdf.Reference{Number: 99}}}
	r, err := doc.ContentStreams(page)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Errorf("got %q, want %q", data, "ok")
	}
}

func TestGetPageContentStreamsReturnsListNotConcatenated(t *testing.T) {
	doc := New(parser.Options{})
	s1 := pdf.Reference{Number: 1}
	s2 := pdf.Reference{Number: 2}
	doc.Set(s1, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("a")})
	doc.Set(s2, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("b")})

	page := &ParsedPage{Dict: pdf.Dict{"Contents": pdf.Array{s1, s2}}}
	streams, err := doc.GetPageContentStreams(page)
	if err != nil {
		t.Fatal(err)
	}
	if len(streams) != 2 || string(streams[0]) != "a" || string(streams[1]) != "b" {
		t.Errorf("got %v", streams)
	}
}

func TestNumPagesDistinguishesLeafFromIntermediateNodes(t *testing.T) {
	doc := New(parser.Options{})
	rootRef := pdf.Reference{Number: 1}
	branchRef := pdf.Reference{Number: 2}
	page1 := pdf.Reference{Number: 3}
	page2 := pdf.Reference{Number: 4}
	catalogRef := pdf.Reference{Number: 5}

	doc.Set(branchRef, pdf.Dict{"Type": pdf.Name("Pages"), "Parent": rootRef, "Kids": pdf.Array{page1, page2}, "Count": pdf.Integer(2)})
	doc.Set(rootRef, pdf.Dict{"Type": pdf.Name("Pages"), "Kids": pdf.Array{branchRef}, "Count": pdf.Integer(2)})
	doc.Set(page1, pdf.Dict{"Type": pdf.Name("Page"), "Parent": branchRef})
	doc.Set(page2, pdf.Dict{"Type": pdf.Name("Page"), "Parent": branchRef})
	doc.BuildCatalog(catalogRef, rootRef)

	n, err := doc.PageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("PageCount() = %d, want 2 (nested /Pages node must not itself count as a page)", n)
	}
}
