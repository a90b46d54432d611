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
	"testing"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/parser"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestDocumentSetGetResolve(t *testing.T) {
	doc := New(parser.Options{})
	ref := pdf.Reference{Number: 1, Generation: 0}
	doc.Set(ref, pdf.Dict{"Foo": pdf.Integer(1)})

	obj, err := doc.GetObject(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !pdf.Equal(obj, pdf.Dict{"Foo": pdf.Integer(1)}) {
		t.Errorf("got %#v", obj)
	}

	resolved, err := doc.Resolve(ref)
	if err != nil {
		t.Fatal(err)
	}
	if !pdf.Equal(resolved, obj) {
		t.Errorf("Resolve(ref) = %#v, want %#v", resolved, obj)
	}

	// Resolving a non-Reference object returns it unchanged.
	direct := pdf.Integer(42)
	resolved, err = doc.Resolve(direct)
	if err != nil || resolved != direct {
		t.Errorf("Resolve(direct) = %v, %v", resolved, err)
	}
}

func TestDocumentGetObjectNotFound(t *testing.T) {
	doc := New(parser.Options{})
	_, err := doc.GetObject(99, 0)
	if _, ok := err.(*pdf.ObjectNotFound); !ok {
		t.Fatalf("got %T, want *pdf.ObjectNotFound", err)
	}
}

func TestDocumentResolveMissingReference(t *testing.T) {
	doc := New(parser.Options{})
	_, err := doc.Resolve(pdf.Reference{Number: 7, Generation: 0})
	if _, ok := err.(*pdf.ObjectNotFound); !ok {
		t.Fatalf("got %T, want *pdf.ObjectNotFound", err)
	}
}

func TestDocumentCatalogAndInfo(t *testing.T) {
	doc := New(parser.Options{})
	catalogRef := pdf.Reference{Number: 1, Generation: 0}
	infoRef := pdf.Reference{Number: 2, Generation: 0}
	doc.SetCatalog(catalogRef)
	doc.SetInfo(infoRef)
	if doc.Catalog() != catalogRef {
		t.Errorf("Catalog() = %v, want %v", doc.Catalog(), catalogRef)
	}
	if doc.Info() != infoRef {
		t.Errorf("Info() = %v, want %v", doc.Info(), infoRef)
	}
}

func TestDocumentReferencesAndLen(t *testing.T) {
	doc := New(parser.Options{})
	doc.Set(pdf.Reference{Number: 1}, pdf.Integer(1))
	doc.Set(pdf.Reference{Number: 2}, pdf.Integer(2))
	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}
	if len(doc.References()) != 2 {
		t.Errorf("References() has %d entries, want 2", len(doc.References()))
	}
}

func TestDocumentClone(t *testing.T) {
	doc := New(parser.Options{})
	ref := pdf.Reference{Number: 1}
	doc.Set(ref, pdf.Integer(1))
	doc.SetCatalog(ref)

	clone := doc.Clone()
	clone.Set(pdf.Reference{Number: 2}, pdf.Integer(2))

	if doc.Len() != 1 {
		t.Errorf("original Document mutated by clone: Len() = %d", doc.Len())
	}
	if clone.Len() != 2 {
		t.Errorf("clone Len() = %d, want 2", clone.Len())
	}
	if clone.Catalog() != ref {
		t.Errorf("clone did not preserve catalog reference")
	}
}

// TestDocumentCloneObjectTable exercises the round-trip property from
// spec section 8 at the Document level: cloning and re-fetching every
// object must reproduce an equal object tree, across every PdfObject
// variant the model holds.
func TestDocumentCloneObjectTable(t *testing.T) {
	doc := New(parser.Options{})
	want := map[pdf.Reference]pdf.Object{
		{Number: 1}: pdf.Null{},
		{Number: 2}: pdf.Boolean(true),
		{Number: 3}: pdf.Integer(-17),
		{Number: 4}: pdf.Real(1.5),
		{Number: 5}: pdf.String("hello"),
		{Number: 6}: pdf.Name("Type"),
		{Number: 7}: pdf.Array{pdf.Integer(1), pdf.Integer(2)},
		{Number: 8}: pdf.Dict{"Parent": pdf.Reference{Number: 2, Generation: 0}},
		{Number: 9}: pdf.Stream{Dict: pdf.Dict{"Length": pdf.Integer(3)}, Data: []byte("abc")},
	}
	for ref, obj := range want {
		doc.Set(ref, obj)
	}

	clone := doc.Clone()
	for ref, wantObj := range want {
		gotObj, err := clone.GetObject(ref.Number, ref.Generation)
		if err != nil {
			t.Fatalf("clone.GetObject(%v): %v", ref, err)
		}
		if diff := cmp.Diff(wantObj, gotObj); diff != "" {
			t.Errorf("clone of %v mismatch (-want +got):\n%s", ref, diff)
		}
	}
}

func TestBuildCatalogPagesInfo(t *testing.T) {
	doc := New(parser.Options{})
	catalogRef := pdf.Reference{Number: 1}
	pagesRef := pdf.Reference{Number: 2}
	infoRef := pdf.Reference{Number: 3}
	pageRef := pdf.Reference{Number: 4}

	doc.NewPage(pageRef, pagesRef, 200, 300)
	doc.BuildPageTree(pagesRef, []pdf.Reference{pageRef})
	doc.BuildCatalog(catalogRef, pagesRef)
	doc.BuildInfo(infoRef, map[string]string{"Title": "Test Document"})

	if doc.Catalog() != catalogRef {
		t.Errorf("Catalog() = %v, want %v", doc.Catalog(), catalogRef)
	}
	if doc.Info() != infoRef {
		t.Errorf("Info() = %v, want %v", doc.Info(), infoRef)
	}

	n, err := doc.PageCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("PageCount() = %d, want 1", n)
	}

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width != 200 || page.Height != 300 {
		t.Errorf("page size = %vx%v, want 200x300", page.Width, page.Height)
	}

	infoObj, err := doc.Resolve(infoRef)
	if err != nil {
		t.Fatal(err)
	}
	infoDict := infoObj.(pdf.Dict)
	if infoDict["Title"] != pdf.String("Test Document") {
		t.Errorf("Title = %v", infoDict["Title"])
	}
}

func TestSetPageContents(t *testing.T) {
	doc := New(parser.Options{})
	pageRef := pdf.Reference{Number: 1}
	contentsRef := pdf.Reference{Number: 2}
	doc.NewPage(pageRef, pdf.Reference{Number: 99}, 100, 100)
	doc.SetPageContents(pageRef, contentsRef)

	obj, err := doc.Resolve(pageRef)
	if err != nil {
		t.Fatal(err)
	}
	dict := obj.(pdf.Dict)
	if dict["Contents"] != contentsRef {
		t.Errorf("Contents = %v, want %v", dict["Contents"], contentsRef)
	}
}

func TestLanguageRoundTrip(t *testing.T) {
	doc := New(parser.Options{})
	catalogRef := pdf.Reference{Number: 1}
	doc.BuildCatalog(catalogRef, pdf.Reference{Number: 2})

	if err := doc.SetLanguage(language.AmericanEnglish); err != nil {
		t.Fatal(err)
	}
	got, err := doc.Language()
	if err != nil {
		t.Fatal(err)
	}
	if got != language.AmericanEnglish {
		t.Errorf("Language() = %v, want %v", got, language.AmericanEnglish)
	}
}

func TestLanguageAbsentReturnsUnd(t *testing.T) {
	doc := New(parser.Options{})
	catalogRef := pdf.Reference{Number: 1}
	doc.BuildCatalog(catalogRef, pdf.Reference{Number: 2})

	got, err := doc.Language()
	if err != nil {
		t.Fatal(err)
	}
	if got != language.Und {
		t.Errorf("Language() = %v, want Und", got)
	}
}
