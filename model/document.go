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

// Package model holds the resolved object graph of a PDF document (design
// section 4.4): a Document owns every indirect object by (number,
// generation) and resolves References on demand. References are
// non-owning lookup keys, so the cyclic graphs real PDFs contain (a page's
// /Parent pointing back through /Kids) never leak memory.
package model

import (
	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/parser"
)

// Document is the single owner of every indirect object read from, or
// about to be written to, a PDF file.
type Document struct {
	objects map[pdf.Reference]pdf.Object
	catalog pdf.Reference
	info    pdf.Reference
	opts    parser.Options

	pages *PageTree // lazily built by pageTree(); see pages.go
}

// New creates an empty Document, ready to have objects added via Set
// (used by the writer when building a fresh file) or populated by Read.
func New(opts parser.Options) *Document {
	return &Document{
		objects: map[pdf.Reference]pdf.Object{},
		opts:    opts,
	}
}

// Options returns the ParseOptions in force for this document.
func (d *Document) Options() parser.Options { return d.opts }

// Set stores obj under ref, overwriting any previous value. This is how
// the reader populates a freshly parsed Document and how the writer
// injects generated dictionaries (catalog, pages, info) before emission.
func (d *Document) Set(ref pdf.Reference, obj pdf.Object) {
	d.objects[ref] = obj
}

// GetObject returns the stored object for (number, generation), or
// ObjectNotFound if no such object exists.
func (d *Document) GetObject(number uint32, generation uint16) (pdf.Object, error) {
	ref := pdf.Reference{Number: number, Generation: generation}
	obj, ok := d.objects[ref]
	if !ok {
		return nil, &pdf.ObjectNotFound{Ref: ref}
	}
	return obj, nil
}

// Resolve follows obj if it is a Reference; otherwise it returns obj
// unchanged. One hop is sufficient: every object stored in the Document is
// already itself resolved (no reference ever points to another
// reference), so there is no chain to walk.
func (d *Document) Resolve(obj pdf.Object) (pdf.Object, error) {
	ref, ok := obj.(pdf.Reference)
	if !ok {
		return obj, nil
	}
	stored, ok := d.objects[ref]
	if !ok {
		return nil, &pdf.ObjectNotFound{Ref: ref}
	}
	return stored, nil
}

// SetCatalog records which object is the document catalog.
func (d *Document) SetCatalog(ref pdf.Reference) { d.catalog = ref }

// SetInfo records which object is the document information dictionary.
func (d *Document) SetInfo(ref pdf.Reference) { d.info = ref }

// Catalog returns the catalog Reference (zero if none has been set).
func (d *Document) Catalog() pdf.Reference { return d.catalog }

// Info returns the info dictionary Reference (zero if none has been set).
func (d *Document) Info() pdf.Reference { return d.info }

// References returns every Reference currently stored, in no particular
// order. The writer uses this to decide which objects to emit.
func (d *Document) References() []pdf.Reference {
	out := make([]pdf.Reference, 0, len(d.objects))
	for ref := range d.objects {
		out = append(out, ref)
	}
	return out
}

// Len reports how many indirect objects the document currently holds.
func (d *Document) Len() int { return len(d.objects) }

// resolveDict resolves obj and type-asserts it to a Dict, returning nil if
// obj does not resolve to a dictionary.
func (d *Document) resolveDict(obj pdf.Object) pdf.Dict {
	resolved, err := d.Resolve(obj)
	if err != nil {
		return nil
	}
	dict, _ := resolved.(pdf.Dict)
	return dict
}
