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
	"golang.org/x/exp/maps"

	pdf "github.com/corefile/pdfcore"
)

// NewPage stores a fresh /Page dictionary under ref, parented at parent
// (normally the document's reserved pages identifier), with the given
// /MediaBox width and height. The writer allocates ref before calling
// this; NewPage only fills in the dictionary.
func (d *Document) NewPage(ref, parent pdf.Reference, width, height float64) {
	d.Set(ref, pdf.Dict{
		"Type":     pdf.Name("Page"),
		"Parent":   parent,
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(width), pdf.Real(height)},
	})
}

// SetPageContents attaches a content-stream reference to the page stored
// at pageRef, creating the /Contents entry (or replacing it).
func (d *Document) SetPageContents(pageRef pdf.Reference, contentsRef pdf.Reference) {
	dict, ok := d.objects[pageRef].(pdf.Dict)
	if !ok {
		return
	}
	dict["Contents"] = contentsRef
}

// BuildPageTree stores the /Pages node at pagesRef with /Kids set to
// pageRefs in order and /Count set to their number. Callers build the page
// tree this way before handing the Document to a Writer, which picks up
// whatever dictionaries are already in the object table.
func (d *Document) BuildPageTree(pagesRef pdf.Reference, pageRefs []pdf.Reference) {
	kids := make(pdf.Array, len(pageRefs))
	for i, ref := range pageRefs {
		kids[i] = ref
	}
	d.Set(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(len(pageRefs)),
	})
}

// BuildCatalog stores the document catalog at catalogRef, pointing /Pages
// at pagesRef, and records catalogRef as the document's catalog.
func (d *Document) BuildCatalog(catalogRef, pagesRef pdf.Reference) {
	d.Set(catalogRef, pdf.Dict{
		"Type":  pdf.Name("Catalog"),
		"Pages": pagesRef,
	})
	d.SetCatalog(catalogRef)
}

// BuildInfo stores a /Info dictionary at infoRef from a set of plain text
// fields (Title, Author, Producer, ...), encoding each as a PDF string,
// and records infoRef as the document's info dictionary. An empty fields
// map still produces the dictionary so /Info in the trailer resolves.
func (d *Document) BuildInfo(infoRef pdf.Reference, fields map[string]string) {
	dict := make(pdf.Dict, len(fields))
	for k, v := range fields {
		dict[pdf.Name(k)] = pdf.String(v)
	}
	d.Set(infoRef, dict)
	d.SetInfo(infoRef)
}

// Clone returns a new Document sharing no mutable state with d: its
// object table is a shallow copy (object values themselves, being PDF
// primitives and slices/maps the caller treats as immutable once written,
// are not deep-copied). Objects Set on the clone afterwards are not added
// to d, so a clone can take generated dictionaries while d's object table
// stays as it was.
func (d *Document) Clone() *Document {
	return &Document{
		objects: maps.Clone(d.objects),
		catalog: d.catalog,
		info:    d.info,
		opts:    d.opts,
	}
}
