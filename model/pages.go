// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
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
	"bytes"
	"io"

	pdf "github.com/corefile/pdfcore"
)

// maxPageTreeDepth bounds the walk down /Kids and the /Parent walk in
// inherited, so a page tree with a reference cycle can never spin forever.
const maxPageTreeDepth = 64

// PageTree flattens a document's /Pages tree into an ordered list of page
// dictionaries.
type PageTree struct {
	doc   *Document
	pages []pdf.Dict
}

// NewPageTree walks doc's catalog /Pages tree and collects every leaf page
// dictionary in document order.
func NewPageTree(doc *Document) (*PageTree, error) {
	catalog, err := doc.Resolve(doc.Catalog())
	if err != nil {
		return nil, err
	}
	catDict, ok := catalog.(pdf.Dict)
	if !ok {
		return nil, &pdf.ProcessingError{Message: "document catalog is not a dictionary"}
	}

	root, ok := catDict["Pages"]
	if !ok {
		return nil, &pdf.MissingKey{Key: "Pages"}
	}

	pt := &PageTree{doc: doc}
	if err := pt.collect(root, 0); err != nil {
		return nil, err
	}
	return pt, nil
}

func (pt *PageTree) collect(node pdf.Object, depth int) error {
	if depth > maxPageTreeDepth {
		return &pdf.ProcessingError{Message: "page tree exceeds maximum depth; possible cycle"}
	}

	dict := pt.doc.resolveDict(node)
	if dict == nil {
		return &pdf.ProcessingError{Message: "page tree node is not a dictionary"}
	}

	typeName, _ := dict["Type"].(pdf.Name)
	kids, hasKids := dict["Kids"]
	if typeName == "Page" || (!hasKids && typeName != "Pages") {
		pt.pages = append(pt.pages, dict)
		return nil
	}

	kidsResolved, err := pt.doc.Resolve(kids)
	if err != nil {
		return err
	}
	kidArr, ok := kidsResolved.(pdf.Array)
	if !ok {
		return &pdf.ProcessingError{Message: "/Kids is not an array"}
	}
	for _, kid := range kidArr {
		if err := pt.collect(kid, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// NumPages returns the number of leaf pages found.
func (pt *PageTree) NumPages() int { return len(pt.pages) }

// GetPage returns the page dictionary at zero-based index i.
func (pt *PageTree) GetPage(i int) (pdf.Dict, error) {
	if i < 0 || i >= len(pt.pages) {
		return nil, &pdf.PageIndexOutOfRange{Index: i, Count: len(pt.pages)}
	}
	return pt.pages[i], nil
}

// ParsedPage is the analyzer- and caller-facing view of one page: its raw
// dictionary plus the width and height derived from the inherited
// /MediaBox.
type ParsedPage struct {
	Dict   pdf.Dict
	Width  float64
	Height float64
}

// defaultMediaBox is used when neither the page nor any ancestor declares
// a /MediaBox; it is the US Letter box ISO 32000-2 names as the default.
var defaultMediaBox = [4]float64{0, 0, 612, 792}

// pageTree lazily builds and caches doc's flattened page tree. Built once
// per Document: repeated GetPage/PageCount calls do not re-walk /Kids.
func (doc *Document) pageTree() (*PageTree, error) {
	if doc.pages == nil {
		pt, err := NewPageTree(doc)
		if err != nil {
			return nil, err
		}
		doc.pages = pt
	}
	return doc.pages, nil
}

// PageCount returns the number of pages in the document's page tree (spec
// section 4.4, "page_count").
func (doc *Document) PageCount() (int, error) {
	pt, err := doc.pageTree()
	if err != nil {
		return 0, err
	}
	return pt.NumPages(), nil
}

// GetPage returns the parsed page at zero-based index i, including its
// inherited width and height.
func (doc *Document) GetPage(i int) (*ParsedPage, error) {
	pt, err := doc.pageTree()
	if err != nil {
		return nil, err
	}
	dict, err := pt.GetPage(i)
	if err != nil {
		return nil, err
	}
	w, h := doc.mediaBoxSize(dict)
	return &ParsedPage{Dict: dict, Width: w, Height: h}, nil
}

// mediaBoxSize resolves page's inherited /MediaBox and returns its width
// and height; it falls back to the US Letter default when no /MediaBox is
// found anywhere in the /Parent chain, rather than failing the page.
func (doc *Document) mediaBoxSize(page pdf.Dict) (float64, float64) {
	box := defaultMediaBox
	val, err := doc.inherited(page, "MediaBox", 0)
	if err == nil {
		if arr, ok := val.(pdf.Array); ok && len(arr) == 4 {
			for i, v := range arr {
				box[i] = numberValue(v)
			}
		}
	}
	w := box[2] - box[0]
	h := box[3] - box[1]
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	return w, h
}

func numberValue(obj pdf.Object) float64 {
	switch v := obj.(type) {
	case pdf.Integer:
		return float64(v)
	case pdf.Real:
		return float64(v)
	default:
		return 0
	}
}

// GetPageResources returns page's effective /Resources dictionary (spec
// section 4.4, "get_page_resources"). This is an alias over Resources kept
// for callers that work with *ParsedPage rather than a raw pdf.Dict.
func (doc *Document) GetPageResources(page *ParsedPage) pdf.Dict {
	return doc.Resources(page.Dict)
}

// Resources returns page's effective /Resources dictionary, walking up
// /Parent when the page itself has none. A page whose /Parent chain is
// broken returns an empty dictionary rather than failing the whole
// extraction.
func (doc *Document) Resources(page pdf.Dict) pdf.Dict {
	val, err := doc.inherited(page, "Resources", 0)
	if err != nil {
		return pdf.Dict{}
	}
	dict, ok := val.(pdf.Dict)
	if !ok {
		return pdf.Dict{}
	}
	return dict
}

func (doc *Document) inherited(page pdf.Dict, key pdf.Name, depth int) (pdf.Object, error) {
	if depth > maxPageTreeDepth {
		return nil, &pdf.ProcessingError{Message: "page /Parent chain exceeds maximum depth"}
	}
	if v, ok := page[key]; ok {
		return doc.Resolve(v)
	}
	parentRef, ok := page["Parent"]
	if !ok {
		return nil, &pdf.MissingKey{Key: key}
	}
	parent, err := doc.Resolve(parentRef)
	if err != nil {
		return nil, err
	}
	parentDict, ok := parent.(pdf.Dict)
	if !ok {
		return nil, &pdf.ProcessingError{Message: "/Parent is not a dictionary"}
	}
	return doc.inherited(parentDict, key, depth+1)
}

// ContentStreams returns the concatenation of every stream referenced by
// page's /Contents entry, each separated by a newline (ISO 32000-2
// 7.7.3.3: "the effect shall be as if all of the streams in the array were
// concatenated"). /Contents may be a single stream reference, an array of
// them, or absent; unresolvable array entries are skipped rather than
// failing the whole page, matching the tolerant-extraction stance used
// throughout the analyzer.
func (doc *Document) ContentStreams(page pdf.Dict) (io.Reader, error) {
	contents, ok := page["Contents"]
	if !ok {
		return bytes.NewReader(nil), nil
	}

	resolved, err := doc.Resolve(contents)
	if err != nil {
		return bytes.NewReader(nil), nil
	}

	var parts [][]byte
	switch v := resolved.(type) {
	case pdf.Stream:
		data, err := decodeStreamData(v)
		if err != nil {
			return nil, err
		}
		parts = append(parts, data)
	case pdf.Array:
		for _, elem := range v {
			r, err := doc.Resolve(elem)
			if err != nil {
				continue
			}
			stm, ok := r.(pdf.Stream)
			if !ok {
				continue
			}
			data, err := decodeStreamData(stm)
			if err != nil {
				continue
			}
			parts = append(parts, data)
		}
	default:
		return bytes.NewReader(nil), nil
	}

	return bytes.NewReader(bytes.Join(parts, []byte("\n"))), nil
}

// GetPageContentStreams returns the page's raw, decoded content-stream
// byte buffers as a list, one entry per stream object referenced by
// /Contents. Unlike ContentStreams it never concatenates: callers that
// need the single logical stream ISO 32000-2 7.7.3.3 describes should join
// the entries with "\n" themselves, as ContentStreams does internally.
func (doc *Document) GetPageContentStreams(page *ParsedPage) ([][]byte, error) {
	contents, ok := page.Dict["Contents"]
	if !ok {
		return nil, nil
	}
	resolved, err := doc.Resolve(contents)
	if err != nil {
		return nil, nil
	}

	var out [][]byte
	switch v := resolved.(type) {
	case pdf.Stream:
		data, err := decodeStreamData(v)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	case pdf.Array:
		for _, elem := range v {
			r, err := doc.Resolve(elem)
			if err != nil {
				continue
			}
			stm, ok := r.(pdf.Stream)
			if !ok {
				continue
			}
			data, err := decodeStreamData(stm)
			if err != nil {
				continue
			}
			out = append(out, data)
		}
	}
	return out, nil
}
