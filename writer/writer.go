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

// Package writer turns a model.Document into the bytes of a syntactically
// valid PDF file. It never closes the underlying io.Writer itself --
// ownership of the output sink stays with the caller.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/filter"
	"github.com/corefile/pdfcore/model"
)

// Options controls how a Document is serialized.
type Options struct {
	// UseXRefStreams selects a PDF 1.5+ cross-reference stream instead of
	// a traditional xref table.
	UseXRefStreams bool

	// Version is the PDF version written in the header, e.g. "1.7".
	Version string

	// CompressStreams Flate-compresses every content stream the writer
	// itself generates. It does not recompress streams that were read
	// from an existing file and carry their own /Filter already.
	CompressStreams bool
}

// DefaultOptions returns the writer's conservative defaults: a traditional
// xref table and Flate compression for generated streams.
func DefaultOptions() Options {
	return Options{
		UseXRefStreams:  false,
		Version:         "1.7",
		CompressStreams: true,
	}
}

// countingWriter tracks the cumulative number of bytes submitted to it, so
// Writer can record each object's starting byte offset for the xref table
// even though the underlying bufio.Writer may not have flushed yet: bytes
// submitted in order are bytes that will appear at that offset once
// flushed, buffering only delays when, never what.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer drives emission of a Document to an output stream.
type Writer struct {
	doc     *model.Document
	bw      *bufio.Writer
	out     *countingWriter
	opt     Options
	nextNum uint32

	offsets map[pdf.Reference]int64
	written []pdf.Reference // emission order, for xref construction

	catalogRef pdf.Reference
	pagesRef   pdf.Reference
	infoRef    pdf.Reference
}

// New creates a Writer and immediately reserves the catalog, pages and
// info identifiers (spec: "reserves catalog, pages, and info identifiers
// before emitting any content"). The Document's catalog and info pointers
// are wired to those identifiers as a side effect.
func New(doc *model.Document, w io.Writer, opt Options) *Writer {
	if opt.Version == "" {
		opt.Version = "1.7"
	}
	bw := bufio.NewWriter(w)
	wr := &Writer{
		doc:     doc,
		bw:      bw,
		out:     &countingWriter{w: bw},
		opt:     opt,
		nextNum: 1,
		offsets: map[pdf.Reference]int64{},
	}
	wr.catalogRef = wr.Alloc()
	wr.pagesRef = wr.Alloc()
	wr.infoRef = wr.Alloc()
	doc.SetCatalog(wr.catalogRef)
	doc.SetInfo(wr.infoRef)
	return wr
}

// Alloc returns the next unused (number, generation 0) identifier. The
// allocator is the single source of truth for identifier uniqueness
// (spec "Identifier allocation").
func (w *Writer) Alloc() pdf.Reference {
	ref := pdf.Reference{Number: w.nextNum, Generation: 0}
	w.nextNum++
	return ref
}

// CatalogRef, PagesRef and InfoRef expose the pre-reserved identifiers so
// callers can populate the corresponding dictionaries before WriteAll.
func (w *Writer) CatalogRef() pdf.Reference { return w.catalogRef }
func (w *Writer) PagesRef() pdf.Reference   { return w.pagesRef }
func (w *Writer) InfoRef() pdf.Reference    { return w.infoRef }

// WriteHeader emits the %PDF-{version} line and the binary marker comment
// (spec "Header").
func (w *Writer) WriteHeader() error {
	if _, err := fmt.Fprintf(w.out, "%%PDF-%s\n", w.opt.Version); err != nil {
		return err
	}
	_, err := w.out.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})
	return err
}

// WriteObject emits one indirect object: "{n} {g} obj\n", its serialized
// value, then "\nendobj\n" (spec "Emission loop"). Content streams this
// core itself produced are Flate-compressed here when CompressStreams is
// set and the stream does not already declare a /Filter.
func (w *Writer) WriteObject(ref pdf.Reference, obj pdf.Object) error {
	w.offsets[ref] = w.out.n
	w.written = append(w.written, ref)

	obj = w.maybeCompress(obj)

	if _, err := fmt.Fprintf(w.out, "%d %d obj\n", ref.Number, ref.Generation); err != nil {
		return err
	}
	if err := writeValue(w.out, obj); err != nil {
		return err
	}
	_, err := io.WriteString(w.out, "\nendobj\n")
	return err
}

// maybeCompress applies the compression policy to a stream object about to
// be written: add /FlateDecode and compress if no filter is present yet,
// or, if a filter is already declared, set /Length to len(Data) when it is
// missing or disagrees (a stream recovered under lenient parsing keeps the
// Length it was read with).
func (w *Writer) maybeCompress(obj pdf.Object) pdf.Object {
	stm, ok := obj.(pdf.Stream)
	if !ok {
		return obj
	}

	if _, hasFilter := stm.Dict["Filter"]; !hasFilter {
		if !w.opt.CompressStreams {
			newDict := cloneDict(stm.Dict)
			newDict["Length"] = pdf.Integer(len(stm.Data))
			return pdf.Stream{Dict: newDict, Data: stm.Data}
		}
		compressed, err := filter.EncodeFlate(stm.Data)
		if err != nil {
			return obj
		}
		newDict := cloneDict(stm.Dict)
		newDict["Filter"] = pdf.Name("FlateDecode")
		newDict["Length"] = pdf.Integer(len(compressed))
		return pdf.Stream{Dict: newDict, Data: compressed}
	}

	if l, ok := stm.Dict["Length"].(pdf.Integer); !ok || int(l) != len(stm.Data) {
		newDict := cloneDict(stm.Dict)
		newDict["Length"] = pdf.Integer(len(stm.Data))
		return pdf.Stream{Dict: newDict, Data: stm.Data}
	}
	return obj
}

func cloneDict(dict pdf.Dict) pdf.Dict {
	out := make(pdf.Dict, len(dict))
	for k, v := range dict {
		out[k] = v
	}
	return out
}

// WriteAll emits the header, every object the Document currently holds (in
// a stable, ascending order by object number), and the cross-reference
// section selected by Options, then flushes the underlying writer. This is
// the writer's single top-level entry point.
func (w *Writer) WriteAll() error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	refs := w.doc.References()
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Number != refs[j].Number {
			return refs[i].Number < refs[j].Number
		}
		return refs[i].Generation < refs[j].Generation
	})

	for _, ref := range refs {
		obj, err := w.doc.Resolve(ref)
		if err != nil {
			return err
		}
		if err := w.WriteObject(ref, obj); err != nil {
			return err
		}
	}

	if w.opt.UseXRefStreams {
		if err := w.writeXRefStream(); err != nil {
			return err
		}
	} else {
		if err := w.writeXRefTable(); err != nil {
			return err
		}
	}

	return w.bw.Flush()
}

func (w *Writer) maxObjectNumber() uint32 {
	var max uint32
	for ref := range w.offsets {
		if ref.Number > max {
			max = ref.Number
		}
	}
	return max
}
