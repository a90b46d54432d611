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
	"bytes"
	"fmt"
	"io"
	"strconv"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/filter"
	"github.com/corefile/pdfcore/lexer"
	"github.com/corefile/pdfcore/parser"
)

// decodeStreamData applies stm's own /Filter chain to its raw bytes. Xref
// streams are always Flate-compressed (optionally PNG-predicted); this
// reuses the same filter dispatch the rest of the model uses for content
// and image streams.
func decodeStreamData(stm pdf.Stream) ([]byte, error) {
	return filter.Decode(stm.Dict, stm.Data)
}

// xrefEntry is one row of a merged cross-reference table: either a free
// slot, an object at a known byte offset, or (for completeness; this core
// does not read the object stream itself, see SPEC_FULL.md) an object
// living inside a compressed object stream.
type xrefEntry struct {
	free       bool
	offset     int64
	inObjStm   bool
	objStmNum  uint32
	generation uint16
}

// Read parses a complete PDF document from r into a fresh Document,
// following the xref chain from the trailer backward through any /Prev
// entries and resolving every object it finds along the way (spec §4.4,
// §6 "File format consumed").
func Read(r io.ReadSeeker, opts parser.Options) (*Document, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("model: cannot seek: %w", err)
	}

	startXref, err := findStartXRef(r, size)
	if err != nil {
		return readByLinearScan(r, size, opts)
	}

	doc := New(opts)
	entries := map[pdf.Reference]xrefEntry{}
	var trailer pdf.Dict
	seen := map[int64]bool{}

	offset := startXref
	for offset >= 0 {
		if seen[offset] {
			break // cycle in /Prev chain; stop rather than loop forever
		}
		seen[offset] = true

		sectionTrailer, prev, err := readXRefSection(r, offset, entries, opts)
		if err != nil {
			if trailer == nil {
				return readByLinearScan(r, size, opts)
			}
			break
		}
		if trailer == nil {
			trailer = sectionTrailer
		} else {
			// merge: keys already set take priority (they came from a
			// more recent section), sectionTrailer only fills gaps.
			for k, v := range sectionTrailer {
				if _, ok := trailer[k]; !ok {
					trailer[k] = v
				}
			}
		}
		if prev < 0 {
			break
		}
		offset = prev
	}

	if trailer == nil {
		return readByLinearScan(r, size, opts)
	}

	if root, ok := trailer["Root"].(pdf.Reference); ok {
		doc.SetCatalog(root)
	}
	if info, ok := trailer["Info"].(pdf.Reference); ok {
		doc.SetInfo(info)
	}

	for ref, entry := range entries {
		if entry.free || entry.inObjStm {
			continue
		}
		obj, err := readObjectAt(r, entry.offset, opts)
		if err != nil {
			continue
		}
		doc.Set(ref, obj)
	}

	return doc, nil
}

// findStartXRef locates the last `startxref\n<offset>` pair near the end
// of the file.
func findStartXRef(r io.ReadSeeker, size int64) (int64, error) {
	tailSize := int64(2048)
	if tailSize > size {
		tailSize = size
	}
	if _, err := r.Seek(size-tailSize, io.SeekStart); err != nil {
		return 0, err
	}
	buf := make([]byte, tailSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("model: startxref not found")
	}
	rest := buf[idx+len("startxref"):]
	lx := lexer.New(bytes.NewReader(rest))
	lx.SkipWhitespace()
	tok, err := lx.Next()
	if err != nil || tok.Kind != lexer.Integer {
		return 0, fmt.Errorf("model: malformed startxref")
	}
	return tok.Int, nil
}

// readXRefSection reads one cross-reference section (table or stream) at
// offset, adding any entries not already present in entries (entries
// already set take priority: they came from a more recently-written
// section closer to the file's current state), and returns that section's
// trailer dictionary and the /Prev offset (-1 if none).
func readXRefSection(r io.ReadSeeker, offset int64, entries map[pdf.Reference]xrefEntry, opts parser.Options) (pdf.Dict, int64, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, -1, err
	}
	// lexer.New wraps r in its own 32 KiB buffered reader, so once lx has
	// read anything, r's own Seek-reported position no longer tracks what
	// lx has actually consumed (lx may have buffered far ahead of the
	// logical section). That's fine here because a fresh Lexer is created
	// per call (readXRefSection, readObjectAt) and r is always re-Seek'd
	// before the next one is built, but it means r must never be read or
	// position-queried directly while an lx built over it is still in use.
	lx := lexer.New(r)
	lx.SkipWhitespace()
	peek, err := lx.Next()
	if err != nil {
		return nil, -1, err
	}

	if peek.Kind == lexer.KeywordTok && string(peek.Bytes) == "xref" {
		return readClassicXRef(r, lx, entries, opts)
	}

	// Otherwise this must be an indirect object "n g obj << ... XRef
	// stream ... >> stream ... endstream".
	lx.PushBack(peek)
	p := parser.New(lx, opts)
	_, obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, -1, err
	}
	stm, ok := obj.(pdf.Stream)
	if !ok {
		return nil, -1, fmt.Errorf("model: expected XRef stream")
	}
	return readXRefStreamEntries(stm, entries)
}

func readClassicXRef(r io.ReadSeeker, lx *lexer.Lexer, entries map[pdf.Reference]xrefEntry, opts parser.Options) (pdf.Dict, int64, error) {
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, -1, err
		}
		if tok.Kind == lexer.KeywordTok && string(tok.Bytes) == "trailer" {
			break
		}
		if tok.Kind != lexer.Integer {
			return nil, -1, fmt.Errorf("model: malformed xref subsection header")
		}
		startObj := tok.Int
		countTok, err := lx.Next()
		if err != nil || countTok.Kind != lexer.Integer {
			return nil, -1, fmt.Errorf("model: malformed xref subsection count")
		}
		count := countTok.Int

		for i := int64(0); i < count; i++ {
			lx.SkipWhitespace()
			raw, err := lx.ReadBytes(20)
			if err != nil {
				return nil, -1, fmt.Errorf("model: truncated xref entry: %w", err)
			}
			offStr := string(bytes.TrimSpace(raw[0:10]))
			genStr := string(bytes.TrimSpace(raw[11:16]))
			kind := raw[17]
			off, _ := strconv.ParseInt(offStr, 10, 64)
			gen, _ := strconv.ParseInt(genStr, 10, 64)
			ref := pdf.Reference{Number: uint32(startObj + i), Generation: uint16(gen)}
			if _, exists := entries[ref]; exists {
				continue
			}
			if kind == 'n' {
				entries[ref] = xrefEntry{offset: off, generation: uint16(gen)}
			} else {
				entries[ref] = xrefEntry{free: true}
			}
		}
	}

	p := parser.New(lx, opts)
	trailerObj, err := p.ParseObject()
	if err != nil {
		return nil, -1, err
	}
	trailer, ok := trailerObj.(pdf.Dict)
	if !ok {
		return nil, -1, fmt.Errorf("model: trailer is not a dictionary")
	}
	prev := int64(-1)
	if p2, ok := trailer["Prev"].(pdf.Integer); ok {
		prev = int64(p2)
	}
	return trailer, prev, nil
}

func readXRefStreamEntries(stm pdf.Stream, entries map[pdf.Reference]xrefEntry) (pdf.Dict, int64, error) {
	dict := stm.Dict
	wArr, ok := dict["W"].(pdf.Array)
	if !ok || len(wArr) != 3 {
		return nil, -1, fmt.Errorf("model: XRef stream missing /W")
	}
	widths := make([]int, 3)
	for i, w := range wArr {
		n, ok := w.(pdf.Integer)
		if !ok {
			return nil, -1, fmt.Errorf("model: /W entries must be integers")
		}
		widths[i] = int(n)
	}

	size, _ := dict["Size"].(pdf.Integer)
	var index []int64
	if idxArr, ok := dict["Index"].(pdf.Array); ok {
		for _, v := range idxArr {
			n, _ := v.(pdf.Integer)
			index = append(index, int64(n))
		}
	} else {
		index = []int64{0, int64(size)}
	}

	data, err := decodeStreamData(stm)
	if err != nil {
		return nil, -1, err
	}

	entryWidth := widths[0] + widths[1] + widths[2]
	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		startObj := index[s]
		count := index[s+1]
		for i := int64(0); i < count; i++ {
			if pos+entryWidth > len(data) {
				break
			}
			fields := readFixedFields(data[pos:pos+entryWidth], widths)
			pos += entryWidth

			objType := fields[0]
			if widths[0] == 0 {
				objType = 1 // default per PDF spec when /W[0] is 0
			}
			ref := pdf.Reference{Number: uint32(startObj + i)}
			if _, exists := entries[ref]; exists {
				continue
			}
			switch objType {
			case 0:
				entries[ref] = xrefEntry{free: true}
			case 1:
				ref.Generation = uint16(fields[2])
				entries[pdf.Reference{Number: uint32(startObj + i), Generation: uint16(fields[2])}] = xrefEntry{offset: int64(fields[1])}
			case 2:
				entries[ref] = xrefEntry{inObjStm: true, objStmNum: uint32(fields[1])}
			}
		}
	}

	prev := int64(-1)
	if p, ok := dict["Prev"].(pdf.Integer); ok {
		prev = int64(p)
	}
	return dict, prev, nil
}

func readFixedFields(buf []byte, widths []int) [3]int64 {
	var out [3]int64
	pos := 0
	for i, w := range widths {
		var v int64
		for j := 0; j < w; j++ {
			v = v<<8 | int64(buf[pos])
			pos++
		}
		out[i] = v
	}
	return out
}

// readObjectAt parses exactly one "n g obj ... endobj" sequence located at
// offset.
func readObjectAt(r io.ReadSeeker, offset int64, opts parser.Options) (pdf.Object, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	// See the comment in readXRefSection: lx buffers ahead of r, so r's
	// position cannot be relied on again until a fresh Lexer replaces lx.
	lx := lexer.New(r)
	p := parser.New(lx, opts)
	_, obj, err := p.ParseIndirectObject()
	return obj, err
}

// readByLinearScan is the fallback used when no usable startxref/trailer
// chain can be found: scan the whole file for "N G obj" headers and index
// whatever parses, skipping anything that doesn't. This never produces a
// perfect reconstruction (it cannot recover which objects are free, or
// disambiguate superseded incremental updates without a trailer) but lets
// callers read severely damaged files rather than failing outright.
func readByLinearScan(r io.ReadSeeker, size int64, opts parser.Options) (*Document, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("model: cannot read file for recovery scan: %w", err)
	}

	doc := New(opts)
	const objMarker = " obj"
	pos := 0
	for {
		idx := bytes.Index(buf[pos:], []byte(objMarker))
		if idx < 0 {
			break
		}
		absIdx := pos + idx
		start := backtrackObjectHeader(buf, absIdx)
		if start >= 0 {
			sub := bytes.NewReader(buf[start:])
			lx := lexer.New(sub)
			p := parser.New(lx, opts)
			ref, obj, err := p.ParseIndirectObject()
			if err == nil {
				doc.Set(ref, obj)
			}
		}
		pos = absIdx + len(objMarker)
	}

	// best-effort: find a Catalog among the recovered objects.
	for ref, obj := range doc.objects {
		if dict, ok := obj.(pdf.Dict); ok {
			if t, _ := dict["Type"].(pdf.Name); t == "Catalog" {
				doc.SetCatalog(ref)
			}
		}
	}

	if doc.Len() == 0 {
		return nil, &pdf.SyntaxError{Position: 0, Message: "no recoverable objects found"}
	}
	return doc, nil
}

// backtrackObjectHeader walks backward from the byte index of " obj" to
// find the start of the "N G obj" header, returning -1 if the preceding
// bytes don't look like two integers.
func backtrackObjectHeader(buf []byte, objIdx int) int {
	i := objIdx
	// skip the space right before "obj"
	for i > 0 && (buf[i-1] == ' ' || buf[i-1] == '\n' || buf[i-1] == '\r') {
		i--
	}
	genEnd := i
	for i > 0 && buf[i-1] >= '0' && buf[i-1] <= '9' {
		i--
	}
	genStart := i
	if genStart == genEnd {
		return -1
	}
	for i > 0 && (buf[i-1] == ' ') {
		i--
	}
	numEnd := i
	for i > 0 && buf[i-1] >= '0' && buf[i-1] <= '9' {
		i--
	}
	numStart := i
	if numStart == numEnd {
		return -1
	}
	return numStart
}
