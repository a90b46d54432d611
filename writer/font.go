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
	"sort"

	pdf "github.com/corefile/pdfcore"
)

// FontFormat identifies the outline format of the glyph program a Font
// carries: this only changes which /FontFile* key and /Subtype the
// embedded font-file stream gets, never how the surrounding CID font
// structure is built.
type FontFormat int

const (
	// FontFormatTrueType embeds Data as a bare TrueType/OpenType-glyf
	// program under /FontFile2, descending from a CIDFontType2.
	FontFormatTrueType FontFormat = iota
	// FontFormatCFF embeds Data as a bare CFF program under /FontFile3
	// with /Subtype /CIDFontType0C, descending from a CIDFontType0.
	FontFormatCFF
)

// FontDescriptor carries the metrics a PDF /FontDescriptor dictionary
// needs. Computing these from a glyph program is font-loading work and an
// external collaborator's responsibility; the writer only serializes the
// values it is given.
type FontDescriptor struct {
	FontName     string
	Flags        int32
	FontBBox     [4]float64
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        float64
	MissingWidth float64
}

// GlyphWidth pairs one CID with its glyph-space width in PDF text-space
// units (1000 = 1 em).
type GlyphWidth struct {
	CID   uint32
	Width float64
}

// Font is the boundary value the writer's font-writing contract consumes:
// the glyph program bytes, its descriptor, per-CID widths, an optional
// CID-to-GID map, and an optional CID-to-Unicode mapping for text
// extraction. Font subsetting, width measurement and CID assignment are
// all external collaborators' work; Font is simply the result they hand to
// the writer.
type Font struct {
	BaseFont   string
	Data       []byte
	Format     FontFormat
	Descriptor FontDescriptor

	// Widths is sparse: CIDs not listed use DefaultWidth.
	Widths       []GlyphWidth
	DefaultWidth float64

	// CIDToGID maps CID to glyph ID, indexed by CID. A nil slice means the
	// identity mapping, serialized as /CIDToGIDMap /Identity rather than a
	// stream.
	CIDToGID []uint16

	// ToUnicode maps CID to the Unicode text it represents. A nil map
	// omits the /ToUnicode entry from the Type0 dictionary entirely.
	ToUnicode map[uint32]string
}

// WriteCompositeFont builds a Type0 composite font for f -- a
// CIDFontType2 or CIDFontType0 descendant depending on f.Format, a grouped
// /W width array, an optional /CIDToGIDMap stream, and an optional
// /ToUnicode CMap stream -- allocating identifiers from w and injecting
// every generated dictionary and stream into the Document, the same way
// the writer injects the catalog, pages and info dictionaries. It returns
// the Reference to the Type0 font dictionary, suitable for a page
// /Resources /Font entry.
func (w *Writer) WriteCompositeFont(f *Font) pdf.Reference {
	fileRef := w.Alloc()
	w.doc.Set(fileRef, fontFileStream(f))

	descRef := w.Alloc()
	w.doc.Set(descRef, fontDescriptorDict(f, fileRef))

	cidFontRef := w.Alloc()
	cidFontDict := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  cidFontSubtype(f.Format),
		"BaseFont": pdf.Name(f.BaseFont),
		"CIDSystemInfo": pdf.Dict{
			"Registry":   pdf.String("Adobe"),
			"Ordering":   pdf.String("Identity"),
			"Supplement": pdf.Integer(0),
		},
		"FontDescriptor": descRef,
		"DW":             pdf.Real(f.DefaultWidth),
		"W":              encodeCompositeWidths(f.Widths),
	}
	if f.CIDToGID == nil {
		cidFontDict["CIDToGIDMap"] = pdf.Name("Identity")
	} else {
		gidRef := w.Alloc()
		w.doc.Set(gidRef, cidToGIDStream(f.CIDToGID))
		cidFontDict["CIDToGIDMap"] = gidRef
	}
	w.doc.Set(cidFontRef, cidFontDict)

	type0Dict := pdf.Dict{
		"Type":            pdf.Name("Font"),
		"Subtype":         pdf.Name("Type0"),
		"BaseFont":        pdf.Name(f.BaseFont),
		"Encoding":        pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{cidFontRef},
	}
	if f.ToUnicode != nil {
		tuRef := w.Alloc()
		w.doc.Set(tuRef, toUnicodeStream(f.ToUnicode))
		type0Dict["ToUnicode"] = tuRef
	}

	type0Ref := w.Alloc()
	w.doc.Set(type0Ref, type0Dict)
	return type0Ref
}

func cidFontSubtype(format FontFormat) pdf.Name {
	if format == FontFormatCFF {
		return "CIDFontType0"
	}
	return "CIDFontType2"
}

func fontFileStream(f *Font) pdf.Stream {
	dict := pdf.Dict{}
	if f.Format == FontFormatCFF {
		dict["Subtype"] = pdf.Name("CIDFontType0C")
		dict["Length1"] = pdf.Integer(len(f.Data))
	} else {
		dict["Length1"] = pdf.Integer(len(f.Data))
	}
	return pdf.Stream{Dict: dict, Data: f.Data}
}

func fontFileKey(format FontFormat) pdf.Name {
	if format == FontFormatCFF {
		return "FontFile3"
	}
	return "FontFile2"
}

func fontDescriptorDict(f *Font, fileRef pdf.Reference) pdf.Dict {
	d := f.Descriptor
	return pdf.Dict{
		"Type":        pdf.Name("FontDescriptor"),
		"FontName":    pdf.Name(d.FontName),
		"Flags":       pdf.Integer(d.Flags),
		"FontBBox":    pdf.Array{pdf.Real(d.FontBBox[0]), pdf.Real(d.FontBBox[1]), pdf.Real(d.FontBBox[2]), pdf.Real(d.FontBBox[3])},
		"ItalicAngle": pdf.Real(d.ItalicAngle),
		"Ascent":      pdf.Real(d.Ascent),
		"Descent":     pdf.Real(d.Descent),
		"CapHeight":   pdf.Real(d.CapHeight),
		"StemV":       pdf.Real(d.StemV),
		"MissingWidth": pdf.Real(d.MissingWidth),
		fontFileKey(f.Format): fileRef,
	}
}

func cidToGIDStream(cidToGID []uint16) pdf.Stream {
	buf := make([]byte, len(cidToGID)*2)
	for i, gid := range cidToGID {
		buf[2*i] = byte(gid >> 8)
		buf[2*i+1] = byte(gid)
	}
	return pdf.Stream{Dict: pdf.Dict{}, Data: buf}
}

// encodeCompositeWidths groups ws into the PDF CIDFont /W array's two
// shorthand forms -- "startCID endCID width" for a run of equal widths,
// "startCID [w0 w1 ...]" otherwise -- compacting the common case of long
// equal-width runs a naive per-CID encoding would otherwise bloat.
func encodeCompositeWidths(ws []GlyphWidth) pdf.Array {
	if len(ws) == 0 {
		return pdf.Array{}
	}
	sorted := append([]GlyphWidth(nil), ws...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CID < sorted[j].CID })

	var out pdf.Array
	i := 0
	for i < len(sorted) {
		runStart := sorted[i].CID
		runWidth := sorted[i].Width
		j := i + 1
		for j < len(sorted) && sorted[j].CID == sorted[j-1].CID+1 && sorted[j].Width == runWidth {
			j++
		}
		if j-i > 1 {
			out = append(out, pdf.Integer(runStart), pdf.Integer(sorted[j-1].CID), pdf.Real(runWidth))
		} else {
			// lone CID: still fold in any immediately following CIDs of
			// differing widths as a literal array, matching the second
			// shorthand form instead of one run triple per CID.
			k := j
			arr := pdf.Array{pdf.Real(runWidth)}
			for k < len(sorted) && sorted[k].CID == sorted[k-1].CID+1 {
				nextRunLen := 1
				for k+nextRunLen < len(sorted) && sorted[k+nextRunLen].CID == sorted[k+nextRunLen-1].CID+1 && sorted[k+nextRunLen].Width == sorted[k].Width {
					nextRunLen++
				}
				if nextRunLen > 1 {
					break
				}
				arr = append(arr, pdf.Real(sorted[k].Width))
				k++
			}
			out = append(out, pdf.Integer(runStart), arr)
			j = k
		}
		i = j
	}
	return out
}

// toUnicodeStream builds a minimal ToUnicode CMap stream (ISO 32000-2
// 9.10.3) mapping each CID to its UTF-16BE text, as a single bfchar
// section. A document with none but ASCII-BMP text never needs bfrange
// compaction to stay a reasonable size.
func toUnicodeStream(mapping map[uint32]string) pdf.Stream {
	cids := make([]uint32, 0, len(mapping))
	for cid := range mapping {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })

	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\n")
	buf.WriteString("begincmap\n")
	buf.WriteString("/CMapName /Adobe-Identity-UCS def\n")
	buf.WriteString("/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	fmt.Fprintf(&buf, "%d beginbfchar\n", len(cids))
	for _, cid := range cids {
		fmt.Fprintf(&buf, "<%04X> <%s>\n", cid, utf16BEHex(mapping[cid]))
	}
	buf.WriteString("endbfchar\n")
	buf.WriteString("endcmap\n")
	buf.WriteString("CMapName currentdict /CMap defineresource pop\n")
	buf.WriteString("end\nend\n")

	return pdf.Stream{Dict: pdf.Dict{}, Data: buf.Bytes()}
}

func utf16BEHex(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		if r <= 0xFFFF {
			fmt.Fprintf(&out, "%04X", r)
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		fmt.Fprintf(&out, "%04X%04X", hi, lo)
	}
	return out.String()
}
