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

package analyzer

import (
	"bytes"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/filter"
	"github.com/corefile/pdfcore/lexer"
	"github.com/corefile/pdfcore/model"
)

// maxScanObjectNumber bounds the third extraction strategy's object-table
// walk: a document-wide scan for an image stream when neither the
// resource dictionary nor the content stream yields one.
const maxScanObjectNumber = 1000

// minExtractImageSize is the minimum width and height, in pixels, an image
// found by strategy three must have to be returned: a scan unconstrained by
// size would just as happily return a 4x4 bullet icon as the scanned page.
const minExtractImageSize = 100

// ExtractedImage is a re-encoded raster image ready to write to a file or
// hand to a caller: MIME identifies whether Data is already a JPEG
// (DCTDecode passed through unchanged) or a freshly encoded PNG.
type ExtractedImage struct {
	Data []byte
	MIME string
}

// ExtractImage finds and decodes one representative raster image from page,
// trying three strategies in order and falling through on failure (spec
// section 4.6): first the page's own /Resources /XObject dictionary, then
// any image named by a `Do` operator in the page's content streams (with a
// tolerant Resources fallback for pages whose /Resources does not list an
// XObject its content stream still references), and finally a scan of the
// document's first object numbers for any sufficiently large image stream.
func ExtractImage(doc *model.Document, page *model.ParsedPage) (*ExtractedImage, error) {
	resources := doc.GetPageResources(page)

	if stm, ok := firstImageInResources(doc, resources); ok {
		return decodeImageStream(stm)
	}

	if stm, ok := firstImageFromContentStreams(doc, page, resources); ok {
		return decodeImageStream(stm)
	}

	if stm, ok := firstImageInObjectTable(doc); ok {
		return decodeImageStream(stm)
	}

	return nil, &pdf.SyntaxError{Message: "no image data found in page or document"}
}

func firstImageInResources(doc *model.Document, resources pdf.Dict) (pdf.Stream, bool) {
	xobjects, _ := resources["XObject"].(pdf.Dict)
	for _, ref := range xobjects {
		obj, err := doc.Resolve(ref)
		if err != nil {
			continue
		}
		stm, ok := obj.(pdf.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stm.Dict["Subtype"].(pdf.Name); subtype == "Image" {
			return stm, true
		}
	}
	return pdf.Stream{}, false
}

func firstImageFromContentStreams(doc *model.Document, page *model.ParsedPage, resources pdf.Dict) (pdf.Stream, bool) {
	streams, err := doc.GetPageContentStreams(page)
	if err != nil {
		return pdf.Stream{}, false
	}
	xobjects, _ := resources["XObject"].(pdf.Dict)

	for _, data := range streams {
		for _, name := range extractDoNames(data) {
			var ref pdf.Object
			var ok bool
			if xobjects != nil {
				ref, ok = xobjects[pdf.Name(name)]
			}
			if !ok {
				// tolerant fallback: re-resolve /Resources directly from
				// the page dictionary in case the inherited lookup missed
				// a locally overridden (but malformed) entry.
				localObj, _ := doc.Resolve(page.Dict["Resources"])
				localRes, _ := localObj.(pdf.Dict)
				if localRes != nil {
					if lx, _ := localRes["XObject"].(pdf.Dict); lx != nil {
						ref, ok = lx[pdf.Name(name)]
					}
				}
			}
			if !ok {
				continue
			}
			obj, err := doc.Resolve(ref)
			if err != nil {
				continue
			}
			stm, ok := obj.(pdf.Stream)
			if !ok {
				continue
			}
			if subtype, _ := stm.Dict["Subtype"].(pdf.Name); subtype == "Image" {
				return stm, true
			}
		}
	}
	return pdf.Stream{}, false
}

// extractDoNames returns the operand name of every `Do` operator in a
// content stream, in order of appearance. It tokenizes independently of
// scanContentStream: it only needs to recognize operand shapes well enough
// to not mistake stray tokens for operators, not to track graphics state.
func extractDoNames(data []byte) []string {
	lx := lexer.New(bytes.NewReader(data))
	var names []string
	var lastName string
	var haveName bool

	for {
		tok, err := lx.Next()
		if err != nil {
			return names
		}
		switch tok.Kind {
		case lexer.Eof:
			return names
		case lexer.NameTok:
			lastName = string(tok.Bytes)
			haveName = true
		case lexer.ArrayStart:
			skipArray(lx)
			haveName = false
		case lexer.DictStart:
			skipDict(lx)
			haveName = false
		case lexer.KeywordTok:
			switch string(tok.Bytes) {
			case "Do":
				if haveName {
					names = append(names, lastName)
				}
			case "BI":
				_ = skipInlineImage(lx)
			}
			haveName = false
		default:
			haveName = false
		}
	}
}

func skipArray(lx *lexer.Lexer) {
	depth := 1
	for depth > 0 {
		tok, err := lx.Next()
		if err != nil || tok.Kind == lexer.Eof {
			return
		}
		switch tok.Kind {
		case lexer.ArrayStart:
			depth++
		case lexer.ArrayEnd:
			depth--
		}
	}
}

func firstImageInObjectTable(doc *model.Document) (pdf.Stream, bool) {
	for n := uint32(1); n <= maxScanObjectNumber; n++ {
		obj, err := doc.GetObject(n, 0)
		if err != nil {
			continue
		}
		stm, ok := obj.(pdf.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stm.Dict["Subtype"].(pdf.Name); subtype != "Image" {
			continue
		}
		w := intValue(stm.Dict["Width"])
		h := intValue(stm.Dict["Height"])
		if w >= minExtractImageSize && h >= minExtractImageSize {
			return stm, true
		}
	}
	return pdf.Stream{}, false
}

// decodeImageStream turns a raw /Image XObject stream into an
// ExtractedImage, re-encoding it as PNG unless its last filter is
// DCTDecode, in which case the already-JPEG-encoded bytes pass through
// unchanged.
func decodeImageStream(stm pdf.Stream) (*ExtractedImage, error) {
	width := int(intValue(stm.Dict["Width"]))
	height := int(intValue(stm.Dict["Height"]))

	lastName, parms, err := filter.LastImageFilter(stm.Dict)
	if err != nil {
		return nil, err
	}

	preceding := dictWithoutLastFilter(stm.Dict)

	switch lastName {
	case "DCTDecode", "DCT":
		data, err := filter.Decode(preceding, stm.Data)
		if err != nil {
			return nil, err
		}
		return &ExtractedImage{Data: data, MIME: "image/jpeg"}, nil

	case "CCITTFaxDecode", "CCF":
		pre, err := filter.Decode(preceding, stm.Data)
		if err != nil {
			return nil, err
		}
		bits, w, h, err := filter.DecodeCCITT(parms, pre, height)
		if err != nil {
			return nil, err
		}
		if w > 0 {
			width = w
		}
		if h > 0 {
			height = h
		}
		png, err := encodeGray1BitToPNG(bits, width, height)
		if err != nil {
			return nil, err
		}
		return &ExtractedImage{Data: png, MIME: "image/png"}, nil

	default:
		raw, err := filter.Decode(stm.Dict, stm.Data)
		if err != nil {
			return nil, err
		}
		channels := channelsForColorSpace(stm.Dict["ColorSpace"])
		png, err := encodeRasterToPNG(raw, width, height, channels)
		if err != nil {
			return nil, err
		}
		return &ExtractedImage{Data: png, MIME: "image/png"}, nil
	}
}

func channelsForColorSpace(cs pdf.Object) int {
	if name, ok := cs.(pdf.Name); ok {
		switch name {
		case "DeviceRGB", "CalRGB":
			return 3
		}
	}
	return 1
}

// dictWithoutLastFilter returns a copy of dict whose /Filter and
// /DecodeParms describe every filter except the final one, so
// filter.Decode can be used to undo the preceding filters without
// attempting to run DCTDecode or CCITTFaxDecode through the generic path.
func dictWithoutLastFilter(dict pdf.Dict) pdf.Dict {
	chain, err := filter.Chain(dict)
	if err != nil || len(chain) == 0 {
		return pdf.Dict{}
	}
	rest := chain[:len(chain)-1]
	if len(rest) == 0 {
		return pdf.Dict{}
	}

	names := make(pdf.Array, len(rest))
	parms := make(pdf.Array, len(rest))
	for i, info := range rest {
		names[i] = info.Name
		if info.Parms != nil {
			parms[i] = info.Parms
		} else {
			parms[i] = pdf.Null{}
		}
	}
	return pdf.Dict{"Filter": names, "DecodeParms": parms}
}
