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
	"image/png"
	"testing"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/model"
	"github.com/corefile/pdfcore/parser"
)

func TestExtractImageFromResources(t *testing.T) {
	imgRef := pdf.Reference{Number: 5, Generation: 0}
	doc, page := newTestPage(t, "", pdf.Dict{"XObject": pdf.Dict{"Im0": imgRef}}, 100, 100)
	samples := []byte{0, 64, 128, 255}
	doc.Set(imgRef, pdf.Stream{
		Dict: pdf.Dict{
			"Subtype": pdf.Name("Image"),
			"Width":   pdf.Integer(2),
			"Height":  pdf.Integer(2),
		},
		Data: samples,
	})

	img, err := ExtractImage(doc, page)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIME != "image/png" {
		t.Fatalf("MIME = %q, want image/png", img.MIME)
	}
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("re-encoded image is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 2 || decoded.Bounds().Dy() != 2 {
		t.Errorf("dims = %v, want 2x2", decoded.Bounds())
	}
}

func TestExtractImageDCTPassesThroughAsJPEG(t *testing.T) {
	imgRef := pdf.Reference{Number: 5, Generation: 0}
	doc, page := newTestPage(t, "", pdf.Dict{"XObject": pdf.Dict{"Im0": imgRef}}, 100, 100)
	jpeg := []byte{0xFF, 0xD8, 1, 2, 3, 0xFF, 0xD9}
	doc.Set(imgRef, pdf.Stream{
		Dict: pdf.Dict{
			"Subtype": pdf.Name("Image"),
			"Width":   pdf.Integer(10),
			"Height":  pdf.Integer(10),
			"Filter":  pdf.Name("DCTDecode"),
		},
		Data: jpeg,
	})

	img, err := ExtractImage(doc, page)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIME != "image/jpeg" {
		t.Fatalf("MIME = %q, want image/jpeg", img.MIME)
	}
	if !bytes.Equal(img.Data, jpeg) {
		t.Errorf("DCTDecode image must pass through unchanged, got %x want %x", img.Data, jpeg)
	}
}

func TestExtractImageFromPageResourcesNamedByDo(t *testing.T) {
	// The page dictionary's own /Resources maps Im0 and the content
	// stream invokes it with `Do`: the image is found (by the /Resources
	// lookup, which runs before the content-stream `Do` lookup) and
	// re-encoded as PNG.
	imgRef := pdf.Reference{Number: 7, Generation: 0}
	doc := model.New(parser.Options{})
	contentRef := pdf.Reference{Number: 1, Generation: 0}
	doc.Set(contentRef, pdf.Stream{Dict: pdf.Dict{}, Data: []byte("/Im0 Do")})
	doc.Set(imgRef, pdf.Stream{
		Dict: pdf.Dict{"Subtype": pdf.Name("Image"), "Width": pdf.Integer(4), "Height": pdf.Integer(4)},
		Data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	})
	pageDict := pdf.Dict{
		"Type":      pdf.Name("Page"),
		"Contents":  contentRef,
		"Resources": pdf.Dict{"XObject": pdf.Dict{"Im0": imgRef}},
	}
	page := &model.ParsedPage{Dict: pageDict, Width: 100, Height: 100}

	img, err := ExtractImage(doc, page)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIME != "image/png" {
		t.Fatalf("MIME = %q, want image/png", img.MIME)
	}
}

func TestExtractImageFallsBackToObjectTableScan(t *testing.T) {
	// No /Resources, no content stream reference to an image: strategy
	// three scans the object table directly for a sufficiently large image.
	doc, page := newTestPage(t, "", nil, 100, 100)
	bigRef := pdf.Reference{Number: 3, Generation: 0}
	samples := make([]byte, minExtractImageSize*minExtractImageSize)
	doc.Set(bigRef, pdf.Stream{
		Dict: pdf.Dict{
			"Subtype": pdf.Name("Image"),
			"Width":   pdf.Integer(minExtractImageSize),
			"Height":  pdf.Integer(minExtractImageSize),
		},
		Data: samples,
	})

	img, err := ExtractImage(doc, page)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIME != "image/png" {
		t.Fatalf("MIME = %q, want image/png", img.MIME)
	}
}

func TestExtractImageNoneFound(t *testing.T) {
	doc, page := newTestPage(t, "", nil, 100, 100)
	_, err := ExtractImage(doc, page)
	if err == nil {
		t.Fatal("expected an error when no image can be found anywhere")
	}
}
