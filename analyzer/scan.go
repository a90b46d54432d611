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
	"io"

	"seehuhn.de/go/geom/matrix"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/graphics"
	"github.com/corefile/pdfcore/lexer"
	"github.com/corefile/pdfcore/model"
)

// operandKind identifies the shape of one content-stream operand. Content
// streams use the same primitive grammar as the object model (numbers,
// names, strings, arrays) but never indirect references or dictionaries
// outside of inline-image and marked-content parameter lists, which this
// interpreter does not need to evaluate.
type operandKind int

const (
	opNumber operandKind = iota
	opName
	opString
	opArray
)

type operand struct {
	kind operandKind
	num  float64
	name string
	str  []byte
	arr  []operand
}

// areaAccumulator tracks the running text and image area sums the
// classifier needs, expressed as fractions of the page's own area, plus
// the fragment/character/image counts exposed on ContentAnalysis.
type areaAccumulator struct {
	pageArea float64

	textArea  float64
	imageArea float64

	textFragments int
	imageCount    int
	characters    int
}

// avgGlyphWidthFactor approximates a glyph's advance width as a fraction
// of its point size when no font metrics are available (font loading is
// an external collaborator this package does not perform). This is a
// documented heuristic, not a font-accurate measurement.
const avgGlyphWidthFactor = 0.5

func (a *areaAccumulator) addTextFragment(charCount int, fontSize float64, ctm matrix.Matrix, minFragment int) {
	if charCount < minFragment {
		return
	}
	a.textFragments++
	a.characters += charCount

	widthUser := float64(charCount) * fontSize * avgGlyphWidthFactor
	heightUser := fontSize
	scale := graphics.UnitSquareArea(ctm)
	area := widthUser * heightUser * scale
	if a.pageArea > 0 {
		a.textArea += area / a.pageArea
	}
}

func (a *areaAccumulator) addFullPageImage() {
	a.imageCount++
	a.imageArea += 1
}

func (a *areaAccumulator) addMeasuredImage(ctm matrix.Matrix) {
	a.imageCount++
	if a.pageArea > 0 {
		a.imageArea += graphics.UnitSquareArea(ctm) / a.pageArea
	}
}

// scanContentStream walks one decoded content stream, updating acc as it
// encounters text-showing operators, inline images and `Do` XObject
// invocations. resources is the page's effective /Resources dictionary;
// doc resolves the names it finds there.
func scanContentStream(doc *model.Document, data []byte, resources pdf.Dict, acc *areaAccumulator, opt Options) error {
	lx := lexer.New(bytes.NewReader(data))
	ctm := graphics.NewCTMStack(matrix.Identity)
	var operands []operand
	var fontSize float64 = 12 // Tf not yet seen: PDF has no text until it is

	for {
		tok, err := lx.Next()
		if err != nil {
			return nil // malformed tail of a content stream is not fatal to analysis
		}
		switch tok.Kind {
		case lexer.Eof:
			return nil
		case lexer.Integer:
			operands = append(operands, operand{kind: opNumber, num: float64(tok.Int)})
		case lexer.Real:
			operands = append(operands, operand{kind: opNumber, num: tok.Float})
		case lexer.NameTok:
			operands = append(operands, operand{kind: opName, name: string(tok.Bytes)})
		case lexer.String, lexer.HexString:
			operands = append(operands, operand{kind: opString, str: append([]byte(nil), tok.Bytes...)})
		case lexer.ArrayStart:
			arr, err := scanArray(lx)
			if err != nil {
				return nil
			}
			operands = append(operands, operand{kind: opArray, arr: arr})
		case lexer.DictStart:
			skipDict(lx) // marked-content/inline-image parameter dicts carry no area information
		case lexer.Comment:
			// ignored
		case lexer.KeywordTok:
			op := string(tok.Bytes)
			switch op {
			case "q":
				ctm.Push()
			case "Q":
				ctm.Pop()
			case "cm":
				if m, ok := matrixFromOperands(operands); ok {
					ctm.Concat(m)
				}
			case "Tf":
				if n := len(operands); n >= 1 && operands[n-1].kind == opNumber {
					fontSize = operands[n-1].num
				}
			case "Tj", "'":
				if n := len(operands); n >= 1 && operands[n-1].kind == opString {
					acc.addTextFragment(len(operands[n-1].str), fontSize, ctm.Current(), opt.MinTextFragmentSize)
				}
			case "\"":
				if n := len(operands); n >= 1 && operands[n-1].kind == opString {
					acc.addTextFragment(len(operands[n-1].str), fontSize, ctm.Current(), opt.MinTextFragmentSize)
				}
			case "TJ":
				if n := len(operands); n >= 1 && operands[n-1].kind == opArray {
					total := 0
					for _, el := range operands[n-1].arr {
						if el.kind == opString {
							total += len(el.str)
						}
					}
					acc.addTextFragment(total, fontSize, ctm.Current(), opt.MinTextFragmentSize)
				}
			case "Do":
				if n := len(operands); n >= 1 && operands[n-1].kind == opName {
					handleDo(doc, operands[n-1].name, resources, ctm.Current(), acc, opt)
				}
			case "BI":
				if err := skipInlineImage(lx); err != nil {
					return nil
				}
				acc.addFullPageImage()
			}
			operands = operands[:0]
		default:
			// ArrayEnd/DictEnd/other structural tokens reaching here means
			// an operand was consumed out of context; drop it rather than
			// fail the whole page.
		}
	}
}

func scanArray(lx *lexer.Lexer) ([]operand, error) {
	var out []operand
	for {
		tok, err := lx.Next()
		if err != nil {
			return out, err
		}
		switch tok.Kind {
		case lexer.ArrayEnd:
			return out, nil
		case lexer.Eof:
			return out, nil
		case lexer.Integer:
			out = append(out, operand{kind: opNumber, num: float64(tok.Int)})
		case lexer.Real:
			out = append(out, operand{kind: opNumber, num: tok.Float})
		case lexer.String, lexer.HexString:
			out = append(out, operand{kind: opString, str: append([]byte(nil), tok.Bytes...)})
		case lexer.NameTok:
			out = append(out, operand{kind: opName, name: string(tok.Bytes)})
		}
	}
}

// skipDict consumes tokens through the matching DictEnd. Nesting is
// shallow in practice (inline-image and marked-content parameter lists);
// a depth counter handles the rare nested case without recursion.
func skipDict(lx *lexer.Lexer) {
	depth := 1
	for depth > 0 {
		tok, err := lx.Next()
		if err != nil || tok.Kind == lexer.Eof {
			return
		}
		switch tok.Kind {
		case lexer.DictStart:
			depth++
		case lexer.DictEnd:
			depth--
		}
	}
}

// skipInlineImage consumes an inline image's parameter dictionary and raw
// sample data, from just after `BI` through `EI`. Inline image data is not
// otherwise delimited, so this mirrors the stream-recovery scan for
// `endstream`: it buffers forward through `ID` and then scans for `EI`
// without ever seeking backward.
func skipInlineImage(lx *lexer.Lexer) error {
	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}
		if tok.Kind == lexer.KeywordTok && string(tok.Bytes) == "ID" {
			break
		}
		if tok.Kind == lexer.Eof {
			return io.ErrUnexpectedEOF
		}
	}
	_, found, err := lx.FindKeywordAhead("EI", 10<<20)
	if err != nil {
		return err
	}
	if !found {
		return io.ErrUnexpectedEOF
	}
	return lx.ExpectKeyword("EI")
}

func matrixFromOperands(operands []operand) (matrix.Matrix, bool) {
	n := len(operands)
	if n < 6 {
		return matrix.Matrix{}, false
	}
	vals := operands[n-6:]
	var m matrix.Matrix
	for i := 0; i < 6; i++ {
		if vals[i].kind != opNumber {
			return matrix.Matrix{}, false
		}
		m[i] = vals[i].num
	}
	return m, true
}

// handleDo resolves name against resources' /XObject subdictionary and
// attributes area to acc: a measured image XObject at least
// opt.MinImageSize square contributes its placed area, and one below that
// threshold is not counted; any other XObject -- an image without usable
// /Width and /Height, a non-image XObject, or an unresolved name -- falls
// back to the full page area, a conservative stance that avoids
// undercounting scanned pages whose image dimensions cannot be determined.
func handleDo(doc *model.Document, name string, resources pdf.Dict, ctm matrix.Matrix, acc *areaAccumulator, opt Options) {
	xobjects, _ := resources["XObject"].(pdf.Dict)
	if xobjects == nil {
		acc.addFullPageImage()
		return
	}
	ref, ok := xobjects[pdf.Name(name)]
	if !ok {
		acc.addFullPageImage()
		return
	}
	obj, err := doc.Resolve(ref)
	if err != nil {
		acc.addFullPageImage()
		return
	}
	stm, ok := obj.(pdf.Stream)
	if !ok {
		acc.addFullPageImage()
		return
	}
	subtype, _ := stm.Dict["Subtype"].(pdf.Name)
	if subtype != "Image" {
		// Form XObjects and anything else: counted as a full page, the
		// same conservative fallback used for unmeasured XObjects.
		acc.addFullPageImage()
		return
	}
	width := intValue(stm.Dict["Width"])
	height := intValue(stm.Dict["Height"])
	if width <= 0 || height <= 0 {
		acc.addFullPageImage() // unmeasured: no usable /Width or /Height
		return
	}
	if width < int64(opt.MinImageSize) || height < int64(opt.MinImageSize) {
		return // below threshold: not counted at all, not even as a fallback
	}
	acc.addMeasuredImage(ctm)
}

func intValue(obj pdf.Object) int64 {
	switch v := obj.(type) {
	case pdf.Integer:
		return int64(v)
	case pdf.Real:
		return int64(v)
	default:
		return 0
	}
}
