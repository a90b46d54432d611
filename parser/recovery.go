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

package parser

import (
	"fmt"

	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/lexer"
)

// readStreamData acquires the payload bytes for a stream whose dictionary
// is dict. The `stream` keyword has already been consumed by the caller;
// this reads the mandatory EOL that follows it and then dispatches on the
// kind of Length entry present.
func (p *Parser) readStreamData(dict pdf.Dict) ([]byte, error) {
	if err := p.lex.ReadNewline(); err != nil {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "missing EOL after 'stream' keyword"}
	}

	isJPEG := filterNamesDCT(dict)

	lengthObj, hasLength := dict["Length"]
	if !hasLength {
		if !p.opt.LenientStreams {
			return nil, &pdf.MissingKey{Key: "Length"}
		}
		p.opt.warn("stream dictionary has no /Length key; scanning for endstream")
		return p.scanForEndstream(MissingLengthMaxBytes)
	}

	switch v := lengthObj.(type) {
	case pdf.Integer:
		if v < 0 {
			if !p.opt.LenientStreams {
				return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "negative stream Length"}
			}
			return p.scanForEndstream(MissingLengthMaxBytes)
		}
		return p.readDeclaredLength(int64(v), isJPEG)
	case pdf.Reference:
		// Indirect length: unknown size until the referenced object is
		// resolved, which the parser alone cannot do (no Document yet).
		if !p.opt.LenientStreams {
			return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "stream Length is an indirect reference; requires lenient mode"}
		}
		p.opt.warn(fmt.Sprintf("stream Length is indirect reference %s; searching up to %d bytes for endstream", v, IndirectLengthMaxBytes))
		return p.scanForEndstream(IndirectLengthMaxBytes)
	default:
		if !p.opt.LenientStreams {
			return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "stream Length is neither an integer nor a reference"}
		}
		return p.scanForEndstream(MissingLengthMaxBytes)
	}
}

// readDeclaredLength implements the "known declared length" branch.
func (p *Parser) readDeclaredLength(length int64, isJPEG bool) ([]byte, error) {
	data, err := p.lex.ReadBytes(int(length))
	if err != nil {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "stream ended before declared Length"}
	}

	p.lex.SkipWhitespace()
	next, err := p.lex.Next()
	if err != nil {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "missing endstream keyword"}
	}
	if next.Kind == lexer.EndStreamTok {
		return data, nil
	}

	p.lex.PushBack(next)

	if !p.opt.LenientStreams {
		return nil, &pdf.UnexpectedToken{Position: next.Pos, Expected: "endstream", Found: next.String()}
	}

	if isJPEG {
		// JPEG data is byte-exact; never extend it. Skip the intervening
		// bytes without appending them, then consume endstream.
		p.opt.warn(fmt.Sprintf("DCTDecode stream length mismatch at %d bytes; not extending JPEG data", length))
		_, found, err := p.lex.FindKeywordAhead("endstream", p.opt.maxRecoveryBytes())
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "could not find endstream after DCTDecode payload"}
		}
		if err := p.lex.ExpectKeyword("endstream"); err != nil {
			return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "could not consume endstream"}
		}
		return data, nil
	}

	p.opt.warn(fmt.Sprintf("stream length mismatch: expected endstream after %d bytes, found %s", length, next.String()))
	extra, found, err := p.lex.FindKeywordAhead("endstream", p.opt.maxRecoveryBytes())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: fmt.Sprintf("could not find endstream within %d bytes", p.opt.maxRecoveryBytes())}
	}
	if err := p.lex.ExpectKeyword("endstream"); err != nil {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "could not consume endstream"}
	}
	return append(data, extra...), nil
}

// scanForEndstream implements the "indirect-reference length" and
// "missing length" branches: a byte-by-byte scan for the literal sequence
// `endstream`, accumulating every non-matching byte into the payload except
// the one end-of-line marker directly in front of `endstream`.
// Matching is greedy and resettable: FindKeywordAhead itself guarantees
// that a failed partial match contributes every byte it consumed to the
// returned prefix, so nothing is lost.
func (p *Parser) scanForEndstream(maxBytes int) ([]byte, error) {
	data, found, err := p.lex.FindKeywordAhead("endstream", maxBytes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: fmt.Sprintf("could not find endstream within %d bytes", maxBytes)}
	}
	if err := p.lex.ExpectKeyword("endstream"); err != nil {
		return nil, &pdf.SyntaxError{Position: p.lex.Position(), Message: "could not consume endstream"}
	}
	// The end-of-line marker in front of endstream is not payload.
	n := len(data)
	if n > 0 && data[n-1] == '\n' {
		n--
	}
	if n > 0 && data[n-1] == '\r' {
		n--
	}
	return data[:n], nil
}

// filterNamesDCT reports whether dict's /Filter entry names DCTDecode,
// either directly or as one entry of a filter array. JPEG payloads must
// never be extended or trimmed beyond their declared length during
// recovery: JPEG decoders reject extra bytes.
func filterNamesDCT(dict pdf.Dict) bool {
	switch f := dict["Filter"].(type) {
	case pdf.Name:
		return f == "DCTDecode"
	case pdf.Array:
		for _, elem := range f {
			if name, ok := elem.(pdf.Name); ok && name == "DCTDecode" {
				return true
			}
		}
	}
	return false
}
