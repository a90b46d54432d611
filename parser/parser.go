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
	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/lexer"
)

// Parser drives recursive-descent parsing of PDF objects from a Lexer.
type Parser struct {
	lex *lexer.Lexer
	opt Options
}

// New creates a Parser reading tokens from lex under the given options.
func New(lex *lexer.Lexer, opt Options) *Parser {
	return &Parser{lex: lex, opt: opt}
}

// Options returns the options this parser was constructed with.
func (p *Parser) Options() Options { return p.opt }

// ParseObject reads one token and dispatches to the appropriate object
// production. This is the top-level entry point for parsing a single value
// from a token stream.
func (p *Parser) ParseObject() (pdf.Object, error) {
	tok, err := p.nextSignificant()
	if err != nil {
		return nil, err
	}
	return p.parseFromToken(tok)
}

// nextSignificant returns the next token, silently skipping Comment tokens
// -- comments may appear anywhere a value is expected.
func (p *Parser) nextSignificant() (lexer.Token, error) {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}
		if tok.Kind == lexer.Comment {
			continue
		}
		return tok, nil
	}
}

func (p *Parser) parseFromToken(tok lexer.Token) (pdf.Object, error) {
	switch tok.Kind {
	case lexer.Eof:
		return nil, &pdf.SyntaxError{Position: tok.Pos, Message: "unexpected end of file"}
	case lexer.Null:
		return pdf.Null{}, nil
	case lexer.Boolean:
		return pdf.Boolean(tok.Bool), nil
	case lexer.Real:
		return pdf.Real(tok.Float), nil
	case lexer.String, lexer.HexString:
		return pdf.String(tok.Bytes), nil
	case lexer.NameTok:
		return pdf.Name(tok.Bytes), nil
	case lexer.ArrayStart:
		return p.parseArray()
	case lexer.DictStart:
		return p.parseDictOrStream()
	case lexer.Integer:
		return p.parseIntegerOrReference(tok)
	case lexer.StartXRefTok:
		// marks the tail of the file; push back so the caller sees it.
		p.lex.PushBack(tok)
		return nil, &pdf.SyntaxError{Position: tok.Pos, Message: "unexpected startxref"}
	default:
		return nil, &pdf.UnexpectedToken{
			Position: tok.Pos,
			Expected: "object",
			Found:    tok.String(),
		}
	}
}

// parseIntegerOrReference implements the one non-obvious production in the
// grammar: an Integer may actually be the start of "n g R". The parser
// speculatively reads up to two more tokens; if they don't form a
// reference, both are pushed back unchanged (spec §3 invariant: lookahead
// must be reversible).
func (p *Parser) parseIntegerOrReference(first lexer.Token) (pdf.Object, error) {
	if first.Int < 0 || first.Int > 9_999_999 {
		return pdf.Integer(first.Int), nil
	}

	second, err := p.lex.Next()
	if err != nil {
		return pdf.Integer(first.Int), nil
	}
	if second.Kind != lexer.Integer || second.Int < 0 || second.Int > 65_535 {
		p.lex.PushBack(second)
		return pdf.Integer(first.Int), nil
	}

	third, err := p.lex.Next()
	if err != nil {
		p.lex.PushBack(second)
		return pdf.Integer(first.Int), nil
	}
	if third.Kind != lexer.KeywordTok || string(third.Bytes) != "R" {
		p.lex.PushBack(third)
		p.lex.PushBack(second)
		return pdf.Integer(first.Int), nil
	}

	return pdf.Reference{Number: uint32(first.Int), Generation: uint16(second.Int)}, nil
}

// parseArray reads tokens until ArrayEnd, recursing on each element.
// Comments are skipped silently.
func (p *Parser) parseArray() (pdf.Object, error) {
	var out pdf.Array
	for {
		tok, err := p.nextSignificant()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.ArrayEnd {
			return out, nil
		}
		obj, err := p.parseFromToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
}

// parseDict reads alternating Name-key/value pairs until DictEnd. Duplicate
// keys keep the later value (spec §3, §9).
func (p *Parser) parseDict() (pdf.Dict, error) {
	out := pdf.Dict{}
	for {
		tok, err := p.nextSignificant()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.DictEnd {
			return out, nil
		}
		if tok.Kind != lexer.NameTok {
			return nil, &pdf.UnexpectedToken{Position: tok.Pos, Expected: "dictionary key (Name)", Found: tok.String()}
		}
		key := pdf.Name(tok.Bytes)
		valTok, err := p.nextSignificant()
		if err != nil {
			return nil, err
		}
		val, err := p.parseFromToken(valTok)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
}

// parseDictOrStream reads a dictionary and then probes one token ahead: if
// it is the `stream` keyword, the result becomes a Stream and recovery
// takes over; if it is `startxref`, that token is pushed back unchanged
// (it marks the file tail); otherwise the probed token is pushed back.
func (p *Parser) parseDictOrStream() (pdf.Object, error) {
	dict, err := p.parseDict()
	if err != nil {
		return nil, err
	}

	next, err := p.lex.Next()
	if err != nil {
		return dict, nil
	}
	switch next.Kind {
	case lexer.StreamTok:
		data, err := p.readStreamData(dict)
		if err != nil {
			return nil, err
		}
		return pdf.Stream{Dict: dict, Data: data}, nil
	case lexer.StartXRefTok:
		p.lex.PushBack(next)
		return dict, nil
	default:
		p.lex.PushBack(next)
		return dict, nil
	}
}

// ParseIndirectObject parses an "n g obj" header, the value that follows it
// and the matching endobj, returning the object's reference and the
// enclosed value. This is the entry point used when walking a file's
// objects sequentially rather than through an xref table.
func (p *Parser) ParseIndirectObject() (pdf.Reference, pdf.Object, error) {
	numTok, err := p.nextSignificant()
	if err != nil {
		return pdf.Reference{}, nil, err
	}
	if numTok.Kind != lexer.Integer {
		return pdf.Reference{}, nil, &pdf.UnexpectedToken{Position: numTok.Pos, Expected: "object number", Found: numTok.String()}
	}
	genTok, err := p.nextSignificant()
	if err != nil {
		return pdf.Reference{}, nil, err
	}
	if genTok.Kind != lexer.Integer {
		return pdf.Reference{}, nil, &pdf.UnexpectedToken{Position: genTok.Pos, Expected: "generation number", Found: genTok.String()}
	}
	objTok, err := p.nextSignificant()
	if err != nil {
		return pdf.Reference{}, nil, err
	}
	if objTok.Kind != lexer.ObjTok {
		return pdf.Reference{}, nil, &pdf.UnexpectedToken{Position: objTok.Pos, Expected: "obj", Found: objTok.String()}
	}

	ref := pdf.Reference{Number: uint32(numTok.Int), Generation: uint16(genTok.Int)}
	obj, err := p.ParseObject()
	if err != nil {
		return ref, nil, err
	}

	endTok, err := p.nextSignificant()
	if err != nil {
		return ref, obj, err
	}
	if endTok.Kind != lexer.EndObjTok {
		return ref, nil, &pdf.UnexpectedToken{Position: endTok.Pos, Expected: "endobj", Found: endTok.String()}
	}
	return ref, obj, nil
}
