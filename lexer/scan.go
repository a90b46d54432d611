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

package lexer

import (
	"strconv"
)

// scanLiteralString reads a "(...)" string, handling balanced parentheses,
// backslash escapes, and line-continuation.
func (l *Lexer) scanLiteralString(pos int64) (Token, error) {
	l.ReadByte() // consume '('
	var out []byte
	depth := 1
	for {
		b, err := l.ReadByte()
		if err != nil {
			return Token{}, &SyntaxError{Pos: pos, Msg: "unterminated literal string"}
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Kind: String, Pos: pos, Bytes: out}, nil
			}
			out = append(out, b)
		case '\\':
			esc, err := l.ReadByte()
			if err != nil {
				return Token{}, &SyntaxError{Pos: pos, Msg: "unterminated escape in literal string"}
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, esc)
			case '\n':
				// line continuation, drop both bytes
			case '\r':
				if next, err := l.PeekByte(); err == nil && next == '\n' {
					l.ReadByte()
				}
			default:
				if esc >= '0' && esc <= '7' {
					val := int(esc - '0')
					for i := 0; i < 2; i++ {
						next, err := l.PeekByte()
						if err != nil || next < '0' || next > '7' {
							break
						}
						l.ReadByte()
						val = val*8 + int(next-'0')
					}
					out = append(out, byte(val))
				} else {
					out = append(out, esc)
				}
			}
		default:
			out = append(out, b)
		}
	}
}

// scanHexString reads the payload of a "<...>" hex string; the opening '<'
// has already been consumed by the caller.
func (l *Lexer) scanHexString(pos int64) (Token, error) {
	var digits []byte
	for {
		b, err := l.ReadByte()
		if err != nil {
			return Token{}, &SyntaxError{Pos: pos, Msg: "unterminated hex string"}
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		hi := hexVal(digits[2*i])
		lo := hexVal(digits[2*i+1])
		out[i] = hi<<4 | lo
	}
	return Token{Kind: HexString, Pos: pos, Bytes: out}, nil
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	default:
		return 0
	}
}

// scanName reads a "/Name" token, resolving #hh escapes.
func (l *Lexer) scanName(pos int64) (Token, error) {
	l.ReadByte() // consume '/'
	var out []byte
	for {
		b, err := l.PeekByte()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.ReadByte()
		if b == '#' {
			h1, err1 := l.PeekByte()
			if err1 == nil && isHexDigit(h1) {
				l.ReadByte()
				h2, err2 := l.PeekByte()
				if err2 == nil && isHexDigit(h2) {
					l.ReadByte()
					out = append(out, hexVal(h1)<<4|hexVal(h2))
					continue
				}
				out = append(out, hexVal(h1))
				continue
			}
			out = append(out, b)
			continue
		}
		out = append(out, b)
	}
	return Token{Kind: NameTok, Pos: pos, Bytes: out}, nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// scanNumber reads an integer or real-number token. PDF numbers may start
// with '+', '-', '.', or a digit.
func (l *Lexer) scanNumber(pos int64) (Token, error) {
	var raw []byte
	isReal := false
	for {
		b, err := l.PeekByte()
		if err != nil {
			break
		}
		if b >= '0' && b <= '9' {
			l.ReadByte()
			raw = append(raw, b)
			continue
		}
		if b == '+' || b == '-' {
			l.ReadByte()
			raw = append(raw, b)
			continue
		}
		if b == '.' {
			isReal = true
			l.ReadByte()
			raw = append(raw, b)
			continue
		}
		if b == 'e' || b == 'E' {
			// not standard PDF syntax, but some producers emit it; treat as real
			isReal = true
			l.ReadByte()
			raw = append(raw, b)
			continue
		}
		break
	}
	if isReal {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			f = 0
		}
		return Token{Kind: Real, Pos: pos, Float: f}, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		// out of int64 range or malformed; fall back to a real so the
		// caller still gets a usable numeric value rather than an error.
		f, ferr := strconv.ParseFloat(string(raw), 64)
		if ferr == nil {
			return Token{Kind: Real, Pos: pos, Float: f}, nil
		}
		return Token{}, &SyntaxError{Pos: pos, Msg: "malformed number " + string(raw)}
	}
	return Token{Kind: Integer, Pos: pos, Int: n}, nil
}

// scanKeyword reads a bare keyword (true, false, null, obj, endobj, stream,
// endstream, startxref, R, or an unrecognized operator token such as a
// content-stream operator, which is returned as KeywordTok for callers
// outside the object parser to interpret).
func (l *Lexer) scanKeyword(pos int64) (Token, error) {
	var raw []byte
	for {
		b, err := l.PeekByte()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.ReadByte()
		raw = append(raw, b)
	}
	s := string(raw)
	switch s {
	case "true":
		return Token{Kind: Boolean, Pos: pos, Bool: true}, nil
	case "false":
		return Token{Kind: Boolean, Pos: pos, Bool: false}, nil
	case "null":
		return Token{Kind: Null, Pos: pos}, nil
	case "stream":
		return Token{Kind: StreamTok, Pos: pos}, nil
	case "endstream":
		return Token{Kind: EndStreamTok, Pos: pos}, nil
	case "endobj":
		return Token{Kind: EndObjTok, Pos: pos}, nil
	case "obj":
		return Token{Kind: ObjTok, Pos: pos}, nil
	case "startxref":
		return Token{Kind: StartXRefTok, Pos: pos}, nil
	default:
		return Token{Kind: KeywordTok, Pos: pos, Bytes: raw}, nil
	}
}
