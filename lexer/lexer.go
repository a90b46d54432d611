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

// Package lexer turns a PDF byte stream into tokens, tracking byte
// position and offering the small set of byte-level primitives the object
// parser and the stream-recovery code need (section 4.1 of the design).
//
// The lexer never seeks the underlying reader backward: the "scan forward
// for a keyword" primitive (FindKeywordAhead) buffers candidate bytes in
// memory and replays them from that buffer rather than rewinding the
// source, because seeking backward has been observed to duplicate bytes on
// some readers.
package lexer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Kind identifies the syntactic category of a Token.
type Kind int

const (
	Null Kind = iota
	Boolean
	Integer
	Real
	String
	HexString
	NameTok
	ArrayStart
	ArrayEnd
	DictStart
	DictEnd
	StreamTok
	EndStreamTok
	EndObjTok
	ObjTok
	StartXRefTok
	Comment
	Eof
	KeywordTok
)

// Token is a single lexical unit together with its source position and,
// depending on Kind, its decoded payload.
type Token struct {
	Kind  Kind
	Pos   int64
	Int   int64
	Float float64
	Bool  bool
	Bytes []byte // String/HexString payload, or Name/Keyword text as bytes
}

func (t Token) String() string {
	switch t.Kind {
	case Integer:
		return fmt.Sprintf("Integer(%d)", t.Int)
	case Real:
		return fmt.Sprintf("Real(%g)", t.Float)
	case NameTok:
		return fmt.Sprintf("Name(%s)", t.Bytes)
	case String, HexString:
		return fmt.Sprintf("String(%q)", t.Bytes)
	case KeywordTok:
		return fmt.Sprintf("Keyword(%s)", t.Bytes)
	case Eof:
		return "EOF"
	default:
		return kindNames[t.Kind]
	}
}

var kindNames = map[Kind]string{
	Null:         "null",
	Boolean:      "boolean",
	ArrayStart:   "[",
	ArrayEnd:     "]",
	DictStart:    "<<",
	DictEnd:      ">>",
	StreamTok:    "stream",
	EndStreamTok: "endstream",
	EndObjTok:    "endobj",
	ObjTok:       "obj",
	StartXRefTok: "startxref",
	Comment:      "comment",
	Eof:          "eof",
}

// Lexer tokenizes a PDF byte stream. Whitespace, per PDF spec, is any of
// SP HT LF CR FF NUL.
type Lexer struct {
	r       *bufio.Reader
	pos     int64
	pending []Token // push-back stack, depth <= 3 in practice
	unread  []byte  // raw byte push-back queue, drained before r
}

// New creates a lexer reading from r. r is consumed strictly forward:
// Lexer never calls Seek.
func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReaderSize(r, 32*1024)}
}

// Position returns the byte offset of the next unconsumed byte.
func (l *Lexer) Position() int64 {
	return l.pos
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// ReadByte reads and returns a single byte, advancing the position. Bytes
// previously returned to the stream via pushBackBytes are drained first.
func (l *Lexer) ReadByte() (byte, error) {
	if len(l.unread) > 0 {
		b := l.unread[0]
		l.unread = l.unread[1:]
		l.pos++
		return b, nil
	}
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

// PeekByte returns the next byte without consuming it. At end of input it
// returns io.EOF.
func (l *Lexer) PeekByte() (byte, error) {
	if len(l.unread) > 0 {
		return l.unread[0], nil
	}
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// pushBackBytes returns bs to the front of the stream, as if it had never
// been read: the next ReadByte/PeekByte/ReadBytes calls see bs first, then
// whatever follows it in the underlying reader. Used by FindKeywordAhead
// to un-consume a matched keyword without seeking the underlying source
// backward.
func (l *Lexer) pushBackBytes(bs []byte) {
	if len(bs) == 0 {
		return
	}
	l.unread = append(append([]byte(nil), bs...), l.unread...)
	l.pos -= int64(len(bs))
}

// ReadBytes reads and returns exactly n bytes.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n && len(l.unread) > 0 {
		buf[read] = l.unread[0]
		l.unread = l.unread[1:]
		read++
		l.pos++
	}
	for read < n {
		m, err := l.r.Read(buf[read:])
		read += m
		l.pos += int64(m)
		if err != nil {
			return buf[:read], err
		}
	}
	return buf, nil
}

// SkipWhitespace consumes whitespace and comments (a comment runs from '%'
// to end of line, inclusive of neither the newline).
func (l *Lexer) SkipWhitespace() {
	for {
		b, err := l.PeekByte()
		if err != nil {
			return
		}
		if isWhitespace(b) {
			l.ReadByte()
			continue
		}
		if b == '%' {
			for {
				b, err := l.PeekByte()
				if err != nil || b == '\n' || b == '\r' {
					break
				}
				l.ReadByte()
			}
			continue
		}
		return
	}
}

// ReadNewline consumes exactly one EOL sequence (LF, CR, or CR LF) starting
// at the current position, as required immediately after the `stream`
// keyword. It returns an error if no EOL is present.
func (l *Lexer) ReadNewline() error {
	b, err := l.ReadByte()
	if err != nil {
		return fmt.Errorf("lexer: expected newline: %w", err)
	}
	switch b {
	case '\n':
		return nil
	case '\r':
		if next, err := l.PeekByte(); err == nil && next == '\n' {
			l.ReadByte()
		}
		return nil
	default:
		return fmt.Errorf("lexer: expected newline at byte %d, found %q", l.pos-1, b)
	}
}

// ExpectKeyword consumes exactly the bytes of kw, which must appear next in
// the stream (after optional leading whitespace is NOT skipped here --
// callers that want that should call SkipWhitespace first).
func (l *Lexer) ExpectKeyword(kw string) error {
	for i := 0; i < len(kw); i++ {
		b, err := l.ReadByte()
		if err != nil {
			return fmt.Errorf("lexer: expected keyword %q: %w", kw, err)
		}
		if b != kw[i] {
			return fmt.Errorf("lexer: expected keyword %q at byte %d, mismatch at offset %d", kw, l.pos-int64(i)-1, i)
		}
	}
	return nil
}

// FindKeywordAhead scans forward, without consuming past the match, for the
// literal byte sequence kw. It returns the bytes that preceded the match
// (which the caller typically appends to a stream payload being
// recovered), true if found, and consumes through just before kw so a
// subsequent ExpectKeyword(kw) succeeds. maxBytes bounds the scan; if kw is
// not found within maxBytes bytes, found is false and skipped contains
// everything scanned so far (the caller should treat this as a recovery
// failure).
//
// This never seeks backward: every byte read is appended to an in-memory
// buffer and the match test compares that buffer's tail against kw, so a
// byte that turns out not to complete a match is still available to start
// the next candidate match (a naive "discard the whole failed candidate"
// restart would miss an overlapping match, e.g. kw "endstream" inside
// "endendstream": the failed attempt starting at the first "end" must not
// discard the "e" at which the real match begins). Once a match is found,
// the matched bytes themselves -- already consumed from the underlying
// reader while testing the tail of the buffer -- are handed back via
// pushBackBytes so the reader ends up positioned immediately before kw,
// exactly as the docstring promises and ExpectKeyword(kw) requires.
func (l *Lexer) FindKeywordAhead(kw string, maxBytes int) (skipped []byte, found bool, err error) {
	if len(kw) == 0 {
		return nil, true, nil
	}
	kwBytes := []byte(kw)
	buf := make([]byte, 0, len(kw)+64)
	for scanned := 0; scanned < maxBytes; scanned++ {
		b, rerr := l.ReadByte()
		if rerr != nil {
			return buf, false, nil
		}
		buf = append(buf, b)
		if len(buf) >= len(kwBytes) && bytes.Equal(buf[len(buf)-len(kwBytes):], kwBytes) {
			matched := buf[len(buf)-len(kwBytes):]
			l.pushBackBytes(matched)
			return buf[:len(buf)-len(kwBytes)], true, nil
		}
	}
	return buf, false, nil
}

// PushBack returns a previously read token to the front of the stream. The
// parser uses this for the integer/reference lookahead (spec §4.2): up to
// two tokens may be pushed back.
func (l *Lexer) PushBack(t Token) {
	l.pending = append(l.pending, t)
}

// Next returns the next token, consuming pushed-back tokens first.
func (l *Lexer) Next() (Token, error) {
	if n := len(l.pending); n > 0 {
		t := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return t, nil
	}
	return l.scan()
}

func (l *Lexer) scan() (Token, error) {
	l.SkipWhitespace()
	pos := l.pos
	b, err := l.PeekByte()
	if err != nil {
		return Token{Kind: Eof, Pos: pos}, nil
	}

	switch {
	case b == '[':
		l.ReadByte()
		return Token{Kind: ArrayStart, Pos: pos}, nil
	case b == ']':
		l.ReadByte()
		return Token{Kind: ArrayEnd, Pos: pos}, nil
	case b == '<':
		l.ReadByte()
		next, err := l.PeekByte()
		if err == nil && next == '<' {
			l.ReadByte()
			return Token{Kind: DictStart, Pos: pos}, nil
		}
		return l.scanHexString(pos)
	case b == '>':
		l.ReadByte()
		next, err := l.PeekByte()
		if err == nil && next == '>' {
			l.ReadByte()
			return Token{Kind: DictEnd, Pos: pos}, nil
		}
		return Token{}, &SyntaxError{Pos: pos, Msg: "unexpected '>'"}
	case b == '(':
		return l.scanLiteralString(pos)
	case b == '/':
		return l.scanName(pos)
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return l.scanNumber(pos)
	case isRegular(b):
		return l.scanKeyword(pos)
	default:
		l.ReadByte()
		return Token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected byte %#x", b)}
	}
}

func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

// SyntaxError is a minimal lexical error; package parser wraps this into
// the richer pdf.SyntaxError when surfacing it to callers.
type SyntaxError struct {
	Pos int64
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("lexer: syntax error at byte %d: %s", e.Pos, e.Msg)
}
