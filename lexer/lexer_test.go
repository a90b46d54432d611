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
	"strings"
	"testing"
)

func TestScanTokenKinds(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
	}{
		{"null", Null},
		{"true", Boolean},
		{"false", Boolean},
		{"123", Integer},
		{"-17", Integer},
		{"3.14", Real},
		{"-.5", Real},
		{"(hello)", String},
		{"<68656c6c6f>", HexString},
		{"/Type", NameTok},
		{"[", ArrayStart},
		{"]", ArrayEnd},
		{"<<", DictStart},
		{">>", DictEnd},
		{"stream", StreamTok},
		{"endstream", EndStreamTok},
		{"obj", ObjTok},
		{"endobj", EndObjTok},
		{"startxref", StartXRefTok},
	}
	for _, c := range cases {
		lx := New(strings.NewReader(c.in))
		tok, err := lx.Next()
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if tok.Kind != c.kind {
			t.Errorf("%q: got kind %v, want %v", c.in, tok.Kind, c.kind)
		}
	}
}

func TestScanLiteralStringEscapes(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{`(hello)`, "hello"},
		{`(he\(ll\)o)`, "he(ll)o"},
		{`(nested (parens) ok)`, "nested (parens) ok"},
		{"(line\\\ncontinuation)", "linecontinuation"},
		{`(\101\102\103)`, "ABC"},
		{`(tab\tend)`, "tab\tend"},
	}
	for _, c := range cases {
		lx := New(strings.NewReader(c.in))
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if string(tok.Bytes) != c.out {
			t.Errorf("%q: got %q, want %q", c.in, tok.Bytes, c.out)
		}
	}
}

func TestScanHexString(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"<68656C6C6F>", "hello"},
		{"<68 65 6C 6C 6F>", "hello"},
		{"<68656C7>", "help"}, // odd digit count pads with trailing 0
		{"<>", ""},
	}
	for _, c := range cases {
		lx := New(strings.NewReader(c.in))
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if string(tok.Bytes) != c.out {
			t.Errorf("%q: got %q, want %q", c.in, tok.Bytes, c.out)
		}
	}
}

func TestScanNameEscapes(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"/Type", "Type"},
		{"/A#20B", "A B"},
		{"/Name1", "Name1"},
		{"/A;Name_With-Various***Characters?", "A;Name_With-Various***Characters?"},
	}
	for _, c := range cases {
		lx := New(strings.NewReader(c.in))
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if string(tok.Bytes) != c.out {
			t.Errorf("%q: got %q, want %q", c.in, tok.Bytes, c.out)
		}
	}
}

func TestPushBack(t *testing.T) {
	lx := New(strings.NewReader("1 2 R"))
	first, err := lx.Next()
	if err != nil || first.Kind != Integer || first.Int != 1 {
		t.Fatalf("unexpected first token: %+v, %v", first, err)
	}
	second, err := lx.Next()
	if err != nil || second.Kind != Integer || second.Int != 2 {
		t.Fatalf("unexpected second token: %+v, %v", second, err)
	}
	lx.PushBack(second)
	lx.PushBack(first)

	replay1, _ := lx.Next()
	if replay1.Int != 1 {
		t.Fatalf("expected replayed 1, got %+v", replay1)
	}
	replay2, _ := lx.Next()
	if replay2.Int != 2 {
		t.Fatalf("expected replayed 2, got %+v", replay2)
	}
	third, err := lx.Next()
	if err != nil || third.Kind != KeywordTok || string(third.Bytes) != "R" {
		t.Fatalf("unexpected third token: %+v, %v", third, err)
	}
}

func TestFindKeywordAhead(t *testing.T) {
	body := "some junk data here endstream tail"
	lx := New(strings.NewReader(body))
	skipped, found, err := lx.FindKeywordAhead("endstream", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected to find endstream")
	}
	if string(skipped) != "some junk data here " {
		t.Errorf("skipped = %q, want %q", skipped, "some junk data here ")
	}
	if err := lx.ExpectKeyword("endstream"); err != nil {
		t.Fatalf("ExpectKeyword after FindKeywordAhead: %v", err)
	}
	rest, _ := lx.ReadBytes(5)
	if string(rest) != " tail" {
		t.Errorf("rest = %q, want %q", rest, " tail")
	}
}

func TestFindKeywordAheadNotFound(t *testing.T) {
	lx := New(strings.NewReader("no match in here"))
	skipped, found, err := lx.FindKeywordAhead("endstream", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("did not expect a match")
	}
	if string(skipped) != "no match in here" {
		t.Errorf("skipped = %q, want original input back unchanged", skipped)
	}
}

func TestFindKeywordAheadPartialMatchRecovered(t *testing.T) {
	// "ends" is a partial match for "endstream" that fails partway
	// through; every byte it consumed must still land in skipped.
	lx := New(strings.NewReader("ends up elsewhere endstream"))
	skipped, found, err := lx.FindKeywordAhead("endstream", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected eventual match")
	}
	if string(skipped) != "ends up elsewhere " {
		t.Errorf("skipped = %q, want %q", skipped, "ends up elsewhere ")
	}
}

func TestFindKeywordAheadOverlappingFalseStart(t *testing.T) {
	// "endendstream" contains a failed match starting at offset 0 ("end"
	// followed by 'e' instead of 's') whose own tail, at offset 3, begins
	// the real match. A matcher that discards the whole failed candidate
	// on mismatch instead of re-testing its tail would miss this.
	lx := New(strings.NewReader("endendstream"))
	skipped, found, err := lx.FindKeywordAhead("endstream", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected to find endstream inside endendstream")
	}
	if string(skipped) != "end" {
		t.Errorf("skipped = %q, want %q", skipped, "end")
	}
}

func TestReadNewline(t *testing.T) {
	cases := []string{"\n", "\r", "\r\n"}
	for _, c := range cases {
		lx := New(strings.NewReader(c + "rest"))
		if err := lx.ReadNewline(); err != nil {
			t.Errorf("%q: %v", c, err)
		}
		rest, _ := lx.ReadBytes(4)
		if string(rest) != "rest" {
			t.Errorf("%q: rest = %q", c, rest)
		}
	}
}

func TestSkipWhitespaceSkipsComments(t *testing.T) {
	lx := New(strings.NewReader("  % a comment\n  123"))
	lx.SkipWhitespace()
	tok, err := lx.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != Integer || tok.Int != 123 {
		t.Errorf("got %+v", tok)
	}
}

func TestPosition(t *testing.T) {
	lx := New(strings.NewReader("abc 123"))
	if lx.Position() != 0 {
		t.Fatalf("expected initial position 0, got %d", lx.Position())
	}
	tok, err := lx.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Pos != 0 {
		t.Errorf("expected first token at position 0, got %d", tok.Pos)
	}
	tok2, err := lx.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok2.Pos != 4 {
		t.Errorf("expected second token at position 4, got %d", tok2.Pos)
	}
}
