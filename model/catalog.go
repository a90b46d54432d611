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
	"golang.org/x/text/language"

	pdf "github.com/corefile/pdfcore"
)

// SetLanguage records tag as the document catalog's /Lang entry (ISO
// 32000-2 7.7.2: "the natural language for all text in the document except
// where overridden"), encoded as its canonical BCP 47 tag string. The
// catalog must already exist (SetCatalog or BuildCatalog).
func (d *Document) SetLanguage(tag language.Tag) error {
	catalog, err := d.Resolve(d.catalog)
	if err != nil {
		return err
	}
	dict, ok := catalog.(pdf.Dict)
	if !ok {
		return &pdf.ProcessingError{Message: "document catalog is not a dictionary"}
	}
	dict["Lang"] = pdf.String(tag.String())
	return nil
}

// Language returns the document catalog's /Lang entry parsed as a BCP 47
// language tag. It returns language.Und, without error, when the catalog
// has no /Lang entry: an absent language is valid PDF, not a defect.
func (d *Document) Language() (language.Tag, error) {
	catalog, err := d.Resolve(d.catalog)
	if err != nil {
		return language.Und, err
	}
	dict, ok := catalog.(pdf.Dict)
	if !ok {
		return language.Und, &pdf.ProcessingError{Message: "document catalog is not a dictionary"}
	}
	raw, ok := dict["Lang"].(pdf.String)
	if !ok || len(raw) == 0 {
		return language.Und, nil
	}
	tag, err := language.Parse(string(raw))
	if err != nil {
		return language.Und, &pdf.SyntaxError{Message: "malformed /Lang value: " + err.Error()}
	}
	return tag, nil
}
