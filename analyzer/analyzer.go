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
	pdf "github.com/corefile/pdfcore"
	"github.com/corefile/pdfcore/model"
)

// Analyze walks page's content streams and classifies it as Scanned, Text
// or Mixed. The blank-space ratio is whatever area
// neither text nor image area accounts for; it is set to 0 when the text
// and image ratios together exceed the full page.
func Analyze(doc *model.Document, page *model.ParsedPage, opt Options) (*ContentAnalysis, error) {
	acc := &areaAccumulator{pageArea: page.Width * page.Height}

	streams, err := doc.GetPageContentStreams(page)
	if err != nil {
		return nil, err
	}

	resources := doc.GetPageResources(page)
	if resources == nil {
		resources = pdf.Dict{}
	}

	for _, data := range streams {
		if err := scanContentStream(doc, data, resources, acc, opt); err != nil {
			return nil, err
		}
	}

	textRatio := clampRatio(acc.textArea)
	imageRatio := clampRatio(acc.imageArea)
	blank := 1 - textRatio - imageRatio
	if blank < 0 {
		blank = 0
	}

	return &ContentAnalysis{
		PageType:          Classify(textRatio, imageRatio, opt),
		TextRatio:         textRatio,
		ImageRatio:        imageRatio,
		BlankSpaceRatio:   blank,
		TextFragmentCount: acc.textFragments,
		ImageCount:        acc.imageCount,
		CharacterCount:    acc.characters,
	}, nil
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
