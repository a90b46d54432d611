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

// Package analyzer classifies a page as scanned, text or mixed and
// extracts an embeddable raster image from a page's XObject graph. It
// exercises the document model's resolution contract and the filter
// package's stream decoding end to end.
package analyzer

// Options configures the classifier and image extractor. Zero value is
// not meaningful; callers should start from DefaultOptions.
type Options struct {
	// MinTextFragmentSize is the minimum character count a text-showing
	// fragment must have to count toward the text area.
	MinTextFragmentSize int

	// MinImageSize is the minimum width and height, in pixels, an image
	// XObject must have (in both dimensions) to count toward the image
	// area.
	MinImageSize uint32

	// ScannedThreshold is the image_ratio a page must exceed, combined
	// with text_ratio < 0.1, to classify as Scanned.
	ScannedThreshold float64

	// TextThreshold is the text_ratio a page must exceed, combined with
	// image_ratio < 0.2, to classify as Text.
	TextThreshold float64
}

// DefaultOptions returns the classifier's conservative defaults.
func DefaultOptions() Options {
	return Options{
		MinTextFragmentSize: 3,
		MinImageSize:        50,
		ScannedThreshold:    0.8,
		TextThreshold:       0.7,
	}
}
