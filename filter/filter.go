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

// Package filter implements decoders (and, where useful, encoders) for the
// stream filters a PDF core needs to understand, including the ones the
// image-extraction path relies on: FlateDecode, LZWDecode, ASCIIHexDecode,
// ASCII85Decode, RunLengthDecode, CCITTFaxDecode and DCTDecode.
package filter

import (
	"errors"
	"fmt"

	pdf "github.com/corefile/pdfcore"
)

// Info describes one entry of a stream's /Filter chain, paired with its
// corresponding /DecodeParms dictionary.
type Info struct {
	Name  pdf.Name
	Parms pdf.Dict
}

// Chain extracts the ordered list of filters a stream dictionary names,
// pairing each with its DecodeParms entry. A stream with no /Filter key
// returns a nil, nil slice.
func Chain(dict pdf.Dict) ([]Info, error) {
	parms := dict["DecodeParms"]
	var chain []Info
	switch f := dict["Filter"].(type) {
	case nil:
		// pass
	case pdf.Array:
		pa, _ := parms.(pdf.Array)
		for i, fi := range f {
			name, ok := fi.(pdf.Name)
			if !ok {
				return nil, errors.New("filter: /Filter array entry is not a name")
			}
			var pDict pdf.Dict
			if len(pa) > i {
				pDict, _ = pa[i].(pdf.Dict)
			}
			chain = append(chain, Info{Name: name, Parms: pDict})
		}
	case pdf.Name:
		pDict, _ := parms.(pdf.Dict)
		chain = append(chain, Info{Name: f, Parms: pDict})
	default:
		return nil, errors.New("filter: invalid /Filter field")
	}
	return chain, nil
}

// Decode applies every filter named in dict's /Filter chain to data, in
// order, and returns the fully decoded payload. A stream with no filters is
// returned unchanged.
func Decode(dict pdf.Dict, data []byte) ([]byte, error) {
	chain, err := Chain(dict)
	if err != nil {
		return nil, err
	}
	for _, info := range chain {
		data, err = decodeOne(info, data)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: %w", info.Name, err)
		}
	}
	return data, nil
}

func decodeOne(info Info, data []byte) ([]byte, error) {
	switch info.Name {
	case "FlateDecode", "Fl":
		return decodeFlate(info.Parms, data)
	case "LZWDecode", "LZW":
		return decodeLZW(info.Parms, data)
	case "ASCIIHexDecode", "AHx":
		return decodeASCIIHex(data)
	case "ASCII85Decode", "A85":
		return decodeASCII85(data)
	case "RunLengthDecode", "RL":
		return decodeRunLength(data)
	case "DCTDecode", "DCT":
		return data, nil // consumers decode JPEG directly; see analyzer
	case "CCITTFaxDecode", "CCF":
		return nil, fmt.Errorf("CCITTFaxDecode requires image parameters; use DecodeCCITT")
	default:
		return nil, fmt.Errorf("unsupported filter %q", info.Name)
	}
}

// LastImageFilter returns the name and parameters of the final filter in
// dict's chain, which is the one that determines how the analyzer must
// interpret the decoded bytes (raw samples, JPEG, or CCITT-encoded bits).
func LastImageFilter(dict pdf.Dict) (pdf.Name, pdf.Dict, error) {
	chain, err := Chain(dict)
	if err != nil {
		return "", nil, err
	}
	if len(chain) == 0 {
		return "", nil, nil
	}
	last := chain[len(chain)-1]
	return last.Name, last.Parms, nil
}
