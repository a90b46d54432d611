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
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
)

// pngColorGray and pngColorRGB are the PNG color-type codes this encoder
// produces (ISO/IEC 15948): 0 for 8-bit grayscale, 2 for 8-bit truecolor.
const (
	pngColorGray = 0
	pngColorRGB  = 2
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// encodeRasterToPNG re-encodes width x height raster samples (row-major,
// no filter bytes, channels interleaved per pixel) as a PNG image. channels
// must be 1 (gray) or 3 (RGB); this covers the DeviceGray/DeviceRGB image
// XObjects that FlateDecode, LZWDecode and the uncompressed case produce.
func encodeRasterToPNG(samples []byte, width, height, channels int) ([]byte, error) {
	colorType := byte(pngColorGray)
	if channels == 3 {
		colorType = pngColorRGB
	}

	rowBytes := width * channels
	var raw bytes.Buffer
	for y := 0; y < height; y++ {
		raw.WriteByte(0) // filter type 0: None
		start := y * rowBytes
		end := start + rowBytes
		if end > len(samples) {
			end = len(samples)
		}
		row := samples[start:end]
		raw.Write(row)
		if pad := rowBytes - len(row); pad > 0 {
			raw.Write(make([]byte, pad))
		}
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pngSignature)
	writeChunk(&out, "IHDR", encodeIHDR(width, height, 8, colorType))
	writeChunk(&out, "IDAT", idat.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes(), nil
}

// encodeGray1BitToPNG expands a packed 1-bit-per-pixel bitmap (as
// CCITTFaxDecode produces, MSB first within each byte, rows padded to a
// byte boundary) into an 8-bit grayscale PNG. A set bit is taken as white
// (255), a clear bit as black (0): the ITU-T T.4/T.6 default polarity that
// filter.DecodeCCITT returns when BlackIs1 is not set.
func encodeGray1BitToPNG(bits []byte, width, height int) ([]byte, error) {
	rowBytesIn := (width + 7) / 8
	samples := make([]byte, width*height)
	for y := 0; y < height; y++ {
		inStart := y * rowBytesIn
		if inStart+rowBytesIn > len(bits) {
			break
		}
		row := bits[inStart : inStart+rowBytesIn]
		for x := 0; x < width; x++ {
			byteIdx := x / 8
			bitIdx := 7 - uint(x%8)
			bit := (row[byteIdx] >> bitIdx) & 1
			v := byte(0)
			if bit == 1 {
				v = 255
			}
			samples[y*width+x] = v
		}
	}
	return encodeRasterToPNG(samples, width, height, 1)
}

func encodeIHDR(width, height, bitDepth int, colorType byte) []byte {
	buf := make([]byte, 13)
	binary.BigEndian.PutUint32(buf[0:4], uint32(width))
	binary.BigEndian.PutUint32(buf[4:8], uint32(height))
	buf[8] = byte(bitDepth)
	buf[9] = colorType
	buf[10] = 0 // compression method: deflate
	buf[11] = 0 // filter method: adaptive (we only ever emit filter type 0)
	buf[12] = 0 // interlace method: none
	return buf
}

func writeChunk(out *bytes.Buffer, typ string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	out.Write(length[:])

	typAndData := make([]byte, 0, len(typ)+len(data))
	typAndData = append(typAndData, typ...)
	typAndData = append(typAndData, data...)
	out.Write(typAndData)

	crc := crc32.ChecksumIEEE(typAndData)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	out.Write(crcBuf[:])
}
