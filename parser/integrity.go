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
	"bytes"
	"io"
)

// IntegrityReport summarizes a cheap, full-parse-free scan of a candidate
// PDF file: enough to decide whether a full Document Read is worth
// attempting, or whether the caller should go straight to recovery.
type IntegrityReport struct {
	HasValidHeader bool
	HasStartXRef   bool
	HasXRefMarker  bool
	HasTrailer     bool
	HasEOFMarker   bool
	EstimatedObjects int
	Issues         []string
}

// headerScanWindow and tailScanWindow bound how much of a (potentially
// huge) file QuickCheck reads: the header marker always appears within the
// first kilobyte in a conforming file, and startxref/trailer/%%EOF always
// appear within the last few kilobytes.
const (
	headerScanWindow = 1024
	tailScanWindow   = 4096
	sampleScanWindow = 512 << 10
)

// QuickCheck scans r for the structural landmarks of a PDF file --- header,
// startxref, an xref table or stream, a trailer, and a closing %%EOF ---
// without running the lexer or parser. It is a triage step: a file that
// fails several of these checks is a better candidate for the recovery path
// (package model's linear-scan fallback) than for a first attempt at a
// full, trusting parse.
func QuickCheck(r io.ReaderAt, size int64) *IntegrityReport {
	report := &IntegrityReport{}

	if size < 20 {
		report.Issues = append(report.Issues, "file too small to be a valid PDF")
		return report
	}

	headerLen := headerScanWindow
	if int64(headerLen) > size {
		headerLen = int(size)
	}
	header := make([]byte, headerLen)
	io.NewSectionReader(r, 0, int64(headerLen)).Read(header)
	if bytes.Contains(header, []byte("%PDF-")) {
		report.HasValidHeader = true
	} else {
		report.Issues = append(report.Issues, "missing %PDF- header in first 1024 bytes")
	}

	tailLen := int64(tailScanWindow)
	if tailLen > size {
		tailLen = size
	}
	tail := make([]byte, tailLen)
	io.NewSectionReader(r, size-tailLen, tailLen).Read(tail)

	if bytes.Contains(tail, []byte("%%EOF")) {
		report.HasEOFMarker = true
	} else {
		report.Issues = append(report.Issues, "missing %%EOF marker; file may be truncated")
	}
	if bytes.Contains(tail, []byte("startxref")) {
		report.HasStartXRef = true
	} else {
		report.Issues = append(report.Issues, "missing startxref marker")
	}
	if bytes.Contains(tail, []byte("xref")) || bytes.Contains(tail, []byte("/Type/XRef")) || bytes.Contains(tail, []byte("/Type /XRef")) {
		report.HasXRefMarker = true
	} else {
		report.Issues = append(report.Issues, "no xref table or xref stream marker found near end of file")
	}
	if bytes.Contains(tail, []byte("trailer")) || report.HasXRefMarker {
		report.HasTrailer = true
	} else {
		report.Issues = append(report.Issues, "no trailer found")
	}

	sampleLen := int64(sampleScanWindow)
	if sampleLen > size {
		sampleLen = size
	}
	sample := make([]byte, sampleLen)
	io.NewSectionReader(r, 0, sampleLen).Read(sample)
	count := bytes.Count(sample, []byte(" obj"))
	if size > sampleLen && sampleLen > 0 {
		count = int(float64(count) * float64(size) / float64(sampleLen))
	}
	report.EstimatedObjects = count

	return report
}

// Valid reports whether the scan found enough structure to justify a
// normal parse attempt: a present header plus either a startxref or an
// xref marker. A file missing these should go straight to recovery.
func (r *IntegrityReport) Valid() bool {
	return r.HasValidHeader && (r.HasStartXRef || r.HasXRefMarker)
}
