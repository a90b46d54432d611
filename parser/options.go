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

// Package parser implements the recursive-descent object parser (design
// section 4.2) and the stream-recovery procedure it delegates to (section
// 4.3).
package parser

// WarningSink receives diagnostic messages about recovered anomalies (a
// stream whose Length disagreed with the truth, a missing Length key under
// lenient parsing, and so on). Callers that don't care can leave it nil.
type WarningSink interface {
	Warn(message string)
}

// WarningFunc adapts a plain function to WarningSink.
type WarningFunc func(string)

func (f WarningFunc) Warn(message string) { f(message) }

// DefaultMaxRecoveryBytes is the cap for FindKeywordAhead used by most
// recovery paths.
const DefaultMaxRecoveryBytes = 1 << 20 // 1 MiB

// IndirectLengthMaxBytes is the elevated cap used when a stream's Length is
// an indirect reference, because no size bound is known in advance.
const IndirectLengthMaxBytes = 10 << 20 // 10 MiB

// MissingLengthMaxBytes is the local cap used to scan for `endstream` when
// the Length key is absent entirely.
const MissingLengthMaxBytes = 64 << 10 // 64 KiB

// Options controls the object parser's behavior.
type Options struct {
	// LenientStreams enables stream-length recovery and accepting an
	// indirect reference (or an entirely absent key) as a stream's Length.
	LenientStreams bool

	// MaxRecoveryBytes caps FindKeywordAhead for most recovery paths.
	// Zero means DefaultMaxRecoveryBytes.
	MaxRecoveryBytes int

	// CollectWarnings, if true, sends recovery anomalies to Warnings.
	CollectWarnings bool

	// Warnings receives messages when CollectWarnings is true. If nil,
	// warnings are silently dropped even when CollectWarnings is true.
	Warnings WarningSink
}

func (o Options) maxRecoveryBytes() int {
	if o.MaxRecoveryBytes > 0 {
		return o.MaxRecoveryBytes
	}
	return DefaultMaxRecoveryBytes
}

func (o Options) warn(message string) {
	if o.CollectWarnings && o.Warnings != nil {
		o.Warnings.Warn(message)
	}
}
