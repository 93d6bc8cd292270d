// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
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

package pdf

// Version identifies a PDF file format version.  This module only emits
// PDF 1.7; the type exists so the header string and future version gating
// have a single home.
type Version int

const (
	// V1_7 is the only version this module emits.
	V1_7 Version = 17
)

func (v Version) String() string {
	switch v {
	case V1_7:
		return "1.7"
	default:
		return "1.7"
	}
}

// header is the fixed byte sequence that opens every file this module
// writes: the version comment followed by a binary marker comment so
// naive text-mode transfers are detected.
var header = []byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
