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

// Package font implements embedding of TrueType/OpenType fonts as PDF
// Type0/CIDFontType2 composite fonts: parsing the font program, tracking
// per-page glyph usage, subsetting, and building the font's indirect
// object graph (descriptor, CIDFont dict, ToUnicode CMap, Type0 dict).
package font

import (
	"bytes"

	extsfnt "seehuhn.de/go/sfnt"

	"go.pdfx.dev/pdfx/font/sfnt"
)

// GlyphID enumerates the glyphs of a font; 0 is always notdef.
type GlyphID uint16

// Glyph is one element of a shaped run: the glyph to draw, its advance
// width (in text-space units, i.e. already scaled to the font's
// UnitsPerEm), and the source text it represents (used by the Glyph-Usage
// Collector when available, in preference to the font's reverse cmap).
type Glyph struct {
	GID     GlyphID
	Advance float64
	Text    string
}

// Builtin identifies one of the 14 standard PDF fonts, which require no
// embedding.
type Builtin string

const (
	TimesRoman Builtin = "Times-Roman"
	Helvetica  Builtin = "Helvetica"
	Courier    Builtin = "Courier"
)

// ParsedFont is an external font after parsing: the original bytes, the
// decoded sfnt tables, and precomputed per-glyph advance widths in
// 1000-unit em space (the space PDF's /Widths and /W arrays use).
//
// PostscriptName/IsFixedPitch/IsSerif/IsItalic/ItalicAngle/CapHeight1000 are
// filled in on a best-effort basis from a second, independent decode of the
// same font program via seehuhn.de/go/sfnt, which reads the "post"/"OS/2"
// tables this module's own directory parser doesn't: the font subsetter
// never needs them, but the FontDescriptor dict is more accurate with them
// than without. A font program this module's own parser accepts but
// seehuhn.de/go/sfnt rejects (or vice versa) just leaves these at their
// zero values; it never fails Parse.
type ParsedFont struct {
	Name       string
	Data       []byte
	Sfnt       *sfnt.Font
	UnitsPerEm uint16

	PostscriptName string
	IsFixedPitch   bool
	IsSerif        bool
	IsItalic       bool
	ItalicAngle    float64
	CapHeight1000  float64
}

// Parse decodes a TrueType/OpenType font program.
func Parse(name string, data []byte) (*ParsedFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	pf := &ParsedFont{Name: name, Data: data, Sfnt: f, UnitsPerEm: f.Head.UnitsPerEm}
	enrichFromExternalSfnt(pf, data)
	return pf, nil
}

// enrichFromExternalSfnt fills in the descriptor fields this module's own
// directory parser has no table support for. Best-effort: any failure just
// leaves them unset.
func enrichFromExternalSfnt(pf *ParsedFont, data []byte) {
	info, err := extsfnt.Read(bytes.NewReader(data))
	if err != nil {
		return
	}
	pf.PostscriptName = info.PostscriptName()
	pf.IsFixedPitch = info.IsFixedPitch()
	pf.IsSerif = info.IsSerif
	pf.IsItalic = info.IsItalic
	pf.ItalicAngle = info.ItalicAngle
	upm := float64(info.UnitsPerEm)
	if upm == 0 {
		upm = 1000
	}
	pf.CapHeight1000 = float64(info.CapHeight) * 1000 / upm
}

// AdvanceWidth1000 returns a glyph's advance width scaled to 1000 units
// per em, the unit PDF widths arrays use regardless of the font's native
// UnitsPerEm.
func (pf *ParsedFont) AdvanceWidth1000(gid GlyphID) float64 {
	if int(gid) >= len(pf.Sfnt.Hmtx.Advance) {
		return 0
	}
	upm := float64(pf.UnitsPerEm)
	if upm == 0 {
		upm = 1000
	}
	return float64(pf.Sfnt.Hmtx.Advance[gid]) * 1000 / upm
}

// ReverseLookup returns the smallest Unicode code point mapping to gid
// via the font's cmap table. The parameter is a plain uint16 rather than
// GlyphID so *ParsedFont satisfies glyphuse.ReverseLookup directly.
func (pf *ParsedFont) ReverseLookup(gid uint16) (rune, bool) {
	if pf.Sfnt.Cmap == nil {
		return 0, false
	}
	return pf.Sfnt.Cmap.ReverseLookup(gid)
}
