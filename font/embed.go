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

package font

import (
	"go.pdfx.dev/pdfx"
	"go.pdfx.dev/pdfx/font/cmap"
)

// Descriptor carries the metrics a PDF font descriptor dictionary records.
// See section 9.8.1 of ISO 32000-2.
type Descriptor struct {
	FontName     string
	IsFixedPitch bool
	IsSerif      bool
	IsSymbolic   bool
	IsItalic     bool
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        float64
	FontBBox     [4]float64
}

// Flags returns the PDF font descriptor /Flags bitfield for this
// descriptor. Symbolic and Nonsymbolic are mutually exclusive; this module
// always marks embedded CIDFontType2 fonts symbolic since they are
// addressed by CID, not by a named character encoding.
func (d *Descriptor) Flags() int {
	var f int
	if d.IsFixedPitch {
		f |= 1 << 0
	}
	if d.IsSerif {
		f |= 1 << 1
	}
	f |= 1 << 2 // Symbolic
	if d.IsItalic {
		f |= 1 << 6
	}
	return f
}

// Embedded is the result of embedding one external font in the document:
// the allocated indirect references plus the data needed to encode text
// runs into the page's content stream (the glyph-id-to-subset-glyph-id
// remap produced by subsetting).
type Embedded struct {
	FontDictRef pdf.Reference
	Remap       map[uint16]uint16 // original glyph id -> subset (CID) glyph id; identity if not subsetting
}

// EmbedOptions controls how [Embed] builds the font's object graph.
type EmbedOptions struct {
	Subset     bool // run the Font Subsetter; false embeds the full font
	UsedGlyphs map[uint16]bool

	// ToUnicodeMap maps each used glyph to a Unicode code point, keyed by
	// the font's *original* glyph id (the Glyph-Usage Collector's native
	// output; the same space as UsedGlyphs). Embed translates it through
	// the subsetter's remap before writing the ToUnicode CMap, since the
	// CMap's entries must use subset glyph ids.
	ToUnicodeMap map[uint16]rune
}

// Embed builds and writes the complete object graph for one external font:
// font-file stream, descriptor, CIDFont dict, ToUnicode CMap, and the
// Type0 font dict, in that dependency order (leaves first), per §4.6 of
// the object-graph builder's fixed emission order.
func Embed(w pdf.Putter, pf *ParsedFont, opts EmbedOptions) (*Embedded, error) {
	var fontData []byte
	var remap map[uint16]uint16
	var numGlyphs int

	desc := descriptorFor(pf)

	if opts.Subset && pf.Sfnt.CanSubset() {
		sub, err := pf.Sfnt.SubsetGlyphs(opts.UsedGlyphs, subsetPSName(desc.FontName))
		if err != nil {
			return nil, pdfErrorf(pdf.ErrFontSubset, "subsetting %s: %v", pf.Name, err)
		}
		fontData = sub.Data
		remap = sub.OldToNew
		numGlyphs = sub.NumGlyphs
	} else {
		fontData = pf.Data
		remap = identityRemap(pf.Sfnt.NumGlyphs())
		numGlyphs = pf.Sfnt.NumGlyphs()
	}

	fontFileRef := w.Alloc()
	fontFileStream, err := w.OpenStream(fontFileRef, pdf.Dict{
		"Length1": pdf.Integer(len(fontData)),
	})
	if err != nil {
		return nil, err
	}
	if _, err := fontFileStream.Write(fontData); err != nil {
		return nil, err
	}
	if err := fontFileStream.Close(); err != nil {
		return nil, err
	}

	descRef := w.Alloc()
	descDict := pdf.Dict{
		"Type":        pdf.Name("FontDescriptor"),
		"FontName":    pdf.Name(desc.FontName),
		"Flags":       pdf.Integer(desc.Flags()),
		"FontBBox":    pdf.Array{pdf.Real(desc.FontBBox[0]), pdf.Real(desc.FontBBox[1]), pdf.Real(desc.FontBBox[2]), pdf.Real(desc.FontBBox[3])},
		"ItalicAngle": pdf.Real(desc.ItalicAngle),
		"Ascent":      pdf.Real(desc.Ascent),
		"Descent":     pdf.Real(desc.Descent),
		"CapHeight":   pdf.Real(desc.CapHeight),
		"StemV":       pdf.Real(desc.StemV),
		"FontFile2":   fontFileRef,
	}
	if err := w.Put(descRef, descDict); err != nil {
		return nil, err
	}

	widths := widthsArray(pf, remap, numGlyphs)

	cidFontRef := w.Alloc()
	cidFontDict := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("CIDFontType2"),
		"BaseFont": pdf.Name(desc.FontName),
		"CIDSystemInfo": pdf.Dict{
			"Registry":   pdf.String("Adobe"),
			"Ordering":   pdf.String("Identity"),
			"Supplement": pdf.Integer(0),
		},
		"FontDescriptor": descRef,
		"DW":             pdf.Integer(1000),
		"W":              widths,
		"CIDToGIDMap":    pdf.Name("Identity"),
	}
	if err := w.Put(cidFontRef, cidFontDict); err != nil {
		return nil, err
	}

	subsetToUnicode := make(map[uint16]rune, len(opts.ToUnicodeMap))
	for oldID, r := range opts.ToUnicodeMap {
		if newID, ok := remap[oldID]; ok {
			subsetToUnicode[newID] = r
		}
	}
	tu := cmap.NewToUnicode(subsetToUnicode)
	tuRef, err := tu.Embed(w)
	if err != nil {
		return nil, err
	}

	fontDictRef := w.Alloc()
	fontDict := pdf.Dict{
		"Type":            pdf.Name("Font"),
		"Subtype":         pdf.Name("Type0"),
		"BaseFont":        pdf.Name(desc.FontName),
		"Encoding":        pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{cidFontRef},
		"ToUnicode":       tuRef,
	}
	if err := w.Put(fontDictRef, fontDict); err != nil {
		return nil, err
	}

	return &Embedded{FontDictRef: fontDictRef, Remap: remap}, nil
}

func descriptorFor(pf *ParsedFont) *Descriptor {
	h := pf.Sfnt.Head
	upm := float64(h.UnitsPerEm)
	if upm == 0 {
		upm = 1000
	}
	scale := 1000 / upm

	fontName := pf.Name
	if pf.PostscriptName != "" {
		fontName = pf.PostscriptName
	}
	isItalic := h.MacStyle&(1<<1) != 0 || pf.IsItalic
	capHeight := float64(pf.Sfnt.Hhea.Ascender) * scale
	if pf.CapHeight1000 != 0 {
		capHeight = pf.CapHeight1000
	}
	return &Descriptor{
		FontName:     fontName,
		IsFixedPitch: pf.IsFixedPitch,
		IsSerif:      pf.IsSerif,
		IsItalic:     isItalic,
		ItalicAngle:  pf.ItalicAngle,
		Ascent:       float64(pf.Sfnt.Hhea.Ascender) * scale,
		Descent:      float64(pf.Sfnt.Hhea.Descender) * scale,
		CapHeight:    capHeight,
		StemV:        80,
		FontBBox: [4]float64{
			float64(h.XMin) * scale, float64(h.YMin) * scale,
			float64(h.XMax) * scale, float64(h.YMax) * scale,
		},
	}
}

// widthsArray builds the CIDFont /W array in the compact
// "c [w1 w2 ... wn]" run-length form, one run per consecutive block of new
// (subset) CIDs.
func widthsArray(pf *ParsedFont, remap map[uint16]uint16, numGlyphs int) pdf.Array {
	widthsByNewID := make([]float64, numGlyphs)
	for oldID, newID := range remap {
		widthsByNewID[newID] = pf.AdvanceWidth1000(GlyphID(oldID))
	}
	if numGlyphs == 0 {
		return pdf.Array{}
	}
	ws := make(pdf.Array, len(widthsByNewID))
	for i, w := range widthsByNewID {
		ws[i] = pdf.Real(w)
	}
	return pdf.Array{pdf.Integer(0), ws}
}

func identityRemap(n int) map[uint16]uint16 {
	m := make(map[uint16]uint16, n)
	for i := 0; i < n; i++ {
		m[uint16(i)] = uint16(i)
	}
	return m
}

func subsetPSName(name string) string {
	tag := subsetTag(name)
	return tag + "+" + name
}

// subsetTag derives the required 6-uppercase-letter subset tag prefix from
// the font name, deterministically so repeated saves of the same document
// produce byte-identical output.
func subsetTag(name string) string {
	var sum uint32
	for _, r := range name {
		sum = sum*31 + uint32(r)
	}
	letters := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		letters[i] = byte('A' + sum%26)
		sum /= 26
	}
	return string(letters)
}

func pdfErrorf(kind pdf.ErrorKind, format string, args ...interface{}) error {
	return pdf.NewError(kind, format, args...)
}
