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

package sfnt

import (
	"testing"
)

// makeTestFont builds a tiny synthetic sfnt font with four glyphs (notdef,
// simple glyph 1, composite glyph 2 referencing glyph 1, and simple glyph
// 3), for use as a fixture across the package's tests.
func makeTestFont(t *testing.T) *Font {
	t.Helper()

	numGlyphs := 4
	head := &Head{UnitsPerEm: 1000, XMin: 0, YMin: 0, XMax: 500, YMax: 700}
	hhea := &Hhea{Ascender: 800, Descender: -200, NumOfLongHorMetrics: uint16(numGlyphs)}
	maxp := &Maxp{NumGlyphs: uint16(numGlyphs)}
	hmtx := &Hmtx{
		Advance: []uint16{0, 500, 600, 500},
		LSB:     []int16{0, 10, 20, 10},
	}

	simpleGlyph := func() []byte {
		d := make([]byte, 10)
		d[1] = 0 // numberOfContours = 0 (no contours, but non-composite sentinel)
		return d
	}
	compositeGlyph := func(compGID uint16) []byte {
		d := make([]byte, 16)
		d[0], d[1] = 0xFF, 0xFF // numberOfContours = -1
		d[12], d[13] = byte(compGID>>8), byte(compGID)
		// flags word (bytes 10-11) left zero: ARGS_ARE_WORDS unset,
		// MORE_COMPONENTS unset; bytes 14-15 are the two byte-sized args
		return d
	}

	glyfData := []byte{}
	loca := []uint32{0}
	add := func(g []byte) {
		glyfData = append(glyfData, g...)
		loca = append(loca, uint32(len(glyfData)))
	}
	add([]byte{}) // notdef, empty
	add(simpleGlyph())
	add(compositeGlyph(1))
	add(simpleGlyph())

	raw := map[string][]byte{}
	f := &Font{
		ScalerType: 0x00010000,
		raw:        raw,
		Head:       head,
		Hhea:       hhea,
		Maxp:       maxp,
		Hmtx:       hmtx,
		loca:       loca,
		glyf:       glyfData,
	}
	return f
}

func TestSubsetClosureIncludesComponents(t *testing.T) {
	f := makeTestFont(t)
	used := map[uint16]bool{2: true} // composite glyph referencing glyph 1

	sub, err := f.SubsetGlyphs(used, "TestFont")
	if err != nil {
		t.Fatalf("SubsetGlyphs: %v", err)
	}

	if _, ok := sub.OldToNew[0]; !ok {
		t.Error("notdef (glyph 0) missing from subset")
	}
	if _, ok := sub.OldToNew[2]; !ok {
		t.Error("used glyph 2 missing from subset")
	}
	if _, ok := sub.OldToNew[1]; !ok {
		t.Error("composite component glyph 1 missing from subset closure")
	}
	if sub.OldToNew[0] != 0 {
		t.Errorf("notdef must map to new id 0, got %d", sub.OldToNew[0])
	}
	if sub.NumGlyphs != 3 {
		t.Errorf("expected 3 glyphs in subset (notdef, 1, 2), got %d", sub.NumGlyphs)
	}

	reparsed, err := Parse(sub.Data)
	if err != nil {
		t.Fatalf("reparsing subset font: %v", err)
	}
	if reparsed.NumGlyphs() != 3 {
		t.Errorf("reparsed subset has %d glyphs, want 3", reparsed.NumGlyphs())
	}
	if len(sub.Data) > len(f.glyf)+1000 {
		t.Errorf("subset unexpectedly large: %d bytes", len(sub.Data))
	}
}

func TestSubsetNotdefAlwaysIncluded(t *testing.T) {
	f := makeTestFont(t)
	sub, err := f.SubsetGlyphs(map[uint16]bool{3: true}, "TestFont")
	if err != nil {
		t.Fatalf("SubsetGlyphs: %v", err)
	}
	if sub.NumGlyphs != 2 {
		t.Errorf("expected notdef+glyph3 = 2 glyphs, got %d", sub.NumGlyphs)
	}
}

func TestIdentityCmapRoundTrip(t *testing.T) {
	data := EncodeIdentityCmap(5)
	sub, err := parseBestCmap(data)
	if err != nil {
		t.Fatalf("parseBestCmap: %v", err)
	}
	// Glyph 0 is notdef, which the decoder never records as a mapping.
	if got, ok := sub.runeToGID[0]; ok {
		t.Errorf("identity cmap: rune 0 -> %d, want no entry for notdef", got)
	}
	for gid := rune(1); gid < 5; gid++ {
		if got, ok := sub.runeToGID[gid]; !ok || got != uint16(gid) {
			t.Errorf("identity cmap: rune %d -> %d, ok=%v", gid, got, ok)
		}
	}
}
