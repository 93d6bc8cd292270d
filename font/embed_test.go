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
	"testing"

	"go.pdfx.dev/pdfx"
	"go.pdfx.dev/pdfx/font/sfnt"
)

func TestSubsetTagDeterministic(t *testing.T) {
	a := subsetTag("Helvetica")
	b := subsetTag("Helvetica")
	if a != b {
		t.Errorf("subsetTag not deterministic: %q != %q", a, b)
	}
	if len(a) != 6 {
		t.Errorf("subsetTag must be 6 letters, got %q", a)
	}
	for _, r := range a {
		if r < 'A' || r > 'Z' {
			t.Errorf("subsetTag contains non-uppercase-letter byte: %q", a)
		}
	}
	if subsetTag("Times-Roman") == subsetTag("Helvetica") {
		t.Error("distinct font names collided in subset tag")
	}
}

func TestWidthsArrayUsesNewGlyphOrder(t *testing.T) {
	pf := &ParsedFont{
		UnitsPerEm: 1000,
		Sfnt: &sfnt.Font{
			Hmtx: &sfnt.Hmtx{
				Advance: []uint16{0, 500, 600},
			},
		},
	}
	remap := map[uint16]uint16{0: 0, 2: 1}
	arr := widthsArray(pf, remap, 2)
	if len(arr) != 2 {
		t.Fatalf("expected [firstCID, widths], got %d elements", len(arr))
	}
	widths, ok := arr[1].(pdf.Array)
	if !ok {
		t.Fatal("second element should be a pdf.Array of widths")
	}
	if len(widths) != 2 {
		t.Fatalf("expected 2 widths, got %d", len(widths))
	}
	if widths[0] != pdf.Real(0) {
		t.Errorf("new glyph 0 (notdef) width = %v, want 0", widths[0])
	}
	if widths[1] != pdf.Real(600) {
		t.Errorf("new glyph 1 (old gid 2) width = %v, want 600", widths[1])
	}
}

func TestIdentityRemap(t *testing.T) {
	m := identityRemap(3)
	for i := uint16(0); i < 3; i++ {
		if m[i] != i {
			t.Errorf("identityRemap[%d] = %d, want %d", i, m[i], i)
		}
	}
}

func TestDescriptorForPrefersPostscriptName(t *testing.T) {
	pf := &ParsedFont{
		Name:       "uploaded.ttf",
		UnitsPerEm: 1000,
		Sfnt: &sfnt.Font{
			Head: &sfnt.Head{UnitsPerEm: 1000},
			Hhea: &sfnt.Hhea{Ascender: 800, Descender: -200},
		},
	}
	desc := descriptorFor(pf)
	if desc.FontName != "uploaded.ttf" {
		t.Errorf("with no enrichment, FontName should fall back to the caller-supplied name, got %q", desc.FontName)
	}

	pf.PostscriptName = "Example-Regular"
	pf.IsFixedPitch = true
	pf.IsItalic = true
	desc = descriptorFor(pf)
	if desc.FontName != "Example-Regular" {
		t.Errorf("FontName should prefer the enriched PostscriptName, got %q", desc.FontName)
	}
	if !desc.IsFixedPitch || !desc.IsItalic {
		t.Error("descriptorFor should carry through the enriched IsFixedPitch/IsItalic flags")
	}
}
