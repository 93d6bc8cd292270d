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

package glyphuse

import (
	"testing"
	"unicode/utf8"

	"go.pdfx.dev/pdfx/graphics"
)

type fakeRev map[uint16]rune

func (f fakeRev) ReverseLookup(gid uint16) (rune, bool) {
	r, ok := f[gid]
	return r, ok
}

func TestCollectUsesSourceTextFirst(t *testing.T) {
	pages := [][]graphics.Op{
		{
			graphics.SetFont{Font: "F1", Size: 12},
			graphics.ShowText{Items: []graphics.ShowTextItem{
				{Text: "Hi", Glyphs: []graphics.ShowTextGlyph{{GID: 10}, {GID: 11}}},
			}},
		},
	}
	lookup := func(id string) (ReverseLookup, bool) {
		return fakeRev{10: 'X', 11: 'Y'}, true // reverse map disagrees; text should win
	}
	res := Collect(pages, lookup)
	if res.Usage["F1"][10] != 'H' {
		t.Errorf("glyph 10: got %q, want 'H'", res.Usage["F1"][10])
	}
	if res.Usage["F1"][11] != 'i' {
		t.Errorf("glyph 11: got %q, want 'i'", res.Usage["F1"][11])
	}
}

func TestCollectFallsBackToReverseCmap(t *testing.T) {
	pages := [][]graphics.Op{
		{
			graphics.SetFont{Font: "F1", Size: 12},
			graphics.ShowText{Items: []graphics.ShowTextItem{
				{Glyphs: []graphics.ShowTextGlyph{{GID: 5}}},
			}},
		},
	}
	lookup := func(id string) (ReverseLookup, bool) { return fakeRev{5: 'Z'}, true }
	res := Collect(pages, lookup)
	if res.Usage["F1"][5] != 'Z' {
		t.Errorf("got %q, want 'Z'", res.Usage["F1"][5])
	}
}

func TestCollectUnmappedGlyphIsReplacementChar(t *testing.T) {
	pages := [][]graphics.Op{
		{
			graphics.SetFont{Font: "F1", Size: 12},
			graphics.ShowText{Items: []graphics.ShowTextItem{
				{Glyphs: []graphics.ShowTextGlyph{{GID: 99}}},
			}},
		},
	}
	lookup := func(id string) (ReverseLookup, bool) { return fakeRev{}, true }
	res := Collect(pages, lookup)
	if res.Usage["F1"][99] != utf8.RuneError {
		t.Errorf("got %q, want U+FFFD", res.Usage["F1"][99])
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the unmapped glyph")
	}
}

func TestCollectSaveRestoreTracksFontStack(t *testing.T) {
	pages := [][]graphics.Op{
		{
			graphics.SetFont{Font: "F1", Size: 12},
			graphics.SaveGraphicsState{},
			graphics.SetFont{Font: "F2", Size: 10},
			graphics.RestoreGraphicsState{},
			graphics.ShowText{Items: []graphics.ShowTextItem{{Glyphs: []graphics.ShowTextGlyph{{GID: 1}}}}},
		},
	}
	lookup := func(id string) (ReverseLookup, bool) { return fakeRev{1: rune('A' + len(id))}, true }
	res := Collect(pages, lookup)
	if _, ok := res.Usage["F1"]; !ok {
		t.Error("expected font restored to F1 after RestoreGraphicsState to record usage")
	}
	if _, ok := res.Usage["F2"]; ok {
		t.Error("F2 should not have recorded usage; it was popped before ShowText")
	}
}
