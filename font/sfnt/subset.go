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
	"fmt"
	"sort"
)

// Subset is the result of subsetting a font down to a used-glyph set: the
// new font program bytes, and the map from original glyph ids to their new
// (subset) glyph ids.
type Subset struct {
	Data         []byte
	OldToNew     map[uint16]uint16
	NumGlyphs    int
}

// SubsetGlyphs computes the closure of used (including composite-glyph
// components), assigns new ids in ascending original-id order with notdef
// fixed at 0, rewrites head/hhea/maxp/hmtx/loca/glyf/cmap/post/name, and
// returns the minimal font program. psName is used for the rewritten
// font's PostScript name (nameID 6); a non-subsettable (CFF-flavored) font
// returns an error — callers should fall back to pass-through embedding
// via [Font.CanSubset].
func (f *Font) SubsetGlyphs(used map[uint16]bool, psName string) (*Subset, error) {
	if !f.CanSubset() {
		return nil, fmt.Errorf("sfnt: font has no glyf table to subset")
	}

	closure := map[uint16]bool{0: true}
	for gid := range used {
		closure[gid] = true
	}
	// Transitively include composite-glyph components (bounded by the total
	// glyph count so a malformed cyclic composite can't loop forever).
	changed := true
	for changed && len(closure) <= f.NumGlyphs() {
		changed = false
		for gid := range closure {
			for _, comp := range f.ComponentGlyphs(gid) {
				if !closure[comp] {
					closure[comp] = true
					changed = true
				}
			}
		}
	}

	ids := make([]uint16, 0, len(closure))
	for gid := range closure {
		if gid != 0 {
			ids = append(ids, gid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	originalIDs := append([]uint16{0}, ids...)

	oldToNew := make(map[uint16]uint16, len(originalIDs))
	for newID, oldID := range originalIDs {
		oldToNew[oldID] = uint16(newID)
	}

	glyf, loca := encodeGlyfLoca(f, originalIDs, oldToNew, true)

	numHMetrics := len(originalIDs)
	hmtxData := EncodeHmtx(f.Hmtx, originalIDs)

	tables := map[string][]byte{
		"head": f.Head.Encode(true),
		"hhea": f.Hhea.Encode(numHMetrics),
		"maxp": f.Maxp.Encode(len(originalIDs)),
		"hmtx": hmtxData,
		"loca": loca,
		"glyf": glyf,
		"cmap": EncodeIdentityCmap(len(originalIDs)),
		"post": EncodePostV3(),
		"name": EncodeNameMinimal(psName),
	}

	data := buildFont(f.ScalerType, tables)
	return &Subset{Data: data, OldToNew: oldToNew, NumGlyphs: len(originalIDs)}, nil
}
