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
	"encoding/binary"
	"fmt"
)

func parseLoca(d []byte, numGlyphs int, longOffsets bool) ([]uint32, error) {
	n := numGlyphs + 1
	offsets := make([]uint32, n)
	if longOffsets {
		if len(d) < 4*n {
			return nil, fmt.Errorf("sfnt: loca table too short")
		}
		for i := 0; i < n; i++ {
			offsets[i] = binary.BigEndian.Uint32(d[4*i : 4*i+4])
		}
	} else {
		if len(d) < 2*n {
			return nil, fmt.Errorf("sfnt: loca table too short")
		}
		for i := 0; i < n; i++ {
			offsets[i] = 2 * uint32(binary.BigEndian.Uint16(d[2*i:2*i+2]))
		}
	}
	return offsets, nil
}

// GlyphData returns the raw (unparsed) glyf bytes for glyph id gid, or nil
// for an empty glyph (e.g. the space character).
func (f *Font) GlyphData(gid uint16) []byte {
	if f.loca == nil || int(gid)+1 >= len(f.loca) {
		return nil
	}
	start, end := f.loca[gid], f.loca[gid+1]
	if end <= start || int(end) > len(f.glyf) {
		return nil
	}
	return f.glyf[start:end]
}

// ComponentGlyphs returns the glyph ids directly referenced by a composite
// glyph's component records, or nil if gid names a simple glyph (numberOfContours >= 0).
func (f *Font) ComponentGlyphs(gid uint16) []uint16 {
	data := f.GlyphData(gid)
	if len(data) < 10 {
		return nil
	}
	numContours := int16(binary.BigEndian.Uint16(data[0:2]))
	if numContours >= 0 {
		return nil
	}
	var components []uint16
	pos := 10
	for {
		if pos+4 > len(data) {
			break
		}
		flags := binary.BigEndian.Uint16(data[pos : pos+2])
		compGID := binary.BigEndian.Uint16(data[pos+2 : pos+4])
		components = append(components, compGID)
		pos += 4

		const argsAreWords = 1 << 0
		const weHaveAScale = 1 << 3
		const moreComponents = 1 << 5
		const weHaveAnXYScale = 1 << 6
		const weHaveATwoByTwo = 1 << 7

		if flags&argsAreWords != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&weHaveATwoByTwo != 0:
			pos += 8
		case flags&weHaveAnXYScale != 0:
			pos += 4
		case flags&weHaveAScale != 0:
			pos += 2
		}
		if flags&moreComponents == 0 {
			break
		}
	}
	return components
}

// rewriteComponentIDs returns a copy of a composite glyph's bytes with each
// component glyph id replaced according to remap.
func rewriteComponentIDs(data []byte, remap map[uint16]uint16) []byte {
	out := append([]byte(nil), data...)
	pos := 10
	for {
		if pos+4 > len(out) {
			break
		}
		flags := binary.BigEndian.Uint16(out[pos : pos+2])
		oldGID := binary.BigEndian.Uint16(out[pos+2 : pos+4])
		if newGID, ok := remap[oldGID]; ok {
			binary.BigEndian.PutUint16(out[pos+2:pos+4], newGID)
		}
		pos += 4

		const argsAreWords = 1 << 0
		const weHaveAScale = 1 << 3
		const moreComponents = 1 << 5
		const weHaveAnXYScale = 1 << 6
		const weHaveATwoByTwo = 1 << 7

		if flags&argsAreWords != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&weHaveATwoByTwo != 0:
			pos += 8
		case flags&weHaveAnXYScale != 0:
			pos += 4
		case flags&weHaveAScale != 0:
			pos += 2
		}
		if flags&moreComponents == 0 {
			break
		}
	}
	return out
}

// encodeGlyfLoca builds the glyf and loca tables for the glyphs named by
// originalIDs (in new-glyph-id order), rewriting composite glyph component
// ids through remap.
func encodeGlyfLoca(f *Font, originalIDs []uint16, remap map[uint16]uint16, longOffsets bool) (glyf, loca []byte) {
	var buf []byte
	offsets := make([]uint32, len(originalIDs)+1)
	for i, gid := range originalIDs {
		offsets[i] = uint32(len(buf))
		data := f.GlyphData(gid)
		if len(data) > 0 {
			if f.ComponentGlyphs(gid) != nil {
				data = rewriteComponentIDs(data, remap)
			}
			buf = append(buf, data...)
			if len(data)%2 != 0 {
				buf = append(buf, 0) // glyf entries must be word-aligned
			}
		}
	}
	offsets[len(originalIDs)] = uint32(len(buf))

	loca = make([]byte, 0, 4*len(offsets))
	if longOffsets {
		for _, o := range offsets {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], o)
			loca = append(loca, b[:]...)
		}
	} else {
		for _, o := range offsets {
			var b [2]byte
			binary.BigEndian.PutUint16(b[:], uint16(o/2))
			loca = append(loca, b[:]...)
		}
	}
	return buf, loca
}
