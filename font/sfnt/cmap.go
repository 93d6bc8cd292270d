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

// CmapSubtable is a decoded (rune -> glyph id) map, used to build the
// reverse glyph-to-Unicode lookup the Glyph-Usage Collector needs when a
// text fragment carries only raw glyph ids.
type CmapSubtable struct {
	runeToGID map[rune]uint16
}

// ReverseLookup returns a Unicode code point for gid, chosen as the
// smallest code point among all that map to gid, or (0, false) if no
// character maps to this glyph.
func (c *CmapSubtable) ReverseLookup(gid uint16) (rune, bool) {
	if c == nil {
		return 0, false
	}
	best := rune(-1)
	for r, g := range c.runeToGID {
		if g == gid && (best == -1 || r < best) {
			best = r
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// parseBestCmap picks the (3,1) Windows-Unicode-BMP subtable if present,
// else (0,*) Unicode, else (3,10) Windows-Unicode-full, else the first
// subtable, and decodes it.
func parseBestCmap(d []byte) (*CmapSubtable, error) {
	if len(d) < 4 {
		return nil, fmt.Errorf("sfnt: cmap table too short")
	}
	numTables := int(binary.BigEndian.Uint16(d[2:4]))

	type record struct {
		platform, encoding uint16
		offset             uint32
	}
	var records []record
	pos := 4
	for i := 0; i < numTables; i++ {
		if pos+8 > len(d) {
			break
		}
		records = append(records, record{
			platform: binary.BigEndian.Uint16(d[pos : pos+2]),
			encoding: binary.BigEndian.Uint16(d[pos+2 : pos+4]),
			offset:   binary.BigEndian.Uint32(d[pos+4 : pos+8]),
		})
		pos += 8
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sfnt: cmap has no subtables")
	}

	score := func(r record) int {
		switch {
		case r.platform == 3 && r.encoding == 1:
			return 3
		case r.platform == 0:
			return 2
		case r.platform == 3 && r.encoding == 10:
			return 1
		default:
			return 0
		}
	}
	best := records[0]
	for _, r := range records[1:] {
		if score(r) > score(best) {
			best = r
		}
	}
	if int(best.offset) >= len(d) {
		return nil, fmt.Errorf("sfnt: cmap subtable offset out of range")
	}
	sub := d[best.offset:]
	if len(sub) < 2 {
		return nil, fmt.Errorf("sfnt: cmap subtable too short")
	}
	format := binary.BigEndian.Uint16(sub[0:2])
	switch format {
	case 4:
		return parseCmapFormat4(sub)
	case 12:
		return parseCmapFormat12(sub)
	default:
		return nil, fmt.Errorf("sfnt: unsupported cmap subtable format %d", format)
	}
}

func parseCmapFormat4(d []byte) (*CmapSubtable, error) {
	if len(d) < 14 {
		return nil, fmt.Errorf("sfnt: cmap format4 too short")
	}
	segCountX2 := int(binary.BigEndian.Uint16(d[6:8]))
	segCount := segCountX2 / 2
	endBase := 14
	startBase := endBase + segCountX2 + 2
	deltaBase := startBase + segCountX2
	rangeBase := deltaBase + segCountX2

	m := &CmapSubtable{runeToGID: make(map[rune]uint16)}
	for i := 0; i < segCount; i++ {
		end := binary.BigEndian.Uint16(d[endBase+2*i:])
		start := binary.BigEndian.Uint16(d[startBase+2*i:])
		delta := int16(binary.BigEndian.Uint16(d[deltaBase+2*i:]))
		rangeOffset := binary.BigEndian.Uint16(d[rangeBase+2*i:])
		if start == 0xFFFF && end == 0xFFFF {
			continue
		}
		for c := uint32(start); c <= uint32(end); c++ {
			var gid uint16
			if rangeOffset == 0 {
				gid = uint16(int32(c) + int32(delta))
			} else {
				idx := rangeBase + 2*i + int(rangeOffset) + 2*int(c-uint32(start))
				if idx+2 > len(d) {
					continue
				}
				g := binary.BigEndian.Uint16(d[idx:])
				if g == 0 {
					continue
				}
				gid = uint16(int32(g) + int32(delta))
			}
			if gid != 0 {
				m.runeToGID[rune(c)] = gid
			}
			if c == 0xFFFF {
				break
			}
		}
	}
	return m, nil
}

func parseCmapFormat12(d []byte) (*CmapSubtable, error) {
	if len(d) < 16 {
		return nil, fmt.Errorf("sfnt: cmap format12 too short")
	}
	numGroups := binary.BigEndian.Uint32(d[12:16])
	m := &CmapSubtable{runeToGID: make(map[rune]uint16)}
	pos := 16
	for i := uint32(0); i < numGroups; i++ {
		if pos+12 > len(d) {
			break
		}
		start := binary.BigEndian.Uint32(d[pos : pos+4])
		end := binary.BigEndian.Uint32(d[pos+4 : pos+8])
		startGID := binary.BigEndian.Uint32(d[pos+8 : pos+12])
		pos += 12
		for c := start; c <= end; c++ {
			m.runeToGID[rune(c)] = uint16(startGID + (c - start))
		}
	}
	return m, nil
}

// EncodeIdentityCmap builds a minimal format-4 cmap subtable mapping each
// subset glyph id to itself over the BMP range actually used, as required
// by viewers that insist a CIDFontType2's embedded font carry a cmap table
// even though PDF text selection uses the ToUnicode CMap, not this one.
func EncodeIdentityCmap(numGlyphs int) []byte {
	segments := [][2]uint16{{0, uint16(numGlyphs - 1)}, {0xFFFF, 0xFFFF}}
	segCount := len(segments)

	var ends, starts, deltas, rangeOffsets []byte
	for _, seg := range segments {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], seg[1])
		ends = append(ends, b[:]...)
		binary.BigEndian.PutUint16(b[:], seg[0])
		starts = append(starts, b[:]...)
		binary.BigEndian.PutUint16(b[:], 0) // delta=0, identity mapping
		deltas = append(deltas, b[:]...)
		binary.BigEndian.PutUint16(b[:], 0)
		rangeOffsets = append(rangeOffsets, b[:]...)
	}

	subLen := 14 + 2*segCount*4 + 2
	sub := make([]byte, subLen)
	binary.BigEndian.PutUint16(sub[0:2], 4)
	binary.BigEndian.PutUint16(sub[2:4], uint16(subLen))
	binary.BigEndian.PutUint16(sub[6:8], uint16(2*segCount))
	copy(sub[14:], ends)
	pos := 14 + 2*segCount + 2
	copy(sub[pos:], starts)
	pos += 2 * segCount
	copy(sub[pos:], deltas)
	pos += 2 * segCount
	copy(sub[pos:], rangeOffsets)

	header := make([]byte, 12)
	binary.BigEndian.PutUint16(header[2:4], 1)
	binary.BigEndian.PutUint16(header[4:6], 3)
	binary.BigEndian.PutUint16(header[6:8], 1)
	binary.BigEndian.PutUint32(header[8:12], 12)
	return append(header, sub...)
}

// EncodePostV3 builds a minimal version-3 'post' table: no per-glyph name
// data, just the fixed header. Italic angle, underline metrics and the
// remaining header fields are all written as zero.
func EncodePostV3() []byte {
	d := make([]byte, 32)
	binary.BigEndian.PutUint32(d[0:4], 0x00030000)
	return d
}

// EncodeNameMinimal builds a 'name' table with a single required entry
// (nameID 6, PostScript name) under the Windows/Unicode platform, which is
// enough for viewers that check it exists without needing a full set of
// localized strings.
func EncodeNameMinimal(psName string) []byte {
	utf16 := encodeUTF16BEName(psName)
	header := make([]byte, 6)
	binary.BigEndian.PutUint16(header[2:4], 1)
	storageOffset := uint16(6 + 12)
	binary.BigEndian.PutUint16(header[4:6], storageOffset)

	rec := make([]byte, 12)
	binary.BigEndian.PutUint16(rec[0:2], 3)
	binary.BigEndian.PutUint16(rec[2:4], 1)
	binary.BigEndian.PutUint16(rec[4:6], 0x409)
	binary.BigEndian.PutUint16(rec[6:8], 6)
	binary.BigEndian.PutUint16(rec[8:10], uint16(len(utf16)))
	binary.BigEndian.PutUint16(rec[10:12], 0)

	out := append(header, rec...)
	out = append(out, utf16...)
	return out
}

func encodeUTF16BEName(s string) []byte {
	var out []byte
	for _, r := range s {
		if r > 0xFFFF {
			r = '?'
		}
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}
