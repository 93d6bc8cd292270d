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

// Package sfnt implements enough of the TrueType/OpenType "sfnt" container
// format to parse an embedded font's table directory, read the tables the
// font subsetter needs (head, hhea, maxp, hmtx, loca, glyf, cmap), and
// re-encode a minimal subset font program containing only a caller-chosen
// set of glyphs.
//
// CFF-flavored OpenType fonts (an "sfnt" wrapping a 'CFF ' table instead of
// 'glyf'/'loca') are parsed far enough to read their tables and metrics but
// are not subset: [Font.CanSubset] reports false for them and the Font
// Subsetter falls back to pass-through embedding.
package sfnt

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// tableRecord is one entry of the sfnt table directory.
type tableRecord struct {
	Tag      string
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Font is a parsed sfnt font program: the table directory plus the decoded
// tables this module cares about.
type Font struct {
	ScalerType uint32
	raw        map[string][]byte // tag -> raw table bytes, as found in the input

	Head *Head
	Hhea *Hhea
	Maxp *Maxp
	Hmtx *Hmtx
	Cmap *CmapSubtable // reverse glyph->rune map, built from the best subtable found

	loca []uint32 // glyph offsets into glyf, length NumGlyphs+1; nil for CFF fonts
	glyf []byte   // raw glyf table bytes; nil for CFF fonts
}

// NumGlyphs returns the number of glyphs in the font, from the maxp table.
func (f *Font) NumGlyphs() int { return int(f.Maxp.NumGlyphs) }

// CanSubset reports whether this font has a glyf/loca outline table, which
// is the only outline format this module knows how to subset.
func (f *Font) CanSubset() bool { return f.glyf != nil && f.loca != nil }

// RawTable returns the unmodified bytes of table tag, or nil if absent.
func (f *Font) RawTable(tag string) []byte { return f.raw[tag] }

// Parse reads a complete sfnt font program (a TrueType or OpenType file, not
// a font collection) and decodes its head/hhea/maxp/hmtx tables plus, when
// present, loca/glyf and a usable cmap subtable.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("sfnt: file too short")
	}
	scaler := binary.BigEndian.Uint32(data[0:4])
	numTables := binary.BigEndian.Uint16(data[4:6])

	raw := make(map[string][]byte, numTables)
	pos := 12
	for i := 0; i < int(numTables); i++ {
		if pos+16 > len(data) {
			return nil, fmt.Errorf("sfnt: truncated table directory")
		}
		tag := string(data[pos : pos+4])
		offset := binary.BigEndian.Uint32(data[pos+8 : pos+12])
		length := binary.BigEndian.Uint32(data[pos+12 : pos+16])
		pos += 16
		if int(offset)+int(length) > len(data) || int(offset) > len(data) {
			return nil, fmt.Errorf("sfnt: table %q out of range", tag)
		}
		raw[tag] = data[offset : offset+length]
	}

	f := &Font{ScalerType: scaler, raw: raw}

	headData, ok := raw["head"]
	if !ok {
		return nil, fmt.Errorf("sfnt: missing head table")
	}
	head, err := parseHead(headData)
	if err != nil {
		return nil, err
	}
	f.Head = head

	hheaData, ok := raw["hhea"]
	if !ok {
		return nil, fmt.Errorf("sfnt: missing hhea table")
	}
	hhea, err := parseHhea(hheaData)
	if err != nil {
		return nil, err
	}
	f.Hhea = hhea

	maxpData, ok := raw["maxp"]
	if !ok {
		return nil, fmt.Errorf("sfnt: missing maxp table")
	}
	maxp, err := parseMaxp(maxpData)
	if err != nil {
		return nil, err
	}
	f.Maxp = maxp

	hmtxData, ok := raw["hmtx"]
	if !ok {
		return nil, fmt.Errorf("sfnt: missing hmtx table")
	}
	hmtx, err := parseHmtx(hmtxData, int(hhea.NumOfLongHorMetrics), int(maxp.NumGlyphs))
	if err != nil {
		return nil, err
	}
	f.Hmtx = hmtx

	if locaData, ok := raw["loca"]; ok {
		if glyfData, ok := raw["glyf"]; ok {
			loca, err := parseLoca(locaData, int(maxp.NumGlyphs), head.HasLongOffsets)
			if err != nil {
				return nil, err
			}
			f.loca = loca
			f.glyf = glyfData
		}
	}

	if cmapData, ok := raw["cmap"]; ok {
		if sub, err := parseBestCmap(cmapData); err == nil {
			f.Cmap = sub
		}
	}

	return f, nil
}

// checksum computes the sfnt table checksum: the sum of the table's bytes
// interpreted as big-endian uint32 words, the last word zero-padded.
func checksum(data []byte) uint32 {
	var sum uint32
	n := len(data)
	for i := 0; i < n; i += 4 {
		var word uint32
		for j := 0; j < 4; j++ {
			word <<= 8
			if i+j < n {
				word |= uint32(data[i+j])
			}
		}
		sum += word
	}
	return sum
}

// buildFont writes a complete sfnt file from a tag->bytes table map. Tags
// are emitted in ascending (alphabetical) order, and the table directory's
// binary-search fields and the head table's checksum-adjustment are
// recomputed.
func buildFont(scaler uint32, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for t := range tables {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	numTables := len(tags)
	headerLen := 12 + 16*numTables
	offset := uint32(headerLen)

	type placed struct {
		tag    string
		data   []byte
		offset uint32
	}
	placedTables := make([]placed, 0, numTables)
	for _, tag := range tags {
		data := tables[tag]
		placedTables = append(placedTables, placed{tag: tag, data: data, offset: offset})
		padded := (len(data) + 3) &^ 3
		offset += uint32(padded)
	}

	out := make([]byte, offset)
	binary.BigEndian.PutUint32(out[0:4], scaler)
	binary.BigEndian.PutUint16(out[4:6], uint16(numTables))

	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	binary.BigEndian.PutUint16(out[6:8], uint16(searchRange))
	binary.BigEndian.PutUint16(out[8:10], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:12], uint16(numTables*16-searchRange))

	pos := 12
	var headChecksumOffset = -1
	for _, p := range placedTables {
		copy(out[p.offset:], p.data)
		cs := checksum(p.data)
		copy(out[pos:pos+4], p.tag)
		binary.BigEndian.PutUint32(out[pos+4:pos+8], cs)
		binary.BigEndian.PutUint32(out[pos+8:pos+12], p.offset)
		binary.BigEndian.PutUint32(out[pos+12:pos+16], uint32(len(p.data)))
		if p.tag == "head" {
			headChecksumOffset = int(p.offset) + 8
		}
		pos += 16
	}

	if headChecksumOffset >= 0 {
		binary.BigEndian.PutUint32(out[headChecksumOffset:headChecksumOffset+4], 0)
		var total uint32
		for i := 0; i+3 < len(out); i += 4 {
			total += binary.BigEndian.Uint32(out[i : i+4])
		}
		adjustment := 0xB1B0AFBA - total
		binary.BigEndian.PutUint32(out[headChecksumOffset:headChecksumOffset+4], adjustment)
	}

	return out
}
