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

// Head holds the fields of the sfnt 'head' table that the subsetter needs
// to preserve or rewrite.
type Head struct {
	FontRevision     uint32
	UnitsPerEm       uint16
	Created          int64
	Modified         int64
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	LowestRecPPEM    uint16
	HasLongOffsets   bool
	GlyphDataFormat  int16
}

const headLength = 54

func parseHead(d []byte) (*Head, error) {
	if len(d) < headLength {
		return nil, fmt.Errorf("sfnt: head table too short")
	}
	version := binary.BigEndian.Uint32(d[0:4])
	if version != 0x00010000 {
		return nil, fmt.Errorf("sfnt: unsupported head version %08x", version)
	}
	magic := binary.BigEndian.Uint32(d[12:16])
	if magic != 0x5F0F3CF5 {
		return nil, fmt.Errorf("sfnt: bad head magic number")
	}
	h := &Head{
		FontRevision:    binary.BigEndian.Uint32(d[4:8]),
		UnitsPerEm:      binary.BigEndian.Uint16(d[18:20]),
		Created:         int64(binary.BigEndian.Uint64(d[20:28])),
		Modified:        int64(binary.BigEndian.Uint64(d[28:36])),
		XMin:            int16(binary.BigEndian.Uint16(d[36:38])),
		YMin:            int16(binary.BigEndian.Uint16(d[38:40])),
		XMax:            int16(binary.BigEndian.Uint16(d[40:42])),
		YMax:            int16(binary.BigEndian.Uint16(d[42:44])),
		MacStyle:        binary.BigEndian.Uint16(d[44:46]),
		LowestRecPPEM:   binary.BigEndian.Uint16(d[46:48]),
		HasLongOffsets:  int16(binary.BigEndian.Uint16(d[50:52])) != 0,
		GlyphDataFormat: int16(binary.BigEndian.Uint16(d[52:54])),
	}
	return h, nil
}

// Encode re-serializes the head table, overriding HasLongOffsets (the
// subsetter always emits long loca offsets, the simplest safe choice) and
// zeroing the checksum-adjustment field (filled in by [buildFont]).
func (h *Head) Encode(longLoca bool) []byte {
	d := make([]byte, headLength)
	binary.BigEndian.PutUint32(d[0:4], 0x00010000)
	binary.BigEndian.PutUint32(d[4:8], h.FontRevision)
	binary.BigEndian.PutUint32(d[8:12], 0) // checksum adjustment, fixed up later
	binary.BigEndian.PutUint32(d[12:16], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(d[16:18], 3) // flags: baseline at y=0, lsb at x=0
	binary.BigEndian.PutUint16(d[18:20], h.UnitsPerEm)
	binary.BigEndian.PutUint64(d[20:28], uint64(h.Created))
	binary.BigEndian.PutUint64(d[28:36], uint64(h.Modified))
	binary.BigEndian.PutUint16(d[36:38], uint16(h.XMin))
	binary.BigEndian.PutUint16(d[38:40], uint16(h.YMin))
	binary.BigEndian.PutUint16(d[40:42], uint16(h.XMax))
	binary.BigEndian.PutUint16(d[42:44], uint16(h.YMax))
	binary.BigEndian.PutUint16(d[44:46], h.MacStyle)
	binary.BigEndian.PutUint16(d[46:48], h.LowestRecPPEM)
	binary.BigEndian.PutUint16(d[48:50], 2) // fontDirectionHint, deprecated, always 2
	if longLoca {
		binary.BigEndian.PutUint16(d[50:52], 1)
	}
	binary.BigEndian.PutUint16(d[52:54], uint16(h.GlyphDataFormat))
	return d
}

// Hhea holds the fields of the sfnt 'hhea' table needed to re-derive hmtx.
type Hhea struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	NumOfLongHorMetrics uint16
}

const hheaLength = 36

func parseHhea(d []byte) (*Hhea, error) {
	if len(d) < hheaLength {
		return nil, fmt.Errorf("sfnt: hhea table too short")
	}
	return &Hhea{
		Ascender:            int16(binary.BigEndian.Uint16(d[4:6])),
		Descender:           int16(binary.BigEndian.Uint16(d[6:8])),
		LineGap:             int16(binary.BigEndian.Uint16(d[8:10])),
		AdvanceWidthMax:     binary.BigEndian.Uint16(d[10:12]),
		NumOfLongHorMetrics: binary.BigEndian.Uint16(d[34:36]),
	}, nil
}

func (h *Hhea) Encode(numHMetrics int) []byte {
	d := make([]byte, hheaLength)
	binary.BigEndian.PutUint32(d[0:4], 0x00010000)
	binary.BigEndian.PutUint16(d[4:6], uint16(h.Ascender))
	binary.BigEndian.PutUint16(d[6:8], uint16(h.Descender))
	binary.BigEndian.PutUint16(d[8:10], uint16(h.LineGap))
	binary.BigEndian.PutUint16(d[10:12], h.AdvanceWidthMax)
	// caretSlopeRise/Run, caretOffset, 4 reserved, metricDataFormat: all 0/1
	binary.BigEndian.PutUint16(d[12:14], 1)
	binary.BigEndian.PutUint16(d[34:36], uint16(numHMetrics))
	return d
}

// Maxp holds the glyph count; only version 1.0 (TrueType) maxp tables carry
// the extra fields this module ignores.
type Maxp struct {
	NumGlyphs uint16
	rest      []byte // remaining v1.0 fields, copied through unmodified
}

func parseMaxp(d []byte) (*Maxp, error) {
	if len(d) < 6 {
		return nil, fmt.Errorf("sfnt: maxp table too short")
	}
	m := &Maxp{NumGlyphs: binary.BigEndian.Uint16(d[4:6])}
	if len(d) > 6 {
		m.rest = append([]byte(nil), d[6:]...)
	}
	return m, nil
}

func (m *Maxp) Encode(numGlyphs int) []byte {
	if len(m.rest) == 0 {
		d := make([]byte, 6)
		binary.BigEndian.PutUint32(d[0:4], 0x00005000)
		binary.BigEndian.PutUint16(d[4:6], uint16(numGlyphs))
		return d
	}
	d := make([]byte, 6+len(m.rest))
	binary.BigEndian.PutUint32(d[0:4], 0x00010000)
	binary.BigEndian.PutUint16(d[4:6], uint16(numGlyphs))
	copy(d[6:], m.rest)
	return d
}

// Hmtx is the decoded horizontal-metrics table: one (advance, lsb) pair per
// glyph (trailing glyphs beyond NumOfLongHorMetrics repeat the last
// advance, per the sfnt spec).
type Hmtx struct {
	Advance []uint16
	LSB     []int16
}

func parseHmtx(d []byte, numLong, numGlyphs int) (*Hmtx, error) {
	h := &Hmtx{Advance: make([]uint16, numGlyphs), LSB: make([]int16, numGlyphs)}
	pos := 0
	lastAdvance := uint16(0)
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			if pos+4 > len(d) {
				return nil, fmt.Errorf("sfnt: hmtx table too short")
			}
			lastAdvance = binary.BigEndian.Uint16(d[pos : pos+2])
			h.LSB[i] = int16(binary.BigEndian.Uint16(d[pos+2 : pos+4]))
			pos += 4
		} else {
			if pos+2 > len(d) {
				return nil, fmt.Errorf("sfnt: hmtx table too short (lsb-only run)")
			}
			h.LSB[i] = int16(binary.BigEndian.Uint16(d[pos : pos+2]))
			pos += 2
		}
		h.Advance[i] = lastAdvance
	}
	return h, nil
}

// EncodeHmtx writes hmtx entries for the glyphs at the given original ids, in
// that order; it is always written in "long" form (one advance+lsb pair
// per glyph) for simplicity, which is always legal even if not maximally
// compact.
func EncodeHmtx(h *Hmtx, originalIDs []uint16) []byte {
	d := make([]byte, 4*len(originalIDs))
	for i, gid := range originalIDs {
		var adv uint16
		var lsb int16
		if int(gid) < len(h.Advance) {
			adv = h.Advance[gid]
			lsb = h.LSB[gid]
		}
		binary.BigEndian.PutUint16(d[4*i:4*i+2], adv)
		binary.BigEndian.PutUint16(d[4*i+2:4*i+4], uint16(lsb))
	}
	return d
}
