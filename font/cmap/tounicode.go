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

// Package cmap builds the ToUnicode CMap stream that lets a PDF viewer
// recover Unicode code points from the glyph ids a Type0/CIDFontType2 font
// actually draws.
package cmap

import (
	"fmt"
	"io"
	"sort"

	"go.pdfx.dev/pdfx"
)

// SingleTUEntry maps one subset glyph id (used as the 2-byte character
// code under this module's fixed Identity-H encoding) to a Unicode string.
type SingleTUEntry struct {
	Code  uint16
	Value []rune
}

// ToUnicode holds the entries of a ToUnicode CMap. Entries are written out
// sorted by Code and de-duplicated, satisfying the monotonic/no-duplicates
// testable property.
type ToUnicode struct {
	entries map[uint16][]rune
}

// NewToUnicode constructs a ToUnicode map from a subset-glyph-id -> rune
// mapping; a glyph with no recorded mapping does not get an entry (per the
// reverse-lookup fallback to U+FFFD, callers should have already resolved
// that before calling this).
func NewToUnicode(m map[uint16]rune) *ToUnicode {
	t := &ToUnicode{entries: make(map[uint16][]rune, len(m))}
	for gid, r := range m {
		t.entries[gid] = []rune{r}
	}
	return t
}

// Sorted returns the entries in ascending Code order.
func (t *ToUnicode) Sorted() []SingleTUEntry {
	codes := make([]uint16, 0, len(t.entries))
	for gid := range t.entries {
		codes = append(codes, gid)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	out := make([]SingleTUEntry, len(codes))
	for i, c := range codes {
		out[i] = SingleTUEntry{Code: c, Value: t.entries[c]}
	}
	return out
}

// WriteTo emits the CMap stream body in the format specified for
// ToUnicode CMaps: a fixed 2-byte Identity codespace range, followed by
// one or more beginbfchar/endbfchar blocks (PDF limits each block to 100
// entries).
func (t *ToUnicode) WriteTo(w io.Writer) error {
	fmt.Fprint(w, "/CIDInit /ProcSet findresource begin\n")
	fmt.Fprint(w, "12 dict begin\n")
	fmt.Fprint(w, "begincmap\n")
	fmt.Fprint(w, "/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	fmt.Fprint(w, "/CMapName /Adobe-Identity-UCS def\n")
	fmt.Fprint(w, "/CMapType 2 def\n")
	fmt.Fprint(w, "1 begincodespacerange <0000> <FFFF> endcodespacerange\n")

	entries := t.Sorted()
	const chunk = 100
	for i := 0; i < len(entries); i += chunk {
		end := i + chunk
		if end > len(entries) {
			end = len(entries)
		}
		group := entries[i:end]
		fmt.Fprintf(w, "%d beginbfchar\n", len(group))
		for _, e := range group {
			fmt.Fprintf(w, "<%04X> <%s>\n", e.Code, hexUTF16BE(e.Value))
		}
		fmt.Fprint(w, "endbfchar\n")
	}

	fmt.Fprint(w, "endcmap\n")
	fmt.Fprint(w, "CMapName currentdict /CMap defineresource pop\n")
	fmt.Fprint(w, "end\n")
	fmt.Fprint(w, "end\n")
	return nil
}

func hexUTF16BE(rs []rune) string {
	var sb []byte
	for _, r := range rs {
		if r <= 0xFFFF {
			sb = append(sb, fmt.Sprintf("%04X", r)...)
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		sb = append(sb, fmt.Sprintf("%04X%04X", hi, lo)...)
	}
	return string(sb)
}

// Embed allocates a stream object for the CMap and writes it via w.
func (t *ToUnicode) Embed(w pdf.Putter) (pdf.Reference, error) {
	ref := w.Alloc()
	stream, err := w.OpenStream(ref, pdf.Dict{"Type": pdf.Name("CMap"), "Name": pdf.Name("Adobe-Identity-UCS")})
	if err != nil {
		return ref, err
	}
	if err := t.WriteTo(stream); err != nil {
		return ref, err
	}
	if err := stream.Close(); err != nil {
		return ref, err
	}
	return ref, nil
}
