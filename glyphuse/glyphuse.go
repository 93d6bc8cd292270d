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

// Package glyphuse implements the Glyph-Usage Collector: a single pass
// over every page that simulates the font/text state machine and records,
// per external font, which glyph ids are actually drawn and a best-effort
// Unicode code point for each.
package glyphuse

import (
	"fmt"
	"unicode/utf8"

	"go.pdfx.dev/pdfx/graphics"
)

// ReverseLookup is implemented by a parsed font: given a glyph id, return
// the smallest Unicode code point that maps to it via the font's cmap
// table, if any.
type ReverseLookup interface {
	ReverseLookup(gid uint16) (rune, bool)
}

// FontLookup resolves a font id (as used in SetFont ops) to the font's
// reverse-lookup source; built-in fonts and unknown ids return ok=false.
type FontLookup func(fontID string) (ReverseLookup, bool)

// Result is the collector's output: per font id, the set of used glyph
// ids mapped to a best-effort Unicode code point, plus any warnings
// recorded along the way (U+FFFD fallbacks, missing-font-set, unbalanced
// restore).
type Result struct {
	Usage    map[string]map[uint16]rune
	Warnings []graphics.Warning
}

type fontState struct {
	font string
	size float64
}

// Collect runs the collector across all pages. pages[i] is the operation
// list of page i (the ops actually lowered, i.e. after any caller-side
// text shaping has already attached glyph ids to ShowText items).
func Collect(pages [][]graphics.Op, lookup FontLookup) *Result {
	res := &Result{Usage: map[string]map[uint16]rune{}}

	for pageIndex, ops := range pages {
		var current fontState
		var hasFont bool
		var stack []fontState

		for opIndex, op := range ops {
			switch o := op.(type) {
			case graphics.SetFont:
				current = fontState{font: o.Font, size: o.Size}
				hasFont = true
			case graphics.SaveGraphicsState:
				stack = append(stack, current)
			case graphics.RestoreGraphicsState:
				if len(stack) == 0 {
					hasFont = false
					res.warn(pageIndex, opIndex, "Restore with empty font stack, resetting current font")
					continue
				}
				current = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				hasFont = true
			case graphics.ShowText:
				if !hasFont {
					res.warn(pageIndex, opIndex, "ShowText with no font set before it, using default Times-Roman")
					continue
				}
				rev, ok := lookup(current.font)
				if !ok {
					continue // built-in font: no embedding, nothing to record
				}
				glyphs, ok2 := res.Usage[current.font]
				if !ok2 {
					glyphs = map[uint16]rune{}
					res.Usage[current.font] = glyphs
				}
				for _, item := range o.Items {
					if item.IsKern {
						continue
					}
					runes := []rune(item.Text)
					for gi, g := range item.Glyphs {
						r, ok := resolveRune(item, gi, runes, rev, g.GID)
						if !ok {
							r = utf8.RuneError
							res.warn(pageIndex, opIndex, "no unicode mapping for glyph %d in font %q, using U+FFFD", g.GID, current.font)
						}
						if existing, seen := glyphs[g.GID]; !seen || r < existing {
							glyphs[g.GID] = r
						}
					}
				}
			}
		}
	}

	return res
}

// resolveRune tries source text first, then the font's reverse cmap, and
// signals ok=false (callers fall back to U+FFFD) when neither resolves.
func resolveRune(item graphics.ShowTextItem, glyphIndex int, runes []rune, rev ReverseLookup, gid uint16) (rune, bool) {
	if glyphIndex < len(runes) {
		return runes[glyphIndex], true
	}
	if r, ok := rev.ReverseLookup(gid); ok {
		return r, true
	}
	return 0, false
}

func (r *Result) warn(pageIndex, opIndex int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, graphics.Warning{
		Message:   fmt.Sprintf(format, args...),
		PageIndex: pageIndex,
		OpIndex:   opIndex,
	})
}
