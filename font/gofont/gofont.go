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

// Package gofont gives the Document Assembler a default embeddable font
// family, so a caller that has no font bytes of its own can still produce
// a PDF/X-3 conformant document without supplying one (PDF/X-3 requires
// every glyph used to come from an embedded font; there is no reliance on
// viewer-side substitution).
package gofont

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"go.pdfx.dev/pdfx/font"
)

// Style identifies one member of the Go font family this package embeds.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	Mono
)

var ttf = map[Style][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Italic:  goitalic.TTF,
	Mono:    gomono.TTF,
}

var names = map[Style]string{
	Regular: "Go-Regular",
	Bold:    "Go-Bold",
	Italic:  "Go-Italic",
	Mono:    "Go-Mono",
}

// Data returns the raw TrueType bytes for s, for a caller that wants to
// pass them to document.Document.AddFont directly.
func Data(s Style) []byte {
	return ttf[s]
}

// Parse parses s into a *font.ParsedFont ready to embed, under its
// standard Go-family PostScript-style name.
func Parse(s Style) (*font.ParsedFont, error) {
	return font.Parse(names[s], ttf[s])
}
