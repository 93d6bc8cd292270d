// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
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

// Package annotation builds the /Annots array entries this module emits.
// Link annotations are the only kind currently supported; forms, widgets,
// and markup annotations are a full PDF reader's concern.
package annotation

import "go.pdfx.dev/pdfx"

// Link is a hypertext link annotation, as buffered by the content-stream
// lowerer from a LinkAnnotation op.
type Link struct {
	// Rect is the annotation's active rectangle in default user space.
	Rect pdf.Rectangle

	// URI is a URI action target. Mutually exclusive with Dest.
	URI string

	// Dest names a named destination (a page label, typically). Mutually
	// exclusive with URI.
	Dest string

	// PageRef, when Dest is empty and this is non-zero, is an explicit
	// destination page to jump to (a [pdf.Reference]/Fit pair is written).
	PageRef pdf.Reference
}

// AsDict renders the link as its annotation dictionary. Borders are
// suppressed (/Border [0 0 0]) since the source LinkAnnotation op carries
// no border styling.
func (l *Link) AsDict() pdf.Dict {
	d := pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Link"),
		"Rect":    &l.Rect,
		"Border":  pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(0)},
	}
	switch {
	case l.URI != "":
		d["A"] = pdf.Dict{
			"Type": pdf.Name("Action"),
			"S":    pdf.Name("URI"),
			"URI":  pdf.String(l.URI),
		}
	case l.Dest != "":
		d["Dest"] = pdf.Name(l.Dest)
	case !l.PageRef.IsZero():
		d["Dest"] = pdf.Array{l.PageRef, pdf.Name("Fit")}
	}
	return d
}

// Array renders links as the page's /Annots array value.
func Array(links []*Link) pdf.Array {
	if len(links) == 0 {
		return nil
	}
	out := make(pdf.Array, len(links))
	for i, l := range links {
		out[i] = l.AsDict()
	}
	return out
}
