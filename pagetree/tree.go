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

// Package pagetree builds the PDF page tree: the root Pages node every
// page object's /Parent points back to.
package pagetree

import "go.pdfx.dev/pdfx"

// InheritableAttributes are entries the page tree root can carry so each
// page object doesn't need to repeat them (a PDF reader inherits /Resources,
// /MediaBox, /CropBox and /Rotate up the parent chain when a page omits
// them). Only MediaBox is supported: Close writes it on the root node when
// it is set, and writes no other inheritable entry.
type InheritableAttributes struct {
	MediaBox *pdf.Rectangle
}

// Writer accumulates page object references and writes the single /Pages
// node referencing them, in insertion order: page order in the output
// always matches the order pages were appended.
//
// A real-scale PDF library balances the page tree into multiple
// intermediate Pages nodes to bound per-node array size; this module
// writes one flat node, which is valid PDF and simpler, at the cost of a
// single large /Kids array for documents with very many pages.
type Writer struct {
	out   pdf.Putter
	attrs *InheritableAttributes
	ref   pdf.Reference
	kids  []pdf.Reference
}

// NewWriter allocates the page tree root's object number (so individual
// page dicts can set /Parent to it before the tree itself is closed) and
// returns a Writer.
func NewWriter(out pdf.Putter, attrs *InheritableAttributes) *Writer {
	return &Writer{out: out, attrs: attrs, ref: out.Alloc()}
}

// Ref returns the page tree root's object reference, for use as a page
// dict's /Parent before Close is called.
func (t *Writer) Ref() pdf.Reference { return t.ref }

// AppendPage records one page object reference in insertion order.
func (t *Writer) AppendPage(ref pdf.Reference) {
	t.kids = append(t.kids, ref)
}

// Close writes the /Pages node and returns its reference.
func (t *Writer) Close() (pdf.Reference, error) {
	kids := make(pdf.Array, len(t.kids))
	for i, k := range t.kids {
		kids[i] = k
	}
	d := pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(len(t.kids)),
	}
	if t.attrs != nil && t.attrs.MediaBox != nil {
		d["MediaBox"] = t.attrs.MediaBox
	}
	if err := t.out.Put(t.ref, d); err != nil {
		return t.ref, err
	}
	return t.ref, nil
}
