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

// Package outline builds the PDF document outline (bookmarks) tree.
package outline

import "go.pdfx.dev/pdfx"

// Node is one bookmark entry: a title, the page it jumps to (by page
// object reference), and its children in document order.
type Node struct {
	Title    string
	PageRef  pdf.Reference
	Children []*Node
}

// Write allocates and writes the outline dictionary tree rooted at roots,
// returning the reference to the top-level /Outlines dictionary. Returns
// the zero Reference if roots is empty (no outline is written).
func Write(out pdf.Putter, roots []*Node) (pdf.Reference, error) {
	if len(roots) == 0 {
		return pdf.Reference{}, nil
	}

	rootRef := out.Alloc()
	firstRef, lastRef, count, err := writeSiblings(out, roots, rootRef)
	if err != nil {
		return pdf.Reference{}, err
	}
	d := pdf.Dict{
		"Type":  pdf.Name("Outlines"),
		"First": firstRef,
		"Last":  lastRef,
		"Count": pdf.Integer(count),
	}
	if err := out.Put(rootRef, d); err != nil {
		return pdf.Reference{}, err
	}
	return rootRef, nil
}

// writeSiblings writes a run of sibling nodes under parent, linking
// /Next and /Prev, and returns the first and last child's references plus
// the total open-descendant count (for the parent's /Count).
func writeSiblings(out pdf.Putter, nodes []*Node, parent pdf.Reference) (first, last pdf.Reference, count int, err error) {
	refs := make([]pdf.Reference, len(nodes))
	for i := range nodes {
		refs[i] = out.Alloc()
	}

	total := 0
	for i, n := range nodes {
		d := pdf.Dict{
			"Title":  pdf.TextString(n.Title),
			"Parent": parent,
		}
		if i > 0 {
			d["Prev"] = refs[i-1]
		}
		if i < len(nodes)-1 {
			d["Next"] = refs[i+1]
		}
		if !n.PageRef.IsZero() {
			d["Dest"] = pdf.Array{n.PageRef, pdf.Name("Fit")}
		}
		total++
		if len(n.Children) > 0 {
			childFirst, childLast, childCount, err := writeSiblings(out, n.Children, refs[i])
			if err != nil {
				return pdf.Reference{}, pdf.Reference{}, 0, err
			}
			d["First"] = childFirst
			d["Last"] = childLast
			d["Count"] = pdf.Integer(childCount)
			total += childCount
		}
		if err := out.Put(refs[i], d); err != nil {
			return pdf.Reference{}, pdf.Reference{}, 0, err
		}
	}
	return refs[0], refs[len(refs)-1], total, nil
}
