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

// Package resolve implements the page-scoped Resource Resolver: given a
// page's operation list, it computes the transitive closure of fonts,
// XObjects, extended graphics states, and layers the page actually
// references, without mutating the document.
package resolve

import "go.pdfx.dev/pdfx/graphics"

// Set is the four id sets a page references, as plain Go sets
// (map[id]struct{}) so membership tests are O(1) and iteration order is
// left to the caller (callers that need determinism should sort the keys,
// as the Document Assembler's id-allocation order already is).
type Set struct {
	Fonts      map[string]struct{}
	XObjects   map[string]struct{}
	ExtGStates map[string]struct{}
	Layers     map[string]struct{}
}

func newSet() Set {
	return Set{
		Fonts:      map[string]struct{}{},
		XObjects:   map[string]struct{}{},
		ExtGStates: map[string]struct{}{},
		Layers:     map[string]struct{}{},
	}
}

// FormResources looks up a Form XObject's own resource sub-references, so
// ForPage can recurse into it. document.Save passes a nil FormResources,
// so it gets no recursion; resolve never imports document to avoid a cycle.
type FormResources interface {
	// FormRefs returns the resource ids a Form XObject (identified by its
	// XObjectId) itself references, or ok=false if id does not name a form.
	FormRefs(id string) (Set, bool)
}

// ForPage walks ops once and returns every resource id transitively
// referenced. visited bounds recursion into Form XObjects: a form already
// expanded on this page is treated as resolved on first visit, so cycles
// terminate.
func ForPage(ops []graphics.Op, forms FormResources) Set {
	out := newSet()
	visitedForms := map[string]bool{}
	collectOps(ops, out, forms, visitedForms)
	return out
}

func collectOps(ops []graphics.Op, out Set, forms FormResources, visitedForms map[string]bool) {
	for _, op := range ops {
		switch o := op.(type) {
		case graphics.SetFont:
			out.Fonts[o.Font] = struct{}{}
		case graphics.LoadGraphicsState:
			out.ExtGStates[o.GS] = struct{}{}
		case graphics.BeginLayer:
			out.Layers[o.ID] = struct{}{}
		case graphics.UseXObject:
			out.XObjects[o.ID] = struct{}{}
			addFormClosure(o.ID, out, forms, visitedForms)
		}
	}
}

func addFormClosure(id string, out Set, forms FormResources, visitedForms map[string]bool) {
	if forms == nil || visitedForms[id] {
		return
	}
	visitedForms[id] = true
	sub, ok := forms.FormRefs(id)
	if !ok {
		return
	}
	for f := range sub.Fonts {
		out.Fonts[f] = struct{}{}
	}
	for x := range sub.XObjects {
		out.XObjects[x] = struct{}{}
		addFormClosure(x, out, forms, visitedForms)
	}
	for g := range sub.ExtGStates {
		out.ExtGStates[g] = struct{}{}
	}
	for l := range sub.Layers {
		out.Layers[l] = struct{}{}
	}
}
