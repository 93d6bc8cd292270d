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

package resolve

import (
	"testing"

	"go.pdfx.dev/pdfx/graphics"
)

type fakeForms map[string]Set

func (f fakeForms) FormRefs(id string) (Set, bool) {
	s, ok := f[id]
	return s, ok
}

func TestForPageDirectReferences(t *testing.T) {
	ops := []graphics.Op{
		graphics.SetFont{Font: "F1", Size: 12},
		graphics.LoadGraphicsState{GS: "G1"},
		graphics.BeginLayer{ID: "L1"},
		graphics.UseXObject{ID: "Im1"},
	}
	got := ForPage(ops, nil)
	if _, ok := got.Fonts["F1"]; !ok {
		t.Error("missing font F1")
	}
	if _, ok := got.ExtGStates["G1"]; !ok {
		t.Error("missing extgstate G1")
	}
	if _, ok := got.Layers["L1"]; !ok {
		t.Error("missing layer L1")
	}
	if _, ok := got.XObjects["Im1"]; !ok {
		t.Error("missing xobject Im1")
	}
}

func TestForPageRecursesIntoForms(t *testing.T) {
	ops := []graphics.Op{
		graphics.UseXObject{ID: "Form1"},
	}
	forms := fakeForms{
		"Form1": Set{
			Fonts:      map[string]struct{}{"F2": {}},
			XObjects:   map[string]struct{}{},
			ExtGStates: map[string]struct{}{},
			Layers:     map[string]struct{}{},
		},
	}
	got := ForPage(ops, forms)
	if _, ok := got.Fonts["F2"]; !ok {
		t.Error("expected font referenced only by the form's own resources")
	}
}

func TestForPageHandlesCycles(t *testing.T) {
	ops := []graphics.Op{graphics.UseXObject{ID: "A"}}
	forms := fakeForms{
		"A": Set{Fonts: map[string]struct{}{}, XObjects: map[string]struct{}{"A": {}}, ExtGStates: map[string]struct{}{}, Layers: map[string]struct{}{}},
	}
	// addFormClosure's visitedForms guard must make this terminate; a test
	// timeout (rather than a wrong answer) is the failure mode being
	// guarded against here.
	got := ForPage(ops, forms)
	if _, ok := got.XObjects["A"]; !ok {
		t.Error("expected self-referencing xobject to still be recorded once")
	}
}
