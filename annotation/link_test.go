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

package annotation

import (
	"testing"

	"go.pdfx.dev/pdfx"
)

func TestLinkAsDictURI(t *testing.T) {
	l := &Link{Rect: pdf.Rectangle{URx: 100, URy: 20}, URI: "https://example.com"}
	d := l.AsDict()
	if d["Subtype"] != pdf.Name("Link") {
		t.Fatalf("expected Subtype Link, got %v", d["Subtype"])
	}
	action, ok := d["A"].(pdf.Dict)
	if !ok || action["URI"] != pdf.String("https://example.com") {
		t.Errorf("expected a URI action, got %v", d["A"])
	}
}

func TestLinkAsDictPageDest(t *testing.T) {
	ref := pdf.Reference{Number: 7}
	l := &Link{Rect: pdf.Rectangle{URx: 50, URy: 50}, PageRef: ref}
	d := l.AsDict()
	arr, ok := d["Dest"].(pdf.Array)
	if !ok || len(arr) != 2 || arr[0] != ref {
		t.Errorf("expected [ref /Fit] destination, got %v", d["Dest"])
	}
}

func TestArrayEmptyIsNil(t *testing.T) {
	if Array(nil) != nil {
		t.Error("expected nil for no links")
	}
}
