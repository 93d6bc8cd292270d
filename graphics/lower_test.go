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

package graphics

import (
	"strings"
	"testing"
)

func TestLowerHelloWorld(t *testing.T) {
	ops := []Op{
		StartTextSection{},
		SetFont{Font: "body", Size: 12},
		SetTextCursor{X: 72, Y: 770},
		ShowText{Items: []ShowTextItem{{Glyphs: []ShowTextGlyph{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 3}, {GID: 4}}}}},
		EndTextSection{},
	}
	names := NewPageNames([]string{"body"}, nil, nil, nil)
	remap := map[string]map[uint16]uint16{"body": {1: 1, 2: 2, 3: 3, 4: 4}}

	res, err := Lower(ops, names, remap, Options{Strict: true})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	content := string(res.Content)
	if !strings.Contains(content, "BT") || !strings.Contains(content, "ET") {
		t.Errorf("missing BT/ET: %q", content)
	}
	if !strings.Contains(content, "/F1 12 Tf") {
		t.Errorf("missing font set: %q", content)
	}
	if !strings.Contains(content, "72 770 Td") {
		t.Errorf("missing text cursor: %q", content)
	}
	if !strings.Contains(content, "<0001000200030003 0004> Tj") && !strings.Contains(content, "<00010002000300030004> Tj") {
		t.Errorf("missing Tj with hex glyphs: %q", content)
	}
}

func TestLowerUnbalancedStrict(t *testing.T) {
	ops := []Op{
		SaveGraphicsState{},
		SaveGraphicsState{},
		RestoreGraphicsState{},
	}
	names := PageNames{}
	_, err := Lower(ops, names, nil, Options{Strict: true})
	if err == nil {
		t.Fatal("expected UnbalancedGraphicsState error in strict mode")
	}
	if !strings.Contains(err.Error(), "UnbalancedGraphicsState") {
		t.Errorf("wrong error kind: %v", err)
	}
}

func TestLowerUnbalancedSecureBalances(t *testing.T) {
	ops := []Op{
		SaveGraphicsState{},
		SaveGraphicsState{},
		RestoreGraphicsState{},
	}
	names := PageNames{}
	res, err := Lower(ops, names, nil, Options{Secure: true})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	content := string(res.Content)
	if strings.Count(content, "q") != 2 || strings.Count(content, "Q") != 2 {
		t.Errorf("expected forcibly balanced q/Q, got %q", content)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about forced balancing")
	}
}

func TestLowerUnknownResourceError(t *testing.T) {
	ops := []Op{UseXObject{ID: "missing"}}
	_, err := Lower(ops, PageNames{}, nil, Options{Strict: true})
	if err == nil || !strings.Contains(err.Error(), "UnknownResource") {
		t.Fatalf("expected UnknownResource error, got %v", err)
	}
}

func TestLowerDrawPolygonSharesOnePaintOperator(t *testing.T) {
	outer := []PathPoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	hole := []PathPoint{{X: 3, Y: 3}, {X: 7, Y: 3}, {X: 7, Y: 7}, {X: 3, Y: 7}}
	ops := []Op{
		DrawPolygon{Polygon: Polygon{Rings: [][]PathPoint{outer, hole}, EvenOdd: true, Mode: PaintFill}},
	}

	res, err := Lower(ops, PageNames{}, nil, Options{Strict: true})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	content := string(res.Content)

	if n := strings.Count(content, "h"); n != 2 {
		t.Errorf("expected 2 closing h operators (one per ring), got %d in %q", n, content)
	}
	if got := strings.Count(content, "f*"); got != 1 {
		t.Errorf("expected exactly 1 shared f* paint operator for a 2-ring polygon, got %d in %q", got, content)
	}
	if strings.HasSuffix(strings.TrimSpace(content), "h") {
		t.Errorf("expected a trailing paint operator, not a bare close: %q", content)
	}
}

func TestLowerLinkAnnotationNotInContentStream(t *testing.T) {
	ops := []Op{
		LinkAnnotation{Rect: [4]float64{0, 0, 10, 10}, URI: "https://example.com"},
	}
	res, err := Lower(ops, PageNames{}, nil, Options{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(res.Content) != 0 {
		t.Errorf("expected empty content stream, got %q", res.Content)
	}
	if len(res.Annotations) != 1 {
		t.Fatalf("expected 1 buffered annotation, got %d", len(res.Annotations))
	}
}
