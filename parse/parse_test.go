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

package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.pdfx.dev/pdfx/graphics"
)

func TestParseGraphicsState(t *testing.T) {
	ops, warnings, err := Parse([]byte("q\n1 0 0 1 10 20 cm\nQ\n"), Options{FailOnError: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	want := []graphics.Op{
		graphics.SaveGraphicsState{},
		graphics.SetTransformationMatrix{A: 1, D: 1, E: 10, F: 20},
		graphics.RestoreGraphicsState{},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTextShowing(t *testing.T) {
	ops, _, err := Parse([]byte("BT /F1 12 Tf 100 700 Td (Hi) Tj ET\n"), Options{FailOnError: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []graphics.Op{
		graphics.StartTextSection{},
		graphics.SetFont{Font: "F1", Size: 12},
		graphics.SetTextCursor{X: 100, Y: 700},
		graphics.ShowText{Items: []graphics.ShowTextItem{{Text: "Hi"}}},
		graphics.EndTextSection{},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFusesXObjectUsage(t *testing.T) {
	ops, _, err := Parse([]byte("q\n2 0 0 2 0 0 cm\n/Im0 Do\nQ\n"), Options{FailOnError: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []graphics.Op{
		graphics.UseXObject{ID: "Im0", Transform: [6]float64{2, 0, 0, 2, 0, 0}},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLayerBeginEnd(t *testing.T) {
	ops, _, err := Parse([]byte("/OC /MC0 BDC\nEMC\n"), Options{FailOnError: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []graphics.Op{
		graphics.BeginLayer{ID: "MC0"},
		graphics.EndLayer{ID: "MC0"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnmatchedEMCIsAWarningNotAFailure(t *testing.T) {
	ops, warnings, err := Parse([]byte("EMC\n"), Options{FailOnError: false})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(warnings), warnings)
	}
	if len(ops) != 1 {
		t.Fatalf("expected one Unknown op, got %d", len(ops))
	}
	if _, ok := ops[0].(graphics.Unknown); !ok {
		t.Errorf("expected graphics.Unknown, got %T", ops[0])
	}
}

func TestParseUnmatchedEMCFailsWhenRequested(t *testing.T) {
	_, _, err := Parse([]byte("EMC\n"), Options{FailOnError: true})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseDrawLine(t *testing.T) {
	ops, _, err := Parse([]byte("0 0 m 10 0 l 10 10 l h S\n"), Options{FailOnError: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected one op, got %d: %v", len(ops), ops)
	}
	line, ok := ops[0].(graphics.DrawLine)
	if !ok {
		t.Fatalf("expected graphics.DrawLine, got %T", ops[0])
	}
	if !line.Line.Closed {
		t.Error("expected path to be closed via h")
	}
	if line.Line.Mode != graphics.PaintStroke {
		t.Errorf("expected PaintStroke, got %v", line.Line.Mode)
	}
	if len(line.Line.Points) != 3 {
		t.Errorf("expected 3 points, got %d", len(line.Line.Points))
	}
}
