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
	"fmt"

	"go.pdfx.dev/pdfx"
	"go.pdfx.dev/pdfx/graphics"
)

// pathBuilder accumulates m/l/c/h segments between path-construction
// operators and the paint operator that ends them (S, f, f*, B, B*, b,
// b*, n), mirroring the table the lowerer uses in reverse. The lowerer
// emits one m/l/c/h...paint sequence per ring rather than combining
// rings into one path object, so a reconstructed path is always a
// single subpath.
type pathBuilder struct {
	points []graphics.PathPoint
	closed bool
}

// buildOp maps one content-stream operator plus its preceding operands to
// the op it reverses, returning the number of leading operands consumed
// (almost always len(operands); path operators consume one point's worth
// at a time and return a nil op until the paint operator closes them).
// path and layerStack carry state across calls within a single Parse
// invocation, for the operators that span more than one token.
func buildOp(op string, operands []pdf.Object, path *pathBuilder, layerStack *[]string) (graphics.Op, int, error) {
	switch op {
	case "q":
		return graphics.SaveGraphicsState{}, 0, nil
	case "Q":
		return graphics.RestoreGraphicsState{}, 0, nil
	case "cm":
		nums, err := floats(operands, 6)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetTransformationMatrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}, len(operands), nil
	case "gs":
		n, err := name(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.LoadGraphicsState{GS: n}, len(operands), nil
	case "BT":
		return graphics.StartTextSection{}, 0, nil
	case "ET":
		return graphics.EndTextSection{}, 0, nil
	case "Tf":
		n, err := name(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		size, err := float(operands, 1)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetFont{Font: n, Size: size}, len(operands), nil
	case "Td":
		nums, err := floats(operands, 2)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetTextCursor{X: nums[0], Y: nums[1]}, len(operands), nil
	case "Tm":
		nums, err := floats(operands, 6)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetTextMatrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}, len(operands), nil
	case "Tj":
		s, err := str(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.ShowText{Items: []graphics.ShowTextItem{{Text: string(s)}}}, len(operands), nil
	case "TJ":
		arr, err := array(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		var items []graphics.ShowTextItem
		for _, el := range arr {
			switch v := el.(type) {
			case pdf.String:
				items = append(items, graphics.ShowTextItem{Text: string(v)})
			case pdf.Integer:
				items = append(items, graphics.ShowTextItem{Kerning: -float64(v), IsKern: true})
			case pdf.Real:
				items = append(items, graphics.ShowTextItem{Kerning: -float64(v), IsKern: true})
			}
		}
		return graphics.ShowText{Items: items}, len(operands), nil
	case "T*":
		return graphics.AddLineBreak{}, 0, nil
	case "TL":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetLineHeight{LH: v}, len(operands), nil
	case "Tc":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetCharacterSpacing{V: v}, len(operands), nil
	case "Tw":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetWordSpacing{V: v}, len(operands), nil
	case "Tz":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetHorizontalScaling{V: v}, len(operands), nil
	case "Tr":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetTextRenderingMode{Mode: int(v)}, len(operands), nil
	case "Ts":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetLineOffset{V: v}, len(operands), nil
	case "g":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetFillColor{Color: graphics.Color{Gray: &v}}, len(operands), nil
	case "G":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetOutlineColor{Color: graphics.Color{Gray: &v}}, len(operands), nil
	case "rg", "RG":
		nums, err := floats(operands, 3)
		if err != nil {
			return nil, len(operands), err
		}
		rgb := [3]float64{nums[0], nums[1], nums[2]}
		if op == "rg" {
			return graphics.SetFillColor{Color: graphics.Color{RGB: &rgb}}, len(operands), nil
		}
		return graphics.SetOutlineColor{Color: graphics.Color{RGB: &rgb}}, len(operands), nil
	case "k", "K":
		nums, err := floats(operands, 4)
		if err != nil {
			return nil, len(operands), err
		}
		cmyk := [4]float64{nums[0], nums[1], nums[2], nums[3]}
		if op == "k" {
			return graphics.SetFillColor{Color: graphics.Color{CMYK: &cmyk}}, len(operands), nil
		}
		return graphics.SetOutlineColor{Color: graphics.Color{CMYK: &cmyk}}, len(operands), nil
	case "w":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetOutlineThickness{Pt: v}, len(operands), nil
	case "j":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetLineJoinStyle{V: int(v)}, len(operands), nil
	case "J":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetLineCapStyle{V: int(v)}, len(operands), nil
	case "M":
		v, err := float(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetMiterLimit{V: v}, len(operands), nil
	case "ri":
		n, err := name(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.SetRenderingIntent{Intent: n}, len(operands), nil
	case "d":
		arr, err := array(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		phase, err := float(operands, 1)
		if err != nil {
			return nil, len(operands), err
		}
		dash := make([]float64, len(arr))
		for i, el := range arr {
			dash[i] = numberOf(el)
		}
		return graphics.SetLineDashPattern{Dash: dash, Phase: phase}, len(operands), nil
	case "m":
		nums, err := floats(operands, 2)
		if err != nil {
			return nil, len(operands), err
		}
		path.points = append(path.points, graphics.PathPoint{X: nums[0], Y: nums[1]})
		return nil, len(operands), nil
	case "l":
		nums, err := floats(operands, 2)
		if err != nil {
			return nil, len(operands), err
		}
		path.points = append(path.points, graphics.PathPoint{X: nums[0], Y: nums[1]})
		return nil, len(operands), nil
	case "c":
		nums, err := floats(operands, 6)
		if err != nil {
			return nil, len(operands), err
		}
		path.points = append(path.points, graphics.PathPoint{
			X: nums[4], Y: nums[5], IsCurve: true,
			Cx1: nums[0], Cy1: nums[1], Cx2: nums[2], Cy2: nums[3],
		})
		return nil, len(operands), nil
	case "h":
		path.closed = true
		return nil, len(operands), nil
	case "S", "f", "f*", "B", "B*", "b", "b*", "n":
		return finishPath(op, path), len(operands), nil
	case "Do":
		n, err := name(operands, 0)
		if err != nil {
			return nil, len(operands), err
		}
		return graphics.UseXObject{ID: n}, len(operands), nil
	case "BDC":
		if len(operands) >= 2 {
			if tag, ok := operands[0].(pdf.Name); ok && tag == "OC" {
				if id, ok := operands[1].(pdf.Name); ok {
					*layerStack = append(*layerStack, string(id))
					return graphics.BeginLayer{ID: string(id)}, len(operands), nil
				}
			}
		}
		return nil, len(operands), fmt.Errorf("unsupported BDC operands")
	case "EMC":
		if len(*layerStack) == 0 {
			return nil, len(operands), fmt.Errorf("EMC with no matching BDC")
		}
		n := len(*layerStack)
		id := (*layerStack)[n-1]
		*layerStack = (*layerStack)[:n-1]
		return graphics.EndLayer{ID: id}, len(operands), nil
	default:
		return nil, len(operands), fmt.Errorf("unrecognized operator")
	}
}

// finishPath converts the path accumulated since the last paint operator
// into a DrawLine op. The lowerer always emits one ring per DrawPath call
// (see Lower's handling of DrawPolygon), so a reconstructed path is never
// ambiguous between DrawLine and DrawPolygon; multiple rings painted
// together round-trip as consecutive DrawLine ops instead.
func finishPath(op string, path *pathBuilder) graphics.Op {
	points := path.points
	closed := path.closed || op == "b" || op == "b*"
	*path = pathBuilder{}

	if op == "n" {
		return nil // no-op path (commonly used to set a clip, out of scope)
	}
	return graphics.DrawLine{Line: graphics.Line{Points: points, Closed: closed, Mode: paintModeFor(op)}}
}

func paintModeFor(op string) graphics.PaintMode {
	switch op {
	case "f":
		return graphics.PaintFill
	case "f*":
		return graphics.PaintFillEvenOdd
	case "B", "b":
		return graphics.PaintFillStroke
	case "B*", "b*":
		return graphics.PaintFillStrokeEvenOdd
	case "n":
		return graphics.PaintNone
	default:
		return graphics.PaintStroke
	}
}

func floats(operands []pdf.Object, n int) ([]float64, error) {
	if len(operands) < n {
		return nil, fmt.Errorf("expected %d operands, got %d", n, len(operands))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = numberOf(operands[i])
	}
	return out, nil
}

func float(operands []pdf.Object, i int) (float64, error) {
	if i >= len(operands) {
		return 0, fmt.Errorf("missing operand %d", i)
	}
	return numberOf(operands[i]), nil
}

func numberOf(o pdf.Object) float64 {
	switch v := o.(type) {
	case pdf.Integer:
		return float64(v)
	case pdf.Real:
		return float64(v)
	default:
		return 0
	}
}

func name(operands []pdf.Object, i int) (string, error) {
	if i >= len(operands) {
		return "", fmt.Errorf("missing operand %d", i)
	}
	n, ok := operands[i].(pdf.Name)
	if !ok {
		return "", fmt.Errorf("operand %d is not a name", i)
	}
	return string(n), nil
}

func str(operands []pdf.Object, i int) (pdf.String, error) {
	if i >= len(operands) {
		return nil, fmt.Errorf("missing operand %d", i)
	}
	s, ok := operands[i].(pdf.String)
	if !ok {
		return nil, fmt.Errorf("operand %d is not a string", i)
	}
	return s, nil
}

func array(operands []pdf.Object, i int) (pdf.Array, error) {
	if i >= len(operands) {
		return nil, fmt.Errorf("missing operand %d", i)
	}
	a, ok := operands[i].(pdf.Array)
	if !ok {
		return nil, fmt.Errorf("operand %d is not an array", i)
	}
	return a, nil
}
