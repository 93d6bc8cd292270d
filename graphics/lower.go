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
	"fmt"

	"go.pdfx.dev/pdfx"
)

// PageNames is the per-page resource-name allocation the lowerer produces:
// each document-scoped resource id referenced by the page's ops is given a
// short name (F1, Im1, GS1, OC1, ...) for use in the content stream and
// recorded here for the Object-Graph Builder to put in the page's
// /Resources dictionary.
type PageNames struct {
	Fonts      map[string]string
	XObjects   map[string]string
	ExtGStates map[string]string
	Layers     map[string]string
}

// NewPageNames allocates resource names for exactly the ids in each set,
// numbered in the order the ids are given; callers pass sorted ids so
// names are stable given a fixed input (required for deterministic
// output).
func NewPageNames(fonts, xobjects, extgstates, layers []string) PageNames {
	return PageNames{
		Fonts:      allocNames(fonts, "F"),
		XObjects:   allocNames(xobjects, "Im"),
		ExtGStates: allocNames(extgstates, "GS"),
		Layers:     allocNames(layers, "OC"),
	}
}

func allocNames(ids []string, prefix string) map[string]string {
	m := make(map[string]string, len(ids))
	for i, id := range ids {
		m[id] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return m
}

// LowerResult is the output of lowering a single page's operation list.
type LowerResult struct {
	Content     []byte
	Annotations []LinkAnnotation
	Warnings    []Warning
}

// Lower converts ops into PDF content-stream bytes, one content-stream
// operator sequence per high-level op. fontRemap maps each
// external font id to its subsetter-produced (original glyph id -> subset
// glyph id) table; built-in fonts and fonts with subsetFonts=false use an
// identity mapping supplied by the caller.
func Lower(ops []Op, names PageNames, fontRemap map[string]map[uint16]uint16, opts Options) (*LowerResult, error) {
	var warnings []Warning
	w := NewWriter(opts, &warnings)

	var annotations []LinkAnnotation
	currentFont := ""

	for i, op := range ops {
		w.opIndex = i
		switch o := op.(type) {
		case SaveGraphicsState:
			w.PushGraphicsState()
		case RestoreGraphicsState:
			w.PopGraphicsState()
		case LoadGraphicsState:
			name, ok := names.ExtGStates[o.GS]
			if !ok {
				return nil, pageErr(opts, i, pdf.ErrUnknownResource, "extgstate %q not in resource table", o.GS)
			}
			w.LoadExtGState(name)
		case SetTransformationMatrix:
			w.SetMatrix(o.A, o.B, o.C, o.D, o.E, o.F)

		case StartTextSection:
			w.StartText()
		case EndTextSection:
			w.EndText()
		case SetFont:
			name := o.Font
			if resName, ok := names.Fonts[o.Font]; ok {
				name = resName
			}
			currentFont = o.Font
			w.SetFont(name, o.Size)
		case SetTextCursor:
			w.MoveText(o.X, o.Y)
		case SetTextMatrix:
			w.SetTextMatrix(o.A, o.B, o.C, o.D, o.E, o.F)
		case ShowText:
			if currentFont == "" {
				w.warn("ShowText with no font set, using default Times-Roman")
				currentFont = "Times-Roman"
			}
			items, err := encodeShowText(o.Items, fontRemap[currentFont])
			if err != nil {
				return nil, pageErr(opts, i, pdf.ErrSerialization, "%v", err)
			}
			w.ShowText(items)

		case AddLineBreak:
			w.NextLine()
		case SetLineHeight:
			w.SetLeading(o.LH)
		case SetCharacterSpacing:
			w.SetCharacterSpacing(o.V)
		case SetWordSpacing:
			w.SetWordSpacing(o.V)
		case SetHorizontalScaling:
			w.SetHorizontalScaling(o.V)
		case SetTextRenderingMode:
			w.SetTextRenderingMode(o.Mode)
		case SetLineOffset:
			w.SetTextRise(o.V)

		case SetFillColor:
			emitColor(w, o.Color, false)
		case SetOutlineColor:
			emitColor(w, o.Color, true)
		case SetOutlineThickness:
			w.SetLineWidth(o.Pt)
		case SetLineDashPattern:
			w.SetDashPattern(o.Dash, o.Phase)
		case SetLineJoinStyle:
			w.SetLineJoin(o.V)
		case SetLineCapStyle:
			w.SetLineCap(o.V)
		case SetMiterLimit:
			w.SetMiterLimit(o.V)
		case SetRenderingIntent:
			w.SetRenderingIntent(o.Intent)

		case DrawLine:
			w.DrawPath(o.Line.Points, o.Line.Closed, o.Line.Mode)
		case DrawPolygon:
			for _, ring := range o.Polygon.Rings {
				w.TracePath(ring, true)
			}
			w.PaintPath(resolvePolygonPaintMode(o.Polygon.Mode, o.Polygon.EvenOdd))

		case UseXObject:
			name, ok := names.XObjects[o.ID]
			if !ok {
				return nil, pageErr(opts, i, pdf.ErrUnknownResource, "xobject %q not in resource table", o.ID)
			}
			w.UseXObject(name, o.Transform)
		case BeginLayer:
			name, ok := names.Layers[o.ID]
			if !ok {
				return nil, pageErr(opts, i, pdf.ErrUnknownResource, "layer %q not in resource table", o.ID)
			}
			w.BeginLayer(name)
		case EndLayer:
			w.EndLayer()
		case Marker:
			w.Marker(o.ID)

		case LinkAnnotation:
			annotations = append(annotations, o)

		case Unknown:
			if opts.Secure {
				w.warn("dropping unknown operator %q in secure mode", o.Key)
			} else {
				w.Verbatim(o.Value)
			}

		default:
			return nil, pageErr(opts, i, pdf.ErrSerialization, "unrecognized op type %T", op)
		}

		if w.Err != nil {
			return nil, w.Err
		}
	}

	if opts.Secure {
		w.EndPage()
	} else if w.gsDepth != 0 {
		if opts.Strict {
			return nil, pageErr(opts, len(ops), pdf.ErrUnbalancedGraphicsState, "page ends with %d unclosed Save", w.gsDepth)
		}
		w.warn("page ends with %d unclosed graphics state levels", w.gsDepth)
	} else if w.inText {
		if opts.Strict {
			return nil, pageErr(opts, len(ops), pdf.ErrUnbalancedTextSection, "page ends with text section open")
		}
		w.warn("page ends with text section open")
	}

	return &LowerResult{Content: w.Bytes(), Annotations: annotations, Warnings: warnings}, nil
}

func encodeShowText(items []ShowTextItem, remap map[uint16]uint16) ([]TextItem, error) {
	out := make([]TextItem, 0, len(items))
	for _, it := range items {
		if it.IsKern {
			out = append(out, TextItem{IsKern: true, Kerning: it.Kerning})
			continue
		}
		var hex string
		for _, g := range it.Glyphs {
			gid := g.GID
			if remap != nil {
				if newGID, ok := remap[gid]; ok {
					gid = newGID
				}
			}
			hex += fmt.Sprintf("%04X", gid)
		}
		out = append(out, TextItem{Hex: hex})
	}
	return out, nil
}

func emitColor(w *Writer, c Color, stroke bool) {
	switch {
	case c.Gray != nil:
		if stroke {
			w.SetStrokeGray(*c.Gray)
		} else {
			w.SetFillGray(*c.Gray)
		}
	case c.RGB != nil:
		if stroke {
			w.SetStrokeRGB(c.RGB[0], c.RGB[1], c.RGB[2])
		} else {
			w.SetFillRGB(c.RGB[0], c.RGB[1], c.RGB[2])
		}
	case c.CMYK != nil:
		if stroke {
			w.SetStrokeCMYK(c.CMYK[0], c.CMYK[1], c.CMYK[2], c.CMYK[3])
		} else {
			w.SetFillCMYK(c.CMYK[0], c.CMYK[1], c.CMYK[2], c.CMYK[3])
		}
	}
}

func pageErr(opts Options, opIndex int, kind pdf.ErrorKind, format string, args ...interface{}) error {
	return pdf.AtOp(kind, opts.PageIndex, opIndex, format, args...)
}

// resolvePolygonPaintMode folds Polygon's separate EvenOdd winding flag
// into the base paint mode, so a caller that sets Mode to a plain
// PaintFill/PaintFillStroke plus EvenOdd gets the same f*/B* operator as
// one that sets the combined PaintFillEvenOdd/PaintFillStrokeEvenOdd
// mode directly.
func resolvePolygonPaintMode(mode PaintMode, evenOdd bool) PaintMode {
	if !evenOdd {
		return mode
	}
	switch mode {
	case PaintFill:
		return PaintFillEvenOdd
	case PaintFillStroke:
		return PaintFillStrokeEvenOdd
	default:
		return mode
	}
}
