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

// Package graphics implements the Content-Stream Lowerer: it turns a
// page's high-level operation list into the literal bytes of a PDF
// content stream, maintaining graphics-state save/restore nesting and
// text-section discipline along the way.
package graphics

import (
	"bytes"
	"fmt"
	"strings"

	"go.pdfx.dev/pdfx"
)

// Writer emits PDF content-stream tokens to an internal buffer, tracking
// enough state (graphics-state nesting depth, whether a text section is
// open) to catch q/Q and BT/ET balance violations. Like this module's
// other writer-style types, it follows the sticky-Err convention: once
// Err is set every method becomes a no-op.
type Writer struct {
	Err error

	buf bytes.Buffer

	gsDepth   int
	inText    bool
	secure    bool
	strict    bool
	pageIndex int
	opIndex   int

	warnings *[]Warning
}

// Warning is a recoverable condition recorded while lowering one page.
type Warning struct {
	Message   string
	PageIndex int
	OpIndex   int
}

// Options controls how a Writer enforces its graphics-state and
// text-section balancing rules.
type Options struct {
	Secure    bool // drop Unknown ops and forcibly balance q/Q and BT/ET at page end
	Strict    bool // unbalanced q/Q or BT/ET is a terminal error instead of a warning
	PageIndex int
}

// NewWriter creates a content-stream Writer. Warnings produced while
// lowering are appended to *warnings (which may be nil to discard them).
func NewWriter(opts Options, warnings *[]Warning) *Writer {
	return &Writer{secure: opts.Secure, strict: opts.Strict, pageIndex: opts.PageIndex, warnings: warnings}
}

// Bytes returns the content-stream bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) warn(format string, args ...interface{}) {
	if w.warnings != nil {
		*w.warnings = append(*w.warnings, Warning{
			Message:   fmt.Sprintf(format, args...),
			PageIndex: w.pageIndex,
			OpIndex:   w.opIndex,
		})
	}
}

func (w *Writer) fail(kind pdf.ErrorKind, format string, args ...interface{}) {
	if w.Err == nil {
		w.Err = pdf.AtOp(kind, w.pageIndex, w.opIndex, format, args...)
	}
}

func (w *Writer) write(tok string) {
	if w.Err != nil {
		return
	}
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString(tok)
}

func (w *Writer) num(x float64) string {
	s := fmt.Sprintf("%.4f", x)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}

func (w *Writer) nums(xs ...float64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = w.num(x)
	}
	return out
}

// --- graphics state ---

func (w *Writer) PushGraphicsState() {
	if w.Err != nil {
		return
	}
	w.gsDepth++
	w.write("q")
}

func (w *Writer) PopGraphicsState() {
	if w.Err != nil {
		return
	}
	if w.gsDepth == 0 {
		if w.strict {
			w.fail(pdf.ErrUnbalancedGraphicsState, "Restore without matching Save")
			return
		}
		w.warn("Restore without matching Save, ignoring")
		return
	}
	w.gsDepth--
	w.write("Q")
}

// EndPage forcibly balances any unclosed graphics state and text section;
// called after the last op on a page when Options.Secure is set.
func (w *Writer) EndPage() {
	if w.Err != nil {
		return
	}
	if w.inText {
		w.warn("text section left open at end of page, closing")
		w.write("ET")
		w.inText = false
	}
	for w.gsDepth > 0 {
		w.warn("graphics state left unbalanced at end of page, closing")
		w.write("Q")
		w.gsDepth--
	}
}

func (w *Writer) LoadExtGState(name string) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("/%s gs", name))
}

func (w *Writer) SetMatrix(a, b, c, d, e, f float64) {
	if w.Err != nil {
		return
	}
	n := w.nums(a, b, c, d, e, f)
	w.write(fmt.Sprintf("%s %s %s %s %s %s cm", n[0], n[1], n[2], n[3], n[4], n[5]))
}

// --- text ---

func (w *Writer) StartText() {
	if w.Err != nil {
		return
	}
	if w.inText {
		w.warn("nested text section start, ignoring")
		return
	}
	w.inText = true
	w.write("BT")
}

func (w *Writer) EndText() {
	if w.Err != nil {
		return
	}
	if !w.inText {
		if w.strict {
			w.fail(pdf.ErrUnbalancedTextSection, "End without matching Start")
			return
		}
		w.warn("text section end without matching start, ignoring")
		return
	}
	w.inText = false
	w.write("ET")
}

// ensureText auto-opens a text section in lenient mode; returns false (and
// records the failure) in strict mode.
func (w *Writer) ensureText(opName string) bool {
	if w.inText {
		return true
	}
	if w.strict {
		w.fail(pdf.ErrUnbalancedTextSection, "%s outside text section", opName)
		return false
	}
	w.warn("%s outside text section, auto-opening one", opName)
	w.inText = true
	w.write("BT")
	return true
}

func (w *Writer) SetFont(resName string, size float64) {
	if w.Err != nil {
		return
	}
	if !w.ensureText("SetFont") {
		return
	}
	w.write(fmt.Sprintf("/%s %s Tf", resName, w.num(size)))
}

func (w *Writer) MoveText(x, y float64) {
	if w.Err != nil || !w.ensureText("SetTextCursor") {
		return
	}
	n := w.nums(x, y)
	w.write(fmt.Sprintf("%s %s Td", n[0], n[1]))
}

func (w *Writer) SetTextMatrix(a, b, c, d, e, f float64) {
	if w.Err != nil || !w.ensureText("SetTextMatrix") {
		return
	}
	n := w.nums(a, b, c, d, e, f)
	w.write(fmt.Sprintf("%s %s %s %s %s %s Tm", n[0], n[1], n[2], n[3], n[4], n[5]))
}

func (w *Writer) NextLine() {
	if w.Err != nil || !w.ensureText("AddLineBreak") {
		return
	}
	w.write("T*")
}

func (w *Writer) SetLeading(lh float64) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s TL", w.num(lh)))
}

func (w *Writer) SetCharacterSpacing(v float64) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s Tc", w.num(v)))
}

func (w *Writer) SetWordSpacing(v float64) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s Tw", w.num(v)))
}

func (w *Writer) SetHorizontalScaling(v float64) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s Tz", w.num(v)))
}

func (w *Writer) SetTextRenderingMode(mode int) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%d Tr", mode))
}

func (w *Writer) SetTextRise(v float64) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s Ts", w.num(v)))
}

// TextItem is one element of a ShowText op: either a hex-encoded glyph run
// or a kerning adjustment between two runs.
type TextItem struct {
	Hex      string  // hex-encoded subset glyph ids, without the surrounding <>
	Kerning  float64 // thousandths-of-em adjustment; zero when Hex is set
	IsKern   bool
}

func (w *Writer) ShowText(items []TextItem) {
	if w.Err != nil || !w.ensureText("ShowText") {
		return
	}
	if len(items) == 1 && !items[0].IsKern {
		w.write(fmt.Sprintf("<%s> Tj", items[0].Hex))
		return
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if it.IsKern {
			sb.WriteString(w.num(-it.Kerning))
		} else {
			sb.WriteByte('<')
			sb.WriteString(it.Hex)
			sb.WriteByte('>')
		}
	}
	sb.WriteString("] TJ")
	w.write(sb.String())
}

// --- color & line state ---

func (w *Writer) SetFillGray(g float64)   { w.emit1(g, "g") }
func (w *Writer) SetStrokeGray(g float64) { w.emit1(g, "G") }
func (w *Writer) SetFillRGB(r, g, b float64) {
	if w.Err != nil {
		return
	}
	n := w.nums(r, g, b)
	w.write(fmt.Sprintf("%s %s %s rg", n[0], n[1], n[2]))
}
func (w *Writer) SetStrokeRGB(r, g, b float64) {
	if w.Err != nil {
		return
	}
	n := w.nums(r, g, b)
	w.write(fmt.Sprintf("%s %s %s RG", n[0], n[1], n[2]))
}
func (w *Writer) SetFillCMYK(c, m, y, k float64) {
	if w.Err != nil {
		return
	}
	n := w.nums(c, m, y, k)
	w.write(fmt.Sprintf("%s %s %s %s k", n[0], n[1], n[2], n[3]))
}
func (w *Writer) SetStrokeCMYK(c, m, y, k float64) {
	if w.Err != nil {
		return
	}
	n := w.nums(c, m, y, k)
	w.write(fmt.Sprintf("%s %s %s %s K", n[0], n[1], n[2], n[3]))
}

func (w *Writer) emit1(v float64, op string) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("%s %s", w.num(v), op))
}

func (w *Writer) SetLineWidth(v float64)   { w.emit1(v, "w") }
func (w *Writer) SetLineCap(v int)         { w.write(fmt.Sprintf("%d J", v)) }
func (w *Writer) SetLineJoin(v int)        { w.write(fmt.Sprintf("%d j", v)) }
func (w *Writer) SetMiterLimit(v float64)  { w.emit1(v, "M") }
func (w *Writer) SetRenderingIntent(v string) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("/%s ri", v))
}

func (w *Writer) SetDashPattern(dash []float64, phase float64) {
	if w.Err != nil {
		return
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = w.num(d)
	}
	w.write(fmt.Sprintf("[%s] %s d", strings.Join(parts, " "), w.num(phase)))
}

// --- paths ---

// PathPoint is one vertex of a path; Cx1/Cy1/Cx2/Cy2 are populated for a
// cubic Bezier segment (emitted with the `c` operator) and left zero for a
// straight line segment (emitted with `l`).
type PathPoint struct {
	X, Y                   float64
	IsCurve                bool
	Cx1, Cy1, Cx2, Cy2     float64
}

// PaintMode selects how a path is painted after being traced.
type PaintMode int

const (
	PaintStroke PaintMode = iota
	PaintFill
	PaintFillStroke
	PaintFillEvenOdd
	PaintFillStrokeEvenOdd
	PaintNone
)

// TracePath emits one subpath's m/l/c segments (and a closing h if
// closed) with no paint operator, so a caller can trace several subpaths
// of a single path object — sharing one path's even-odd/nonzero winding
// rule across all of them, e.g. an outer ring plus an inner hole — before
// a single call to PaintPath paints the whole thing.
func (w *Writer) TracePath(points []PathPoint, closed bool) {
	if w.Err != nil || len(points) == 0 {
		return
	}
	n := w.nums(points[0].X, points[0].Y)
	w.write(fmt.Sprintf("%s %s m", n[0], n[1]))
	for _, p := range points[1:] {
		if p.IsCurve {
			c := w.nums(p.Cx1, p.Cy1, p.Cx2, p.Cy2, p.X, p.Y)
			w.write(fmt.Sprintf("%s %s %s %s %s %s c", c[0], c[1], c[2], c[3], c[4], c[5]))
		} else {
			c := w.nums(p.X, p.Y)
			w.write(fmt.Sprintf("%s %s l", c[0], c[1]))
		}
	}
	if closed {
		w.write("h")
	}
}

// PaintPath emits the paint operator selected by mode, closing out
// whichever subpaths were most recently traced.
func (w *Writer) PaintPath(mode PaintMode) {
	if w.Err != nil {
		return
	}
	switch mode {
	case PaintStroke:
		w.write("S")
	case PaintFill:
		w.write("f")
	case PaintFillStroke:
		w.write("B")
	case PaintFillEvenOdd:
		w.write("f*")
	case PaintFillStrokeEvenOdd:
		w.write("B*")
	case PaintNone:
		w.write("n")
	}
}

// DrawPath traces a single subpath and immediately paints it; for a path
// made of several subpaths that must share one paint operator, call
// TracePath per subpath followed by one PaintPath instead.
func (w *Writer) DrawPath(points []PathPoint, closed bool, mode PaintMode) {
	w.TracePath(points, closed)
	w.PaintPath(mode)
}

// --- XObjects, layers, markers, annotations ---

func (w *Writer) UseXObject(resName string, m [6]float64) {
	if w.Err != nil {
		return
	}
	w.PushGraphicsState()
	w.SetMatrix(m[0], m[1], m[2], m[3], m[4], m[5])
	w.write(fmt.Sprintf("/%s Do", resName))
	w.PopGraphicsState()
}

func (w *Writer) BeginLayer(resName string) {
	if w.Err != nil {
		return
	}
	w.write(fmt.Sprintf("/OC /%s BDC", resName))
}

func (w *Writer) EndLayer() {
	if w.Err != nil {
		return
	}
	w.write("EMC")
}

func (w *Writer) Marker(id string) {
	if w.Err != nil {
		return
	}
	w.write("% " + id)
}

// Verbatim re-emits an unrecognized operator's raw token text unmodified
// (used for Unknown ops when Options.Secure is false).
func (w *Writer) Verbatim(tok string) {
	if w.Err != nil {
		return
	}
	w.write(tok)
}
