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

// Package parse implements the best-effort round-trip reader: it turns a
// page's content-stream bytes back into the operation list the
// content-stream lowerer would have produced for it. The mapping is not
// exact in every direction (see the package doc for lossy cases); it
// exists so a document written by this module can be read back by it,
// not to read arbitrary third-party PDF content streams.
//
// Comments (the source of Marker ops) are consumed by the tokenizer as
// whitespace and do not survive a round trip. Tj/TJ string operands are
// recovered as raw bytes rather than shaped text, since recovering the
// original Unicode text requires the font's cmap, which a bare content
// stream does not carry.
package parse

import (
	"bytes"
	"fmt"
	"io"

	"go.pdfx.dev/pdfx"
	"go.pdfx.dev/pdfx/graphics"
)

// Options controls how Parse reacts to content it cannot interpret.
type Options struct {
	// FailOnError aborts with an error on the first malformed token or
	// operator with the wrong operand count. When false, an operator that
	// cannot be rebuilt becomes a graphics.Unknown op and parsing continues,
	// while a malformed token adds a warning and ends parsing, returning the
	// ops read before it.
	FailOnError bool
}

// Warning is a recoverable condition noticed while parsing.
type Warning struct {
	Message string
	OpIndex int
}

// Parse reconstructs the operation list for one page's content-stream
// bytes.
func Parse(data []byte, opts Options) ([]graphics.Op, []Warning, error) {
	sc := newScanner(bytes.NewReader(data))

	var ops []graphics.Op
	var warnings []Warning
	var operands []pdf.Object
	var layerStack []string
	var path pathBuilder

	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(format, args...), OpIndex: len(ops)})
	}

	for {
		obj, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opts.FailOnError {
				return nil, warnings, pdf.NewError(pdf.ErrParse, "%v", err)
			}
			warn("scanner error: %v", err)
			break
		}

		name, isOperator := obj.(pdf.Operator)
		if !isOperator {
			operands = append(operands, obj)
			continue
		}

		op, consumed, buildErr := buildOp(string(name), operands, &path, &layerStack)
		if buildErr != nil {
			if opts.FailOnError {
				return nil, warnings, pdf.NewError(pdf.ErrParse, "%s: %v", name, buildErr)
			}
			warn("%s: %v", name, buildErr)
			op = graphics.Unknown{Key: string(name), Value: operandsToString(operands)}
			consumed = len(operands)
		}
		if op != nil {
			ops = appendFusingXObject(ops, op)
		}
		operands = operands[consumed:]
	}

	if len(operands) > 0 {
		warn("%d leftover operand(s) at end of stream", len(operands))
	}

	return ops, warnings, nil
}

// appendFusingXObject collapses the "q cm /Xn Do Q" pattern the lowerer
// emits for UseXObject back into a single op, so round-tripped op counts
// match the original for this common case.
func appendFusingXObject(ops []graphics.Op, op graphics.Op) []graphics.Op {
	restore, isRestore := op.(graphics.RestoreGraphicsState)
	_ = restore
	if isRestore && len(ops) >= 3 {
		n := len(ops)
		useX, isUseX := ops[n-1].(graphics.UseXObject)
		cm, isCM := ops[n-2].(graphics.SetTransformationMatrix)
		_, isSave := ops[n-3].(graphics.SaveGraphicsState)
		if isUseX && isCM && isSave && useX.Transform == ([6]float64{}) {
			fused := graphics.UseXObject{ID: useX.ID, Transform: [6]float64{cm.A, cm.B, cm.C, cm.D, cm.E, cm.F}}
			return append(ops[:n-3], fused)
		}
	}
	return append(ops, op)
}

func operandsToString(operands []pdf.Object) string {
	var buf bytes.Buffer
	for i, o := range operands {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%v", o)
	}
	return buf.String()
}
