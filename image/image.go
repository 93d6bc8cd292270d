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

// Package image builds image XObjects from decoded raster pixel buffers.
// The raster decoder itself (turning a JPEG/PNG/etc. byte stream into a
// pixel buffer, a [Format] tag, and dimensions) is an external
// collaborator; this package only consumes its output.
package image

import (
	"math"

	"go.pdfx.dev/pdfx"
)

// Format tags the in-memory pixel layout a decoder hands to this package.
// Every row is tightly packed (no padding) in all formats.
type Format int

const (
	// R8 is one 8-bit gray sample per pixel.
	R8 Format = iota
	// RGB8 is three 8-bit samples per pixel, red first.
	RGB8
	// RGBA8 is RGB8 plus an 8-bit alpha sample, used to emit a soft mask.
	RGBA8
	// BGR8 is RGB8 with the first and third samples swapped, the layout
	// many raster decoders produce natively.
	BGR8
	// R16 is one big-endian 16-bit gray sample per pixel.
	R16
	// RGB16 is three big-endian 16-bit samples per pixel.
	RGB16
	// Float32Gray is one 32-bit float gray sample per pixel in [0,1],
	// emitted as tone-mapped 8-bit gray with a warning, since PDF has no
	// native floating-point image sample format.
	Float32Gray
)

// Warning is a recoverable condition noticed while building an XObject,
// currently only the float-to-8-bit tone-mapping notice.
type Warning struct {
	Message string
}

// Raster is the external raster decoder's output: a decoded pixel buffer
// in one of the formats above, plus the dimensions needed to size the
// PDF image dictionary.
type Raster struct {
	Format Format
	Width  int
	Height int
	Pixels []byte
}

// XObject is a built (not yet embedded) image XObject: the color stream
// plus, for formats carrying alpha, a separate soft-mask XObject.
type XObject struct {
	ColorSpace       pdf.Name
	BitsPerComponent int
	Width, Height    int
	Data             []byte
	SMask            *XObject // non-nil only for the top-level color XObject
	Warnings         []Warning
}

// Build converts r into an XObject per the pixel-format table: R8 becomes
// DeviceGray, RGB8 DeviceRGB, RGBA8 DeviceRGB with a DeviceGray soft mask
// carrying the alpha channel, BGR8 is swizzled into RGB8, R16/RGB16 keep
// 16 bits per component, and Float32Gray is tone-mapped to 8-bit gray
// with a warning.
func Build(r Raster) (*XObject, error) {
	switch r.Format {
	case R8:
		if err := checkLen(r, 1); err != nil {
			return nil, err
		}
		return &XObject{ColorSpace: "DeviceGray", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: r.Pixels}, nil

	case RGB8:
		if err := checkLen(r, 3); err != nil {
			return nil, err
		}
		return &XObject{ColorSpace: "DeviceRGB", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: r.Pixels}, nil

	case BGR8:
		if err := checkLen(r, 3); err != nil {
			return nil, err
		}
		rgb := make([]byte, len(r.Pixels))
		for i := 0; i+2 < len(r.Pixels); i += 3 {
			rgb[i], rgb[i+1], rgb[i+2] = r.Pixels[i+2], r.Pixels[i+1], r.Pixels[i]
		}
		return &XObject{ColorSpace: "DeviceRGB", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: rgb}, nil

	case RGBA8:
		if err := checkLen(r, 4); err != nil {
			return nil, err
		}
		n := r.Width * r.Height
		color := make([]byte, 0, n*3)
		alpha := make([]byte, 0, n)
		for i := 0; i < n; i++ {
			p := r.Pixels[i*4 : i*4+4]
			color = append(color, p[0], p[1], p[2])
			alpha = append(alpha, p[3])
		}
		return &XObject{
			ColorSpace: "DeviceRGB", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: color,
			SMask: &XObject{ColorSpace: "DeviceGray", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: alpha},
		}, nil

	case R16:
		if err := checkLen(r, 2); err != nil {
			return nil, err
		}
		return &XObject{ColorSpace: "DeviceGray", BitsPerComponent: 16, Width: r.Width, Height: r.Height, Data: r.Pixels}, nil

	case RGB16:
		if err := checkLen(r, 6); err != nil {
			return nil, err
		}
		return &XObject{ColorSpace: "DeviceRGB", BitsPerComponent: 16, Width: r.Width, Height: r.Height, Data: r.Pixels}, nil

	case Float32Gray:
		if len(r.Pixels) != r.Width*r.Height*4 {
			return nil, pdf.NewError(pdf.ErrImageDecode, "float32 gray buffer has wrong length")
		}
		gray := toneMap(r.Pixels, r.Width*r.Height)
		return &XObject{
			ColorSpace: "DeviceGray", BitsPerComponent: 8, Width: r.Width, Height: r.Height, Data: gray,
			Warnings: []Warning{{Message: "floating-point image tone-mapped to 8-bit gray"}},
		}, nil

	default:
		return nil, pdf.NewError(pdf.ErrImageDecode, "unsupported pixel format %d", r.Format)
	}
}

func checkLen(r Raster, bytesPerPixel int) error {
	want := r.Width * r.Height * bytesPerPixel
	if len(r.Pixels) != want {
		return pdf.NewError(pdf.ErrImageDecode, "pixel buffer has %d bytes, want %d for %dx%d", len(r.Pixels), want, r.Width, r.Height)
	}
	return nil
}

// toneMap reduces n big-endian IEEE754 float32 samples in [0,1] (clamped)
// to n 8-bit gray samples.
func toneMap(data []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bits := uint32(data[i*4])<<24 | uint32(data[i*4+1])<<16 | uint32(data[i*4+2])<<8 | uint32(data[i*4+3])
		f := math.Float32frombits(bits)
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		out[i] = byte(f*255 + 0.5)
	}
	return out
}

// Embed writes x (and its soft mask, if any) as indirect stream objects
// and returns the color XObject's reference, for use in a page's
// /Resources /XObject dictionary.
func (x *XObject) Embed(w pdf.Putter) (pdf.Reference, error) {
	var smaskRef pdf.Reference
	if x.SMask != nil {
		var err error
		smaskRef, err = x.SMask.embedOne(w, pdf.Reference{})
		if err != nil {
			return pdf.Reference{}, err
		}
	}
	return x.embedOne(w, smaskRef)
}

func (x *XObject) embedOne(w pdf.Putter, smaskRef pdf.Reference) (pdf.Reference, error) {
	ref := w.Alloc()
	dict := pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(x.Width),
		"Height":           pdf.Integer(x.Height),
		"ColorSpace":       x.ColorSpace,
		"BitsPerComponent": pdf.Integer(x.BitsPerComponent),
	}
	if !smaskRef.IsZero() {
		dict["SMask"] = smaskRef
	}
	stm, err := w.OpenStream(ref, dict, pdf.FilterFlate)
	if err != nil {
		return pdf.Reference{}, err
	}
	if _, err := stm.Write(x.Data); err != nil {
		return pdf.Reference{}, err
	}
	if err := stm.Close(); err != nil {
		return pdf.Reference{}, err
	}
	return ref, nil
}
