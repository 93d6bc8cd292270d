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

package image

import "testing"

func TestBuildRGB8(t *testing.T) {
	x, err := Build(Raster{Format: RGB8, Width: 2, Height: 1, Pixels: []byte{255, 0, 0, 0, 255, 0}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if x.ColorSpace != "DeviceRGB" || x.BitsPerComponent != 8 {
		t.Errorf("got %s/%d, want DeviceRGB/8", x.ColorSpace, x.BitsPerComponent)
	}
	if x.SMask != nil {
		t.Error("RGB8 should not produce a soft mask")
	}
}

func TestBuildRGBA8ProducesSoftMask(t *testing.T) {
	x, err := Build(Raster{Format: RGBA8, Width: 1, Height: 1, Pixels: []byte{10, 20, 30, 128}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if x.SMask == nil {
		t.Fatal("RGBA8 must produce a soft mask")
	}
	if got := x.Data; len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("color data = %v, want [10 20 30]", got)
	}
	if got := x.SMask.Data; len(got) != 1 || got[0] != 128 {
		t.Errorf("smask data = %v, want [128]", got)
	}
}

func TestBuildBGR8Swizzles(t *testing.T) {
	x, err := Build(Raster{Format: BGR8, Width: 1, Height: 1, Pixels: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []byte{3, 2, 1}
	for i, b := range want {
		if x.Data[i] != b {
			t.Errorf("Data[%d] = %d, want %d", i, x.Data[i], b)
		}
	}
}

func TestBuildRejectsWrongBufferLength(t *testing.T) {
	_, err := Build(Raster{Format: RGB8, Width: 2, Height: 2, Pixels: []byte{1, 2, 3}})
	if err == nil {
		t.Fatal("expected an error for a short pixel buffer")
	}
}

func TestBuildFloat32GrayToneMapsAndWarns(t *testing.T) {
	// 1.0 as big-endian IEEE754 float32.
	one := []byte{0x3F, 0x80, 0x00, 0x00}
	x, err := Build(Raster{Format: Float32Gray, Width: 1, Height: 1, Pixels: one})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(x.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(x.Warnings))
	}
	if x.Data[0] != 255 {
		t.Errorf("tone-mapped sample = %d, want 255", x.Data[0])
	}
}
