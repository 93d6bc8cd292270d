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

package metadata

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"seehuhn.de/go/icc"
	"seehuhn.de/go/xmp"

	"go.pdfx.dev/pdfx"
)

func TestBuildPacketWritesTitleAndAuthor(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	info := &Info{
		Title:    "Test Document",
		Authors:  []string{"Jane Doe"},
		Keywords: "test, metadata",
		Producer: "pdfx",
	}
	packet := BuildPacket(info, now)

	var buf bytes.Buffer
	if err := packet.Write(&buf, &xmp.PacketOptions{Pretty: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Document") {
		t.Error("packet is missing the title")
	}
	if !strings.Contains(out, "Jane Doe") {
		t.Error("packet is missing the author")
	}
}

func TestWritePacketReturnsReference(t *testing.T) {
	w := pdf.NewWriter(&bytes.Buffer{}, nil)
	packet := BuildPacket(&Info{Title: "X"}, time.Now())
	ref, err := WritePacket(w, packet, false)
	if err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if ref.IsZero() {
		t.Error("expected a non-zero reference")
	}
}

func TestWriteOutputIntentReturnsReference(t *testing.T) {
	w := pdf.NewWriter(&bytes.Buffer{}, nil)
	ref, err := WriteOutputIntent(w, SRGBv2, "", "sRGB IEC61966-2.1")
	if err != nil {
		t.Fatalf("WriteOutputIntent: %v", err)
	}
	if ref.IsZero() {
		t.Error("expected a non-zero reference")
	}
}

func TestICCProfileBytesSelectsVersion(t *testing.T) {
	if !bytes.Equal(SRGBv2.bytes(), icc.SRGBv2Profile) {
		t.Error("SRGBv2 should select icc.SRGBv2Profile")
	}
	if !bytes.Equal(SRGBv4.bytes(), icc.SRGBv4Profile) {
		t.Error("SRGBv4 should select icc.SRGBv4Profile")
	}
}
