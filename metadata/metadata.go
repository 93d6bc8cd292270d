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

// Package metadata embeds the document-level XMP metadata packet and the
// output-intent ICC profile that PDF/X-3:2002 conformance requires.
package metadata

import (
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/icc"
	"seehuhn.de/go/xmp"

	"go.pdfx.dev/pdfx"
)

// PDF is the XMP namespace for PDF-specific metadata.
// See https://developer.adobe.com/xmp/docs/XMPNamespaces/pdf/
type PDF struct {
	_          xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_          xmp.Prefix    `xmp:"pdf"`
	Keywords   xmp.Text
	PDFVersion xmp.Text
	Producer   xmp.AgentName
	Trapped    xmp.Text
}

// Info collects the document properties this module can turn into an XMP
// packet; it mirrors the fields of [pdf.Info] plus the few XMP-only
// extras (language-tagged title/description, multiple creators).
type Info struct {
	Title       string
	Authors     []string
	Description string
	Keywords    string
	Producer    string
	PDFVersion  string
	Trapped     bool

	Created  time.Time
	Modified time.Time
}

// BuildPacket assembles the XMP packet for info. now is the packet's
// CreateDate/ModifyDate fallback when info.Created/Modified are zero.
func BuildPacket(info *Info, now time.Time) *xmp.Packet {
	dc := &xmp.DublinCore{}
	if info.Title != "" {
		dc.Title.Set(language.MustParse("x-default"), info.Title)
	}
	for _, a := range info.Authors {
		dc.Creator.Append(xmp.NewProperName(a))
	}
	if info.Description != "" {
		dc.Description.Set(language.MustParse("x-default"), info.Description)
	}

	basic := &xmp.Basic{}
	created := info.Created
	if created.IsZero() {
		created = now
	}
	modified := info.Modified
	if modified.IsZero() {
		modified = now
	}
	basic.CreateDate = xmp.NewDate(created)
	basic.ModifyDate = xmp.NewDate(modified)

	pdfNS := &PDF{}
	if info.Keywords != "" {
		pdfNS.Keywords = xmp.NewText(info.Keywords)
	}
	if info.PDFVersion != "" {
		pdfNS.PDFVersion = xmp.NewText(info.PDFVersion)
	}
	if info.Producer != "" {
		pdfNS.Producer = xmp.NewAgentName(info.Producer)
	}
	if info.Trapped {
		pdfNS.Trapped = xmp.NewText("True")
	}

	packet := xmp.NewPacket()
	packet.Set(dc, basic, pdfNS)
	return packet
}

// WritePacket writes packet as the document's /Metadata stream and
// returns its reference, ready to assign to Catalog.Metadata.
func WritePacket(w pdf.Putter, packet *xmp.Packet, pretty bool) (pdf.Reference, error) {
	ref := w.Alloc()
	dict := pdf.Dict{
		"Type":    pdf.Name("Metadata"),
		"Subtype": pdf.Name("XML"),
	}
	stm, err := w.OpenStream(ref, dict, pdf.FilterInfo{})
	if err != nil {
		return pdf.Reference{}, err
	}
	err = packet.Write(stm, &xmp.PacketOptions{Pretty: pretty})
	if err != nil {
		return pdf.Reference{}, err
	}
	if err := stm.Close(); err != nil {
		return pdf.Reference{}, err
	}
	return ref, nil
}

// ICCProfile selects which bundled sRGB ICC profile an output intent
// embeds.
type ICCProfile int

const (
	// SRGBv2 is the ICC v2 sRGB profile, the common choice for PDF/X
	// output intents.
	SRGBv2 ICCProfile = iota
	// SRGBv4 is the ICC v4 sRGB profile.
	SRGBv4
)

func (p ICCProfile) bytes() []byte {
	if p == SRGBv4 {
		return icc.SRGBv4Profile
	}
	return icc.SRGBv2Profile
}

// WriteOutputIntent embeds profile as an ICCBased /DestOutputProfile
// stream and writes the GTS_PDFX /OutputIntent dictionary that
// PDF/X-3:2002 requires, returning the reference to add to the
// catalog's /OutputIntents array.
func WriteOutputIntent(w pdf.Putter, profile ICCProfile, condition, identifier string) (pdf.Reference, error) {
	data := profile.bytes()

	iccRef := w.Alloc()
	iccDict := pdf.Dict{
		"N": pdf.Integer(3),
	}
	stm, err := w.OpenStream(iccRef, iccDict)
	if err != nil {
		return pdf.Reference{}, err
	}
	if _, err := stm.Write(data); err != nil {
		return pdf.Reference{}, err
	}
	if err := stm.Close(); err != nil {
		return pdf.Reference{}, err
	}

	oiRef := w.Alloc()
	oi := pdf.Dict{
		"Type":                      pdf.Name("OutputIntent"),
		"S":                         pdf.Name("GTS_PDFX"),
		"OutputConditionIdentifier": pdf.TextString(identifier),
		"DestOutputProfile":         iccRef,
	}
	if condition != "" {
		oi["OutputCondition"] = pdf.TextString(condition)
	}
	if err := w.Put(oiRef, oi); err != nil {
		return pdf.Reference{}, err
	}
	return oiRef, nil
}
