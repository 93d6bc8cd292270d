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

// Package oc implements optional-content groups (layers): the per-layer
// OCG dictionary and the catalog-level OCProperties dictionary that lists
// them.
package oc

import "go.pdfx.dev/pdfx"

// Usage describes the optional /Usage dictionary attached to a layer,
// giving viewers hints about when to show it by default.
type Usage struct {
	CreatorInfo string
	Language    string
	Zoom        *ZoomRange
}

type ZoomRange struct {
	Min, Max float64
}

// Group is one optional-content group (layer) definition.
type Group struct {
	Name   string
	Intent []string
	Usage  *Usage
}

// AsDict renders the group as its OCG dictionary.
func (g *Group) AsDict() pdf.Dict {
	d := pdf.Dict{
		"Type": pdf.Name("OCG"),
		"Name": pdf.TextString(g.Name),
	}
	if len(g.Intent) > 0 {
		intent := make(pdf.Array, len(g.Intent))
		for i, s := range g.Intent {
			intent[i] = pdf.Name(s)
		}
		d["Intent"] = intent
	}
	if g.Usage != nil {
		usage := pdf.Dict{}
		if g.Usage.CreatorInfo != "" {
			usage["CreatorInfo"] = pdf.Dict{"Creator": pdf.TextString(g.Usage.CreatorInfo), "Subtype": pdf.Name("Artwork")}
		}
		if g.Usage.Language != "" {
			usage["Language"] = pdf.Dict{"Lang": pdf.TextString(g.Usage.Language), "Preferred": pdf.Name("ON")}
		}
		if g.Usage.Zoom != nil {
			usage["Zoom"] = pdf.Dict{"min": pdf.Real(g.Usage.Zoom.Min), "max": pdf.Real(g.Usage.Zoom.Max)}
		}
		d["Usage"] = usage
	}
	return d
}

// Properties builds the catalog's /OCProperties dictionary from the
// layers actually referenced in the final document. refs are listed in
// the order given, which the caller should already have made
// deterministic by sorting on layer id.
func Properties(refs []pdf.Reference) pdf.Dict {
	all := make(pdf.Array, len(refs))
	for i, r := range refs {
		all[i] = r
	}
	return pdf.Dict{
		"OCGs": all,
		"D": pdf.Dict{
			"ON":      all,
			"Order":   all,
			"BaseState": pdf.Name("ON"),
		},
	}
}
