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

package pdf

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Catalog is the PDF document catalog (the /Root object).  Fields are
// trimmed to what this module's Object-Graph Builder populates; a full PDF
// reader's catalog has many more optional entries.
type Catalog struct {
	Pages         Reference
	Outlines      Reference
	OutputIntents Array
	OCProperties  Dict
	Metadata      Reference
	Lang          language.Tag
	MarkInfo      Dict
}

func (c *Catalog) AsDict() Dict {
	d := Dict{
		"Type":  Name("Catalog"),
		"Pages": c.Pages,
	}
	if !c.Outlines.IsZero() {
		d["Outlines"] = c.Outlines
	}
	if len(c.OutputIntents) > 0 {
		d["OutputIntents"] = c.OutputIntents
	}
	if len(c.OCProperties) > 0 {
		d["OCProperties"] = c.OCProperties
	}
	if !c.Metadata.IsZero() {
		d["Metadata"] = c.Metadata
	}
	if c.Lang != language.Und {
		d["Lang"] = String(c.Lang.String())
	}
	if len(c.MarkInfo) > 0 {
		d["MarkInfo"] = c.MarkInfo
	}
	return d
}

// Info is the PDF document information dictionary.  CreationDate and
// ModDate default to the zero Time, in which case AsDict leaves them out;
// neither is ever filled in from the clock.
type Info struct {
	Title, Author, Subject, Keywords, Creator, Producer string
	CreationDate, ModDate                                time.Time
	Trapped                                              Name
}

func (info *Info) AsDict() Dict {
	d := Dict{}
	setIf(d, "Title", info.Title)
	setIf(d, "Author", info.Author)
	setIf(d, "Subject", info.Subject)
	setIf(d, "Keywords", info.Keywords)
	setIf(d, "Creator", info.Creator)
	setIf(d, "Producer", info.Producer)
	if !info.CreationDate.IsZero() {
		d["CreationDate"] = dateString(info.CreationDate)
	}
	if !info.ModDate.IsZero() {
		d["ModDate"] = dateString(info.ModDate)
	}
	if info.Trapped != "" {
		d["Trapped"] = info.Trapped
	}
	return d
}

func setIf(d Dict, key Name, v string) {
	if v != "" {
		d[key] = TextString(v)
	}
}

// dateString formats t as a PDF date string, "D:YYYYMMDDHHmmSSOHH'mm'".
func dateString(t time.Time) String {
	_, offset := t.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	oh := offset / 3600
	om := (offset % 3600) / 60
	s := t.Format("20060102150405")
	return String(fmt.Sprintf("D:%s%c%02d'%02d'", s, sign, oh, om))
}
