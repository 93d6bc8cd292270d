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

package gofont

import "testing"

func TestParseEveryStyle(t *testing.T) {
	for _, s := range []Style{Regular, Bold, Italic, Mono} {
		pf, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%d): %v", s, err)
			continue
		}
		if pf.Name == "" {
			t.Errorf("Parse(%d): empty font name", s)
		}
		if len(Data(s)) == 0 {
			t.Errorf("Data(%d): empty font bytes", s)
		}
	}
}
