// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

// Package specification contains the definitions of the broadcast standards
// supported by the video interface. It also defines the Rotation type, which
// describes the orientation of the output.
//
// The figures for each standard describe the physical limits of the video
// interface when running with that standard. The MPAL and EURGB60 standards
// share the line timing of NTSC.
package specification

import (
	"strings"
)

// SpecList is the list of all possible string values that can be used to
// select a broadcast standard. The list does not include "AUTO".
var SpecList = []string{"NTSC", "PAL", "MPAL", "EURGB60"}

// Spec is used to define the characteristics of a broadcast standard.
type Spec struct {
	ID string

	// the number of lines in a complete interlaced frame
	ScanlinesTotal int

	// the largest picture the video interface can produce in this
	// standard
	MaxWidth  int
	MaxHeight int

	// the number of fields per second when interlaced. progressive
	// output runs at the same rate
	FieldRate float32
}

// NonInterlacedRate returns the refresh rate when the standard is used
// without interlacing. each field is extended by half a line so the rate is
// slightly lower than the field rate.
func (spec Spec) NonInterlacedRate() float32 {
	return spec.FieldRate * float32(spec.ScanlinesTotal) / float32(spec.ScanlinesTotal+1)
}

// SpecNTSC is the specification for the NTSC standard.
var SpecNTSC = Spec{
	ID:             "NTSC",
	ScanlinesTotal: 525,
	MaxWidth:       720,
	MaxHeight:      480,
	FieldRate:      59.94,
}

// SpecPAL is the specification for the PAL standard.
var SpecPAL = Spec{
	ID:             "PAL",
	ScanlinesTotal: 625,
	MaxWidth:       720,
	MaxHeight:      574,
	FieldRate:      50.0,
}

// SpecMPAL is the specification for the PAL-M standard as used in Brazil.
var SpecMPAL = Spec{
	ID:             "MPAL",
	ScanlinesTotal: 525,
	MaxWidth:       720,
	MaxHeight:      480,
	FieldRate:      59.94,
}

// SpecEURGB60 is the specification for PAL colour at the NTSC line rate.
var SpecEURGB60 = Spec{
	ID:             "EURGB60",
	ScanlinesTotal: 525,
	MaxWidth:       720,
	MaxHeight:      480,
	FieldRate:      59.94,
}

// SearchSpec looks for a valid sub-string in s, that indicates a required
// broadcast standard. The returned value is a canonical specication label as
// listed in SpecList.
//
// If no valid sub-string can be found the empty string is returned.
func SearchSpec(s string) string {
	s = strings.ToUpper(s)

	// EURGB60 and MPAL must be checked before PAL
	for _, id := range []string{"EURGB60", "MPAL", "NTSC", "PAL"} {
		if strings.Contains(s, id) {
			return id
		}
	}

	return ""
}

// Lookup returns the specification for the standard named by id. The search
// is case insensitive. The boolean value is false if the id does not name a
// known standard.
func Lookup(id string) (Spec, bool) {
	switch strings.ToUpper(strings.TrimSpace(id)) {
	case "NTSC":
		return SpecNTSC, true
	case "PAL":
		return SpecPAL, true
	case "MPAL":
		return SpecMPAL, true
	case "EURGB60":
		return SpecEURGB60, true
	}
	return Spec{}, false
}
