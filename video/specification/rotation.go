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

package specification

import "fmt"

// Rotation indicates the orientation of the output. Values are in quarter
// turns anti-clockwise.
type Rotation int

// List of valid Rotation values.
const (
	NormalRotation Rotation = iota
	LeftRotation
	FlippedRotation
	RightRotation
	NumRotations
)

func (r Rotation) String() string {
	switch r {
	case NormalRotation:
		return "normal"
	case LeftRotation:
		return "left"
	case FlippedRotation:
		return "flipped"
	case RightRotation:
		return "right"
	}
	return "unknown rotation"
}

// Valid returns true if the rotation value is one of the defined values.
func (r Rotation) Valid() bool {
	return r >= NormalRotation && r < NumRotations
}

// Degrees returns the rotation in degrees.
func (r Rotation) Degrees() int {
	return int(r) * 90
}

// Sideways returns true if the rotation swaps the horizontal and vertical
// axes.
func (r Rotation) Sideways() bool {
	return r == LeftRotation || r == RightRotation
}

// ParseRotation converts a string to a Rotation value. The string can be the
// name of the rotation or a number of quarter turns.
func ParseRotation(s string) (Rotation, error) {
	for r := NormalRotation; r < NumRotations; r++ {
		if s == r.String() || s == fmt.Sprintf("%d", int(r)) {
			return r, nil
		}
	}
	return NormalRotation, fmt.Errorf("specification: unknown rotation (%s)", s)
}
