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

package mode

import "fmt"

// Resolution is an entry in the Resolutions table.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Resolutions is the table of output resolutions that can be selected by the
// user. The heights of the first group are suitable for non-interlaced
// modes.
var Resolutions = []Resolution{
	{512, 192}, {598, 200}, {640, 200},
	{384, 224}, {448, 224}, {480, 224}, {512, 224}, {576, 224}, {608, 224}, {640, 224},
	{340, 232}, {512, 232}, {512, 236},
	{336, 240}, {352, 240}, {384, 240}, {512, 240}, {530, 240}, {640, 240},
	{512, 384}, {598, 400}, {640, 400},
	{384, 448}, {448, 448}, {480, 448}, {512, 448}, {576, 448}, {608, 448}, {640, 448},
	{340, 464}, {512, 464}, {512, 472},
	{384, 480}, {512, 480}, {530, 480}, {608, 480}, {640, 480},
	{640, 528}, {640, 574}, {720, 574},
}

// FindResolution returns the index of the resolution in the Resolutions
// table. Returns -1 if the resolution is not in the table.
func FindResolution(width int, height int) int {
	for i, r := range Resolutions {
		if r.Width == width && r.Height == height {
			return i
		}
	}
	return -1
}

// ClosestResolution returns the smallest resolution in the table that can
// contain a frame of the specified dimensions. The largest resolution is
// returned if no resolution is large enough.
func ClosestResolution(width int, height int) Resolution {
	best := -1
	for i, r := range Resolutions {
		if r.Width < width || r.Height < height {
			continue
		}
		if best == -1 || r.Width*r.Height < Resolutions[best].Width*Resolutions[best].Height {
			best = i
		}
	}
	if best == -1 {
		return Resolutions[len(Resolutions)-1]
	}
	return Resolutions[best]
}
