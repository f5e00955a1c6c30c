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

package pixels

import "fmt"

// RawFrame is a frame of pixel data as produced by an emulation core. The
// data is owned by the caller and must not change during a call to
// Converter.Convert().
//
// A nil Data field indicates that the core has not produced a new frame and
// that the previous frame should be shown again.
type RawFrame struct {
	Data   []byte
	Width  int
	Height int

	// number of bytes in each row of data. can be larger than the
	// number of bytes required by Width
	Pitch int

	Format Format
}

func (f RawFrame) String() string {
	if f.Duplicate() {
		return "duplicate frame"
	}
	return fmt.Sprintf("%dx%d %v (pitch %d)", f.Width, f.Height, f.Format, f.Pitch)
}

// Duplicate returns true if the frame carries no data.
func (f RawFrame) Duplicate() bool {
	return f.Data == nil
}

// TiledSize returns the width and height of the frame after rounding down to
// a multiple of four.
func (f RawFrame) TiledSize() (int, int) {
	return f.Width &^ 3, f.Height &^ 3
}

// NewRawFrame allocates a zeroed frame with no padding at the end of each
// row.
func NewRawFrame(width, height int, format Format) RawFrame {
	pitch := width * format.BytesPerPixel()
	return RawFrame{
		Data:   make([]byte, pitch*height),
		Width:  width,
		Height: height,
		Pitch:  pitch,
		Format: format,
	}
}
