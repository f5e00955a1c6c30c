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

// Format of the source data in a RawFrame.
type Format int

// List of valid Format values.
const (
	FormatRGB565 Format = iota
	FormatXRGB1555
	FormatXRGB8888

	// RGBA4444 is packed as RRRRGGGGBBBBAAAA
	FormatRGBA4444
)

func (f Format) String() string {
	switch f {
	case FormatRGB565:
		return "RGB565"
	case FormatXRGB1555:
		return "XRGB1555"
	case FormatXRGB8888:
		return "XRGB8888"
	case FormatRGBA4444:
		return "RGBA4444"
	}
	return fmt.Sprintf("unknown format (%d)", int(f))
}

// BytesPerPixel returns the number of bytes used by a single pixel in the
// source data.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatXRGB8888:
		return 4
	case FormatRGB565, FormatXRGB1555, FormatRGBA4444:
		return 2
	}
	panic(fmt.Sprintf("pixels: %v", f))
}

// TexelFormat is the format of the data in a Texture.
type TexelFormat int

// List of valid TexelFormat values.
const (
	TexelRGB565 TexelFormat = iota
	TexelRGBA8
	TexelRGB5A3
)

func (f TexelFormat) String() string {
	switch f {
	case TexelRGB565:
		return "RGB565"
	case TexelRGBA8:
		return "RGBA8"
	case TexelRGB5A3:
		return "RGB5A3"
	}
	return fmt.Sprintf("unknown texel format (%d)", int(f))
}

// BytesPerTexel returns the number of bytes used by a single texel.
func (f TexelFormat) BytesPerTexel() int {
	switch f {
	case TexelRGBA8:
		return 4
	case TexelRGB565, TexelRGB5A3:
		return 2
	}
	panic(fmt.Sprintf("pixels: %v", f))
}

// tileSize is the number of bytes occupied by one 4x4 tile.
func (f TexelFormat) tileSize() int {
	return 16 * f.BytesPerTexel()
}

// TexelFormatFor returns the texel format that a source format is converted
// to. The reduced flag selects the 16 bit texel format for 32 bit sources.
func TexelFormatFor(f Format, reduced bool) TexelFormat {
	switch f {
	case FormatRGB565, FormatXRGB1555:
		return TexelRGB565
	case FormatXRGB8888:
		if reduced {
			return TexelRGB565
		}
		return TexelRGBA8
	case FormatRGBA4444:
		return TexelRGB5A3
	}
	panic(fmt.Sprintf("pixels: no texel format for %v", f))
}
