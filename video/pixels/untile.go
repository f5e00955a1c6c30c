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

import (
	"image"
	"image/color"
)

// Untile reads the content of a texture into a linear image. It is the
// inverse of the tiling performed by a Converter, with texels expanded to
// eight bits per channel.
func Untile(tex *Texture) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tex.width, tex.height))
	for y := range tex.height {
		for x := range tex.width {
			img.SetNRGBA(x, y, TexelColor(tex.format, tex.Texel(x, y)))
		}
	}
	return img
}

// TexelColor expands a raw texel value, as returned by Texture.Texel(), to
// eight bits per channel.
func TexelColor(format TexelFormat, t uint32) color.NRGBA {
	switch format {
	case TexelRGB565:
		return color.NRGBA{
			R: expand5((t >> 11) & 0x1f),
			G: expand6((t >> 5) & 0x3f),
			B: expand5(t & 0x1f),
			A: 0xff,
		}
	case TexelRGBA8:
		return color.NRGBA{
			R: uint8(t >> 16),
			G: uint8(t >> 8),
			B: uint8(t),
			A: uint8(t >> 24),
		}
	case TexelRGB5A3:
		if t&0x8000 == 0x8000 {
			return color.NRGBA{
				R: expand5((t >> 10) & 0x1f),
				G: expand5((t >> 5) & 0x1f),
				B: expand5(t & 0x1f),
				A: 0xff,
			}
		}
		return color.NRGBA{
			R: expand4((t >> 8) & 0x0f),
			G: expand4((t >> 4) & 0x0f),
			B: expand4(t & 0x0f),
			A: expand3((t >> 12) & 0x07),
		}
	}
	return color.NRGBA{}
}

func expand3(c uint32) uint8 {
	return uint8(c<<5 | c<<2 | c>>1)
}

func expand4(c uint32) uint8 {
	return uint8(c<<4 | c)
}

func expand5(c uint32) uint8 {
	return uint8(c<<3 | c>>2)
}

func expand6(c uint32) uint8 {
	return uint8(c<<2 | c>>4)
}
