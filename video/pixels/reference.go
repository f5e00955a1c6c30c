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

import "encoding/binary"

// reference converts one texel at a time.
type reference struct{}

// Convert implements the Converter interface.
func (reference) Convert(src RawFrame, dst *Texture) {
	v, w, h := prepare(src, dst)
	defer dst.setContent(w, h)

	bpp := src.Format.BytesPerPixel()
	tileSize := dst.format.tileSize()
	tilesPerRow := w >> 2

	// process in bands of four rows. each band fills one row of tiles
	for by := 0; by < h; by += 4 {
		band := (by >> 2) * tilesPerRow * tileSize
		for r := range 4 {
			row := src.Data[(by+r)*src.Pitch:]
			for x := range w {
				tile := band + (x>>2)*tileSize
				i := tile + (r<<2|x&3)*2
				s := row[x*bpp:]

				switch v {
				case rgb565ToRGB565:
					binary.BigEndian.PutUint16(dst.data[i:], binary.LittleEndian.Uint16(s))
				case xrgb1555ToRGB565:
					binary.BigEndian.PutUint16(dst.data[i:], remap1555(binary.LittleEndian.Uint16(s)))
				case xrgb8888ToRGB565:
					binary.BigEndian.PutUint16(dst.data[i:], pack565(binary.LittleEndian.Uint32(s)))
				case xrgb8888ToRGBA8:
					// little-endian source is B, G, R, X
					dst.data[i] = 0xff
					dst.data[i+1] = s[2]
					dst.data[i+32] = s[1]
					dst.data[i+33] = s[0]
				case rgba4444ToRGB5A3:
					binary.BigEndian.PutUint16(dst.data[i:], pack5A3(binary.LittleEndian.Uint16(s)))
				}
			}
		}
	}
}

// remap1555 widens the green channel of an XRGB1555 value to six bits. the
// low bit of green is zero
func remap1555(x uint16) uint16 {
	return ((x & 0x7fe0) << 1) | (x & 0x001f)
}

// pack565 reduces an XRGB8888 value to RGB565
func pack565(x uint32) uint16 {
	return uint16((x>>8)&0xf800 | (x>>5)&0x07e0 | (x>>3)&0x001f)
}

// pack5A3 converts an RGBA4444 value to RGB5A3. a fully opaque value uses
// the 1RRRRRGGGGGBBBBB form and anything else uses the 0AAARRRRGGGGBBBB form
func pack5A3(x uint16) uint16 {
	a := x & 0x000f
	if a == 0x000f {
		r := expand4to5((x >> 12) & 0x0f)
		g := expand4to5((x >> 8) & 0x0f)
		b := expand4to5((x >> 4) & 0x0f)
		return 0x8000 | r<<10 | g<<5 | b
	}
	return (a>>1)<<12 | (x>>4)&0x0fff
}

func expand4to5(c uint16) uint16 {
	return c<<1 | c>>3
}
