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

// masks for operating on four 16 bit lanes of a 64 bit word
const (
	lanesLowByte  = 0x00ff00ff00ff00ff
	lanes1555High = 0x7fe07fe07fe07fe0
	lanes1555Low  = 0x001f001f001f001f
	lanesNibble   = 0x000f000f000f000f
	lanesOne      = 0x0001000100010001
	lanesBit4     = 0x0010001000100010
	lanes12Bit    = 0x0fff0fff0fff0fff
	lanesTop      = 0x8000800080008000
	lanesAlpha3   = 0x7000700070007000
)

// masks for operating on two 32 bit lanes of a 64 bit word
const (
	pairsLow16   = 0x0000ffff0000ffff
	pairsLowByte = 0x000000ff000000ff
	pairsAlpha   = 0x0000ff000000ff00
	pairsRed565  = 0x0000f8000000f800
	pairsGrn565  = 0x000007e0000007e0
	pairsBlu565  = 0x0000001f0000001f
)

// wide converts four 16 bit texels, or two 32 bit texels, in each operation.
// the result is identical to the reference converter.
type wide struct{}

// Convert implements the Converter interface.
func (wide) Convert(src RawFrame, dst *Texture) {
	v, w, h := prepare(src, dst)
	defer dst.setContent(w, h)

	bpp := src.Format.BytesPerPixel()
	tileSize := dst.format.tileSize()
	tilesPerRow := w >> 2

	// each source row contributes one 8 byte row to every tile in the band.
	// for RGBA8 it contributes two 8 byte rows, one in each half of the tile
	for by := 0; by < h; by += 4 {
		band := (by >> 2) * tilesPerRow * tileSize
		for r := range 4 {
			row := src.Data[(by+r)*src.Pitch:]
			for tx := range tilesPerRow {
				d := dst.data[band+tx*tileSize+r*8:]
				s := row[tx*4*bpp:]

				switch v {
				case rgb565ToRGB565:
					binary.LittleEndian.PutUint64(d, swap16(binary.LittleEndian.Uint64(s)))
				case xrgb1555ToRGB565:
					binary.LittleEndian.PutUint64(d, swap16(remap1555Lanes(binary.LittleEndian.Uint64(s))))
				case rgba4444ToRGB5A3:
					binary.LittleEndian.PutUint64(d, swap16(pack5A3Lanes(binary.LittleEndian.Uint64(s))))
				case xrgb8888ToRGB565:
					lo := binary.LittleEndian.Uint64(s)
					hi := binary.LittleEndian.Uint64(s[8:])
					p := narrow(pack565Pairs(lo)) | narrow(pack565Pairs(hi))<<32
					binary.LittleEndian.PutUint64(d, swap16(p))
				case xrgb8888ToRGBA8:
					lo := binary.LittleEndian.Uint64(s)
					hi := binary.LittleEndian.Uint64(s[8:])
					ar := narrow(arPairs(lo)) | narrow(arPairs(hi))<<32
					gb := narrow(lo&pairsLow16) | narrow(hi&pairsLow16)<<32
					binary.LittleEndian.PutUint64(d, swap16(ar))
					binary.LittleEndian.PutUint64(d[32:], swap16(gb))
				}
			}
		}
	}
}

// swap16 swaps the bytes in each 16 bit lane
func swap16(x uint64) uint64 {
	return ((x & lanesLowByte) << 8) | ((x >> 8) & lanesLowByte)
}

func remap1555Lanes(x uint64) uint64 {
	return ((x & lanes1555High) << 1) | (x & lanes1555Low)
}

func pack5A3Lanes(x uint64) uint64 {
	a := x & lanesNibble

	// lanes with an alpha of 0xf overflow into bit 4. spread that bit to
	// fill the whole lane
	opaque := (((a + lanesOne) & lanesBit4) >> 4) * 0xffff

	r := expand4to5Lanes((x >> 12) & lanesNibble)
	g := expand4to5Lanes((x >> 8) & lanesNibble)
	b := expand4to5Lanes((x >> 4) & lanesNibble)
	o := lanesTop | r<<10 | g<<5 | b

	t := (a<<11)&lanesAlpha3 | (x>>4)&lanes12Bit

	return (o & opaque) | (t &^ opaque)
}

func expand4to5Lanes(c uint64) uint64 {
	return c<<1 | (c>>3)&lanesOne
}

// pack565Pairs reduces the two XRGB8888 values in x to RGB565. the result is
// in the low 16 bits of each 32 bit lane
func pack565Pairs(x uint64) uint64 {
	return (x>>8)&pairsRed565 | (x>>5)&pairsGrn565 | (x>>3)&pairsBlu565
}

// arPairs returns the alpha/red pair for the two XRGB8888 values in x. the
// result is in the low 16 bits of each 32 bit lane
func arPairs(x uint64) uint64 {
	return ((x >> 16) & pairsLowByte) | pairsAlpha
}

// narrow packs the low 16 bits of each 32 bit lane into the low 32 bits of
// the result
func narrow(x uint64) uint64 {
	return (x & 0xffff) | ((x >> 16) & 0xffff0000)
}
