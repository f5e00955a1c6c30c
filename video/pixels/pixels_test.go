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

package pixels_test

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/jetsetilly/retrace/test"
	"github.com/jetsetilly/retrace/video/pixels"
)

// randomFrame creates a frame filled with random data. the padding value is
// the number of unused bytes at the end of each row
func randomFrame(rng *rand.Rand, w int, h int, format pixels.Format, padding int) pixels.RawFrame {
	pitch := w*format.BytesPerPixel() + padding
	data := make([]byte, pitch*h)
	for i := range data {
		data[i] = byte(rng.UintN(256))
	}
	return pixels.RawFrame{
		Data:   data,
		Width:  w,
		Height: h,
		Pitch:  pitch,
		Format: format,
	}
}

func sourcePixel16(f pixels.RawFrame, x int, y int) uint16 {
	return binary.LittleEndian.Uint16(f.Data[y*f.Pitch+x*2:])
}

func sourcePixel32(f pixels.RawFrame, x int, y int) uint32 {
	return binary.LittleEndian.Uint32(f.Data[y*f.Pitch+x*4:])
}

func abs(a int, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

var conversions = []struct {
	src pixels.Format
	dst pixels.TexelFormat
}{
	{src: pixels.FormatRGB565, dst: pixels.TexelRGB565},
	{src: pixels.FormatXRGB1555, dst: pixels.TexelRGB565},
	{src: pixels.FormatXRGB8888, dst: pixels.TexelRGBA8},
	{src: pixels.FormatXRGB8888, dst: pixels.TexelRGB565},
	{src: pixels.FormatRGBA4444, dst: pixels.TexelRGB5A3},
}

var sizes = []struct {
	w, h, padding int
}{
	{w: 4, h: 4},
	{w: 8, h: 12, padding: 6},
	{w: 13, h: 7, padding: 2},
	{w: 160, h: 144},
	{w: 256, h: 224, padding: 64},
	{w: 256, h: 240},
}

func TestConvertersIdentical(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	ref := pixels.NewConverter(pixels.ConverterReference)
	wid := pixels.NewConverter(pixels.ConverterWide)

	for _, c := range conversions {
		for _, sz := range sizes {
			tag := fmt.Sprintf("%v to %v %dx%d", c.src, c.dst, sz.w, sz.h)

			f := randomFrame(rng, sz.w, sz.h, c.src, sz.padding)
			a := pixels.NewTexture(c.dst, 1)
			b := pixels.NewTexture(c.dst, 1)
			ref.Convert(f, a)
			wid.Convert(f, b)

			aw, ah := a.Size()
			bw, bh := b.Size()
			test.ExpectEquality(t, aw, bw, tag)
			test.ExpectEquality(t, ah, bh, tag)
			test.ExpectEquality(t, string(a.Data()), string(b.Data()), tag)
		}
	}
}

func TestRounding(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 13, 7, pixels.FormatRGB565, 0)
		tex := pixels.NewTexture(pixels.TexelRGB565, 1)
		pixels.NewConverter(k).Convert(f, tex)

		w, h := tex.Size()
		test.ExpectEquality(t, w, 12, k)
		test.ExpectEquality(t, h, 4, k)
		test.ExpectEquality(t, len(tex.Data()), 12*4*2, k)

		// frames smaller than a tile produce no content
		f = randomFrame(rng, 3, 3, pixels.FormatRGB565, 0)
		pixels.NewConverter(k).Convert(f, tex)
		w, h = tex.Size()
		test.ExpectEquality(t, w, 0, k)
		test.ExpectEquality(t, h, 0, k)
	}
}

func TestTileLayout(t *testing.T) {
	// an 8x8 frame where the value of each pixel is its index
	f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
	for i := range 64 {
		binary.LittleEndian.PutUint16(f.Data[i*2:], uint16(i))
	}

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		tex := pixels.NewTexture(pixels.TexelRGB565, 1)
		pixels.NewConverter(k).Convert(f, tex)
		d := tex.Data()

		// first row of first tile. big-endian texels
		test.ExpectEquality(t, string(d[:8]), string([]byte{0, 0, 0, 1, 0, 2, 0, 3}), k)

		// second row of first tile is the second row of the frame
		test.ExpectEquality(t, binary.BigEndian.Uint16(d[8:]), 8, k)

		// the second tile starts at pixel 4 of the first row
		test.ExpectEquality(t, binary.BigEndian.Uint16(d[32:]), 4, k)

		// the third tile is the first tile of the second band
		test.ExpectEquality(t, binary.BigEndian.Uint16(d[64:]), 32, k)

		// the last texel of the frame is the last texel of the texture
		test.ExpectEquality(t, binary.BigEndian.Uint16(d[126:]), 63, k)
	}
}

func TestRGBA8Layout(t *testing.T) {
	f := pixels.NewRawFrame(4, 4, pixels.FormatXRGB8888)

	// pixel 1 is R=0x11 G=0x22 B=0x33. source bytes are B, G, R, X
	copy(f.Data[4:], []byte{0x33, 0x22, 0x11, 0x00})

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		tex := pixels.NewTexture(pixels.TexelRGBA8, 1)
		pixels.NewConverter(k).Convert(f, tex)
		d := tex.Data()
		test.DemandEquality(t, len(d), 64, k)

		// alpha/red pairs in the first half of the tile
		test.ExpectEquality(t, d[2], 0xff, k)
		test.ExpectEquality(t, d[3], 0x11, k)

		// green/blue pairs in the second half of the tile
		test.ExpectEquality(t, d[34], 0x22, k)
		test.ExpectEquality(t, d[35], 0x33, k)

		test.ExpectEquality(t, tex.Texel(1, 0), 0xff112233, k)
	}
}

func TestRGB565Lossless(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 256, 224, pixels.FormatRGB565, 8)
		tex := pixels.NewTexture(pixels.TexelRGB565, 1)
		pixels.NewConverter(k).Convert(f, tex)

		failures := 0
		for y := range 224 {
			for x := range 256 {
				if tex.Texel(x, y) != uint32(sourcePixel16(f, x, y)) {
					failures++
				}
			}
		}
		test.ExpectEquality(t, failures, 0, k)
	}
}

func TestXRGB1555(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 64, 64, pixels.FormatXRGB1555, 0)
		tex := pixels.NewTexture(pixels.TexelRGB565, 1)
		pixels.NewConverter(k).Convert(f, tex)

		failures := 0
		for y := range 64 {
			for x := range 64 {
				s := sourcePixel16(f, x, y)
				r := (s >> 10) & 0x1f
				g := (s >> 5) & 0x1f
				b := s & 0x1f

				// the green channel gains a zero low bit. no colour
				// information is lost
				v := tex.Texel(x, y)
				if uint16(v>>11) != r || uint16((v>>5)&0x3f) != g<<1 || uint16(v&0x1f) != b {
					failures++
				}
			}
		}
		test.ExpectEquality(t, failures, 0, k)
	}
}

func TestXRGB8888Lossless(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 100, 60, pixels.FormatXRGB8888, 4)
		tex := pixels.NewTexture(pixels.TexelRGBA8, 1)
		pixels.NewConverter(k).Convert(f, tex)

		img := pixels.Untile(tex)
		failures := 0
		for y := range 60 {
			for x := range 100 {
				s := sourcePixel32(f, x, y)
				c := img.NRGBAAt(x, y)
				if c.R != uint8(s>>16) || c.G != uint8(s>>8) || c.B != uint8(s) || c.A != 0xff {
					failures++
				}
			}
		}
		test.ExpectEquality(t, failures, 0, k)
	}
}

func TestXRGB8888Reduced(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 64, 32, pixels.FormatXRGB8888, 0)
		tex := pixels.NewTexture(pixels.TexelRGB565, 1)
		pixels.NewConverter(k).Convert(f, tex)

		img := pixels.Untile(tex)
		failures := 0
		for y := range 32 {
			for x := range 64 {
				s := sourcePixel32(f, x, y)
				c := img.NRGBAAt(x, y)

				// five bits of red and blue, six bits of green
				if abs(int(c.R), int(uint8(s>>16))) > 7 ||
					abs(int(c.G), int(uint8(s>>8))) > 3 ||
					abs(int(c.B), int(uint8(s))) > 7 {
					failures++
				}
			}
		}
		test.ExpectEquality(t, failures, 0, k)
	}
}

func TestRGBA4444(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))

	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		f := randomFrame(rng, 64, 64, pixels.FormatRGBA4444, 0)

		// make sure some pixels are fully opaque
		for i := 0; i < len(f.Data); i += 6 {
			f.Data[i] |= 0x0f
		}

		tex := pixels.NewTexture(pixels.TexelRGB5A3, 1)
		pixels.NewConverter(k).Convert(f, tex)

		img := pixels.Untile(tex)
		opaque := 0
		failures := 0
		for y := range 64 {
			for x := range 64 {
				s := sourcePixel16(f, x, y)
				c := img.NRGBAAt(x, y)

				r := int((s>>12)&0x0f) * 17
				g := int((s>>8)&0x0f) * 17
				b := int((s>>4)&0x0f) * 17
				a := int(s&0x0f) * 17

				if a == 0xff {
					opaque++
					if c.A != 0xff || abs(int(c.R), r) > 8 || abs(int(c.G), g) > 8 || abs(int(c.B), b) > 8 {
						failures++
					}
				} else {
					// colour is exact and alpha is reduced to three bits
					if int(c.R) != r || int(c.G) != g || int(c.B) != b || abs(int(c.A), a) > 37 {
						failures++
					}
				}
			}
		}
		test.ExpectInequality(t, opaque, 0, k)
		test.ExpectEquality(t, failures, 0, k)
	}
}

func TestDirty(t *testing.T) {
	f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
	tex := pixels.NewTexture(pixels.TexelRGB565, 1)
	tex.Flushed()
	test.ExpectFailure(t, tex.Dirty())

	pixels.NewConverter(pixels.ConverterWide).Convert(f, tex)
	test.ExpectSuccess(t, tex.Dirty())

	tex.Flushed()
	test.ExpectFailure(t, tex.Dirty())
}

func TestContractViolations(t *testing.T) {
	for _, k := range []pixels.ConverterKind{pixels.ConverterReference, pixels.ConverterWide} {
		cvt := pixels.NewConverter(k)

		// frame too large for texture
		test.ExpectPanic(t, func() {
			f := pixels.NewRawFrame(260, 8, pixels.FormatRGB565)
			cvt.Convert(f, pixels.NewTexture(pixels.TexelRGB565, 1))
		}, k)

		// unsupported pairing
		test.ExpectPanic(t, func() {
			f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
			cvt.Convert(f, pixels.NewTexture(pixels.TexelRGBA8, 1))
		}, k)

		// pitch too small for width
		test.ExpectPanic(t, func() {
			f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
			f.Pitch = 8
			cvt.Convert(f, pixels.NewTexture(pixels.TexelRGB565, 1))
		}, k)

		// data too short for height
		test.ExpectPanic(t, func() {
			f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
			f.Height = 12
			cvt.Convert(f, pixels.NewTexture(pixels.TexelRGB565, 1))
		}, k)

		// frame data is the texture data
		test.ExpectPanic(t, func() {
			tex := pixels.NewTexture(pixels.TexelRGB565, 1)
			f := pixels.NewRawFrame(8, 8, pixels.FormatRGB565)
			cvt.Convert(f, tex)
			f.Data = tex.Data()
			cvt.Convert(f, tex)
		}, k)
	}
}

func TestAllocation(t *testing.T) {
	tex := pixels.NewTexture(pixels.TexelRGB565, 1)
	test.ExpectEquality(t, tex.Capacity(), 256)
	test.ExpectEquality(t, tex.Allocations(), 1)

	// no change in format or scale
	test.ExpectFailure(t, tex.Allocate(pixels.TexelRGB565, 1))
	test.ExpectEquality(t, tex.Allocations(), 1)

	// capacity is always a power of two
	test.ExpectSuccess(t, tex.Allocate(pixels.TexelRGB565, 3))
	test.ExpectEquality(t, tex.Capacity(), 1024)
	test.ExpectEquality(t, tex.Allocations(), 2)

	test.ExpectSuccess(t, tex.Allocate(pixels.TexelRGBA8, 3))
	test.ExpectEquality(t, tex.Format(), pixels.TexelRGBA8)
	test.ExpectEquality(t, tex.Allocations(), 3)

	// a larger scale accepts a larger frame
	f := pixels.NewRawFrame(640, 480, pixels.FormatXRGB8888)
	pixels.NewConverter(pixels.ConverterWide).Convert(f, tex)
	w, h := tex.Size()
	test.ExpectEquality(t, w, 640)
	test.ExpectEquality(t, h, 480)

	test.ExpectPanic(t, func() {
		tex.Allocate(pixels.TexelRGB565, pixels.MaxScale+1)
	})
	test.ExpectPanic(t, func() {
		tex.Allocate(pixels.TexelRGB565, 0)
	})
}

func TestScaleFor(t *testing.T) {
	test.ExpectEquality(t, pixels.ScaleFor(0, 0), 1)
	test.ExpectEquality(t, pixels.ScaleFor(256, 224), 1)
	test.ExpectEquality(t, pixels.ScaleFor(320, 240), 2)
	test.ExpectEquality(t, pixels.ScaleFor(640, 480), 3)
	test.ExpectEquality(t, pixels.ScaleFor(240, 769), 4)
	test.ExpectEquality(t, pixels.ScaleFor(pixels.MaxDimension, pixels.MaxDimension), pixels.MaxScale)

	// too large for any texture. the converter will refuse the frame
	test.ExpectEquality(t, pixels.ScaleFor(pixels.MaxDimension+4, 16), pixels.MaxScale+1)

	// a 320x240 frame fits once the texture is allocated at that scale
	f := pixels.NewRawFrame(320, 240, pixels.FormatRGB565)
	tex := pixels.NewTexture(pixels.TexelRGB565, pixels.ScaleFor(320, 240))
	pixels.NewConverter(pixels.ConverterWide).Convert(f, tex)
	w, h := tex.Size()
	test.ExpectEquality(t, w, 320)
	test.ExpectEquality(t, h, 240)
}

func TestParseConverterKind(t *testing.T) {
	k, err := pixels.ParseConverterKind("WIDE")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, k, pixels.ConverterWide)

	k, err = pixels.ParseConverterKind(pixels.ConverterReference.String())
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, k, pixels.ConverterReference)

	_, err = pixels.ParseConverterKind("simd")
	test.ExpectFailure(t, err)
}

func TestTexelFormatFor(t *testing.T) {
	test.ExpectEquality(t, pixels.TexelFormatFor(pixels.FormatXRGB8888, false), pixels.TexelRGBA8)
	test.ExpectEquality(t, pixels.TexelFormatFor(pixels.FormatXRGB8888, true), pixels.TexelRGB565)
	test.ExpectEquality(t, pixels.TexelFormatFor(pixels.FormatXRGB1555, false), pixels.TexelRGB565)
	test.ExpectEquality(t, pixels.TexelFormatFor(pixels.FormatRGBA4444, false), pixels.TexelRGB5A3)
}

func BenchmarkReference(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	f := randomFrame(rng, 256, 224, pixels.FormatXRGB1555, 0)
	tex := pixels.NewTexture(pixels.TexelRGB565, 1)
	cvt := pixels.NewConverter(pixels.ConverterReference)
	for b.Loop() {
		cvt.Convert(f, tex)
	}
}

func BenchmarkWide(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	f := randomFrame(rng, 256, 224, pixels.FormatXRGB1555, 0)
	tex := pixels.NewTexture(pixels.TexelRGB565, 1)
	cvt := pixels.NewConverter(pixels.ConverterWide)
	for b.Loop() {
		cvt.Convert(f, tex)
	}
}
