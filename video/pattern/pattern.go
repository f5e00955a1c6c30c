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

// Package pattern generates test frames for the video pipeline. The frames
// are colour bars with a white line that moves down the frame by one line
// every frame, which makes tearing and dropped frames easy to see.
package pattern

import (
	"encoding/binary"
	"fmt"
	"image/color"

	"github.com/jetsetilly/retrace/video/pixels"
)

// the bars from left to right
var bars = [...]color.NRGBA{
	{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	{R: 0xc0, G: 0xc0, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xc0, B: 0xc0, A: 0xff},
	{R: 0x00, G: 0xc0, B: 0x00, A: 0xff},
	{R: 0xc0, G: 0x00, B: 0xc0, A: 0xff},
	{R: 0xc0, G: 0x00, B: 0x00, A: 0xff},
	{R: 0x00, G: 0x00, B: 0xc0, A: 0xff},
	{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
}

// NumBars is the number of vertical bars in the pattern.
const NumBars = len(bars)

// Bar returns the colour of the numbered bar.
func Bar(i int) color.NRGBA {
	return bars[i%NumBars]
}

// Line is the colour of the moving line.
var Line = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Pack a colour into a pixel value of the specified format.
func Pack(format pixels.Format, c color.NRGBA) uint32 {
	r := uint32(c.R)
	g := uint32(c.G)
	b := uint32(c.B)
	a := uint32(c.A)

	switch format {
	case pixels.FormatRGB565:
		return (r>>3)<<11 | (g>>2)<<5 | b>>3
	case pixels.FormatXRGB1555:
		return (r>>3)<<10 | (g>>3)<<5 | b>>3
	case pixels.FormatXRGB8888:
		return r<<16 | g<<8 | b
	case pixels.FormatRGBA4444:
		return (r>>4)<<12 | (g>>4)<<8 | (b>>4)<<4 | a>>4
	}
	panic(fmt.Sprintf("pattern: %v", format))
}

// Generator creates a sequence of test frames. The same data buffer is used
// for every frame so a frame is only valid until the next call to Next().
type Generator struct {
	frame pixels.RawFrame
	count int

	// the pixel values of the bars and the line, packed for the frame format
	bars [NumBars]uint32
	line uint32

	// the line drawn by the previous frame
	prev int

	// every nth frame is a duplicate frame. zero means no duplicate frames
	Duplicate int
}

// NewGenerator is the preferred method of initialisation for the Generator
// type.
func NewGenerator(width int, height int, format pixels.Format) *Generator {
	gen := &Generator{
		frame: pixels.NewRawFrame(width, height, format),
		line:  Pack(format, Line),
		prev:  -1,
	}
	for i := range bars {
		gen.bars[i] = Pack(format, bars[i])
	}
	for y := range height {
		gen.row(y, false)
	}
	return gen
}

func (gen *Generator) String() string {
	return fmt.Sprintf("colour bars %v", gen.frame)
}

// Count returns the number of frames generated.
func (gen *Generator) Count() int {
	return gen.count
}

// Next returns the next frame in the sequence.
func (gen *Generator) Next() pixels.RawFrame {
	gen.count++

	if gen.Duplicate > 0 && gen.count%gen.Duplicate == 0 {
		dup := gen.frame
		dup.Data = nil
		return dup
	}

	if gen.prev >= 0 {
		gen.row(gen.prev, false)
	}
	gen.prev = gen.count % gen.frame.Height
	gen.row(gen.prev, true)

	return gen.frame
}

// row draws a single row of the pattern
func (gen *Generator) row(y int, line bool) {
	bpp := gen.frame.Format.BytesPerPixel()
	data := gen.frame.Data[y*gen.frame.Pitch:]

	for x := range gen.frame.Width {
		v := gen.line
		if !line {
			v = gen.bars[x*NumBars/gen.frame.Width]
		}

		if bpp == 4 {
			binary.LittleEndian.PutUint32(data[x*4:], v)
		} else {
			binary.LittleEndian.PutUint16(data[x*2:], uint16(v))
		}
	}
}
