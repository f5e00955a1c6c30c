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
	"fmt"

	"github.com/jetsetilly/retrace/logger"
)

// base size of a texture side in texels. multiplied by the texture scale
const baseCapacity = 256

// MaxScale is the largest texture scale that will be allocated.
const MaxScale = 4

// MaxDimension is the largest frame width or height that can be converted.
const MaxDimension = baseCapacity * MaxScale

// ScaleFor returns the smallest texture scale that can hold a frame of the
// specified dimensions. The result is greater than MaxScale if the frame is
// too large for any texture.
func ScaleFor(width, height int) int {
	return max(1, (max(width, height)+baseCapacity-1)/baseCapacity)
}

// Texture is the CPU side backing buffer for a texture on the GPU. The
// buffer is a square with sides that are a power of two, large enough to
// hold 256 x scale texels on each side.
//
// Content width and height are always a multiple of four.
type Texture struct {
	format TexelFormat
	scale  int

	// length of a side of the texture in texels
	capacity int

	data []byte

	// dimensions of the content most recently converted into the texture
	width  int
	height int

	// the texture content has changed and needs to be made visible to the
	// GPU
	dirty bool

	// number of times the backing buffer has been allocated
	allocations int

	// Handle is an opaque value used by the device to identify the texture
	// on the GPU. it should not be touched by anything else
	Handle any
}

// NewTexture allocates a texture of the specified format and scale.
func NewTexture(format TexelFormat, scale int) *Texture {
	tex := &Texture{}
	tex.Allocate(format, scale)
	return tex
}

func (tex *Texture) String() string {
	return fmt.Sprintf("%v %dx%d (capacity %d)", tex.format, tex.width, tex.height, tex.capacity)
}

// Allocate the backing buffer for the specified format and scale. The buffer
// is only reallocated if the format or scale has changed. Returns true if the
// buffer was reallocated.
//
// A scale outside the range 1 to MaxScale will cause a panic.
func (tex *Texture) Allocate(format TexelFormat, scale int) bool {
	if tex.data != nil && tex.format == format && tex.scale == scale {
		return false
	}

	if scale < 1 || scale > MaxScale {
		logger.Logf(logger.Allow, "pixels", "cannot allocate texture at scale %d", scale)
		panic(fmt.Sprintf("pixels: cannot allocate texture at scale %d", scale))
	}

	capacity := nextPowerOfTwo(baseCapacity * scale)

	tex.format = format
	tex.scale = scale
	tex.capacity = capacity
	tex.data = make([]byte, capacity*capacity*format.BytesPerTexel())
	tex.width = 0
	tex.height = 0
	tex.dirty = true
	tex.allocations++

	return true
}

func nextPowerOfTwo(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// Format returns the texel format of the texture.
func (tex *Texture) Format() TexelFormat {
	return tex.format
}

// Scale returns the scale value used when the texture was allocated.
func (tex *Texture) Scale() int {
	return tex.scale
}

// Capacity returns the length of a side of the texture in texels.
func (tex *Texture) Capacity() int {
	return tex.capacity
}

// Allocations returns the number of times the backing buffer has been
// allocated.
func (tex *Texture) Allocations() int {
	return tex.allocations
}

// Size returns the dimensions of the texture content.
func (tex *Texture) Size() (int, int) {
	return tex.width, tex.height
}

// Data returns the texture content in tiled form. The returned slice covers
// only the content and should not be modified.
func (tex *Texture) Data() []byte {
	return tex.data[:tex.width*tex.height*tex.format.BytesPerTexel()]
}

// Dirty returns true if the texture content has changed since the last call
// to Flushed().
func (tex *Texture) Dirty() bool {
	return tex.dirty
}

// Flushed should be called by the device once the texture content has been
// made visible to the GPU.
func (tex *Texture) Flushed() {
	tex.dirty = false
}

// setContent updates the content size of the texture and marks it as dirty.
// the caller must have checked the size against the texture capacity
func (tex *Texture) setContent(width, height int) {
	tex.width = width
	tex.height = height
	tex.dirty = true
}

// fits returns true if content of the specified dimensions can be stored in
// the texture.
func (tex *Texture) fits(width, height int) bool {
	return width <= tex.capacity && height <= tex.capacity &&
		width*height*tex.format.BytesPerTexel() <= len(tex.data)
}

// Texel returns the raw value of the texel at the specified coordinates in
// the texture. For the RGBA8 format the value is packed as 0xAARRGGBB.
func (tex *Texture) Texel(x, y int) uint32 {
	if x < 0 || y < 0 || x >= tex.width || y >= tex.height {
		panic(fmt.Sprintf("pixels: texel %d,%d outside of %dx%d texture", x, y, tex.width, tex.height))
	}

	i := texelOffset(tex.format, tex.width, x, y)
	switch tex.format {
	case TexelRGBA8:
		ar := uint32(tex.data[i])<<24 | uint32(tex.data[i+1])<<16
		gb := uint32(tex.data[i+32])<<8 | uint32(tex.data[i+33])
		return ar | gb
	default:
		return uint32(tex.data[i])<<8 | uint32(tex.data[i+1])
	}
}

// texelOffset returns the byte offset of the texel in a tiled texture of the
// specified width. for RGBA8 the offset is of the alpha/red pair. the
// green/blue pair is 32 bytes further on
func texelOffset(format TexelFormat, width int, x int, y int) int {
	tile := (y>>2)*(width>>2) + (x >> 2)
	texel := (y&3)<<2 | (x & 3)
	return tile*format.tileSize() + texel*2
}
