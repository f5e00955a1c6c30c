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

// Package pixels converts raw frames, as produced by an emulation core, into
// the 4x4 tiled texture layout expected by a fixed-function GPU texture unit.
//
// Every texture is divided into tiles of 4x4 texels. Tiles are stored in
// row major order and the texels inside a tile are also stored in row major
// order. For the 16 bit texel formats a tile occupies 32 bytes. For the
// RGBA8 texel format a tile occupies 64 bytes, the first 32 bytes holding the
// alpha/red pairs of the 16 texels and the second 32 bytes holding the
// green/blue pairs.
//
// Source data is little-endian. Texture data is big-endian.
//
// The set of conversions is closed:
//
//	RGB565   -> RGB565	re-tile only
//	XRGB1555 -> RGB565	green channel widened
//	XRGB8888 -> RGBA8	lossless
//	XRGB8888 -> RGB565	reduced colour
//	RGBA4444 -> RGB5A3	overlay and menu bitmaps
//
// Any other pairing is a programming error and will cause a panic. As will a
// texture that is too small for the frame or a frame that shares memory with
// the texture.
//
// Two implementations of the Converter interface are available. The
// reference converter works one texel at a time. The wide converter works on
// four 16 bit texels (or two 32 bit texels) packed into a single 64 bit word.
// Both produce identical textures.
package pixels
