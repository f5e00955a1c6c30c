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
	"strings"
	"unsafe"
)

// Converter implementations convert a RawFrame into the tiled layout of a
// Texture.
type Converter interface {
	// the texel format of the destination texture, together with the source
	// format, selects the conversion
	Convert(src RawFrame, dst *Texture)
}

// ConverterKind selects the implementation returned by NewConverter().
type ConverterKind int

// List of valid ConverterKind values.
const (
	ConverterReference ConverterKind = iota
	ConverterWide
)

func (k ConverterKind) String() string {
	switch k {
	case ConverterReference:
		return "reference"
	case ConverterWide:
		return "wide"
	}
	return fmt.Sprintf("unknown converter (%d)", int(k))
}

// ParseConverterKind is the inverse of ConverterKind.String(). It is case
// insensitive.
func ParseConverterKind(s string) (ConverterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference":
		return ConverterReference, nil
	case "wide":
		return ConverterWide, nil
	}
	return ConverterReference, fmt.Errorf("pixels: unknown converter (%s)", s)
}

// NewConverter returns an implementation of the Converter interface.
func NewConverter(kind ConverterKind) Converter {
	switch kind {
	case ConverterWide:
		return wide{}
	default:
		return reference{}
	}
}

// variant is a supported combination of source and destination formats
type variant int

const (
	rgb565ToRGB565 variant = iota
	xrgb1555ToRGB565
	xrgb8888ToRGBA8
	xrgb8888ToRGB565
	rgba4444ToRGB5A3
)

func selectVariant(src Format, dst TexelFormat) variant {
	switch {
	case src == FormatRGB565 && dst == TexelRGB565:
		return rgb565ToRGB565
	case src == FormatXRGB1555 && dst == TexelRGB565:
		return xrgb1555ToRGB565
	case src == FormatXRGB8888 && dst == TexelRGBA8:
		return xrgb8888ToRGBA8
	case src == FormatXRGB8888 && dst == TexelRGB565:
		return xrgb8888ToRGB565
	case src == FormatRGBA4444 && dst == TexelRGB5A3:
		return rgba4444ToRGB5A3
	}
	panic(fmt.Sprintf("pixels: unsupported conversion %v to %v", src, dst))
}

// prepare checks the conversion contract and returns the variant to use and
// the dimensions of the content after rounding down to a multiple of four
func prepare(src RawFrame, dst *Texture) (variant, int, int) {
	if dst == nil {
		panic("pixels: nil destination texture")
	}

	v := selectVariant(src.Format, dst.format)

	w, h := src.TiledSize()
	if w <= 0 || h <= 0 {
		return v, 0, 0
	}

	if !dst.fits(w, h) {
		panic(fmt.Sprintf("pixels: %dx%d frame does not fit in texture with capacity %d", w, h, dst.capacity))
	}

	bpp := src.Format.BytesPerPixel()
	if src.Pitch < w*bpp {
		panic(fmt.Sprintf("pixels: pitch of %d is too small for %d pixels", src.Pitch, w))
	}
	if len(src.Data) < (h-1)*src.Pitch+w*bpp {
		panic(fmt.Sprintf("pixels: frame data is too short for %dx%d pixels", w, h))
	}

	if overlaps(src.Data, dst.data) {
		panic("pixels: frame data and texture share memory")
	}

	return v, w, h
}

// overlaps returns true if the two slices share any memory
func overlaps(a []byte, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return a0 < b0+uintptr(len(b)) && b0 < a0+uintptr(len(a))
}
