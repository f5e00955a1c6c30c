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

package device

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
)

// Combine describes how a texture stage combines its texture with the result
// of the previous stage.
type Combine int

// List of valid Combine values.
const (
	CombineReplace Combine = iota
	CombineInterpolate
)

func (c Combine) String() string {
	switch c {
	case CombineReplace:
		return "replace"
	case CombineInterpolate:
		return "interpolate"
	}
	return "unknown"
}

// Blend describes how the result of the pass is combined with the
// framebuffer.
type Blend int

// List of valid Blend values.
const (
	BlendNone Blend = iota

	// straight (not premultiplied) alpha
	BlendAlpha
)

func (b Blend) String() string {
	switch b {
	case BlendNone:
		return "none"
	case BlendAlpha:
		return "alpha"
	}
	return "unknown"
}

// Stage is a single texture stage.
type Stage struct {
	Texture *pixels.Texture
	Combine Combine

	// interpolation factor for CombineInterpolate
	Constant float32

	// linear filtering rather than nearest neighbour
	Smooth bool
}

func (s Stage) String() string {
	f := "nearest"
	if s.Smooth {
		f = "linear"
	}
	if s.Combine == CombineInterpolate {
		return fmt.Sprintf("%v(%.2f) %s", s.Combine, s.Constant, f)
	}
	return fmt.Sprintf("%v %s", s.Combine, f)
}

// MaxStages is the maximum number of texture stages in a Pass.
const MaxStages = 2

// Vertex is a corner of the quad drawn by a Pass.
type Vertex struct {
	X, Y float32
	U, V float32
}

// Pass describes one draw operation.
type Pass struct {
	Stages    [MaxStages]Stage
	NumStages int

	Blend    Blend
	Viewport mode.Viewport

	Projection Matrix

	// the quad is drawn as a triangle fan
	Vertices [4]Vertex

	// colour of the quad. modulates the result of the final stage
	Color [4]float32
}

func (p *Pass) String() string {
	s := strings.Builder{}
	for i := range p.NumStages {
		if i > 0 {
			s.WriteString(" + ")
		}
		s.WriteString(p.Stages[i].String())
	}
	s.WriteString(fmt.Sprintf(" blend=%v viewport=%v", p.Blend, p.Viewport))
	return s.String()
}

// Textures returns the textures used by the pass.
func (p *Pass) Textures() []*pixels.Texture {
	t := make([]*pixels.Texture, 0, p.NumStages)
	for i := range p.NumStages {
		t = append(t, p.Stages[i].Texture)
	}
	return t
}
