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

// Package compositor builds the passes required to draw a frame and sends
// them to a device.
//
// The first pass draws the main texture into the letterboxed viewport,
// rotated as required. If a blend texture is supplied the pass uses a second
// texture stage to combine the two textures equally. The second pass, if an
// overlay texture is supplied, draws the overlay with alpha blending and a
// projection of its own.
//
// The intensity of a fade is applied as the colour of the passes. It never
// requires an additional pass.
package compositor

import (
	"math"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
	"github.com/jetsetilly/retrace/video/specification"
)

// BlendFactor is the interpolation constant used for temporal blending.
const BlendFactor = 0.5

// Params for a call to Composite().
type Params struct {
	Viewport mode.Viewport
	Rotation specification.Rotation

	SmoothMain    bool
	SmoothOverlay bool

	// brightness of the output. one is full brightness
	Intensity float32

	// number of lines to remove from the top and bottom of the main
	// texture
	OverscanLines int

	// the overlay is drawn into the same viewport as the main texture
	// rather than the full framebuffer
	OverlayShareViewport bool

	// transparency of the overlay. one is fully opaque
	OverlayAlpha float32
}

// Compositor issues passes to a device.
type Compositor struct {
	dev device.Device

	// passes are reused from frame to frame
	passes [2]device.Pass

	// projections for the main and overlay passes
	mainProjection    device.Matrix
	overlayProjection device.Matrix
}

// NewCompositor is the preferred method of initialisation for the Compositor
// type.
func NewCompositor(dev device.Device) *Compositor {
	return &Compositor{
		dev:               dev,
		mainProjection:    device.Ortho(0, 1, 0, 1, -1, 1),
		overlayProjection: device.Ortho(0, 1, 0, 1, -1, 1),
	}
}

// rotations in quarter turns anti-clockwise, stored as the 2x2 matrix
// (cos, -sin, sin, cos)
var rotations = [specification.NumRotations][4]float32{
	specification.NormalRotation:  {1, 0, 0, 1},
	specification.LeftRotation:    {0, -1, 1, 0},
	specification.FlippedRotation: {-1, 0, 0, -1},
	specification.RightRotation:   {0, 1, -1, 0},
}

// corners of the unit quad in the order drawn
var quad = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Composite draws the main texture and the optional blend and overlay
// textures. The blend and overlay textures can be nil. Returns the number of
// passes sent to the device.
func (cmp *Compositor) Composite(main *pixels.Texture, blend *pixels.Texture, overlay *pixels.Texture, p Params) (int, error) {
	if main == nil {
		panic("compositor: nil main texture")
	}

	if err := cmp.dev.Begin(); err != nil {
		return 0, curated.Errorf("compositor: %v", err)
	}

	intensity := clamp(p.Intensity)

	n := 0

	ps := &cmp.passes[n]
	*ps = device.Pass{}
	ps.Stages[0] = device.Stage{
		Texture: main,
		Combine: device.CombineReplace,
		Smooth:  p.SmoothMain,
	}
	ps.NumStages = 1
	if blend != nil {
		ps.Stages[1] = device.Stage{
			Texture:  blend,
			Combine:  device.CombineInterpolate,
			Constant: BlendFactor,
			Smooth:   p.SmoothMain,
		}
		ps.NumStages = 2
	}
	ps.Blend = device.BlendNone
	ps.Viewport = p.Viewport
	ps.Projection = cmp.mainProjection
	ps.Color = [4]float32{intensity, intensity, intensity, 1}
	mainVertices(ps, main, p.Rotation, p.OverscanLines)

	if err := cmp.dev.Draw(ps); err != nil {
		return n, curated.Errorf("compositor: %v", err)
	}
	n++

	if overlay != nil {
		ps := &cmp.passes[n]
		*ps = device.Pass{}
		ps.Stages[0] = device.Stage{
			Texture: overlay,
			Combine: device.CombineReplace,
			Smooth:  p.SmoothOverlay,
		}
		ps.NumStages = 1
		ps.Blend = device.BlendAlpha
		ps.Projection = cmp.overlayProjection
		ps.Color = [4]float32{intensity, intensity, intensity, clamp(p.OverlayAlpha)}

		if p.OverlayShareViewport {
			ps.Viewport = p.Viewport
		} else {
			ps.Viewport = mode.Viewport{
				Width:      p.Viewport.FullWidth,
				Height:     p.Viewport.FullHeight,
				FullWidth:  p.Viewport.FullWidth,
				FullHeight: p.Viewport.FullHeight,
			}
		}

		overlayVertices(ps, overlay)

		if err := cmp.dev.Draw(ps); err != nil {
			return n, curated.Errorf("compositor: %v", err)
		}
		n++
	}

	return n, nil
}

// mainVertices sets the vertices of the main pass. the quad is rotated about
// its centre and the texture coordinates are cropped by the overscan lines
func mainVertices(ps *device.Pass, tex *pixels.Texture, rot specification.Rotation, overscan int) {
	if !rot.Valid() {
		rot = specification.NormalRotation
	}
	r := rotations[rot]

	w, h := tex.Size()
	overscan = max(0, min(overscan, h/2))

	c := float32(tex.Capacity())
	u0 := float32(0)
	u1 := float32(w) / c
	v0 := float32(overscan) / c
	v1 := float32(h-overscan) / c

	// texture row zero is at the top of the picture
	tc := [4][2]float32{{u0, v1}, {u1, v1}, {u1, v0}, {u0, v0}}

	for i, q := range quad {
		x := q[0] - 0.5
		y := q[1] - 0.5
		ps.Vertices[i] = device.Vertex{
			X: r[0]*x + r[1]*y + 0.5,
			Y: r[2]*x + r[3]*y + 0.5,
			U: tc[i][0],
			V: tc[i][1],
		}
	}
}

// overlayVertices sets the vertices of the overlay pass. the overlay is never
// rotated or cropped
func overlayVertices(ps *device.Pass, tex *pixels.Texture) {
	w, h := tex.Size()
	c := float32(tex.Capacity())
	u1 := float32(w) / c
	v1 := float32(h) / c

	tc := [4][2]float32{{0, v1}, {u1, v1}, {u1, 0}, {0, 0}}
	for i, q := range quad {
		ps.Vertices[i] = device.Vertex{X: q[0], Y: q[1], U: tc[i][0], V: tc[i][1]}
	}
}

func clamp(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return max(0, min(v, 1))
}
