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

// Package gl21 implements the device.Device interface with the fixed-function
// pipeline of OpenGL 2.1.
//
// Texture stages are implemented with the texture environment combiners. A
// pass with two stages uses a third texture unit to apply the colour of the
// pass. The framebuffer slots are textures that the back buffer is copied
// into. A committed slot is drawn to the back buffer and the buffers are
// swapped by the Surface.
//
// All functions must be called from the goroutine that owns the GL context.
package gl21

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
)

// Surface is the window that the device draws into.
type Surface interface {
	// swap the front and back buffers
	Swap() error

	// resize the drawable area of the surface
	Resize(width int, height int) error
}

// texture is stored in the Handle field of a pixels.Texture
type texture struct {
	id       uint32
	capacity int
	format   pixels.TexelFormat
}

// slot is a framebuffer slot
type slot struct {
	id       uint32
	capacity int
}

// Device implements the device.Device interface.
type Device struct {
	surface Surface
	mode    mode.DisplayMode

	slots [2]slot

	// every texture created by the device
	textures map[uint32]bool
}

// NewDevice is the preferred method of initialisation for the Device type.
// The GL context must be current.
func NewDevice(surface Surface) (*Device, error) {
	err := gl.Init()
	if err != nil {
		return nil, curated.Errorf("gl21: %v", err)
	}

	// log GPU vendor information
	logger.Logf(logger.Allow, "gl21", "vendor: %s", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Logf(logger.Allow, "gl21", "renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	logger.Logf(logger.Allow, "gl21", "driver: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	var units int32
	gl.GetIntegerv(gl.MAX_TEXTURE_UNITS, &units)
	if units < device.MaxStages+1 {
		return nil, curated.Errorf("gl21: %d texture units is not enough", units)
	}

	dev := &Device{
		surface:  surface,
		textures: make(map[uint32]bool),
	}

	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.LIGHTING)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)

	return dev, nil
}

func (dev *Device) newTexture(capacity int, smooth bool) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	filter(smooth)
	gl.TexImage2D(gl.TEXTURE_2D, 0,
		gl.RGBA, int32(capacity), int32(capacity), 0,
		gl.RGBA, gl.UNSIGNED_BYTE,
		nil)
	dev.textures[id] = true
	return id
}

func (dev *Device) deleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
	delete(dev.textures, id)
}

func filter(smooth bool) {
	if smooth {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	}
}

func nextPowerOfTwo(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// SetMode implements the device.Device interface.
func (dev *Device) SetMode(m mode.DisplayMode) error {
	if err := dev.surface.Resize(m.VIWidth, m.VIHeight); err != nil {
		return curated.Errorf("gl21: %v", err)
	}
	dev.mode = m

	capacity := nextPowerOfTwo(max(m.FBWidth, m.EFBHeight))
	for i := range dev.slots {
		if dev.slots[i].capacity == capacity {
			continue
		}
		if dev.slots[i].id != 0 {
			dev.deleteTexture(dev.slots[i].id)
		}
		dev.slots[i] = slot{
			id:       dev.newTexture(capacity, true),
			capacity: capacity,
		}
	}

	logger.Logf(logger.Allow, "gl21", "mode set: %v", m)

	return glError("SetMode")
}

// Begin implements the device.Device interface.
func (dev *Device) Begin() error {
	gl.Viewport(0, 0, int32(dev.mode.FBWidth), int32(dev.mode.EFBHeight))
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return nil
}

// upload the texture if it is dirty
func (dev *Device) upload(tex *pixels.Texture) {
	t, ok := tex.Handle.(*texture)
	if !ok || t.capacity != tex.Capacity() || t.format != tex.Format() {
		if ok {
			dev.deleteTexture(t.id)
		}
		t = &texture{
			id:       dev.newTexture(tex.Capacity(), false),
			capacity: tex.Capacity(),
			format:   tex.Format(),
		}
		tex.Handle = t
		logger.Logf(logger.Allow, "gl21", "texture created: %v", tex)
	}

	gl.BindTexture(gl.TEXTURE_2D, t.id)

	if !tex.Dirty() {
		return
	}

	img := pixels.Untile(tex)
	if sz := img.Bounds().Size(); sz.X > 0 && sz.Y > 0 {
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride)/4)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0,
			0, 0, int32(sz.X), int32(sz.Y),
			gl.RGBA, gl.UNSIGNED_BYTE,
			gl.Ptr(img.Pix))
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	}

	tex.Flushed()
}

// Draw implements the device.Device interface.
func (dev *Device) Draw(p *device.Pass) error {
	if p.NumStages < 1 || p.NumStages > device.MaxStages {
		panic(fmt.Sprintf("gl21: pass with %d stages", p.NumStages))
	}

	vp := p.Viewport
	gl.Viewport(int32(vp.X), int32(vp.FullHeight-vp.Y-vp.Height), int32(vp.Width), int32(vp.Height))

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&p.Projection[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	for i := range p.NumStages {
		s := p.Stages[i]
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.Enable(gl.TEXTURE_2D)
		dev.upload(s.Texture)
		filter(s.Smooth)
		combine(i, s, p.NumStages == 1)
	}

	// the colour of the pass modulates the result of the final stage. with a
	// single replace stage this is done by the stage itself
	units := p.NumStages
	if p.NumStages > 1 || p.Stages[0].Combine != device.CombineReplace {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(units))
		gl.Enable(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, p.Stages[p.NumStages-1].Texture.Handle.(*texture).id)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.MODULATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.PREVIOUS)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_RGB, gl.PRIMARY_COLOR)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND0_RGB, gl.SRC_COLOR)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND1_RGB, gl.SRC_COLOR)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.MODULATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.PREVIOUS)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_ALPHA, gl.PRIMARY_COLOR)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND0_ALPHA, gl.SRC_ALPHA)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND1_ALPHA, gl.SRC_ALPHA)
		units++
	}

	switch p.Blend {
	case device.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}

	gl.Color4f(p.Color[0], p.Color[1], p.Color[2], p.Color[3])

	gl.Begin(gl.TRIANGLE_FAN)
	for _, v := range p.Vertices {
		for i := range units {
			gl.MultiTexCoord2f(gl.TEXTURE0+uint32(i), v.U, v.V)
		}
		gl.Vertex2f(v.X, v.Y)
	}
	gl.End()

	// leave only the first texture unit enabled
	for i := units - 1; i > 0; i-- {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.Disable(gl.TEXTURE_2D)
	}
	gl.ActiveTexture(gl.TEXTURE0)

	return glError("Draw")
}

// combine sets the texture environment of the current texture unit. the
// primary colour is included by a single replace stage
func combine(unit int, s device.Stage, single bool) {
	if unit == 0 && single && s.Combine == device.CombineReplace {
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
		return
	}

	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)

	switch s.Combine {
	case device.CombineReplace:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.TEXTURE)

	case device.CombineInterpolate:
		c := [4]float32{s.Constant, s.Constant, s.Constant, s.Constant}
		gl.TexEnvfv(gl.TEXTURE_ENV, gl.TEXTURE_ENV_COLOR, &c[0])
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.INTERPOLATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_RGB, gl.PREVIOUS)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC2_RGB, gl.CONSTANT)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND2_RGB, gl.SRC_ALPHA)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.INTERPOLATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC1_ALPHA, gl.PREVIOUS)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC2_ALPHA, gl.CONSTANT)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND2_ALPHA, gl.SRC_ALPHA)
	}

	gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND0_RGB, gl.SRC_COLOR)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND1_RGB, gl.SRC_COLOR)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND0_ALPHA, gl.SRC_ALPHA)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.OPERAND1_ALPHA, gl.SRC_ALPHA)
}

// CopyToSlot implements the scheduler.Framebuffers interface.
func (dev *Device) CopyToSlot(slot int) error {
	s := dev.slots[slot]
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.id)
	gl.CopyTexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, 0, 0, int32(dev.mode.FBWidth), int32(dev.mode.EFBHeight))
	return glError("CopyToSlot")
}

// Commit implements the scheduler.Framebuffers interface. The slot is drawn
// to the entire surface and the buffers are swapped.
func (dev *Device) Commit(slot int) error {
	s := dev.slots[slot]

	gl.Viewport(0, 0, int32(dev.mode.VIWidth), int32(dev.mode.VIHeight))
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, 1, 0, 1, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	gl.Disable(gl.BLEND)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Enable(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, s.id)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.REPLACE)

	u := float32(dev.mode.FBWidth) / float32(s.capacity)
	v := float32(dev.mode.EFBHeight) / float32(s.capacity)

	// the slot was copied from the bottom of the back buffer so texture
	// coordinates are not flipped
	gl.Begin(gl.TRIANGLE_FAN)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(0, 0)
	gl.TexCoord2f(u, 0)
	gl.Vertex2f(1, 0)
	gl.TexCoord2f(u, v)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, v)
	gl.Vertex2f(0, 1)
	gl.End()

	if err := glError("Commit"); err != nil {
		return err
	}

	if err := dev.surface.Swap(); err != nil {
		return curated.Errorf("gl21: %v", err)
	}
	return nil
}

// Blank implements the scheduler.Framebuffers interface.
func (dev *Device) Blank() error {
	gl.Viewport(0, 0, int32(dev.mode.VIWidth), int32(dev.mode.VIHeight))
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if err := dev.surface.Swap(); err != nil {
		return curated.Errorf("gl21: %v", err)
	}
	return nil
}

// Destroy implements the device.Device interface.
func (dev *Device) Destroy() error {
	for id := range dev.textures {
		gl.DeleteTextures(1, &id)
	}
	clear(dev.textures)
	dev.slots = [2]slot{}
	return nil
}

func glError(fn string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return curated.Errorf("gl21: %s: error %#04x", fn, e)
	}
	return nil
}
