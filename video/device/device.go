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

// Package device describes the work to be done by a fixed-function GPU. A
// frame is drawn with one or more passes. Each pass draws a single textured
// quad with up to two texture stages.
//
// The stages are combined in order. The result of the final stage is then
// modulated by the colour of the pass, which is how fades are applied
// without an additional pass:
//
//	CombineReplace		output = texture
//	CombineInterpolate	output = texture x c + previous x (1 - c)
//
// Implementations of the Device interface can be found in the sub-packages.
// The recorder device stores the passes for inspection and is useful for
// testing. The gl21 device draws with the OpenGL 2.1 fixed-function
// pipeline.
package device

import (
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/scheduler"
)

// Device is implemented by anything that can draw a Pass.
type Device interface {
	// the slots of the framebuffer are managed by the scheduler
	scheduler.Framebuffers

	// prepare the device for a new display mode
	SetMode(m mode.DisplayMode) error

	// begin a new frame. the framebuffer is cleared to black
	Begin() error

	// draw a single pass. textures that are dirty must be made visible to
	// the GPU before drawing
	Draw(p *Pass) error

	// release all resources
	Destroy() error
}
