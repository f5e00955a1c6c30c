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

package mode

import (
	"fmt"
	"math"

	"github.com/jetsetilly/retrace/video/specification"
)

// two aspect ratios closer than this are considered equal
const aspectEpsilon = 0.0001

// the aspect ratios of the physical display
const (
	DeviceAspectNormal = 4.0 / 3.0
	DeviceAspectWide   = 16.0 / 9.0
)

// Viewport is the area of the framebuffer that is drawn into.
type Viewport struct {
	X      int
	Y      int
	Width  int
	Height int

	// dimensions of the framebuffer
	FullWidth  int
	FullHeight int
}

func (vp Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d (of %dx%d)", vp.Width, vp.Height, vp.X, vp.Y, vp.FullWidth, vp.FullHeight)
}

// Full returns true if the viewport covers the whole framebuffer.
func (vp Viewport) Full() bool {
	return vp.X == 0 && vp.Y == 0 && vp.Width == vp.FullWidth && vp.Height == vp.FullHeight
}

// ViewportRequest describes the viewport required by Manager.Viewport().
type ViewportRequest struct {
	// the aspect ratio of the picture
	DesiredAspect float64

	// the aspect ratio of the physical display
	DeviceAspect float64

	Rotation specification.Rotation

	// use the custom viewport rather than computing one
	Custom bool
}

// Viewport computes the viewport for the display mode. The picture is
// letterboxed on one axis if the desired aspect ratio differs from the aspect
// ratio of the device.
//
// If a custom viewport is requested the stored custom viewport is returned
// unchanged. If no custom viewport has been set the full framebuffer is used
// and stored as the custom viewport.
func (mgr *Manager) Viewport(m DisplayMode, req ViewportRequest) Viewport {
	vp := Viewport{
		Width:      m.FBWidth,
		Height:     m.EFBHeight,
		FullWidth:  m.FBWidth,
		FullHeight: m.EFBHeight,
	}

	if req.Custom {
		if mgr.custom.Width == 0 || mgr.custom.Height == 0 {
			mgr.custom = vp
		}
		c := mgr.custom
		c.FullWidth = vp.FullWidth
		c.FullHeight = vp.FullHeight
		return c
	}

	desired := req.DesiredAspect
	device := req.DeviceAspect
	if desired <= 0 || device <= 0 {
		return vp
	}

	if req.Rotation.Sideways() {
		desired = 1 / desired
	}

	if math.Abs(device-desired) < aspectEpsilon {
		return vp
	}

	w := float64(vp.FullWidth)
	h := float64(vp.FullHeight)

	if device > desired {
		delta := (desired/device-1)/2 + 0.5
		vp.X = int(math.Round(w * (0.5 - delta)))
		vp.Width = min(int(math.Round(2*w*delta)), vp.FullWidth-vp.X)
	} else {
		delta := (device/desired-1)/2 + 0.5
		vp.Y = int(math.Round(h * (0.5 - delta)))
		vp.Height = min(int(math.Round(2*h*delta)), vp.FullHeight-vp.Y)
	}

	return vp
}

// SetCustomViewport sets the viewport to be used when a custom viewport is
// requested. A viewport with zero width or height will be replaced by the
// full framebuffer the next time it is used.
func (mgr *Manager) SetCustomViewport(vp Viewport) {
	mgr.custom = vp
}

// CustomViewport returns the stored custom viewport.
func (mgr *Manager) CustomViewport() Viewport {
	return mgr.custom
}
