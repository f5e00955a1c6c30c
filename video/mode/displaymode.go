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

	"github.com/jetsetilly/retrace/video/specification"
)

// InterlaceKind is the scanning method of a DisplayMode.
type InterlaceKind int

// List of valid InterlaceKind values.
const (
	NonInterlaced InterlaceKind = iota
	Interlaced
	Progressive
)

func (k InterlaceKind) String() string {
	switch k {
	case NonInterlaced:
		return "non-interlaced"
	case Interlaced:
		return "interlaced"
	case Progressive:
		return "progressive"
	}
	return "unknown"
}

// DisplayMode is the result of a call to Manager.Negotiate(). All buffer and
// viewport computations are derived from it.
type DisplayMode struct {
	Standard  specification.Spec
	Interlace InterlaceKind

	// number of physical lines used for each framebuffer line
	LineMultiplier int

	// width of the framebuffer in pixels. always a multiple of 16
	FBWidth int

	// height of the embedded framebuffer that is drawn into
	EFBHeight int

	// height of the external framebuffer that is scanned out
	XFBHeight int

	// physical dimensions of the picture and the position of the
	// picture inside the maximum area of the standard
	VIWidth   int
	VIHeight  int
	VIOriginX int
	VIOriginY int

	// the refresh rate derived from the standard and interlacing
	RefreshRate float32
}

func (m DisplayMode) String() string {
	return fmt.Sprintf("%s %dx%d %v (%.3fHz)", m.Standard.ID, m.FBWidth, m.XFBHeight, m.Interlace, m.RefreshRate)
}

// Probe is used to query the video hardware for information that can't be
// known in advance.
type Probe interface {
	// the broadcast standard of the connected display. one of the values in
	// specification.SpecList
	CabledStandard() string

	// whether the connected display can accept a progressive signal
	ProgressiveCapable() bool
}
