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
	"strings"

	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/video/specification"
)

// default dimensions used when a request is for zero width or height
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// the embedded framebuffer can never be taller than this
const maxEFBHeight = 480

// framebuffer width is padded to a multiple of this value
const fbWidthAlignment = 16

// Manager negotiates display modes and viewports.
type Manager struct {
	probe Probe

	// PreferProgressive allows a progressive mode to be selected when the
	// probe reports that the display is capable of it
	PreferProgressive bool

	// the custom viewport. zero width or height means that it has not
	// been set
	custom Viewport
}

// NewManager is the preferred method of initialisation for the Manager type.
func NewManager(probe Probe) *Manager {
	return &Manager{
		probe:             probe,
		PreferProgressive: true,
	}
}

// standard returns the specification to use for the given hint
func (mgr *Manager) standard(hint string) specification.Spec {
	hint = strings.ToUpper(strings.TrimSpace(hint))
	if hint != "" && hint != "AUTO" {
		if spec, ok := specification.Lookup(hint); ok {
			return spec
		}
		if id := specification.SearchSpec(hint); id != "" {
			spec, _ := specification.Lookup(id)
			logger.Logf(logger.Allow, "mode", "standard hint (%s) taken as %s", hint, id)
			return spec
		}
		logger.Logf(logger.Allow, "mode", "unknown standard hint (%s). using cabled standard", hint)
	}

	cabled := mgr.probe.CabledStandard()
	if spec, ok := specification.Lookup(cabled); ok {
		return spec
	}

	logger.Logf(logger.Allow, "mode", "unsupported cabled standard (%s). using %s", cabled, specification.SpecNTSC.ID)
	return specification.SpecNTSC
}

// Negotiate a display mode for the requested dimensions. The hint can name a
// standard listed in specification.SpecList, or be empty or "AUTO" to use the
// standard reported by the probe.
//
// Requests for dimensions outside the limits of the standard are clamped. A
// zero dimension is replaced by the default.
func (mgr *Manager) Negotiate(requestedWidth int, requestedHeight int, hint string) DisplayMode {
	spec := mgr.standard(hint)

	width := requestedWidth
	if width <= 0 {
		width = DefaultWidth
	}
	lines := requestedHeight
	if lines <= 0 {
		lines = DefaultHeight
	}

	// pad width to the required alignment
	width = (width + fbWidthAlignment - 1) &^ (fbWidthAlignment - 1)

	if width > spec.MaxWidth {
		logger.Logf(logger.Allow, "mode", "width of %d is too large for %s. clamping to %d", width, spec.ID, spec.MaxWidth)
		width = spec.MaxWidth
	}
	if lines > spec.MaxHeight {
		logger.Logf(logger.Allow, "mode", "%d lines is too many for %s. clamping to %d", lines, spec.ID, spec.MaxHeight)
		lines = spec.MaxHeight
	}

	m := DisplayMode{
		Standard:       spec,
		FBWidth:        width,
		EFBHeight:      min(lines, maxEFBHeight),
		XFBHeight:      lines,
		LineMultiplier: 1,
	}

	if lines <= spec.MaxHeight/2 {
		m.Interlace = NonInterlaced
		m.LineMultiplier = 2
		m.RefreshRate = spec.NonInterlacedRate()
	} else {
		if mgr.PreferProgressive && mgr.probe.ProgressiveCapable() {
			m.Interlace = Progressive
		} else {
			m.Interlace = Interlaced
		}
		m.RefreshRate = spec.FieldRate
	}

	m.VIWidth = m.FBWidth
	m.VIHeight = m.XFBHeight * m.LineMultiplier
	m.VIOriginX = (spec.MaxWidth - m.VIWidth) / 2
	m.VIOriginY = (spec.MaxHeight - m.VIHeight) / 2

	return m
}
