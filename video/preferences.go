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

package video

import (
	"github.com/jetsetilly/retrace/prefs"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
	"github.com/jetsetilly/retrace/video/transition"
)

// Preferences for the video pipeline. Preferences can be changed from any
// goroutine. Changes that affect the display mode or the textures are applied
// at the start of the next frame.
type Preferences struct {
	dsk *prefs.Disk

	// linear filtering of the main and overlay textures
	Smooth        prefs.Bool
	OverlaySmooth prefs.Bool

	// index into the mode.AspectRatios table
	Aspect prefs.Int

	// the physical display is widescreen
	DeviceWide prefs.Bool

	// quarter turns anti-clockwise. see specification.Rotation
	Rotation prefs.Int

	// combine each frame with the previous frame
	Blend prefs.Bool

	// do not wait for the retrace before drawing. will cause tearing
	NonBlocking prefs.Bool

	// the viewport used when the custom aspect ratio is selected
	CustomX      prefs.Int
	CustomY      prefs.Int
	CustomWidth  prefs.Int
	CustomHeight prefs.Int

	// requested output resolution. zero means the default resolution
	Width  prefs.Int
	Height prefs.Int

	// renegotiate the display mode when the dimensions of the incoming
	// frames change
	AutoResolution prefs.Bool

	// name of the broadcast standard to use. empty or AUTO to use the
	// standard of the connected display
	Standard prefs.String

	// use a progressive mode if the display supports it
	Progressive prefs.Bool

	// lines to remove from the top and bottom of the picture
	Overscan prefs.Int

	// smallest texture scale. capacity of a texture is 256 x scale texels.
	// the scale is raised for frames that need a larger texture
	Scale prefs.Int

	// use 16 bit textures for 32 bit sources
	Reduced prefs.Bool

	// the pixel converter implementation. "reference" or "wide"
	Converter prefs.String

	// number of frames in a fade and whether to fade in on start and after
	// a reset
	FadeSteps prefs.Int
	FadeIn    prefs.Bool

	// transparency of the overlay
	OverlayAlpha prefs.Float

	// the length of time to wait for a retrace in milliseconds
	RetraceTimeout prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

const (
	smooth         = true
	overlaySmooth  = true
	aspect         = 0
	deviceWide     = false
	rotation       = 0
	blend          = false
	nonBlocking    = false
	autoResolution = false
	standard       = "AUTO"
	progressive    = true
	overscan       = 0
	scale          = 1
	reduced        = false
	fadeSteps      = transition.DefaultSteps
	fadeIn         = true
	overlayAlpha   = 1.0
	retraceTimeout = 1000
)

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The path is the location of the preferences file. The
// file is not read until Load() is called.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	for _, e := range []struct {
		key  string
		pref prefs.Pref
	}{
		{"video.smooth", &p.Smooth},
		{"video.overlay.smooth", &p.OverlaySmooth},
		{"video.aspect", &p.Aspect},
		{"video.deviceWide", &p.DeviceWide},
		{"video.rotation", &p.Rotation},
		{"video.blend", &p.Blend},
		{"video.nonblocking", &p.NonBlocking},
		{"video.custom.x", &p.CustomX},
		{"video.custom.y", &p.CustomY},
		{"video.custom.width", &p.CustomWidth},
		{"video.custom.height", &p.CustomHeight},
		{"video.width", &p.Width},
		{"video.height", &p.Height},
		{"video.autoResolution", &p.AutoResolution},
		{"video.standard", &p.Standard},
		{"video.progressive", &p.Progressive},
		{"video.overscan", &p.Overscan},
		{"video.scale", &p.Scale},
		{"video.reduced", &p.Reduced},
		{"video.converter", &p.Converter},
		{"video.fade.steps", &p.FadeSteps},
		{"video.fade.in", &p.FadeIn},
		{"video.overlay.alpha", &p.OverlayAlpha},
		{"video.retraceTimeout", &p.RetraceTimeout},
	} {
		err = p.dsk.Add(e.key, e.pref)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all video settings to default values.
func (p *Preferences) SetDefaults() {
	p.Smooth.Set(smooth)
	p.OverlaySmooth.Set(overlaySmooth)
	p.Aspect.Set(aspect)
	p.DeviceWide.Set(deviceWide)
	p.Rotation.Set(rotation)
	p.Blend.Set(blend)
	p.NonBlocking.Set(nonBlocking)
	p.CustomX.Set(0)
	p.CustomY.Set(0)
	p.CustomWidth.Set(0)
	p.CustomHeight.Set(0)
	p.Width.Set(mode.DefaultWidth)
	p.Height.Set(mode.DefaultHeight)
	p.AutoResolution.Set(autoResolution)
	p.Standard.Set(standard)
	p.Progressive.Set(progressive)
	p.Overscan.Set(overscan)
	p.Scale.Set(scale)
	p.Reduced.Set(reduced)
	p.Converter.Set(pixels.ConverterWide.String())
	p.FadeSteps.Set(fadeSteps)
	p.FadeIn.Set(fadeIn)
	p.OverlayAlpha.Set(overlayAlpha)
	p.RetraceTimeout.Set(retraceTimeout)
}

// Load video preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current video preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// customViewport returns the viewport described by the custom preferences.
func (p *Preferences) customViewport() mode.Viewport {
	return mode.Viewport{
		X:      p.CustomX.Get().(int),
		Y:      p.CustomY.Get().(int),
		Width:  p.CustomWidth.Get().(int),
		Height: p.CustomHeight.Get().(int),
	}
}
