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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/modalflag"
	"github.com/jetsetilly/retrace/notifications"
	"github.com/jetsetilly/retrace/prefs"
	"github.com/jetsetilly/retrace/statsview"
	"github.com/jetsetilly/retrace/video"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/overlay"
	"github.com/jetsetilly/retrace/video/pattern"
	"github.com/jetsetilly/retrace/video/pixels"
	"github.com/jetsetilly/retrace/video/scheduler"
	"github.com/jetsetilly/retrace/video/specification"
	"github.com/jetsetilly/retrace/wavwriter"
)

// options common to all modes
type options struct {
	prefsFile *string
	saveprefs *bool
	set       *string
	log       *bool
	stats     *bool
	memviz    *string
	width     *int
	height    *int
	format    *string
	duplicate *int
	wav       *string
	rotation  *string
}

func addOptions(md *modalflag.Modes) *options {
	return &options{
		prefsFile: md.AddString("prefs", "", "preferences file"),
		saveprefs: md.AddBool("saveprefs", false, "save preferences on exit (requires -prefs)"),
		set:       md.AddString("set", "", "set preferences. eg. \"video.blend::true; video.rotation::1\""),
		log:       md.AddBool("log", false, "echo debugging log to stdout"),
		stats:     md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address)),
		memviz:    md.AddString("memviz", "", "write graph of the pipeline to file on exit"),
		width:     md.AddInt("width", 256, "width of test pattern"),
		height:    md.AddInt("height", 224, "height of test pattern"),
		format:    md.AddString("format", "RGB565", "pixel format of test pattern: RGB565, XRGB1555, XRGB8888"),
		duplicate: md.AddInt("duplicate", 0, "every nth frame of the test pattern is a duplicate"),
		wav:       md.AddString("wav", "", "record frame cadence to wav file"),
		rotation:  md.AddString("rotation", "", "rotation of the output: normal, left, flipped, right"),
	}
}

// apply the options that do not depend on the video pipeline
func (opts *options) apply(output io.Writer) {
	if *opts.log {
		logger.SetEcho(output, false)
	} else {
		logger.SetEcho(nil, false)
	}

	if *opts.stats {
		statsview.Launch(output)
	}
}

// pixelFormat returns the format named by the format option
func (opts *options) pixelFormat() (pixels.Format, error) {
	for _, f := range []pixels.Format{pixels.FormatRGB565, pixels.FormatXRGB1555, pixels.FormatXRGB8888} {
		if strings.EqualFold(*opts.format, f.String()) {
			return f, nil
		}
	}
	return pixels.FormatRGB565, fmt.Errorf("unsupported pixel format (%s)", *opts.format)
}

// preferences from the prefs file with any command line values taking
// priority
func (opts *options) preferences() (*video.Preferences, error) {
	set := *opts.set
	if *opts.rotation != "" {
		rot, err := specification.ParseRotation(*opts.rotation)
		if err != nil {
			return nil, err
		}
		set = fmt.Sprintf("%s; video.rotation::%d", set, int(rot))
	}

	prefs.PushCommandLineStack(set)
	p, err := video.NewPreferences(*opts.prefsFile)
	if unused := prefs.PopCommandLineStack(); unused != "" {
		logger.Logf(logger.Allow, "retrace", "unused preferences: %s", unused)
	}
	if err != nil {
		return nil, err
	}

	if *opts.prefsFile != "" {
		if err := p.Load(); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// session connects the test pattern and the on-screen display to the video
// pipeline. it receives the notifications from the pipeline
type session struct {
	opts  *options
	prefs *video.Preferences

	pl  *video.Pipeline
	gen *pattern.Generator
	osd *overlay.Overlay

	format pixels.Format

	// software retrace that follows the refresh rate of the display mode.
	// can be nil
	retrace *scheduler.Ticker

	// frame cadence recording. can be nil
	wav *wavwriter.WavWriter

	// the number of resets that have been performed
	resets int
}

func newSession(opts *options, dev device.Device, probe mode.Probe) (*session, error) {
	format, err := opts.pixelFormat()
	if err != nil {
		return nil, err
	}

	for _, d := range []int{*opts.width, *opts.height} {
		if d < 4 || d > pixels.MaxDimension {
			return nil, fmt.Errorf("test pattern must be between 4 and %d pixels on each side (%dx%d)",
				pixels.MaxDimension, *opts.width, *opts.height)
		}
	}

	p, err := opts.preferences()
	if err != nil {
		return nil, err
	}

	s := &session{
		opts:   opts,
		prefs:  p,
		format: format,
		gen:    pattern.NewGenerator(*opts.width, *opts.height, format),
		osd:    overlay.NewOverlay(*opts.width, *opts.height),
	}
	s.gen.Duplicate = *opts.duplicate

	if *opts.wav != "" {
		s.wav, err = wavwriter.New(*opts.wav)
		if err != nil {
			return nil, err
		}
	}

	s.pl, err = video.NewPipeline(dev, probe, p, s)
	if err != nil {
		return nil, err
	}

	s.pl.SetAudioSync(s)

	logger.Logf(logger.Allow, "retrace", "%v", s.gen)

	return s, nil
}

// Notify implements the notifications.Notify interface.
func (s *session) Notify(notice notifications.Notice) error {
	switch notice {
	case notifications.NotifyModeChange:
		// the first mode change happens before the pipeline has been
		// returned by NewPipeline()
		if s.pl != nil {
			s.osd.Message(s.pl.Mode().String(), 0)
		}
	case notifications.NotifyReset:
		s.resets++
		s.gen = pattern.NewGenerator(*s.opts.width, *s.opts.height, s.format)
		s.gen.Duplicate = *s.opts.duplicate
		s.osd.Message(fmt.Sprintf("reset %d", s.resets), 0)
	case notifications.NotifyRetraceTimeout:
		s.osd.Message("no retrace", 0)
	case notifications.NotifyFadeInComplete:
		logger.Log(logger.Allow, "retrace", "fade in complete")
	case notifications.NotifyExit:
		logger.Log(logger.Allow, "retrace", "exit")
	}
	return nil
}

// SetRefreshRate implements the video.AudioSync interface.
func (s *session) SetRefreshRate(hz float32) {
	if s.retrace != nil {
		s.retrace.SetRate(hz)
	}
	if s.wav != nil {
		s.wav.SetRefreshRate(hz)
	}
}

// frame presents the next frame of the test pattern
func (s *session) frame() error {
	s.osd.Tick()
	s.pl.SetOverlay(s.osd.Render(), false, 1.0)
	if err := s.pl.Frame(s.gen.Next()); err != nil {
		return err
	}
	if s.wav != nil {
		s.wav.Frame()
	}
	return nil
}

// end the session. the pipeline is shutdown and the preferences saved if
// requested
func (s *session) end(output io.Writer) error {
	if *s.opts.memviz != "" {
		f, err := os.Create(*s.opts.memviz)
		if err != nil {
			return err
		}
		memviz.Map(f, s.pl)
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(output, "pipeline graph written to %s\n", *s.opts.memviz)
	}

	err := s.pl.Shutdown()

	if s.wav != nil {
		if werr := s.wav.EndMixing(); werr != nil && err == nil {
			err = werr
		}
	}

	if *s.opts.saveprefs {
		if *s.opts.prefsFile == "" {
			return fmt.Errorf("a preferences file is required to save preferences")
		}
		if serr := s.prefs.Save(); serr != nil && err == nil {
			err = serr
		}
	}

	return err
}
