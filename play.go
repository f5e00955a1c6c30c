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
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"os/signal"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/modalflag"
	"github.com/jetsetilly/retrace/resources"
	"github.com/jetsetilly/retrace/video"
	"github.com/jetsetilly/retrace/video/device/gl21"
	"github.com/jetsetilly/retrace/video/pattern"
	"github.com/jetsetilly/retrace/video/sdlwindow"
	"github.com/jetsetilly/retrace/version"
)

// the preferences file used by the PLAY mode if one is not specified
const defaultPrefsFile = "video.prefs"

func play(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	opts := addOptions(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	opts.apply(md.Output)

	if *opts.prefsFile == "" {
		pth, err := resources.JoinPath(defaultPrefsFile)
		if err != nil {
			return err
		}
		*opts.prefsFile = pth
	}

	// the window and the GL device must be used from the main thread
	sync.run <- func() error {
		return playLoop(md.Output, opts)
	}
	return <-sync.runResult
}

// #mainthread
func playLoop(output io.Writer, opts *options) error {
	win, err := sdlwindow.NewWindow(version.ApplicationName)
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := gl21.NewDevice(win)
	if err != nil {
		return err
	}

	s, err := newSession(opts, dev, win)
	if err != nil {
		return err
	}

	s.pl.SetSwapControl(win)
	win.SetRetrace(s.pl.OnRetrace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	menu := false

	for {
		switch win.Service() {
		case sdlwindow.EventQuit:
			s.pl.RequestExit()
		case sdlwindow.EventReset:
			s.pl.RequestReset()
		case sdlwindow.EventOverlay:
			menu = !menu
			if menu {
				s.osd.SetMenu(menuImage(), s.prefs.OverlaySmooth.Get().(bool))
			} else {
				s.osd.SetMenu(nil, false)
			}
		}

		select {
		case <-ctx.Done():
			s.pl.RequestExit()
		default:
		}

		err = s.frame()
		if err != nil {
			if curated.Is(err, video.Terminated) {
				break // for loop
			}
			_ = s.end(output)
			return err
		}
	}

	err = s.end(output)
	fmt.Fprintf(output, "%d frames presented to %v (%d swaps)\n", s.pl.Presented(), win, win.Swaps())
	return err
}

// menuImage is a small image of the test pattern bars on a dark background.
// it is scaled to fill the overlay
func menuImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, pattern.NumBars+2, 4))
	for y := range 4 {
		for x := range pattern.NumBars + 2 {
			img.SetNRGBA(x, y, color.NRGBA{A: 0xc0})
		}
	}
	for x := range pattern.NumBars {
		c := pattern.Bar(x)
		c.A = 0xc0
		img.SetNRGBA(x+1, 1, c)
		img.SetNRGBA(x+1, 2, c)
	}
	return img
}
