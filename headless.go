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
	"io"
	"os"
	"os/signal"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/easyterm"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/modalflag"
	"github.com/jetsetilly/retrace/video"
	"github.com/jetsetilly/retrace/video/device/recorder"
	"github.com/jetsetilly/retrace/video/scheduler"
)

func headless(md *modalflag.Modes) error {
	md.NewMode()

	opts := addOptions(md)
	frames := md.AddInt("frames", 0, "number of frames to present before exiting. zero runs until exit is requested")
	rate := md.AddFloat64("rate", 0, "retrace rate. zero uses the refresh rate of the display mode")
	standard := md.AddString("standard", "NTSC", "standard of the virtual display: NTSC, PAL")
	keys := md.AddBool("keys", true, "read keys from the terminal. r to reset, x to exit")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	opts.apply(md.Output)

	rec := recorder.NewRecorder()
	rec.Standard = *standard

	s, err := newSession(opts, rec, rec)
	if err != nil {
		return err
	}

	// the retrace follows the display mode unless a rate has been specified
	if *rate > 0 {
		tck := scheduler.NewTicker(float32(*rate), s.pl.OnRetrace)
		defer tck.Stop()
	} else {
		s.retrace = scheduler.NewTicker(s.pl.Mode().RefreshRate, s.pl.OnRetrace)
		defer s.retrace.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var input <-chan rune
	if *keys {
		var term easyterm.Terminal
		if err := term.Initialise(os.Stdin, os.Stdout); err != nil {
			logger.Logf(logger.Allow, "headless", "no keyboard input: %v", err)
		} else {
			term.CBreakMode()
			defer term.CleanUp()
			input = term.Keys(ctx)
		}
	}

	err = presentLoop(ctx, s, *frames, input)
	if eerr := s.end(md.Output); eerr != nil && err == nil {
		err = eerr
	}
	if err != nil {
		return err
	}

	report(md.Output, s, rec)

	return nil
}

// presentLoop presents frames until the pipeline terminates. an exit is
// requested when the context is done or when the number of frames has been
// presented
func presentLoop(ctx context.Context, s *session, frames int, input <-chan rune) error {
	exiting := false
	exit := func() {
		if !exiting {
			exiting = true
			s.pl.RequestExit()
		}
	}

	for {
		select {
		case k, ok := <-input:
			if !ok {
				input = nil
				break // select
			}
			switch k {
			case 'r', 'R':
				s.pl.RequestReset()
			case 'x', 'X', 'q', 'Q':
				exit()
			}
		case <-ctx.Done():
			exit()
		default:
		}

		err := s.frame()
		if err != nil {
			if curated.Is(err, video.Terminated) {
				return nil
			}
			return err
		}

		if frames > 0 && int(s.pl.Presented()) >= frames {
			exit()
		}
	}
}

func report(output io.Writer, s *session, rec *recorder.Recorder) {
	_, measured := s.pl.RefreshRate()
	fmt.Fprintf(output, "%d frames presented\n", s.pl.Presented())
	fmt.Fprintf(output, "%v (%.2fHz measured)\n", s.pl.Mode(), measured)
	fmt.Fprintf(output, "digest: %s\n", rec.Hash())
}
