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

// Package sdlwindow opens a window with an OpenGL 2.1 context. The window is
// the Surface for the gl21 device and the source of retrace signals.
//
// SDL does not report the retrace of the display so retrace signals are
// generated by a software ticker at the refresh rate of the display. With
// vertical sync enabled the buffer swap also waits for the real retrace.
//
// The window also implements the mode.Probe interface. The broadcast
// standard is decided by the refresh rate of the display.
package sdlwindow

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/video/scheduler"
	"github.com/jetsetilly/retrace/video/specification"
)

// Event is returned by the Service() function.
type Event int

// List of valid Event values.
const (
	EventNone Event = iota
	EventQuit
	EventReset
	EventOverlay
)

// list of swap interval values as expected by the GLSetSwapInterval()
// function
const (
	syncImmediateUpdate     = 0
	syncWithVerticalRetrace = 1
)

// Window is an SDL window with an OpenGL context.
type Window struct {
	window  *sdl.Window
	context sdl.GLContext
	mode    sdl.DisplayMode

	retrace *scheduler.Ticker
	swaps   uint32

	nonBlocking atomic.Bool
	interval    int
}

// NewWindow is the preferred method of initialisation for the Window type.
// The window is hidden until the first call to Resize().
//
// The window must be used from the goroutine that created it.
func NewWindow(title string) (*Window, error) {
	// the SDL package calls LockOSThread() but we call it here too. it can't
	// hurt and we never unlock it in any case
	runtime.LockOSThread()

	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}
	err = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}
	err = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	var sdlVersion sdl.Version
	sdl.VERSION(&sdlVersion)
	logger.Logf(logger.Allow, "sdl", "version %d.%d.%d", sdlVersion.Major, sdlVersion.Minor, sdlVersion.Patch)

	win := &Window{
		interval: -1,
	}

	win.mode, err = sdl.GetCurrentDisplayMode(0)
	if err != nil {
		sdl.Quit()
		return nil, curated.Errorf("sdl: %v", err)
	}
	logger.Logf(logger.Allow, "sdl", "refresh rate: %dHz", win.mode.RefreshRate)

	win.window, err = sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		640, 480,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		sdl.Quit()
		return nil, curated.Errorf("sdl: %v", err)
	}

	win.context, err = win.window.GLCreateContext()
	if err != nil {
		_ = win.Destroy()
		return nil, curated.Errorf("sdl: %v", err)
	}
	err = win.window.GLMakeCurrent(win.context)
	if err != nil {
		_ = win.Destroy()
		return nil, curated.Errorf("sdl: %v", err)
	}

	win.setSwapInterval()

	return win, nil
}

// SetRetrace starts the retrace signal. The function is called from another
// goroutine at the refresh rate of the display.
func (win *Window) SetRetrace(onRetrace func(count uint32)) {
	if win.retrace != nil {
		win.retrace.Stop()
	}
	win.retrace = scheduler.NewTicker(float32(win.mode.RefreshRate), onRetrace)
}

// SetNonBlocking turns vertical sync off. The change takes effect on the next
// swap. Safe to call from any goroutine.
func (win *Window) SetNonBlocking(nonBlocking bool) {
	win.nonBlocking.Store(nonBlocking)
}

func (win *Window) setSwapInterval() {
	i := syncWithVerticalRetrace
	if win.nonBlocking.Load() {
		i = syncImmediateUpdate
	}
	if i == win.interval {
		return
	}
	win.interval = i

	err := sdl.GLSetSwapInterval(i)
	if err != nil {
		logger.Logf(logger.Allow, "sdl", "GLSetSwapInterval(%d): %v", i, err)
	}
}

// Swap implements the gl21.Surface interface.
func (win *Window) Swap() error {
	win.setSwapInterval()
	win.window.GLSwap()
	win.swaps++
	return nil
}

// Swaps returns the number of times the buffers have been swapped.
func (win *Window) Swaps() uint32 {
	return win.swaps
}

// Resize implements the gl21.Surface interface.
func (win *Window) Resize(width int, height int) error {
	win.window.SetSize(int32(width), int32(height))
	win.window.Show()
	logger.Logf(logger.Allow, "sdl", "window size: %dx%d", width, height)
	return nil
}

// CabledStandard implements the mode.Probe interface.
func (win *Window) CabledStandard() string {
	if win.mode.RefreshRate > 0 && win.mode.RefreshRate <= 50 {
		return specification.SpecPAL.ID
	}
	return specification.SpecNTSC.ID
}

// ProgressiveCapable implements the mode.Probe interface. A computer display
// is always capable of a progressive signal.
func (win *Window) ProgressiveCapable() bool {
	return true
}

// RefreshRate returns the refresh rate of the display.
func (win *Window) RefreshRate() int {
	return int(win.mode.RefreshRate)
}

// Service the SDL event queue. Returns the most important event.
func (win *Window) Service() Event {
	ev := EventNone
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e := e.(type) {
		case *sdl.QuitEvent:
			ev = EventQuit
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				break // switch
			}
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE:
				ev = EventQuit
			case sdl.K_F5:
				if ev == EventNone {
					ev = EventReset
				}
			case sdl.K_F1:
				if ev == EventNone {
					ev = EventOverlay
				}
			}
		}
	}
	return ev
}

func (win *Window) String() string {
	w, h := win.window.GetSize()
	return fmt.Sprintf("%dx%d @ %dHz", w, h, win.mode.RefreshRate)
}

// Destroy the window and release SDL.
func (win *Window) Destroy() error {
	if win.retrace != nil {
		win.retrace.Stop()
		win.retrace = nil
	}
	if win.context != nil {
		sdl.GLDeleteContext(win.context)
		win.context = nil
	}
	if win.window != nil {
		err := win.window.Destroy()
		if err != nil {
			return curated.Errorf("sdl: %v", err)
		}
		win.window = nil
	}
	sdl.Quit()
	return nil
}
