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

package transition

import (
	"fmt"

	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/notifications"
)

// State of the Controller.
type State int

// List of valid State values.
const (
	Idle State = iota
	FadingIn
	FadingOutToReset
	FadingOutToExit
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FadingIn:
		return "fading in"
	case FadingOutToReset:
		return "fading out to reset"
	case FadingOutToExit:
		return "fading out to exit"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Intensity of the displayed frame. Zero is black and one is full intensity.
type Intensity float32

// DefaultSteps is the number of frames in a fade.
const DefaultSteps = 30

// Controller is the state machine for fades. It is not safe for concurrent
// use and should only be used by the goroutine presenting frames.
type Controller struct {
	notify notifications.Notify

	state State

	// number of frames in a fade
	steps int

	// frames since the start of the current fade. counts from zero up to
	// steps in both directions
	counter int

	// new value for steps. applied once the controller is idle
	nextSteps int

	// begin fading in once the reset side effect has fired
	FadeInAfterReset bool
}

// NewController is the preferred method of initialisation for the Controller
// type. A steps value of zero means that fades are instantaneous. The side
// effects still happen on the next call to Tick().
func NewController(steps int, notify notifications.Notify) *Controller {
	return &Controller{
		notify:           notify,
		steps:            max(0, steps),
		nextSteps:        -1,
		FadeInAfterReset: true,
	}
}

func (ctr *Controller) String() string {
	return fmt.Sprintf("%v %d/%d", ctr.state, ctr.counter, ctr.steps)
}

// State returns the current state of the controller.
func (ctr *Controller) State() State {
	return ctr.state
}

// Counter returns the number of frames since the start of the current fade.
func (ctr *Controller) Counter() int {
	return ctr.counter
}

// Steps returns the number of frames in a fade.
func (ctr *Controller) Steps() int {
	return ctr.steps
}

// SetSteps changes the number of frames in a fade. If a fade is in progress
// the change takes effect once it has completed.
func (ctr *Controller) SetSteps(steps int) {
	ctr.nextSteps = max(0, steps)
	if ctr.state == Idle {
		ctr.idle()
	}
}

// idle puts the controller into the Idle state and applies any change to the
// number of steps
func (ctr *Controller) idle() {
	ctr.state = Idle
	ctr.counter = 0
	if ctr.nextSteps >= 0 {
		ctr.steps = ctr.nextSteps
		ctr.nextSteps = -1
	}
}

// Start begins the fade in. Has no effect unless the controller is idle.
func (ctr *Controller) Start() {
	if ctr.state != Idle {
		return
	}
	ctr.state = FadingIn
	ctr.counter = 0
}

// RequestReset begins the fade out that ends with a reset. Returns false if
// the request has been ignored because a fade out is already in progress.
func (ctr *Controller) RequestReset() bool {
	return ctr.fadeOut(FadingOutToReset)
}

// RequestExit begins the fade out that ends with the program exiting. An exit
// request will replace a reset that is in progress.
func (ctr *Controller) RequestExit() bool {
	if ctr.state == FadingOutToReset {
		// the fade continues from where it is. only the side effect changes
		ctr.state = FadingOutToExit
		return true
	}
	return ctr.fadeOut(FadingOutToExit)
}

func (ctr *Controller) fadeOut(to State) bool {
	switch ctr.state {
	case Idle:
		ctr.counter = 0
	case FadingIn:
		// start from the current intensity
		ctr.counter = ctr.steps - ctr.counter
	default:
		return false
	}
	ctr.state = to
	return true
}

// Tick advances the current fade by one frame and returns the intensity to
// use for the frame.
func (ctr *Controller) Tick() Intensity {
	switch ctr.state {
	case Idle:
		return 1.0

	case Terminated:
		return 0.0

	case FadingIn:
		ctr.counter = min(ctr.counter+1, ctr.steps)
		if ctr.counter >= ctr.steps {
			ctr.idle()
			ctr.send(notifications.NotifyFadeInComplete)
			return 1.0
		}
		return Intensity(ctr.counter) / Intensity(ctr.steps)

	case FadingOutToReset, FadingOutToExit:
		ctr.counter = min(ctr.counter+1, ctr.steps)
		if ctr.counter < ctr.steps {
			return 1.0 - Intensity(ctr.counter)/Intensity(ctr.steps)
		}

		if ctr.state == FadingOutToExit {
			ctr.state = Terminated
			ctr.send(notifications.NotifyExit)
			return 0.0
		}

		ctr.send(notifications.NotifyReset)
		ctr.idle()
		if ctr.FadeInAfterReset && ctr.steps > 0 {
			ctr.state = FadingIn
		}
		return 0.0
	}

	return 1.0
}

func (ctr *Controller) send(notice notifications.Notice) {
	if ctr.notify == nil {
		return
	}
	if err := ctr.notify.Notify(notice); err != nil {
		logger.Logf(logger.Allow, "transition", "%v: %v", notice, err)
	}
}
