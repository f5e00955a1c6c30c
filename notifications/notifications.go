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

// Package notifications allow communication from the video pipeline to the
// program that owns it. The program will implement the Notify interface and
// pass it to the pipeline at creation time.
//
// Notifications are sent from the goroutine that is presenting frames. The
// Notify() function should return quickly.
package notifications

// Notice describes events that somehow change the presentation of the video
// pipeline.
type Notice string

// List of defined notifications.
const (
	// a new display mode has been committed. the mode details can be found
	// with the pipeline's Mode() function
	NotifyModeChange Notice = "NotifyModeChange"

	// the fade out transition has completed and the core should be reset
	NotifyReset Notice = "NotifyReset"

	// the fade out transition has completed and the program should exit. no
	// more frames will be presented
	NotifyExit Notice = "NotifyExit"

	// the retrace source has not signalled for longer than the timeout
	// period. presentation continues without waiting
	NotifyRetraceTimeout Notice = "NotifyRetraceTimeout"

	// a fade in transition has completed
	NotifyFadeInComplete Notice = "NotifyFadeInComplete"
)

// Notify is used for direct communication between the video pipeline and
// the owning program.
type Notify interface {
	Notify(notice Notice) error
}

// NotifyFunc is an adaptor that allows a plain function to be used as a
// Notify implementation.
type NotifyFunc func(notice Notice) error

// Notify implements the Notify interface.
func (f NotifyFunc) Notify(notice Notice) error {
	return f(notice)
}
