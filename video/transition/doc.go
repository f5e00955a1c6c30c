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

// Package transition implements the fades that occur when the pipeline
// starts, when the core is reset and when the program exits.
//
// A fade is advanced once per displayed frame by the Tick() function. The
// value returned by Tick() is the intensity with which the frame should be
// drawn.
//
// When a fade out completes the side effect for that fade is sent to the
// owning program exactly once. A reset is followed by a fade in if
// FadeInAfterReset is set. An exit leaves the controller in the Terminated
// state, from which it never leaves.
package transition
