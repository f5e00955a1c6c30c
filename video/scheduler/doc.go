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

// Package scheduler synchronises the presentation of frames with the
// vertical retrace of the display.
//
// There are two framebuffer slots. One slot is being scanned out by the
// display while the other is being prepared. PresentAndWait() copies the
// composited image into the slot that is not being scanned out and commits it
// so that it will be displayed after the next retrace.
//
// The retrace signal is delivered by calling OnRetrace() with a count that
// increases by one on every retrace. The count is stored as an atomic
// generation counter and the consumer is woken through a channel with a
// buffer of one. Counts that are not newer than the most recent count are
// ignored.
//
// In blocking mode, PresentAndWait() does not prepare a new slot until a
// retrace newer than the previous commit has been seen. In non-blocking mode
// the slots are flipped without waiting, which can cause tearing. The
// forceSync argument of PresentAndWait() forces blocking behaviour for that
// frame.
//
// Only one goroutine may call PresentAndWait(). The first goroutine to call
// the function becomes the owner and a call from any other goroutine will
// cause a panic. The ownership check is not made on every call so the panic
// may happen a few frames late.
package scheduler
