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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function. The pattern of a curated error is the identity of the
// error and can be tested with the Is() and Has() functions.
//
// Errors in the video pipeline form chains. For example, a device failure
// while compositing a frame:
//
//	curated.Errorf("pipeline: %v", curated.Errorf("gl21: %v", err))
//
// The Error() function removes duplicate adjacent parts of the message, so
// that the above will never produce "pipeline: pipeline: ..." when the
// wrapped error already carries the prefix.
//
// Patterns should be declared as constants close to where they are used so
// that callers can test for them. For example, the Terminated sentinel in the
// video package:
//
//	const Terminated = "video: terminated"
//
//	if curated.Is(err, video.Terminated) {
//		...
//	}
package curated
