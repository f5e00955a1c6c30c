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

// Package mode negotiates the display mode of the video interface and
// computes the viewport into which frames are drawn.
//
// Negotiation starts with the broadcast standard. The standard can be given
// as a hint or detected with a Probe. Requested dimensions are then clamped
// to the limits of the standard and the interlacing method is chosen:
//
//	lines <= max/2		non-interlaced (double strike), line multiplier of 2
//	otherwise		progressive if available and preferred, else interlaced
//
// Negotiation should only happen in response to an explicit request. It is
// never performed as part of regular frame presentation.
//
// The Manager type is not safe to use from more than one goroutine.
package mode
