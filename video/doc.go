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

// Package video is the frame composition and display synchronisation
// pipeline. A Pipeline takes raw frames from an emulation core and presents
// them on a device in time with the vertical retrace of the display.
//
// For each frame the pipeline will, in order:
//
//	apply any pending changes to the display mode
//	convert the raw frame into the main texture
//	advance any fade that is in progress
//	composite the main texture with the blend and overlay textures
//	present the composited image and wait for the retrace
//
// The Frame() function must always be called from the same goroutine. Other
// functions are safe to call from any goroutine unless noted otherwise.
//
// Changes to the display mode, whether requested by SetResolution(),
// SetCoreGeometry() or a change in the preferences, are never applied
// immediately. They are applied at the start of the next call to Frame().
// This includes changes to the dimensions of the incoming frames when the
// AutoResolution preference is set.
package video
