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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It adds the idea of modes to command line processing. A mode is
// the first non-flag argument in a list of arguments and selects how the
// remaining arguments are to be interpreted.
//
// For example, the retrace program has two modes, PLAY and HEADLESS:
//
//	retrace -prefs "video.vsync::false" PLAY -standard PAL
//
// Flags that appear before the mode are common to all modes. Each mode then
// defines its own set of flags with a call to NewMode().
//
// The first sub-mode added with AddSubModes() is the default mode and is
// selected if the argument list does not name a mode.
package modalflag
