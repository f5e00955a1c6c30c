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

// Package prefs facilitates the storage of preferential values. The Bool,
// Int, Float and String types are safe to use from more than one goroutine.
// Values can have hook functions attached which run before and after the
// value is changed. A hook that returns an error from SetHookPre() will
// prevent the value from changing.
//
// Preferences can be grouped on a Disk instance, which allows the values to
// be saved to and loaded from a file. The format of the file is one value per
// line:
//
//	key :: value
//
// Values can also be set from the command line with the PushCommandLineStack()
// function. Values on the command line stack take priority over values loaded
// from disk and are consumed the first time they are used.
package prefs
