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

// Package logger is the central log for the pipeline. Entries are kept in a
// bounded list, with consecutive duplicate entries folded into a single entry
// with a repeat count. This matters because many log events in the pipeline
// happen per frame and would otherwise swamp the log.
//
// The central log can be echoed to an io.Writer with SetEcho(). Separate
// logger instances can be created with NewLogger(), which is mostly useful
// for testing.
//
// Every log call takes a Permission. Components that want to be able to mute
// their own logging implement the Permission interface. The Allow value
// should be used when logging must always take place.
package logger
