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

// Package statsview is a wrapper for the statsview package. The package is
// only included in the build if the statsview build tag is given:
//
//	go build -tags=statsview
//
// It provides a HTTP server running locally offering runtime statistics.
// The statistics are useful for watching the allocation behaviour of the
// video pipeline, which should not allocate during steady state
// presentation.
//
// After launch, graphical statistics will be viewable at:
//
//	localhost:12600/debug/statsview
//
// And standard Go pprof statistics available at:
//
//	localhost:12600/debug/pprof/
package statsview

// Address of the statistics server.
const Address = "localhost:12600"

// URL of the statsview page on the server.
const url = "/debug/statsview"
