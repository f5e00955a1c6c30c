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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The ExpectSuccess() and ExpectFailure() functions test for success and
// failure under generic conditions. A bool is successful if it is true and
// an error is successful if it is nil. A nil value is considered a success.
// This may not be how we want to interpret nil in all situations but because
// of how errors usually work we *need* to interpret nil in this way.
//
// The Demand*() functions are the same as the equivalent Expect*() functions
// except that a failed test is fatal. This is useful when the value being
// tested is used in further tests and so must be correct.
//
// The Writer type implements the io.Writer interface and should be used to
// capture output. Writer.Compare() can then be used to test for equality.
package test
