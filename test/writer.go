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

package test

import "strings"

// Writer is an implementation of the io.Writer interface. It should be used to
// capture output and to compare with predefined strings.
type Writer struct {
	buffer strings.Builder
}

func (tw *Writer) Write(p []byte) (n int, err error) {
	return tw.buffer.Write(p)
}

// Clear string empties the write buffer.
func (tw *Writer) Clear() {
	tw.buffer.Reset()
}

// Compare buffered output with predefined/example string.
func (tw *Writer) Compare(s string) bool {
	return s == tw.buffer.String()
}

// String returns the current contents of the writer.
func (tw *Writer) String() string {
	return tw.buffer.String()
}
