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

package test_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/retrace/test"
)

func TestExpectSuccess(t *testing.T) {
	test.ExpectSuccess(t, true)
	test.ExpectSuccess(t, nil)
	var err error
	test.ExpectSuccess(t, err)
}

func TestExpectFailure(t *testing.T) {
	test.ExpectFailure(t, false)
	test.ExpectFailure(t, errors.New("test"))
}

func TestExpectEquality(t *testing.T) {
	test.ExpectEquality(t, 10, 10)
	test.ExpectEquality(t, "foo", "foo")
	test.ExpectInequality(t, 10, 11)
}

func TestExpectApproximate(t *testing.T) {
	test.ExpectApproximate(t, 10.0, 10.5, 0.5)
	test.ExpectApproximate(t, float32(59.94), float32(60.0), 0.1)
}

func TestExpectPanic(t *testing.T) {
	test.ExpectPanic(t, func() { panic("test") })
}

func TestWriter(t *testing.T) {
	w := &test.Writer{}
	w.Write([]byte("hello"))
	test.ExpectSuccess(t, w.Compare("hello"))
	w.Clear()
	test.ExpectSuccess(t, w.Compare(""))
}
