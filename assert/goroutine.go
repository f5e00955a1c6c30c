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

// Package assert contains functions that help check the running state of the
// program. The functions are intended for use during development to catch
// incorrect use of types that are not safe to use from more than one
// goroutine.
package assert

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
)

// GetGoRoutineID returns the ID of the current goroutine. The value should
// only be used to compare with the result of an earlier call.
//
// This is very slow and should only be used for debugging purposes.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// CheckPeriod is the number of calls to Owner.Check() between each
// comparison of goroutine IDs.
const CheckPeriod = 60

// Owner records the goroutine that first calls Check(). Subsequent calls to
// Check() from a different goroutine will panic.
//
// Finding the goroutine ID is slow so after the owner has been set the
// comparison is only made every CheckPeriod calls. A call from the wrong
// goroutine will therefore be caught late but it will be caught.
//
// The zero value is ready to use.
type Owner struct {
	id    atomic.Uint64
	calls atomic.Uint32
}

// Check that the current goroutine is the owner. The first call sets the
// owner. The name is used in the panic message.
func (o *Owner) Check(name string) {
	if o.id.Load() != 0 && o.calls.Add(1) < CheckPeriod {
		return
	}
	o.calls.Store(0)

	id := GetGoRoutineID()
	if o.id.CompareAndSwap(0, id) {
		return
	}
	if o.id.Load() != id {
		panic(name + ": called from more than one goroutine")
	}
}

// Release forgets the current owner. The next call to Check() sets a new
// owner.
func (o *Owner) Release() {
	o.id.Store(0)
	o.calls.Store(0)
}
