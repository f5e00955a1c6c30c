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

import (
	"fmt"
	"math"
	"testing"
)

// id returns a prefix for failure messages from any tags given to an
// Expect*() or Demand*() function
func id(tags ...any) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf("%v: ", fmt.Sprint(tags...))
}

// expect returns true if the value indicates success for the type
func expect(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	default:
		t.Fatalf("%sunsupported type (%T) for expectation testing", id(tags...), v)
	}

	return false
}

// ExpectSuccess tests argument v for a success condition suitable for it's
// type. Currently supported types:
//
//	bool -> bool == true
//	error -> error == nil
//
// If type is nil then the test will succeed.
func ExpectSuccess(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if !expect(t, v, tags...) {
		switch v := v.(type) {
		case error:
			t.Errorf("%sa success value is expected for type %T (%v)", id(tags...), v, v)
		default:
			t.Errorf("%sa success value is expected for type %T", id(tags...), v)
		}
		return false
	}
	return true
}

// ExpectFailure tests argument v for a failure condition suitable for it's
// type. See ExpectSuccess() for supported types.
func ExpectFailure(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if expect(t, v, tags...) {
		t.Errorf("%sa failure value is expected for type %T", id(tags...), v)
		return false
	}
	return true
}

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) bool {
	t.Helper()
	if v != expectedValue {
		t.Errorf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and another.
func ExpectInequality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) bool {
	t.Helper()
	if v == expectedValue {
		t.Errorf("%sinequality test of type %T failed: '%v' does equal '%v'", id(tags...), v, v, expectedValue)
		return false
	}
	return true
}

// ExpectApproximate is used to test approximate equality between one value
// and another. The tolerance is the absolute difference allowed.
func ExpectApproximate[T ~float32 | ~float64 | ~int](t *testing.T, v T, expectedValue T, tolerance float64, tags ...any) bool {
	t.Helper()
	if math.Abs(float64(v)-float64(expectedValue)) > tolerance {
		t.Errorf("%sapproximation test of type %T failed: '%v' is not within %v of '%v'", id(tags...), v, v, tolerance, expectedValue)
		return false
	}
	return true
}

// ExpectPanic tests that the function panics.
func ExpectPanic(t *testing.T, f func(), tags ...any) (panicked bool) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
		if !panicked {
			t.Errorf("%sa panic was expected", id(tags...))
		}
	}()
	f()
	return false
}
