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

package prefs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/retrace/prefs"
	"github.com/jetsetilly/retrace/test"
)

func TestBool(t *testing.T) {
	var v prefs.Bool
	test.ExpectEquality(t, v.Get().(bool), false)
	test.ExpectSuccess(t, v.Set(true))
	test.ExpectEquality(t, v.Get().(bool), true)
	test.ExpectEquality(t, v.String(), "true")
	test.ExpectSuccess(t, v.Set("FALSE"))
	test.ExpectEquality(t, v.Get().(bool), false)
	test.ExpectFailure(t, v.Set(10))
}

func TestInt(t *testing.T) {
	var v prefs.Int
	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, v.Get().(int), 10)
	test.ExpectSuccess(t, v.Set(" 20 "))
	test.ExpectEquality(t, v.String(), "20")
	test.ExpectFailure(t, v.Set("twenty"))
	test.ExpectEquality(t, v.Get().(int), 20)
	test.ExpectSuccess(t, v.Reset())
	test.ExpectEquality(t, v.Get().(int), 0)
}

func TestFloat(t *testing.T) {
	var v prefs.Float
	test.ExpectSuccess(t, v.Set(1.333))
	test.ExpectEquality(t, v.String(), "1.333")
	test.ExpectSuccess(t, v.Set("1.7778"))
	test.ExpectApproximate(t, v.Get().(float64), 1.7778, 0.00001)
	test.ExpectFailure(t, v.Set(true))
}

func TestString(t *testing.T) {
	var v prefs.String
	test.ExpectSuccess(t, v.Set("  NTSC "))
	test.ExpectEquality(t, v.String(), "NTSC")
}

func TestHooks(t *testing.T) {
	var v prefs.Int

	var post int
	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) < 0 {
			return errors.New("negative")
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(5))
	test.ExpectEquality(t, post, 5)

	// pre hook prevents the value from changing
	test.ExpectFailure(t, v.Set(-1))
	test.ExpectEquality(t, v.Get().(int), 5)
	test.ExpectEquality(t, post, 5)
}

func TestDisk(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var b prefs.Bool
	var i prefs.Int
	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("video.vsync", &b))
	test.ExpectSuccess(t, dsk.Add("video.rotation", &i))
	test.ExpectSuccess(t, dsk.Add("video.standard", &s))
	test.ExpectFailure(t, dsk.Add("video.vsync", &b))

	// loading a file that does not exist is not an error
	test.ExpectSuccess(t, dsk.Load())

	test.ExpectSuccess(t, b.Set(true))
	test.ExpectSuccess(t, i.Set(3))
	test.ExpectSuccess(t, s.Set("PAL"))
	test.ExpectSuccess(t, dsk.Save())

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), strings.Join([]string{
		prefs.WarningBoilerPlate,
		"video.rotation :: 3",
		"video.standard :: PAL",
		"video.vsync :: true",
		"",
	}, "\n"))

	test.ExpectSuccess(t, dsk.Reset())
	test.ExpectEquality(t, b.Get().(bool), false)
	test.ExpectEquality(t, i.Get().(int), 0)

	test.ExpectSuccess(t, dsk.Load())
	test.ExpectEquality(t, b.Get().(bool), true)
	test.ExpectEquality(t, i.Get().(int), 3)
	test.ExpectEquality(t, s.Get().(string), "PAL")
}

func TestDiskCommandLine(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	prefs.PushCommandLineStack("video.rotation::1")
	defer prefs.PopCommandLineStack()

	var i prefs.Int
	test.ExpectSuccess(t, dsk.Add("video.rotation", &i))
	test.ExpectEquality(t, i.Get().(int), 1)

	// the command line value has been consumed
	ok, _ := prefs.GetCommandLinePref("video.rotation")
	test.ExpectFailure(t, ok)

	// the value in the file does not override the command line and the
	// command line value is not saved
	data := prefs.WarningBoilerPlate + "\nvideo.rotation :: 3\n"
	test.DemandSuccess(t, os.WriteFile(fn, []byte(data), 0o600))
	test.ExpectSuccess(t, dsk.Load())
	test.ExpectEquality(t, i.Get().(int), 1)

	test.ExpectSuccess(t, dsk.Save())
	b, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), data)
}

func TestDiskInvalidFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("not a prefs file\n"), 0o600))

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, dsk.Load())
}
