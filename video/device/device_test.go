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

package device_test

import (
	"testing"

	"github.com/jetsetilly/retrace/test"
	"github.com/jetsetilly/retrace/video/device"
)

func TestOrtho(t *testing.T) {
	m := device.Ortho(0, 1, 0, 1, -1, 1)

	x, y := m.Transform(0, 0)
	test.ExpectApproximate(t, x, -1, 0.00001)
	test.ExpectApproximate(t, y, -1, 0.00001)

	x, y = m.Transform(1, 1)
	test.ExpectApproximate(t, x, 1, 0.00001)
	test.ExpectApproximate(t, y, 1, 0.00001)

	x, y = m.Transform(0.5, 0.25)
	test.ExpectApproximate(t, x, 0, 0.00001)
	test.ExpectApproximate(t, y, -0.5, 0.00001)
}

func TestMul(t *testing.T) {
	m := device.Ortho(0, 1, 0, 1, -1, 1)
	test.ExpectEquality(t, m.Mul(device.Identity()), m)
	test.ExpectEquality(t, device.Identity().Mul(m), m)

	// scale then translate
	s := device.Identity()
	s[0] = 2
	s[5] = 2
	tr := device.Identity()
	tr[12] = 1
	x, y := tr.Mul(s).Transform(1, 1)
	test.ExpectApproximate(t, x, 3, 0.00001)
	test.ExpectApproximate(t, y, 2, 0.00001)
}

func TestPassString(t *testing.T) {
	var p device.Pass
	p.NumStages = 2
	p.Stages[0] = device.Stage{Combine: device.CombineReplace}
	p.Stages[1] = device.Stage{Combine: device.CombineInterpolate, Constant: 0.5, Smooth: true}
	p.Blend = device.BlendAlpha
	test.ExpectEquality(t, p.String(), "replace nearest + interpolate(0.50) linear blend=alpha viewport=0x0+0+0 (of 0x0)")
	test.ExpectEquality(t, len(p.Textures()), 2)
}
