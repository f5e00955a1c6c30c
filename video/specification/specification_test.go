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

package specification_test

import (
	"testing"

	"github.com/jetsetilly/retrace/test"
	"github.com/jetsetilly/retrace/video/specification"
)

func TestSearchSpec(t *testing.T) {
	test.ExpectEquality(t, specification.SearchSpec("game (PAL).sfc"), "PAL")
	test.ExpectEquality(t, specification.SearchSpec("ntsc"), "NTSC")
	test.ExpectEquality(t, specification.SearchSpec("EURGB60"), "EURGB60")
	test.ExpectEquality(t, specification.SearchSpec("mpal"), "MPAL")
	test.ExpectEquality(t, specification.SearchSpec("auto"), "")
}

func TestLookup(t *testing.T) {
	for _, id := range specification.SpecList {
		spec, ok := specification.Lookup(id)
		test.ExpectSuccess(t, ok, id)
		test.ExpectEquality(t, spec.ID, id)
		test.ExpectEquality(t, spec.MaxWidth, 720, id)
	}

	_, ok := specification.Lookup("SECAM")
	test.ExpectFailure(t, ok)
}

func TestNonInterlacedRate(t *testing.T) {
	test.ExpectApproximate(t, specification.SpecNTSC.NonInterlacedRate(), 59.826, 0.001)
	test.ExpectApproximate(t, specification.SpecPAL.NonInterlacedRate(), 49.920, 0.001)
}

func TestRotation(t *testing.T) {
	test.ExpectEquality(t, specification.LeftRotation.Degrees(), 90)
	test.ExpectSuccess(t, specification.RightRotation.Sideways())
	test.ExpectFailure(t, specification.FlippedRotation.Sideways())
	test.ExpectFailure(t, specification.NumRotations.Valid())

	r, err := specification.ParseRotation("flipped")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, specification.FlippedRotation)

	r, err = specification.ParseRotation("3")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, specification.RightRotation)

	_, err = specification.ParseRotation("sideways")
	test.ExpectFailure(t, err)
}
