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

package mode

import (
	"math"

	"github.com/jetsetilly/retrace/logger"
)

// AspectKind distinguishes the fixed aspect ratios from those that are
// derived at runtime.
type AspectKind int

// List of valid AspectKind values.
const (
	AspectFixed AspectKind = iota
	AspectCoreProvided
	AspectSquarePixel
	AspectCustom
)

// AspectRatio is an entry in the AspectRatios table.
type AspectRatio struct {
	Name  string
	Kind  AspectKind
	Value float64
}

// AspectRatios is the table of aspect ratio policies. The index into the
// table is the value stored in the aspect ratio preference.
var AspectRatios = []AspectRatio{
	{Name: "4:3", Value: 4.0 / 3.0},
	{Name: "16:9", Value: 16.0 / 9.0},
	{Name: "16:10", Value: 16.0 / 10.0},
	{Name: "16:15", Value: 16.0 / 15.0},
	{Name: "1:1", Value: 1.0},
	{Name: "2:1", Value: 2.0},
	{Name: "3:2", Value: 3.0 / 2.0},
	{Name: "3:4", Value: 3.0 / 4.0},
	{Name: "4:1", Value: 4.0},
	{Name: "5:4", Value: 5.0 / 4.0},
	{Name: "6:5", Value: 6.0 / 5.0},
	{Name: "7:9", Value: 7.0 / 9.0},
	{Name: "8:3", Value: 8.0 / 3.0},
	{Name: "8:7", Value: 8.0 / 7.0},
	{Name: "19:12", Value: 19.0 / 12.0},
	{Name: "19:14", Value: 19.0 / 14.0},
	{Name: "30:17", Value: 30.0 / 17.0},
	{Name: "32:9", Value: 32.0 / 9.0},
	{Name: "core provided", Kind: AspectCoreProvided},
	{Name: "square pixel", Kind: AspectSquarePixel},
	{Name: "custom", Kind: AspectCustom},
}

// AspectIndex returns the index of the named aspect ratio in the
// AspectRatios table. Returns -1 if the name is not found.
func AspectIndex(name string) int {
	for i, a := range AspectRatios {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// ResolveAspect returns the desired aspect ratio for the policy index. The
// core aspect ratio and the frame dimensions are used by the policies that
// are derived at runtime.
//
// The boolean result is true if the policy selects the custom viewport, in
// which case the aspect ratio is not meaningful.
func ResolveAspect(index int, coreAspect float64, frameWidth int, frameHeight int) (float64, bool) {
	if index < 0 || index >= len(AspectRatios) {
		logger.Logf(logger.Allow, "mode", "aspect ratio index %d is out of range. using %s", index, AspectRatios[0].Name)
		index = 0
	}

	square := func() float64 {
		if frameWidth <= 0 || frameHeight <= 0 {
			return AspectRatios[0].Value
		}
		return float64(frameWidth) / float64(frameHeight)
	}

	a := AspectRatios[index]
	switch a.Kind {
	case AspectCoreProvided:
		if coreAspect > 0 && !math.IsInf(coreAspect, 0) && !math.IsNaN(coreAspect) {
			return coreAspect, false
		}
		return square(), false
	case AspectSquarePixel:
		return square(), false
	case AspectCustom:
		return 0, true
	}

	return a.Value, false
}
