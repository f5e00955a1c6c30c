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

// Package version reports the version of the program. The version number
// is set by the linker for numbered releases. Otherwise the version is
// derived from the VCS information in the build.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Retrace"

// number is set with the linker flag:
//
//	-ldflags "-X github.com/jetsetilly/retrace/version.number=v0.1.0"
var number string

var (
	once     sync.Once
	version  string
	revision string
)

// Version returns the version string, the revision string and whether this
// is a numbered release.
//
// A version string of "unreleased" means that the program was built from a
// VCS checkout without a version number. A version string of "local" means
// there is no VCS information either, which is the case for "go run" and
// "go test".
//
// The revision string is suffixed with "+dirty" if the source had
// uncommitted changes.
func Version() (string, string, bool) {
	once.Do(readBuildInfo)
	return version, revision, number != "" && version == number
}

func readBuildInfo() {
	settings := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
	}

	revision = "no revision information"
	if r, ok := settings["vcs.revision"]; ok && r != "" {
		revision = r
		if settings["vcs.modified"] == "true" {
			revision = fmt.Sprintf("%s+dirty", revision)
		}
	}

	switch {
	case number != "":
		version = number
	case settings["vcs"] != "":
		version = "unreleased"
	default:
		version = "local"
	}
}
