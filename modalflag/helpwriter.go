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

package modalflag

import (
	"fmt"
	"io"
	"strings"
)

// helpWriter collects the usage output of the flag package and combines it
// with information about sub-modes.
type helpWriter struct {
	buffer strings.Builder
}

func (hw *helpWriter) Write(p []byte) (n int, err error) {
	return hw.buffer.Write(p)
}

func (hw *helpWriter) Help(output io.Writer, banner string, subModes []string, additionalHelp string) {
	s := hw.buffer.String()
	helpLines := strings.Split(s, "\n")

	// output "no help available" message if there is no flag information and no
	// sub-modes
	if s == "Usage:\n" && len(subModes) == 0 {
		io.WriteString(output, "No help available")
		if banner != "" {
			fmt.Fprintf(output, " for %s", banner)
		}
		io.WriteString(output, "\n")
		return
	}

	if banner != "" {
		fmt.Fprintf(output, "%s for %s mode\n", helpLines[0], banner)
	} else {
		fmt.Fprintf(output, "%s\n", helpLines[0])
	}

	// add help message produced by flag package
	if len(helpLines) > 1 {
		io.WriteString(output, strings.Join(helpLines[1:], "\n"))
	}

	if len(subModes) > 0 {
		// add an additional new line if we've already printed flag information
		if len(helpLines) > 2 {
			io.WriteString(output, "\n")
		}
		fmt.Fprintf(output, "  available sub-modes: %s\n", strings.Join(subModes, ", "))
		fmt.Fprintf(output, "    default: %s\n", subModes[0])
	}

	if additionalHelp != "" {
		fmt.Fprintf(output, "\n%s\n", additionalHelp)
	}
}
