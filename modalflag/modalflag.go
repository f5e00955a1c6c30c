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
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"time"
)

const modeSeparator = "/"

// Modes provides an easy way of handling command line arguments.
type Modes struct {
	// where to print output (help messages etc). defaults to os.Stdout
	Output io.Writer

	// the underlying flag structure. a new flagset is created on every call
	// to NewArgs() and NewMode()
	flags *flag.FlagSet

	// the argument list as specified by the NewArgs() function
	args    []string
	argsIdx int

	// the most recent list of sub-modes specified with AddSubModes()
	subModes []string

	// the series of sub-modes that have been found during subsequent calls to
	// Parse(). never reset
	path []string

	additionalHelp string
}

func (md *Modes) String() string {
	return md.Path()
}

// Mode returns the last mode to be encountered.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// Path returns a string of all the modes encountered during parsing.
func (md *Modes) Path() string {
	return strings.Join(md.path, modeSeparator)
}

// NewArgs with a string of arguments (from the command line for example).
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.argsIdx = 0

	// by definition, a newly initialised Modes struct begins with a new mode
	md.NewMode()
}

// NewMode indicates that further arguments should be considered part of a new
// mode.
func (md *Modes) NewMode() {
	md.subModes = md.subModes[:0]
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.additionalHelp = ""
}

// AdditionalHelp adds text to the help message produced by the -help flag.
func (md *Modes) AdditionalHelp(help string) {
	md.additionalHelp = help
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	// continue with command line processing. if sub-modes were added then the
	// Mode() function should be checked
	ParseContinue ParseResult = iota

	// help was requested and has been printed
	ParseHelp

	// an error has occurred and is returned as the second return value
	ParseError
)

// Parse the top level layer of arguments. Returns a value of ParseResult. The
// idiomatic usage is as follows:
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		// help message has already been printed
//		return
//	case modalflag.ParseError:
//		return err
//	}
//
// Help messages are handled automatically by the function. The return value
// ParseHelp is to help you guide your program appropriately.
func (md *Modes) Parse() (ParseResult, error) {
	if md.Output == nil {
		md.Output = os.Stdout
	}

	hw := &helpWriter{}
	md.flags.SetOutput(hw)

	err := md.flags.Parse(md.args[md.argsIdx:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			hw.Help(md.Output, md.Path(), md.subModes, md.additionalHelp)
			return ParseHelp, nil
		}
		return ParseError, err
	}

	// the number of arguments consumed by flag parsing
	md.argsIdx = len(md.args) - md.flags.NArg()

	if len(md.subModes) > 0 {
		arg := strings.ToUpper(md.flags.Arg(0))

		// default mode unless the argument names a sub-mode
		mode := md.subModes[0]
		for _, m := range md.subModes {
			if m == arg {
				mode = arg
				md.argsIdx++
				break // for loop
			}
		}

		md.path = append(md.path, mode)
	}

	return ParseContinue, nil
}

// RemainingArgs after a call to Parse() that have not been consumed by a flag
// or a mode.
func (md *Modes) RemainingArgs() []string {
	return md.args[md.argsIdx:]
}

// GetArg returns the numbered argument that hasn't been consumed.
func (md *Modes) GetArg(i int) string {
	r := md.RemainingArgs()
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// AddSubModes to list of submodes for next parse. The first sub-mode in the
// list is considered to be the default sub-mode.
func (md *Modes) AddSubModes(submodes ...string) {
	for _, s := range submodes {
		md.subModes = append(md.subModes, strings.ToUpper(s))
	}
}

// AddBool flag for next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddDuration flag for next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddFloat64 flag for next call to Parse().
func (md *Modes) AddFloat64(name string, value float64, usage string) *float64 {
	return md.flags.Float64(name, value, usage)
}

// AddInt flag for next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag for next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// Visit visits the command-line flags that have been set, in lexicographical
// order.
func (md *Modes) Visit(fn func(flag string)) {
	md.flags.Visit(func(f *flag.Flag) {
		fn(f.Name)
	})
}
