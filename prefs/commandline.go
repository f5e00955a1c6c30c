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

package prefs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// the command line stack is accessed by the Disk type when preferences are
// added and by the main program when parsing arguments
var commandLineCrit sync.Mutex
var commandLineStack []map[string]Value

// SizeCommandLineStack returns the number of entries on the stack.
func SizeCommandLineStack() int {
	commandLineCrit.Lock()
	defer commandLineCrit.Unlock()
	return len(commandLineStack)
}

// PopCommandLineStack removes the top entry of the stack. Returns the
// remaining (unused) entries of the popped group as a prefs string, sorted by
// key.
func PopCommandLineStack() string {
	commandLineCrit.Lock()
	defer commandLineCrit.Unlock()

	if len(commandLineStack) == 0 {
		return ""
	}

	// get top of stack
	popped := commandLineStack[len(commandLineStack)-1]

	// remove the top of the stack
	commandLineStack = commandLineStack[:len(commandLineStack)-1]

	// rebuild the prefs string from the remaining entries from the old stack top
	keys := make([]string, 0, len(popped))
	for key := range popped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, key := range keys {
		s.WriteString(fmt.Sprintf("%s::%v; ", key, popped[key]))
	}

	return strings.TrimSuffix(s.String(), "; ")
}

// PushCommandLineStack parses a prefs string and adds the key/value pairs to
// a new group on the stack. The format of the prefs string is:
//
//	key::value; key::value
//
// Invalid entries in the string are ignored.
func PushCommandLineStack(prefs string) {
	commandLineCrit.Lock()
	defer commandLineCrit.Unlock()

	commandLineStack = append(commandLineStack, make(map[string]Value))
	cl := commandLineStack[len(commandLineStack)-1]

	// divide prefs string into individual key/value pairs
	for _, p := range strings.Split(prefs, ";") {
		kv := strings.Split(p, "::")
		if len(kv) == 2 {
			cl[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
}

// GetCommandLinePref returns the value for the key from the top of the stack.
// The entry is removed from the stack once it has been returned.
func GetCommandLinePref(key string) (bool, Value) {
	commandLineCrit.Lock()
	defer commandLineCrit.Unlock()

	if len(commandLineStack) == 0 {
		return false, nil
	}

	// top of stack
	cl := commandLineStack[len(commandLineStack)-1]

	if v, ok := cl[key]; ok {
		delete(cl, key)
		return true, v
	}

	return false, nil
}
