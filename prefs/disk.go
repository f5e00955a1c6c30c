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
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

// WarningBoilerPlate is the first line of every prefs file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// separator between key and value in the prefs file
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	crit    sync.Mutex
	path    string
	entries map[string]Pref

	// keys that have been set from the command line. these are not changed
	// by Load() or written by Save()
	cmdline map[string]bool
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]Pref),
		cmdline: make(map[string]bool),
	}, nil
}

func (dsk *Disk) String() string {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

// Add preference value to list of values to store/load. If the key is on the
// command line stack then the command line value is set immediately.
func (dsk *Disk) Add(key string, p Pref) error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	if strings.Contains(key, keySep) {
		return fmt.Errorf("prefs: illegal key (%s)", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return fmt.Errorf("prefs: duplicate key (%s)", key)
	}
	dsk.entries[key] = p

	if ok, v := GetCommandLinePref(key); ok {
		if err := p.Set(v); err != nil {
			return fmt.Errorf("prefs: %s: %w", key, err)
		}
		dsk.cmdline[key] = true
	}

	return nil
}

// Save current preference values to disk. Values in the file that are not
// known to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	data, err := dsk.read()
	if err != nil {
		return err
	}

	for k, v := range dsk.entries {
		if !dsk.cmdline[k] {
			data[k] = v.String()
		}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, keySep, data[k])
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	return nil
}

// Load preference values from disk. A missing file is not an error. Values
// set from the command line are not changed.
func (dsk *Disk) Load() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	data, err := dsk.read()
	if err != nil {
		return err
	}

	for k, v := range data {
		if p, ok := dsk.entries[k]; ok && !dsk.cmdline[k] {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}

	return nil
}

// Reset all preference values to their zero value.
func (dsk *Disk) Reset() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	for k, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return fmt.Errorf("prefs: %s: %w", k, err)
		}
	}

	return nil
}

// read the prefs file into a map of raw strings
func (dsk *Disk) read() (map[string]string, error) {
	data := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data, nil
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// check validity of file by checking the first line
	if !scanner.Scan() {
		return data, nil
	}
	if scanner.Text() != WarningBoilerPlate {
		return nil, fmt.Errorf("prefs: not a valid prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), keySep)
		if !ok {
			continue
		}
		data[k] = v
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("prefs: %w", err)
	}

	return data, nil
}
