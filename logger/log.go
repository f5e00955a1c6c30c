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

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry represents a single line in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string

	// number of times the entry has been folded into a preceding entry
	Repeated int
}

func (e Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a bounded log. The zero value is not usable, use NewLogger().
type Logger struct {
	crit sync.Mutex

	maxEntries int
	entries    []Entry

	// echo new entries to the writer. nil if echoing is disabled
	echo io.Writer
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// Log adds an entry to the log. The detail argument can be a string, an
// error, a fmt.Stringer or any other value that can be formatted with %v.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}

	var d string
	switch v := detail.(type) {
	case string:
		d = v
	case error:
		d = v.Error()
	case fmt.Stringer:
		d = v.String()
	default:
		d = fmt.Sprintf("%v", v)
	}

	l.log(tag, d)
}

// Logf adds a formatted entry to the log.
func (l *Logger) Logf(perm Permission, tag string, pattern string, args ...any) {
	if perm != Allow && !perm.AllowLogging() {
		return
	}
	l.log(tag, fmt.Sprintf(pattern, args...))
}

func (l *Logger) log(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// remove all newline characters from tag and detail string
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if len(l.entries) > 0 {
		e = &l.entries[len(l.entries)-1]
	}

	if e != nil && e.Tag == tag && e.Detail == detail {
		e.Repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}

	// maintain maximum length
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
}

// Clear all entries from the log.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
}

// Write contents of log to io.Writer.
func (l *Logger) Write(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	for _, e := range l.entries {
		io.WriteString(output, e.String())
	}
}

// Tail writes the last N entries to io.Writer. A number larger than the
// number of entries is fine.
func (l *Logger) Tail(output io.Writer, number int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if number > len(l.entries) {
		number = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho prints new entries to the io.Writer as they are made. A nil writer
// disables echoing. If writeRecent is true then the most recent entries are
// written to the writer immediately.
func (l *Logger) SetEcho(output io.Writer, writeRecent bool) {
	l.crit.Lock()
	l.echo = output
	l.crit.Unlock()

	if output != nil && writeRecent {
		l.Tail(output, 10)
	}
}

// Copy returns a copy of the current log entries.
func (l *Logger) Copy() []Entry {
	l.crit.Lock()
	defer l.crit.Unlock()
	c := make([]Entry, len(l.entries))
	copy(c, l.entries)
	return c
}
