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

package scheduler

import (
	"sync"
	"time"
)

// Ticker is a software retrace source. It calls the retrace function at a
// regular rate, with a count that increases by one each time. It is used
// when there is no display to provide a retrace signal.
type Ticker struct {
	crit  sync.Mutex
	pulse *time.Ticker

	onRetrace func(count uint32)
	count     uint32

	quit chan struct{}
	done chan struct{}
}

// NewTicker starts a new retrace source at the specified rate.
func NewTicker(hz float32, onRetrace func(count uint32)) *Ticker {
	tck := &Ticker{
		pulse:     time.NewTicker(rateToDuration(hz)),
		onRetrace: onRetrace,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(tck.done)
		for {
			select {
			case <-tck.pulse.C:
				tck.count++
				tck.onRetrace(tck.count)
			case <-tck.quit:
				return
			}
		}
	}()

	return tck
}

// a rate of zero or less is treated as the NTSC field rate
func rateToDuration(hz float32) time.Duration {
	if hz <= 0 {
		hz = 59.94
	}
	return time.Duration(float64(time.Second) / float64(hz))
}

// SetRate changes the rate of the retrace source.
func (tck *Ticker) SetRate(hz float32) {
	tck.crit.Lock()
	defer tck.crit.Unlock()
	tck.pulse.Reset(rateToDuration(hz))
}

// Stop the retrace source. The retrace function will not be called once Stop()
// has returned.
func (tck *Ticker) Stop() {
	tck.crit.Lock()
	defer tck.crit.Unlock()

	select {
	case <-tck.quit:
		return
	default:
	}

	tck.pulse.Stop()
	close(tck.quit)
	<-tck.done
}
