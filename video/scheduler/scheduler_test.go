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

package scheduler_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jetsetilly/retrace/assert"
	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/notifications"
	"github.com/jetsetilly/retrace/test"
	"github.com/jetsetilly/retrace/video/scheduler"
)

// framebuffers records the use of the framebuffer slots
type framebuffers struct {
	sched *scheduler.Scheduler

	crit sync.Mutex

	// slots written to
	written []int

	// number of times a slot was written while being scanned out
	violations int

	// retrace count when each slot was written
	retraces []uint32

	blanked bool
	failCopy error
}

func (fb *framebuffers) CopyToSlot(slot int) error {
	fb.crit.Lock()
	defer fb.crit.Unlock()
	if fb.failCopy != nil {
		return fb.failCopy
	}
	if slot == fb.sched.Scanout() {
		fb.violations++
	}
	fb.written = append(fb.written, slot)
	fb.retraces = append(fb.retraces, fb.sched.Retraces())
	return nil
}

func (fb *framebuffers) Commit(slot int) error {
	return nil
}

func (fb *framebuffers) Blank() error {
	fb.crit.Lock()
	defer fb.crit.Unlock()
	fb.blanked = true
	return nil
}

func newScheduler(notify notifications.Notify) (*scheduler.Scheduler, *framebuffers) {
	fb := &framebuffers{}
	s := scheduler.NewScheduler(fb, notify)
	fb.sched = s
	return s, fb
}

func TestStaleRetrace(t *testing.T) {
	s, _ := newScheduler(nil)

	s.OnRetrace(5)
	test.ExpectEquality(t, s.Retraces(), 5)

	// older and duplicate counts are ignored
	s.OnRetrace(3)
	test.ExpectEquality(t, s.Retraces(), 5)
	s.OnRetrace(5)
	test.ExpectEquality(t, s.Retraces(), 5)

	s.OnRetrace(6)
	test.ExpectEquality(t, s.Retraces(), 6)

	// the counter can wrap around
	s.OnRetrace(0x7ffffff0)
	s.OnRetrace(0x80000005)
	test.ExpectEquality(t, s.Retraces(), 0x80000005)
	s.OnRetrace(0xfffffff0)
	s.OnRetrace(0x00000002)
	test.ExpectEquality(t, s.Retraces(), 0x00000002)
	s.OnRetrace(0xfffffff8)
	test.ExpectEquality(t, s.Retraces(), 0x00000002)
}

func TestDoubleBufferSafety(t *testing.T) {
	s, fb := newScheduler(nil)

	// retrace source that runs much faster than presentation would in
	// practice
	tck := scheduler.NewTicker(1000, s.OnRetrace)
	defer tck.Stop()

	const frames = 50
	for range frames {
		test.DemandSuccess(t, s.PresentAndWait(false))
	}

	fb.crit.Lock()
	defer fb.crit.Unlock()

	test.ExpectEquality(t, fb.violations, 0)
	test.DemandEquality(t, len(fb.written), frames)

	// slots alternate and every frame after the first has seen a new
	// retrace
	for i := 1; i < frames; i++ {
		test.ExpectInequality(t, fb.written[i], fb.written[i-1], i)
		test.ExpectSuccess(t, fb.retraces[i] > fb.retraces[i-1], i)
	}

	test.ExpectEquality(t, s.Presented(), uint64(frames))
}

func TestOneRetracePerFrame(t *testing.T) {
	s, fb := newScheduler(nil)

	const frames = 10

	// all presents happen on the one goroutine
	results := make(chan error)
	go func() {
		for range frames + 1 {
			results <- s.PresentAndWait(false)
		}
	}()

	// the first present does not wait
	test.DemandSuccess(t, <-results)

	// deliver retraces by hand. each present must wait for the next one
	for i := range frames {
		select {
		case <-results:
			t.Fatalf("present did not wait for retrace")
		case <-time.After(10 * time.Millisecond):
		}

		test.ExpectEquality(t, s.State(), scheduler.SwapPending)
		s.OnRetrace(uint32(i + 1))
		test.DemandSuccess(t, <-results)
	}

	fb.crit.Lock()
	defer fb.crit.Unlock()
	test.ExpectEquality(t, fb.violations, 0)
}

func TestNonBlocking(t *testing.T) {
	s, fb := newScheduler(nil)
	s.NonBlocking.Store(true)

	// no retrace source at all
	start := time.Now()
	for range 10 {
		test.DemandSuccess(t, s.PresentAndWait(false))
	}
	test.ExpectSuccess(t, time.Since(start) < s.Timeout)

	fb.crit.Lock()
	test.ExpectEquality(t, len(fb.written), 10)
	fb.crit.Unlock()
}

func TestForceSync(t *testing.T) {
	s, _ := newScheduler(nil)
	s.NonBlocking.Store(true)

	test.DemandSuccess(t, s.PresentAndWait(false))

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.OnRetrace(1)
	}()

	start := time.Now()
	test.DemandSuccess(t, s.PresentAndWait(true))
	test.ExpectSuccess(t, time.Since(start) >= 40*time.Millisecond)
	test.ExpectEquality(t, s.Retraces(), 1)
}

type notify struct {
	notices atomic.Int32
}

func (n *notify) Notify(notice notifications.Notice) error {
	if notice == notifications.NotifyRetraceTimeout {
		n.notices.Add(1)
	}
	return nil
}

func TestTimeout(t *testing.T) {
	n := &notify{}
	s, fb := newScheduler(n)
	s.Timeout = 20 * time.Millisecond

	test.DemandSuccess(t, s.PresentAndWait(false))

	// no retrace will arrive but the presents still complete
	test.DemandSuccess(t, s.PresentAndWait(false))
	test.ExpectEquality(t, n.notices.Load(), 1)
	test.DemandSuccess(t, s.PresentAndWait(false))
	test.ExpectEquality(t, n.notices.Load(), 2)

	// the slot being scanned out is never written to. every frame goes
	// into the slot still waiting for a retrace
	fb.crit.Lock()
	test.ExpectEquality(t, fb.violations, 0)
	test.ExpectEquality(t, fmt.Sprint(fb.written), "[1 1 1]")
	fb.crit.Unlock()
	test.ExpectEquality(t, s.Scanout(), 0)

	// a retrace arriving after the timeout flips the slots as normal
	s.OnRetrace(1)
	test.ExpectEquality(t, s.Scanout(), 1)
	test.DemandSuccess(t, s.PresentAndWait(false))
	fb.crit.Lock()
	test.ExpectEquality(t, fb.violations, 0)
	test.ExpectEquality(t, fb.written[len(fb.written)-1], 0)
	fb.crit.Unlock()

	tw := &test.Writer{}
	logger.Tail(tw, 1)
	test.ExpectSuccess(t, strings.Contains(tw.String(), "retrace timeout"))
}

func TestRelease(t *testing.T) {
	s, fb := newScheduler(nil)

	results := make(chan error)
	go func() {
		for range 2 {
			results <- s.PresentAndWait(false)
		}
	}()

	// the first present does not wait. the second waits for a retrace that
	// never arrives
	test.DemandSuccess(t, <-results)
	time.Sleep(10 * time.Millisecond)
	s.Release()

	err := <-results
	test.ExpectSuccess(t, curated.Is(err, scheduler.Closed))

	// close blanks the display
	test.ExpectSuccess(t, s.Close())
	fb.crit.Lock()
	test.ExpectSuccess(t, fb.blanked)
	fb.crit.Unlock()

	// further presents fail
	err = s.PresentAndWait(false)
	test.ExpectSuccess(t, curated.Is(err, scheduler.Closed))
}

func TestSingleConsumer(t *testing.T) {
	s, _ := newScheduler(nil)
	s.NonBlocking.Store(true)
	test.DemandSuccess(t, s.PresentAndWait(false))

	panicked := make(chan bool)
	go func() {
		defer func() {
			panicked <- recover() != nil
		}()
		for range assert.CheckPeriod {
			s.PresentAndWait(false)
		}
	}()
	test.ExpectSuccess(t, <-panicked)
}

func TestDeviceError(t *testing.T) {
	s, fb := newScheduler(nil)
	fb.failCopy = errors.New("lost device")

	err := s.PresentAndWait(false)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, err.Error(), "scheduler: lost device")
}

func TestTicker(t *testing.T) {
	var count atomic.Uint32
	tck := scheduler.NewTicker(500, func(c uint32) {
		count.Store(c)
	})

	deadline := time.Now().Add(time.Second)
	for count.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	tck.Stop()
	test.ExpectSuccess(t, count.Load() >= 5)

	// no more retraces after stop
	c := count.Load()
	time.Sleep(10 * time.Millisecond)
	test.ExpectEquality(t, count.Load(), c)

	// stopping twice is safe
	tck.Stop()
}

func TestDrain(t *testing.T) {
	s, _ := newScheduler(nil)

	// nothing to drain
	test.ExpectSuccess(t, s.Drain())

	test.DemandSuccess(t, s.PresentAndWait(false))
	test.ExpectEquality(t, s.State(), scheduler.SwapPending)

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.OnRetrace(1)
	}()

	test.ExpectSuccess(t, s.Drain())
	test.ExpectEquality(t, s.State(), scheduler.Idle)
	test.ExpectEquality(t, s.Scanout(), 1)

	s.Release()
	test.ExpectFailure(t, s.Drain())
}
