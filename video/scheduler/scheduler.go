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
	"sync/atomic"
	"time"

	"github.com/jetsetilly/retrace/assert"
	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/notifications"
)

// Closed is the pattern of the error returned by PresentAndWait() after the
// scheduler has been released.
const Closed = "scheduler: closed"

// DefaultTimeout is the length of time to wait for a retrace before giving
// up.
const DefaultTimeout = time.Second

// Framebuffers is implemented by the device that owns the physical
// framebuffer slots.
type Framebuffers interface {
	// copy the composited image into the framebuffer slot
	CopyToSlot(slot int) error

	// request that the slot be scanned out after the next retrace
	Commit(slot int) error

	// force the display to show nothing
	Blank() error
}

// State of the scheduler.
type State int

// List of valid State values.
const (
	Idle State = iota
	SwapPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SwapPending:
		return "swap pending"
	}
	return "unknown"
}

// no slot is pending
const noSlot = -1

// Scheduler controls the flipping of the two framebuffer slots.
type Scheduler struct {
	fb     Framebuffers
	notify notifications.Notify

	// the most recent retrace count
	retraces atomic.Uint32

	// wakes the consumer when a new retrace has been seen
	wake chan struct{}

	// closed when the scheduler is released
	done        chan struct{}
	releaseOnce sync.Once

	// the slot being scanned out and the slot that will be scanned out
	// after the next retrace
	scanout atomic.Int32
	pending atomic.Int32

	// the following fields are only accessed by the owning goroutine

	owner assert.Owner

	// slot most recently written to. slot zero is being scanned out at
	// the start so the first write is to slot one
	current int

	// retrace count at the time of the most recent commit
	committedAt uint32
	committed   bool

	// timer used for the retrace timeout
	timeout *time.Timer

	// NonBlocking flips slots without waiting for the retrace
	NonBlocking atomic.Bool

	// Timeout is the length of time to wait for a retrace. it should only
	// be changed by the goroutine that calls PresentAndWait()
	Timeout time.Duration

	// measurement of the presentation rate. the measuring pulse is the same
	// method used by the frame limiter
	measuringPulse *time.Ticker
	measureTime    time.Time
	measureCt      int
	measured       atomic.Value // float32

	// number of frames presented
	presented atomic.Uint64
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The notify argument can be nil.
func NewScheduler(fb Framebuffers, notify notifications.Notify) *Scheduler {
	s := &Scheduler{
		fb:             fb,
		notify:         notify,
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
		Timeout:        DefaultTimeout,
		measuringPulse: time.NewTicker(time.Second),
		measureTime:    time.Now(),
	}
	s.scanout.Store(0)
	s.pending.Store(noSlot)
	s.measured.Store(float32(0.0))
	return s
}

// OnRetrace is called by the retrace source. The count should increase by
// one for every retrace. Counts that are not newer than the most recent count
// are ignored.
//
// It is safe to call OnRetrace() from any goroutine but there should only be
// one source of retrace signals.
func (s *Scheduler) OnRetrace(count uint32) {
	for {
		old := s.retraces.Load()

		// comparison of the difference allows the counter to wrap
		if int32(count-old) <= 0 {
			return
		}
		if s.retraces.CompareAndSwap(old, count) {
			break // for loop
		}
	}

	// the pending slot is now being scanned out
	if p := s.pending.Swap(noSlot); p != noSlot {
		s.scanout.Store(p)
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Retraces returns the most recent retrace count.
func (s *Scheduler) Retraces() uint32 {
	return s.retraces.Load()
}

// Scanout returns the slot that is being scanned out.
func (s *Scheduler) Scanout() int {
	return int(s.scanout.Load())
}

// State returns the current state of the scheduler.
func (s *Scheduler) State() State {
	if s.pending.Load() != noSlot {
		return SwapPending
	}
	return Idle
}

// Presented returns the number of frames that have been presented.
func (s *Scheduler) Presented() uint64 {
	return s.presented.Load()
}

// Measured returns the number of frames presented per second. The value is
// updated approximately once per second.
func (s *Scheduler) Measured() float32 {
	return s.measured.Load().(float32)
}

// PresentAndWait copies the composited image into the slot not being
// scanned out and commits it for display.
//
// In blocking mode, or if forceSync is true, the function will wait for a
// retrace newer than the previous commit before writing to a slot. If no
// retrace arrives before the timeout the wait is abandoned and the image is
// written to the slot that is still waiting to be scanned out.
func (s *Scheduler) PresentAndWait(forceSync bool) error {
	select {
	case <-s.done:
		return curated.Errorf(Closed)
	default:
	}

	s.owner.Check("scheduler")

	flip := true
	if s.committed && (forceSync || !s.NonBlocking.Load()) {
		var err error
		flip, err = s.wait()
		if err != nil {
			return err
		}

		// the retrace timed out so the slot that was committed has not been
		// scanned out. withdraw the commit and write to the same slot again.
		// if the withdrawal fails then the retrace arrived in the meantime
		// and the flip can go ahead as normal
		if !flip && !s.pending.CompareAndSwap(int32(s.current), noSlot) {
			flip = true
		}
	}

	if flip {
		s.current ^= 1
	}

	if err := s.fb.CopyToSlot(s.current); err != nil {
		return curated.Errorf("scheduler: %v", err)
	}
	if err := s.fb.Commit(s.current); err != nil {
		return curated.Errorf("scheduler: %v", err)
	}

	// the pending slot must be stored before the retrace count is read. a
	// retrace arriving between the two will cause the next call to wait for
	// one extra retrace, which is safe
	s.pending.Store(int32(s.current))
	s.committedAt = s.retraces.Load()
	s.committed = true

	s.presented.Add(1)
	s.measureActual()

	return nil
}

// Drain waits for the most recent commit to be scanned out. The wait is
// abandoned after the timeout period, in the same way as PresentAndWait().
func (s *Scheduler) Drain() error {
	select {
	case <-s.done:
		return curated.Errorf(Closed)
	default:
	}

	s.owner.Check("scheduler")

	if !s.committed {
		return nil
	}
	_, err := s.wait()
	return err
}

// newer returns true if a retrace has been seen since the most recent
// commit.
func (s *Scheduler) newer() bool {
	return int32(s.retraces.Load()-s.committedAt) > 0
}

// wait for a retrace newer than the most recent commit. returns false if the
// wait timed out
func (s *Scheduler) wait() (bool, error) {
	if s.newer() {
		return true, nil
	}

	if s.timeout == nil {
		s.timeout = time.NewTimer(s.Timeout)
	} else {
		s.timeout.Reset(s.Timeout)
	}
	defer s.timeout.Stop()

	for {
		select {
		case <-s.wake:
			if s.newer() {
				return true, nil
			}
		case <-s.done:
			return false, curated.Errorf(Closed)
		case <-s.timeout.C:
			logger.Logf(logger.Allow, "scheduler", "retrace timeout after %v", s.Timeout)
			if s.notify != nil {
				if err := s.notify.Notify(notifications.NotifyRetraceTimeout); err != nil {
					logger.Log(logger.Allow, "scheduler", err)
				}
			}
			return s.newer(), nil
		}
	}
}

// measureActual updates the measured presentation rate if the measuring
// pulse has fired.
func (s *Scheduler) measureActual() {
	s.measureCt++
	select {
	case <-s.measuringPulse.C:
		t := time.Now()
		m := float32(s.measureCt) / float32(t.Sub(s.measureTime).Seconds())
		s.measured.Store(m)

		// reset time and count ready for next measurement
		s.measureTime = t
		s.measureCt = 0
	default:
	}
}

// Release any goroutine waiting in PresentAndWait(). Further calls to
// PresentAndWait() will return an error. It is safe to call Release() from
// any goroutine and more than once.
func (s *Scheduler) Release() {
	s.releaseOnce.Do(func() {
		close(s.done)
	})
}

// Close releases the scheduler and blanks the display. It should be called
// from the goroutine that calls PresentAndWait().
func (s *Scheduler) Close() error {
	s.Release()
	s.measuringPulse.Stop()
	if err := s.fb.Blank(); err != nil {
		return curated.Errorf("scheduler: %v", err)
	}
	return nil
}
