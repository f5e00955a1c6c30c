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

// Package recorder implements a device that draws nothing. Instead it keeps a
// record of the work it has been asked to do. The record can be inspected
// directly or summarised as a digest.
//
// The Recorder also implements the mode.Probe interface. The connected
// standard and progressive capability are set by the fields of the same name.
package recorder

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/digest"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/specification"
)

// Frame is the record of a single frame drawn by the device.
type Frame struct {
	Passes []device.Pass

	// the slot the frame was copied to. -1 if the frame has not been
	// copied
	Slot int

	// the frame has been committed to the slot
	Committed bool
}

// Recorder implements the device.Device and mode.Probe interfaces.
type Recorder struct {
	crit sync.Mutex

	// the standard reported by CabledStandard()
	Standard string

	// the value reported by ProgressiveCapable()
	Progressive bool

	frames []Frame
	modes  []mode.DisplayMode
	blanks int

	// slot that was most recently committed
	committed int

	// the most recent frame has been started but not yet copied to a slot
	drawing bool

	// maximum number of frames to keep. older frames are discarded
	keep int

	// FailOn causes the named function to return an error. useful for
	// testing error propagation
	FailOn string

	destroyed bool

	digest *digest.Video
}

// DefaultKeep is the number of frames kept by a new Recorder.
const DefaultKeep = 16

// NewRecorder is the preferred method of initialisation for the Recorder
// type.
func NewRecorder() *Recorder {
	return &Recorder{
		Standard:  specification.SpecNTSC.ID,
		committed: -1,
		keep:      DefaultKeep,
		digest:    digest.NewVideo(),
	}
}

// CabledStandard implements the mode.Probe interface.
func (rec *Recorder) CabledStandard() string {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.Standard
}

// ProgressiveCapable implements the mode.Probe interface.
func (rec *Recorder) ProgressiveCapable() bool {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.Progressive
}

func (rec *Recorder) fail(fn string) error {
	if rec.destroyed {
		return curated.Errorf("recorder: %s: device destroyed", fn)
	}
	if rec.FailOn == fn {
		return curated.Errorf("recorder: %s: failed", fn)
	}
	return nil
}

// SetMode implements the device.Device interface.
func (rec *Recorder) SetMode(m mode.DisplayMode) error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("SetMode"); err != nil {
		return err
	}
	rec.modes = append(rec.modes, m)
	return nil
}

// Begin implements the device.Device interface.
func (rec *Recorder) Begin() error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("Begin"); err != nil {
		return err
	}

	// a frame that was begun but never copied is replaced
	if rec.drawing {
		rec.frames = rec.frames[:len(rec.frames)-1]
	}

	rec.frames = append(rec.frames, Frame{Slot: -1})
	if len(rec.frames) > rec.keep {
		rec.frames = rec.frames[len(rec.frames)-rec.keep:]
	}
	rec.drawing = true

	return nil
}

// Draw implements the device.Device interface.
func (rec *Recorder) Draw(p *device.Pass) error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("Draw"); err != nil {
		return err
	}
	if !rec.drawing {
		return curated.Errorf("recorder: Draw: frame not begun")
	}

	f := &rec.frames[len(rec.frames)-1]
	f.Passes = append(f.Passes, *p)

	for _, tex := range p.Textures() {
		if tex.Dirty() {
			rec.digest.Write(tex.Data())
			tex.Flushed()
		}
	}
	rec.writePass(p)

	return nil
}

// writePass adds the geometry and state of the pass to the digest
func (rec *Recorder) writePass(p *device.Pass) {
	for i := range p.NumStages {
		s := p.Stages[i]
		rec.digest.WriteUint32(uint32(s.Combine))
		rec.digest.WriteUint32(math.Float32bits(s.Constant))
		if s.Smooth {
			rec.digest.WriteUint32(1)
		} else {
			rec.digest.WriteUint32(0)
		}
	}
	rec.digest.WriteUint32(uint32(p.Blend))

	vp := p.Viewport
	for _, v := range []int{vp.X, vp.Y, vp.Width, vp.Height} {
		rec.digest.WriteUint32(uint32(v))
	}

	var b []byte
	for _, v := range p.Vertices {
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v.X))
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v.Y))
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v.U))
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v.V))
	}
	for _, c := range p.Color {
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(c))
	}
	rec.digest.Write(b)
}

// CopyToSlot implements the scheduler.Framebuffers interface.
func (rec *Recorder) CopyToSlot(slot int) error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("CopyToSlot"); err != nil {
		return err
	}
	if slot < 0 || slot > 1 {
		panic(fmt.Sprintf("recorder: illegal slot %d", slot))
	}

	// copying without drawing is allowed. the slot receives whatever was
	// drawn previously
	if rec.drawing {
		rec.frames[len(rec.frames)-1].Slot = slot
		rec.drawing = false
	}

	rec.digest.WriteUint32(uint32(slot))
	rec.digest.NewFrame()

	return nil
}

// Commit implements the scheduler.Framebuffers interface.
func (rec *Recorder) Commit(slot int) error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("Commit"); err != nil {
		return err
	}
	rec.committed = slot
	for i := len(rec.frames) - 1; i >= 0; i-- {
		if rec.frames[i].Slot == slot {
			rec.frames[i].Committed = true
			break
		}
	}
	return nil
}

// Blank implements the scheduler.Framebuffers interface.
func (rec *Recorder) Blank() error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("Blank"); err != nil {
		return err
	}
	rec.blanks++
	return nil
}

// Destroy implements the device.Device interface.
func (rec *Recorder) Destroy() error {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if err := rec.fail("Destroy"); err != nil {
		return err
	}
	rec.destroyed = true
	return nil
}

// Frames returns a copy of the recorded frames. Only the most recent frames
// are kept. See SetKeep().
func (rec *Recorder) Frames() []Frame {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	f := make([]Frame, len(rec.frames))
	for i := range rec.frames {
		f[i] = rec.frames[i]
		f[i].Passes = append([]device.Pass(nil), rec.frames[i].Passes...)
	}
	return f
}

// LastFrame returns the most recently recorded frame. Returns false if no
// frame has been recorded.
func (rec *Recorder) LastFrame() (Frame, bool) {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	if len(rec.frames) == 0 {
		return Frame{}, false
	}
	f := rec.frames[len(rec.frames)-1]
	f.Passes = append([]device.Pass(nil), f.Passes...)
	return f, true
}

// SetKeep changes the number of frames kept by the recorder.
func (rec *Recorder) SetKeep(keep int) {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	rec.keep = max(1, keep)
}

// Modes returns every mode set on the device, in order.
func (rec *Recorder) Modes() []mode.DisplayMode {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return append([]mode.DisplayMode(nil), rec.modes...)
}

// Blanks returns the number of times the output has been blanked.
func (rec *Recorder) Blanks() int {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.blanks
}

// Committed returns the most recently committed slot. Returns -1 if no slot
// has been committed.
func (rec *Recorder) Committed() int {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.committed
}

// Destroyed returns true if Destroy() has been called.
func (rec *Recorder) Destroyed() bool {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.destroyed
}

// Hash returns the digest of every frame copied to a slot.
func (rec *Recorder) Hash() string {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return rec.digest.Hash()
}
