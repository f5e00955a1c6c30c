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

package video_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/notifications"
	"github.com/jetsetilly/retrace/test"
	"github.com/jetsetilly/retrace/video"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/device/recorder"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
	"github.com/jetsetilly/retrace/video/scheduler"
	"github.com/jetsetilly/retrace/video/transition"
)

type notices struct {
	crit sync.Mutex
	list []notifications.Notice
}

func (n *notices) Notify(notice notifications.Notice) error {
	n.crit.Lock()
	defer n.crit.Unlock()
	n.list = append(n.list, notice)
	return nil
}

func (n *notices) count(notice notifications.Notice) int {
	n.crit.Lock()
	defer n.crit.Unlock()
	c := 0
	for _, m := range n.list {
		if m == notice {
			c++
		}
	}
	return c
}

type audio struct {
	rate float32
}

func (a *audio) SetRefreshRate(hz float32) {
	a.rate = hz
}

// preferences suitable for most tests. no fade in and no waiting for the
// retrace
func preferences(t *testing.T) *video.Preferences {
	t.Helper()
	p, err := video.NewPreferences("")
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.FadeIn.Set(false))
	test.DemandSuccess(t, p.NonBlocking.Set(true))
	return p
}

func newPipeline(t *testing.T, p *video.Preferences) (*video.Pipeline, *recorder.Recorder, *notices) {
	t.Helper()
	rec := recorder.NewRecorder()
	n := &notices{}
	pl, err := video.NewPipeline(rec, rec, p, n)
	test.DemandSuccess(t, err)
	return pl, rec, n
}

func lastPasses(t *testing.T, rec *recorder.Recorder) []device.Pass {
	t.Helper()
	f, ok := rec.LastFrame()
	test.DemandEquality(t, ok, true)
	return f.Passes
}

func TestFourThreeOnFourThree(t *testing.T) {
	pl, rec, n := newPipeline(t, preferences(t))
	test.ExpectEquality(t, n.count(notifications.NotifyModeChange), 1)

	frame := pixels.NewRawFrame(256, 224, pixels.FormatRGB565)
	test.DemandSuccess(t, pl.Frame(frame))

	vp := pl.Viewport()
	test.ExpectEquality(t, vp.Full(), true)
	test.ExpectEquality(t, vp.Width, 640)
	test.ExpectEquality(t, vp.Height, 480)

	passes := lastPasses(t, rec)
	test.DemandEquality(t, len(passes), 1)
	test.ExpectEquality(t, passes[0].Viewport, vp)
	test.ExpectEquality(t, passes[0].NumStages, 1)
	test.ExpectEquality(t, passes[0].Color, [4]float32{1, 1, 1, 1})

	test.ExpectSuccess(t, pl.Shutdown())
	test.ExpectEquality(t, rec.Blanks(), 1)
	test.ExpectEquality(t, rec.Destroyed(), true)
}

func TestSixteenNineOnFourThree(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.Aspect.Set(mode.AspectIndex("16:9")))
	pl, rec, _ := newPipeline(t, p)
	defer pl.Shutdown()

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))

	vp := pl.Viewport()
	test.ExpectEquality(t, vp, mode.Viewport{
		X: 0, Y: 60, Width: 640, Height: 360,
		FullWidth: 640, FullHeight: 480,
	})
	test.ExpectEquality(t, lastPasses(t, rec)[0].Viewport, vp)
}

func TestAspectPreferenceHook(t *testing.T) {
	p := preferences(t)
	pl, _, _ := newPipeline(t, p)
	defer pl.Shutdown()

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Viewport().Full(), true)

	// the change is not seen until the next frame
	test.DemandSuccess(t, p.Aspect.Set(mode.AspectIndex("16:9")))
	test.ExpectEquality(t, pl.Viewport().Full(), true)

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Viewport().Height, 360)
}

func TestTemporalBlend(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.Blend.Set(true))
	pl, rec, _ := newPipeline(t, p)
	defer pl.Shutdown()

	frame := pixels.NewRawFrame(256, 224, pixels.FormatRGB565)

	// nothing to blend with on the first frame
	test.DemandSuccess(t, pl.Frame(frame))
	test.ExpectEquality(t, lastPasses(t, rec)[0].NumStages, 1)

	test.DemandSuccess(t, pl.Frame(frame))
	passes := lastPasses(t, rec)
	test.DemandEquality(t, passes[0].NumStages, 2)
	test.ExpectEquality(t, passes[0].Stages[1].Combine, device.CombineInterpolate)
	test.ExpectInequality(t, passes[0].Stages[0].Texture, passes[0].Stages[1].Texture)

	// a duplicate frame is blended with the same previous frame
	test.DemandSuccess(t, pl.Frame(pixels.RawFrame{}))
	test.ExpectEquality(t, lastPasses(t, rec)[0].NumStages, 2)

	test.DemandSuccess(t, p.Blend.Set(false))
	test.DemandSuccess(t, pl.Frame(frame))
	test.ExpectEquality(t, lastPasses(t, rec)[0].NumStages, 1)

	// turning blend on again uses the frame already in the main texture
	test.DemandSuccess(t, p.Blend.Set(true))
	test.DemandSuccess(t, pl.Frame(frame))
	test.ExpectEquality(t, lastPasses(t, rec)[0].NumStages, 2)
}

func TestTextureFormat(t *testing.T) {
	pl, rec, _ := newPipeline(t, preferences(t))
	defer pl.Shutdown()

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 222, pixels.FormatXRGB8888)))
	tex := lastPasses(t, rec)[0].Stages[0].Texture
	test.ExpectEquality(t, tex.Format(), pixels.TexelRGBA8)
	w, h := tex.Size()
	test.ExpectEquality(t, w, 256)
	test.ExpectEquality(t, h, 220)

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatXRGB1555)))
	test.ExpectEquality(t, lastPasses(t, rec)[0].Stages[0].Texture.Format(), pixels.TexelRGB565)
}

func TestAutoResolution(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.AutoResolution.Set(true))
	pl, rec, n := newPipeline(t, p)
	defer pl.Shutdown()

	test.ExpectEquality(t, pl.Mode().FBWidth, 640)

	// the new resolution is not negotiated until the next frame
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Mode().FBWidth, 640)
	test.ExpectEquality(t, len(rec.Modes()), 1)

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	m := pl.Mode()
	test.ExpectEquality(t, m.FBWidth, 352)
	test.ExpectEquality(t, m.XFBHeight, 232)
	test.ExpectEquality(t, m.Interlace, mode.NonInterlaced)
	test.ExpectEquality(t, len(rec.Modes()), 2)
	test.ExpectEquality(t, n.count(notifications.NotifyModeChange), 2)

	// same size. no further negotiation
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, len(rec.Modes()), 2)
}

func TestSetResolution(t *testing.T) {
	pl, _, _ := newPipeline(t, preferences(t))
	defer pl.Shutdown()

	a := &audio{}
	pl.SetAudioSync(a)
	test.ExpectApproximate(t, a.rate, 59.94, 0.001)

	pl.SetResolution(640, 240)
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Mode().Interlace, mode.NonInterlaced)
	test.ExpectApproximate(t, a.rate, 59.94*525.0/526.0, 0.001)

	derived, _ := pl.RefreshRate()
	test.ExpectEquality(t, derived, a.rate)

	tw := &test.Writer{}
	pl.SetResolution(600, 240)
	logger.Tail(tw, 1)
	test.ExpectSuccess(t, strings.Contains(tw.String(), "600x240 is not in the resolution table"))
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Mode().FBWidth, 608)
}

func TestCoreGeometry(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.Aspect.Set(mode.AspectIndex("core provided")))
	pl, _, _ := newPipeline(t, p)
	defer pl.Shutdown()

	pl.SetCoreGeometry(16.0 / 9.0)
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, pl.Viewport().Height, 360)
}

func TestOverlay(t *testing.T) {
	pl, rec, _ := newPipeline(t, preferences(t))

	// the overlay forces presentation to wait for the retrace
	tck := scheduler.NewTicker(1000, pl.OnRetrace)
	defer tck.Stop()
	defer pl.Shutdown()

	ovl := pixels.NewRawFrame(256, 192, pixels.FormatRGBA4444)
	pl.SetOverlay(&ovl, true, 0.5)

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	passes := lastPasses(t, rec)
	test.DemandEquality(t, len(passes), 2)
	test.ExpectEquality(t, passes[1].Blend, device.BlendAlpha)
	test.ExpectEquality(t, passes[1].Color[3], float32(0.5))
	test.ExpectEquality(t, passes[1].Viewport.Full(), true)

	pl.SetOverlay(nil, false, 0)
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, len(lastPasses(t, rec)), 1)
}

func TestBlockingPresentation(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.NonBlocking.Set(false))
	pl, rec, _ := newPipeline(t, p)

	tck := scheduler.NewTicker(1000, pl.OnRetrace)
	defer tck.Stop()
	defer pl.Shutdown()

	rec.SetKeep(10)
	for range 10 {
		test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	}

	frames := rec.Frames()
	test.DemandEquality(t, len(frames), 10)
	for i := 1; i < len(frames); i++ {
		test.ExpectInequality(t, frames[i].Slot, frames[i-1].Slot, i)
	}
	test.ExpectEquality(t, pl.Presented(), uint64(10))
}

func TestFadeIn(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.FadeIn.Set(true))
	test.DemandSuccess(t, p.FadeSteps.Set(4))
	pl, rec, n := newPipeline(t, p)
	defer pl.Shutdown()

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, lastPasses(t, rec)[0].Color[0], float32(0.25))

	for range 3 {
		test.DemandSuccess(t, pl.Frame(pixels.RawFrame{}))
	}
	test.ExpectEquality(t, lastPasses(t, rec)[0].Color[0], float32(1.0))
	test.ExpectEquality(t, n.count(notifications.NotifyFadeInComplete), 1)
	test.ExpectEquality(t, pl.FadeState(), transition.Idle)
}

func TestReset(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.FadeSteps.Set(4))
	pl, _, n := newPipeline(t, p)
	defer pl.Shutdown()

	pl.RequestReset()
	for range 4 {
		test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	}
	test.ExpectEquality(t, n.count(notifications.NotifyReset), 1)

	// the reset is followed by a fade in only if the preference is set
	test.ExpectEquality(t, pl.FadeState(), transition.Idle)
}

func TestExit(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.FadeSteps.Set(4))
	pl, rec, n := newPipeline(t, p)

	pl.RequestExit()
	for range 4 {
		test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	}
	test.ExpectEquality(t, lastPasses(t, rec)[0].Color[0], float32(0.0))
	test.ExpectEquality(t, n.count(notifications.NotifyExit), 1)

	err := pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565))
	test.ExpectEquality(t, curated.Is(err, video.Terminated), true)

	test.ExpectSuccess(t, pl.Shutdown())
	test.ExpectEquality(t, rec.Blanks(), 1)

	// shutting down more than once has no effect
	test.ExpectSuccess(t, pl.Shutdown())
	test.ExpectEquality(t, rec.Blanks(), 1)
}

func TestDeviceError(t *testing.T) {
	pl, rec, _ := newPipeline(t, preferences(t))
	defer pl.Shutdown()

	rec.FailOn = "Draw"
	err := pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565))
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, err.Error(), "pipeline: compositor: recorder: Draw: failed")
}

func TestRelease(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.NonBlocking.Set(false))
	test.DemandSuccess(t, p.RetraceTimeout.Set(60000))
	pl, _, _ := newPipeline(t, p)

	started := make(chan bool)
	done := make(chan error)
	go func() {
		// the first frame never waits
		err := pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565))
		started <- err == nil

		// the second frame blocks because there is no retrace source
		done <- pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565))
	}()

	test.DemandEquality(t, <-started, true)
	pl.Release()
	test.ExpectFailure(t, <-done)

	// shutdown after release does not wait for a retrace
	test.ExpectSuccess(t, pl.Shutdown())
}

func TestLargeFrame(t *testing.T) {
	pl, rec, _ := newPipeline(t, preferences(t))
	defer pl.Shutdown()

	// textures grow to hold frames larger than the default capacity
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(320, 240, pixels.FormatRGB565)))
	tex := lastPasses(t, rec)[0].Stages[0].Texture
	test.ExpectEquality(t, tex.Scale(), 2)
	w, h := tex.Size()
	test.ExpectEquality(t, w, 320)
	test.ExpectEquality(t, h, 240)

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(640, 480, pixels.FormatRGB565)))
	test.ExpectEquality(t, lastPasses(t, rec)[0].Stages[0].Texture.Scale(), 3)

	// and the overlay texture the same. the overlay is presented in sync
	// with the retrace
	tck := scheduler.NewTicker(1000, pl.OnRetrace)
	defer tck.Stop()
	overlay := pixels.NewRawFrame(320, 240, pixels.FormatRGBA4444)
	pl.SetOverlay(&overlay, true, 1.0)
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	passes := lastPasses(t, rec)
	test.DemandEquality(t, len(passes), 2)
	test.ExpectEquality(t, passes[0].Stages[0].Texture.Scale(), 1)
	test.ExpectEquality(t, passes[1].Stages[0].Texture.Scale(), 2)
}

func TestRuntimeFadeSteps(t *testing.T) {
	p := preferences(t)
	pl, _, n := newPipeline(t, p)
	defer pl.Shutdown()

	test.DemandSuccess(t, p.FadeSteps.Set(2))
	pl.RequestExit()

	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, n.count(notifications.NotifyExit), 0)
	test.DemandSuccess(t, pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565)))
	test.ExpectEquality(t, n.count(notifications.NotifyExit), 1)

	err := pl.Frame(pixels.NewRawFrame(256, 224, pixels.FormatRGB565))
	test.ExpectEquality(t, curated.Is(err, video.Terminated), true)
}

type swapControl struct {
	nonBlocking bool
	calls       int
}

func (s *swapControl) SetNonBlocking(nonBlocking bool) {
	s.nonBlocking = nonBlocking
	s.calls++
}

func TestSwapControl(t *testing.T) {
	p := preferences(t)
	pl, _, _ := newPipeline(t, p)
	defer pl.Shutdown()

	sc := &swapControl{}
	pl.SetSwapControl(sc)
	test.ExpectEquality(t, sc.nonBlocking, true)

	test.DemandSuccess(t, p.NonBlocking.Set(false))
	test.ExpectEquality(t, sc.nonBlocking, false)
	test.ExpectEquality(t, sc.calls, 2)
}
